// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package policy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/magiconair/properties"
	"gopkg.in/yaml.v3"
)

// Format is a policy document encoding.
type Format string

// Supported policy document formats.
const (
	FormatYAML       Format = "yaml"
	FormatJSON       Format = "json"
	FormatTOML       Format = "toml"
	FormatProperties Format = "properties"
)

// DetectFormat returns the document format implied by the file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	case ".cfg", ".properties", ".conf":
		return FormatProperties, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, path)
	}
}

// FileSource reads policy properties from a file on every call.
//
// Nested mappings are flattened with "." so these two YAML documents are
// equivalent:
//
//	"te.*.enabled": "true"
//
//	"te.*":
//	  enabled: true
//
// A missing or unreadable file is reported as [ErrConfigurationUnavailable].
type FileSource struct {
	// Path is the policy document location.
	Path string
	// Format overrides extension based detection when set.
	Format Format
}

// Properties implements [Source].
func (f FileSource) Properties(ctx context.Context) (Properties, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	format := f.Format
	if format == "" {
		detected, err := DetectFormat(f.Path)
		if err != nil {
			return nil, err
		}
		format = detected
	}

	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigurationUnavailable, err)
	}

	return Parse(data, format)
}

// Parse decodes a policy document, preserving key order.
func Parse(data []byte, format Format) (Properties, error) {
	var (
		props Properties
		err   error
	)

	switch format {
	case FormatYAML:
		props, err = parseYAML(data)
	case FormatJSON:
		props, err = parseJSON(data)
	case FormatTOML:
		props, err = parseTOML(data)
	case FormatProperties:
		props, err = parseProperties(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s policy: %w", format, err)
	}

	return props, nil
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func parseYAML(data []byte) (Properties, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return Properties{}, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: top level must be a mapping", ErrInvalidDocument)
	}

	props := Properties{}
	if err := flattenYAML("", root, &props); err != nil {
		return nil, err
	}
	return props, nil
}

func flattenYAML(prefix string, node *yaml.Node, props *Properties) error {
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := joinKey(prefix, node.Content[i].Value)
		value := node.Content[i+1]
		if value.Kind == yaml.AliasNode {
			value = value.Alias
		}

		switch value.Kind {
		case yaml.MappingNode:
			if err := flattenYAML(key, value, props); err != nil {
				return err
			}
		case yaml.ScalarNode:
			*props = append(*props, Property{Key: key, Value: value.Value})
		default:
			return fmt.Errorf("%w: key %q (line %d) must hold a scalar or mapping", ErrInvalidDocument, key, value.Line)
		}
	}
	return nil
}

func parseJSON(data []byte) (Properties, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if errors.Is(err, io.EOF) {
		return Properties{}, nil
	}
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("%w: top level must be an object", ErrInvalidDocument)
	}

	props := Properties{}
	if err := flattenJSON("", dec, &props); err != nil {
		return nil, err
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after object", ErrInvalidDocument)
	}
	return props, nil
}

// flattenJSON consumes an object whose opening brace was already read.
func flattenJSON(prefix string, dec *json.Decoder, props *Properties) error {
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key := joinKey(prefix, tok.(string))

		tok, err = dec.Token()
		if err != nil {
			return err
		}

		switch v := tok.(type) {
		case json.Delim:
			if v != '{' {
				return fmt.Errorf("%w: key %q must hold a scalar or object", ErrInvalidDocument, key)
			}
			if err := flattenJSON(key, dec, props); err != nil {
				return err
			}
		case string:
			*props = append(*props, Property{Key: key, Value: v})
		case bool:
			*props = append(*props, Property{Key: key, Value: strconv.FormatBool(v)})
		case json.Number:
			*props = append(*props, Property{Key: key, Value: v.String()})
		case nil:
			*props = append(*props, Property{Key: key})
		}
	}

	// closing brace
	_, err := dec.Token()
	return err
}

func parseTOML(data []byte) (Properties, error) {
	var raw map[string]any
	md, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, err
	}

	props := Properties{}
	for _, key := range md.Keys() {
		value, ok := lookupTOML(raw, key)
		if !ok {
			continue
		}

		switch v := value.(type) {
		case map[string]any:
			// table header, its keys follow
		case []any, []map[string]any:
			return nil, fmt.Errorf("%w: key %q must hold a scalar or table", ErrInvalidDocument, strings.Join(key, "."))
		default:
			props = append(props, Property{Key: strings.Join(key, "."), Value: fmt.Sprint(v)})
		}
	}
	return props, nil
}

func lookupTOML(raw map[string]any, key toml.Key) (any, bool) {
	var current any = raw
	for _, part := range key {
		table, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		if current, ok = table[part]; !ok {
			return nil, false
		}
	}
	return current, true
}

// parseProperties reads a Java properties document: '=', ':' or
// whitespace separate key and value, '#' and '!' start comments, and
// backslash escapes and line continuations follow the Java rules. A pattern
// containing ':' or '=' must escape it, as in "(?\:a|b)". Expansion of
// ${...} is disabled so values are taken literally.
func parseProperties(data []byte) (Properties, error) {
	loader := &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	doc, err := loader.LoadBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	keys := doc.Keys()
	props := make(Properties, 0, len(keys))
	for _, key := range keys {
		if key == "" {
			return nil, fmt.Errorf("%w: empty key", ErrInvalidDocument)
		}
		value, _ := doc.Get(key)
		props = append(props, Property{Key: key, Value: value})
	}
	return props, nil
}
