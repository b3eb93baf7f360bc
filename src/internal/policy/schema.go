// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package policy

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// documentSchema constrains a flattened policy document.
const documentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "trust guard policy",
  "type": "object",
  "patternProperties": {
    "^.+\\.enabled$": { "type": "string", "enum": ["true", "false"] },
    "^.+\\.keystore\\.path$": { "type": "string", "minLength": 1 },
    "^.+\\.keystore\\.password$": { "type": "string" }
  },
  "additionalProperties": false
}`

var compiledSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(documentSchema))
})

// Issue is a single problem found while linting a policy document.
type Issue struct {
	Key     string `json:"key"`
	Message string `json:"message"`
}

// String returns "key: message".
func (i Issue) String() string {
	if i.Key == "" {
		return i.Message
	}
	return i.Key + ": " + i.Message
}

// Lint checks a policy document without resolving anything.
//
// It reports keys the resolver would ignore, values it would read
// differently than intended (such as "True"), patterns that do not compile,
// duplicate keys, and enabled patterns without a keystore path.
//
// Returns:
//   - []Issue: Problems in document order, empty when the document is clean
//   - error: Error if the schema itself cannot be compiled
func Lint(props Properties) ([]Issue, error) {
	schema, err := compiledSchema()
	if err != nil {
		return nil, fmt.Errorf("policy: compile schema: %w", err)
	}

	var issues []Issue
	flat := make(map[string]any, len(props))
	for _, prop := range props {
		if _, dup := flat[prop.Key]; dup {
			issues = append(issues, Issue{Key: prop.Key, Message: "duplicate key, first occurrence wins"})
			continue
		}
		flat[prop.Key] = prop.Value
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(flat))
	if err != nil {
		return nil, fmt.Errorf("policy: validate document: %w", err)
	}

	schemaIssues := make([]Issue, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		key := re.Field()
		if key == "(root)" {
			key = ""
		}
		schemaIssues = append(schemaIssues, Issue{Key: key, Message: re.Description()})
	}
	sort.SliceStable(schemaIssues, func(i, j int) bool { return schemaIssues[i].Key < schemaIssues[j].Key })
	issues = append(issues, schemaIssues...)

	paths := map[string]bool{}
	var enabled []string
	for _, prop := range props {
		for _, suffix := range []string{SuffixEnabled, SuffixKeyStorePath, SuffixKeyStorePassword} {
			pattern, ok := strings.CutSuffix(prop.Key, suffix)
			if !ok {
				continue
			}
			if _, err := compile(pattern); err != nil {
				issues = append(issues, Issue{Key: prop.Key, Message: err.Error()})
			}
			switch {
			case suffix == SuffixKeyStorePath:
				paths[pattern] = true
			case suffix == SuffixEnabled && prop.Value == "true":
				enabled = append(enabled, pattern)
			}
			break
		}
	}

	for _, pattern := range enabled {
		if !paths[pattern] {
			issues = append(issues, Issue{
				Key:     pattern + SuffixEnabled,
				Message: "validation enabled without " + pattern + SuffixKeyStorePath + ", connections will be rejected",
			})
		}
	}

	return issues, nil
}

// ValidateDocument is [Lint] reduced to an error wrapping [ErrInvalidDocument].
func ValidateDocument(props Properties) error {
	issues, err := Lint(props)
	if err != nil {
		return err
	}
	if len(issues) == 0 {
		return nil
	}

	errs := make([]error, len(issues))
	for i, issue := range issues {
		errs[i] = errors.New(issue.String())
	}
	return fmt.Errorf("%w: %w", ErrInvalidDocument, errors.Join(errs...))
}
