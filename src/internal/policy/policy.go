// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package policy

import (
	"context"
	"errors"
)

// Key suffixes recognised by the [Resolver]. The part of a key before the
// suffix is the regular expression matched against identifiers.
const (
	SuffixEnabled          = ".enabled"
	SuffixKeyStorePath     = ".keystore.path"
	SuffixKeyStorePassword = ".keystore.password"
)

var (
	// ErrConfigurationUnavailable indicates that no configuration source
	// could be reached. The [Resolver] degrades to disabled/absent on it.
	ErrConfigurationUnavailable = errors.New("policy: configuration unavailable")

	// ErrUnsupportedFormat indicates a policy file whose format cannot be detected.
	ErrUnsupportedFormat = errors.New("policy: unsupported policy file format")

	// ErrInvalidDocument indicates a policy document that is well formed but
	// does not describe a policy.
	ErrInvalidDocument = errors.New("policy: invalid policy document")
)

// Property is a single pattern-keyed policy value such as
// "te.*.keystore.path" = "/etc/trust/te.p12".
type Property struct {
	Key   string
	Value string
}

// Properties is an ordered property list. Lookups walk it in order and the
// first full match wins.
type Properties []Property

// Get returns the value stored under the exact key.
func (p Properties) Get(key string) (string, bool) {
	for _, prop := range p {
		if prop.Key == key {
			return prop.Value, true
		}
	}
	return "", false
}

// Source supplies the live policy properties. Implementations are read on
// every lookup and must be safe for concurrent use.
type Source interface {
	Properties(ctx context.Context) (Properties, error)
}

// SourceFunc adapts a function to [Source].
type SourceFunc func(ctx context.Context) (Properties, error)

// Properties implements [Source].
func (f SourceFunc) Properties(ctx context.Context) (Properties, error) { return f(ctx) }

// StaticSource serves a fixed property list.
type StaticSource Properties

// Properties implements [Source]. A nil StaticSource is unavailable.
func (s StaticSource) Properties(ctx context.Context) (Properties, error) {
	if s == nil {
		return nil, ErrConfigurationUnavailable
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append(Properties(nil), s...), nil
}

// Policy is the resolved policy for one identifier.
type Policy struct {
	Enabled             bool   `json:"enabled"`
	KeyStorePath        string `json:"keyStorePath,omitempty"`
	HasKeyStorePath     bool   `json:"hasKeyStorePath"`
	KeyStorePassword    string `json:"-"`
	HasKeyStorePassword bool   `json:"hasKeyStorePassword"`
}
