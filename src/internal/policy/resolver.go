// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package policy

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/H0llyW00dzZ/tls-cert-trust-guard/src/logger"
)

// Match is one property whose pattern fully matched an identifier.
type Match struct {
	Pattern string
	Key     string
	Value   string
}

// ResolverOption configures a [Resolver].
type ResolverOption func(*Resolver)

// WithLogger sets the logger used for degraded lookups and ambiguity warnings.
func WithLogger(l logger.Logger) ResolverOption {
	return func(r *Resolver) { r.log = logger.OrNop(l) }
}

// Resolver answers identifier-keyed policy questions.
//
// Every call re-reads its [Source]; nothing is cached, so policy changes
// take effect on the next lookup. Configuration errors are swallowed: the
// identifier is treated as disabled and its keystore settings as absent.
// A broken policy source therefore switches validation off instead of
// blocking connections.
//
// Thread Safety: Safe for concurrent use when the Source is.
type Resolver struct {
	source Source
	log    logger.Logger
}

// NewResolver creates a Resolver over source. A nil source is treated as
// unavailable configuration.
func NewResolver(source Source, opts ...ResolverOption) *Resolver {
	r := &Resolver{source: source, log: logger.Nop}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// IsEnabled reports whether validation is enabled for id.
// Only the literal value "true" enables it.
func (r *Resolver) IsEnabled(ctx context.Context, id string) bool {
	value, ok := r.lookup(ctx, id, SuffixEnabled)
	return ok && value == "true"
}

// KeyStorePath returns the trust keystore location for id.
func (r *Resolver) KeyStorePath(ctx context.Context, id string) (string, bool) {
	return r.lookup(ctx, id, SuffixKeyStorePath)
}

// KeyStorePassword returns the trust keystore password for id.
func (r *Resolver) KeyStorePassword(ctx context.Context, id string) (string, bool) {
	return r.lookup(ctx, id, SuffixKeyStorePassword)
}

// Resolve returns the full policy for id.
//
// Each field is looked up independently against the live source, so a
// source that changes between fields may yield a mixed view.
func (r *Resolver) Resolve(ctx context.Context, id string) Policy {
	var p Policy
	p.Enabled = r.IsEnabled(ctx, id)
	p.KeyStorePath, p.HasKeyStorePath = r.KeyStorePath(ctx, id)
	p.KeyStorePassword, p.HasKeyStorePassword = r.KeyStorePassword(ctx, id)
	return p
}

// Matches returns every property ending in suffix whose pattern fully
// matches id, in source order. Unlike the lookup methods it reports
// configuration errors.
func (r *Resolver) Matches(ctx context.Context, id, suffix string) ([]Match, error) {
	if r.source == nil {
		return nil, ErrConfigurationUnavailable
	}

	props, err := r.source.Properties(ctx)
	if err != nil {
		return nil, err
	}

	var matches []Match
	for _, prop := range props {
		pattern, ok := strings.CutSuffix(prop.Key, suffix)
		if !ok {
			continue
		}

		re, err := compile(pattern)
		if err != nil {
			return nil, err
		}
		if re.MatchString(id) {
			matches = append(matches, Match{Pattern: pattern, Key: prop.Key, Value: prop.Value})
		}
	}

	return matches, nil
}

func (r *Resolver) lookup(ctx context.Context, id, suffix string) (string, bool) {
	matches, err := r.Matches(ctx, id, suffix)
	if err != nil {
		r.log.Printf("policy lookup of %q for %q failed, treating as unset: %v", suffix, id, err)
		return "", false
	}
	if len(matches) == 0 {
		return "", false
	}

	if len(matches) > 1 {
		patterns := make([]string, len(matches))
		for i, m := range matches {
			patterns[i] = m.Pattern
		}
		r.log.Printf("policy: %d patterns match %q for %q, using first %q: %s",
			len(matches), id, suffix, matches[0].Pattern, strings.Join(patterns, ", "))
	}

	return matches[0].Value, true
}

// compile anchors pattern so it must match the whole identifier.
func compile(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		return nil, fmt.Errorf("%w: pattern %q: %v", ErrInvalidDocument, pattern, err)
	}
	return re, nil
}
