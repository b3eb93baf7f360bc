// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package policy_test

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/H0llyW00dzZ/tls-cert-trust-guard/src/internal/policy"
	"github.com/H0llyW00dzZ/tls-cert-trust-guard/src/logger"
)

func regexPolicy() policy.StaticSource {
	return policy.StaticSource{
		{Key: "te.*.enabled", Value: "true"},
		{Key: "te.*.keystore.path", Value: "/foo"},
		{Key: "te.*.keystore.password", Value: "test"},
	}
}

func TestResolve(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		source policy.Source
		id     string
		want   policy.Policy
	}{
		{
			name:   "pattern matches identifier",
			source: regexPolicy(),
			id:     "test",
			want: policy.Policy{
				Enabled:             true,
				KeyStorePath:        "/foo",
				HasKeyStorePath:     true,
				KeyStorePassword:    "test",
				HasKeyStorePassword: true,
			},
		},
		{
			name:   "pattern does not match identifier",
			source: regexPolicy(),
			id:     "other",
			want:   policy.Policy{},
		},
		{
			name:   "substring match is not enough",
			source: regexPolicy(),
			id:     "latest",
			want:   policy.Policy{},
		},
		{
			name: "exact key",
			source: policy.StaticSource{
				{Key: "test.enabled", Value: "true"},
				{Key: "test.keystore.path", Value: "/foo"},
				{Key: "test.keystore.password", Value: "test"},
			},
			id: "test",
			want: policy.Policy{
				Enabled: true, KeyStorePath: "/foo", HasKeyStorePath: true,
				KeyStorePassword: "test", HasKeyStorePassword: true,
			},
		},
		{
			name:   "nil static source",
			source: policy.StaticSource(nil),
			id:     "test",
			want:   policy.Policy{},
		},
		{
			name:   "nil source",
			source: nil,
			id:     "test",
			want:   policy.Policy{},
		},
		{
			name:   "empty identifier",
			source: policy.StaticSource{{Key: ".*.enabled", Value: "true"}},
			id:     "",
			want:   policy.Policy{Enabled: true},
		},
		{
			name: "enabled is case sensitive",
			source: policy.StaticSource{
				{Key: "bus.enabled", Value: "True"},
				{Key: "bus.keystore.path", Value: "/trust"},
			},
			id:   "bus",
			want: policy.Policy{KeyStorePath: "/trust", HasKeyStorePath: true},
		},
		{
			name: "empty values are present",
			source: policy.StaticSource{
				{Key: "bus.keystore.password", Value: ""},
			},
			id:   "bus",
			want: policy.Policy{HasKeyStorePassword: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := policy.NewResolver(tt.source)
			assert.Equal(t, tt.want, resolver.Resolve(ctx, tt.id))
		})
	}
}

func TestResolverFailsClosedOnSourceErrors(t *testing.T) {
	var out bytes.Buffer
	log := logger.NewJSONLogger(&out, "policy", false)

	broken := policy.SourceFunc(func(context.Context) (policy.Properties, error) {
		return nil, errors.New("config store offline")
	})
	resolver := policy.NewResolver(broken, policy.WithLogger(log))

	assert.False(t, resolver.IsEnabled(context.Background(), "test"))
	_, ok := resolver.KeyStorePath(context.Background(), "test")
	assert.False(t, ok)
	assert.Contains(t, out.String(), "config store offline")
}

func TestResolverInvalidPattern(t *testing.T) {
	resolver := policy.NewResolver(policy.StaticSource{
		{Key: "te(st.enabled", Value: "true"},
		{Key: "test.enabled", Value: "true"},
	})

	assert.False(t, resolver.IsEnabled(context.Background(), "test"))

	_, err := resolver.Matches(context.Background(), "test", policy.SuffixEnabled)
	assert.ErrorIs(t, err, policy.ErrInvalidDocument)
}

func TestResolverFirstMatchWins(t *testing.T) {
	var out bytes.Buffer
	log := logger.NewJSONLogger(&out, "policy", false)

	source := policy.StaticSource{
		{Key: "orders-.*.keystore.path", Value: "/trust/orders.pem"},
		{Key: ".*.keystore.path", Value: "/trust/default.pem"},
		{Key: ".*.enabled", Value: "true"},
	}
	resolver := policy.NewResolver(source, policy.WithLogger(log))
	ctx := context.Background()

	for range 20 {
		path, ok := resolver.KeyStorePath(ctx, "orders-eu")
		require.True(t, ok)
		assert.Equal(t, "/trust/orders.pem", path)
	}
	assert.Contains(t, out.String(), "2 patterns match")

	path, ok := resolver.KeyStorePath(ctx, "billing")
	require.True(t, ok)
	assert.Equal(t, "/trust/default.pem", path)

	matches, err := resolver.Matches(ctx, "orders-eu", policy.SuffixKeyStorePath)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "orders-.*", matches[0].Pattern)
	assert.Equal(t, ".*", matches[1].Pattern)
}

func TestResolverRereadsSource(t *testing.T) {
	var calls atomic.Int32
	var enabled atomic.Bool

	source := policy.SourceFunc(func(context.Context) (policy.Properties, error) {
		calls.Add(1)
		value := "false"
		if enabled.Load() {
			value = "true"
		}
		return policy.Properties{{Key: "bus-1.enabled", Value: value}}, nil
	})
	resolver := policy.NewResolver(source)
	ctx := context.Background()

	assert.False(t, resolver.IsEnabled(ctx, "bus-1"))
	enabled.Store(true)
	assert.True(t, resolver.IsEnabled(ctx, "bus-1"))
	assert.EqualValues(t, 2, calls.Load())

	resolver.Resolve(ctx, "bus-1")
	assert.EqualValues(t, 5, calls.Load())
}

func TestStaticSourceHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := regexPolicy().Properties(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, policy.NewResolver(regexPolicy()).IsEnabled(ctx, "test"))
}

func TestPropertiesGet(t *testing.T) {
	props := policy.Properties{{Key: "a.enabled", Value: "true"}, {Key: "a.enabled", Value: "false"}}

	v, ok := props.Get("a.enabled")
	assert.True(t, ok)
	assert.Equal(t, "true", v)

	_, ok = props.Get("b.enabled")
	assert.False(t, ok)
}
