// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package policy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/H0llyW00dzZ/tls-cert-trust-guard/src/internal/policy"
)

func TestLint(t *testing.T) {
	tests := []struct {
		name     string
		props    policy.Properties
		testFunc func(t *testing.T, issues []policy.Issue)
	}{
		{
			name:  "clean document",
			props: wantOrdered,
			testFunc: func(t *testing.T, issues []policy.Issue) {
				assert.Empty(t, issues)
			},
		},
		{
			name:  "unknown key",
			props: policy.Properties{{Key: "orders.keystore.type", Value: "jks"}},
			testFunc: func(t *testing.T, issues []policy.Issue) {
				require.Len(t, issues, 1)
				assert.Contains(t, issues[0].Message, "orders.keystore.type")
			},
		},
		{
			name:  "enabled value not literal true or false",
			props: policy.Properties{{Key: "orders.enabled", Value: "True"}},
			testFunc: func(t *testing.T, issues []policy.Issue) {
				require.Len(t, issues, 1)
				assert.Equal(t, "orders.enabled", issues[0].Key)
			},
		},
		{
			name: "invalid pattern",
			props: policy.Properties{
				{Key: "orders(.enabled", Value: "false"},
			},
			testFunc: func(t *testing.T, issues []policy.Issue) {
				require.Len(t, issues, 1)
				assert.Contains(t, issues[0].Message, "orders(")
			},
		},
		{
			name: "enabled without keystore path",
			props: policy.Properties{
				{Key: "orders.enabled", Value: "true"},
			},
			testFunc: func(t *testing.T, issues []policy.Issue) {
				require.Len(t, issues, 1)
				assert.Contains(t, issues[0].Message, "orders.keystore.path")
			},
		},
		{
			name: "duplicate key",
			props: policy.Properties{
				{Key: "orders.keystore.path", Value: "/a"},
				{Key: "orders.keystore.path", Value: "/b"},
			},
			testFunc: func(t *testing.T, issues []policy.Issue) {
				require.Len(t, issues, 1)
				assert.Contains(t, issues[0].Message, "duplicate")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues, err := policy.Lint(tt.props)
			require.NoError(t, err)
			tt.testFunc(t, issues)
		})
	}
}

func TestValidateDocument(t *testing.T) {
	require.NoError(t, policy.ValidateDocument(wantOrdered))

	err := policy.ValidateDocument(policy.Properties{{Key: "orders.enabled", Value: "yes"}})
	assert.ErrorIs(t, err, policy.ErrInvalidDocument)
	assert.Contains(t, err.Error(), "orders.enabled: ")
}
