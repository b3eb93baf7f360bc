// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/H0llyW00dzZ/tls-cert-trust-guard/src/cli"
)

const policyYAML = `"te.*":
  enabled: "true"
  keystore:
    path: /foo
    password: test
".*.keystore.path": /default
`

func TestPolicyCommands(t *testing.T) {
	dir := t.TempDir()
	config := writeFile(t, dir, "policy.yaml", []byte(policyYAML))
	broken := writeFile(t, dir, "broken.cfg", []byte("orders.enabled = yes\n"))

	tests := []struct {
		name     string
		args     []string
		wantErr  error
		testFunc func(t *testing.T, out string, err error)
	}{
		{
			name: "resolve masks password",
			args: []string{"policy", "resolve", "test", "--config", config},
			testFunc: func(t *testing.T, out string, err error) {
				require.NoError(t, err)
				assert.Contains(t, out, "enabled:           true")
				assert.Contains(t, out, "keystore.path:     /foo")
				assert.Contains(t, out, "keystore.password: ********")
			},
		},
		{
			name: "resolve shows secret on request",
			args: []string{"policy", "resolve", "test", "-c", config, "--show-secret"},
			testFunc: func(t *testing.T, out string, err error) {
				require.NoError(t, err)
				assert.Contains(t, out, "keystore.password: test")
			},
		},
		{
			name: "resolve unmatched identifier",
			args: []string{"policy", "resolve", "other", "-c", config},
			testFunc: func(t *testing.T, out string, err error) {
				require.NoError(t, err)
				assert.Contains(t, out, "enabled:           false")
				assert.Contains(t, out, "keystore.path:     /default")
				assert.Contains(t, out, "keystore.password: (absent)")
			},
		},
		{
			name: "resolve as JSON",
			args: []string{"policy", "resolve", "test", "-c", config, "--json"},
			testFunc: func(t *testing.T, out string, err error) {
				require.NoError(t, err)
				var doc map[string]any
				require.NoError(t, json.Unmarshal([]byte(out), &doc))
				assert.Equal(t, "test", doc["identifier"])
				assert.Equal(t, true, doc["enabled"])
				assert.Equal(t, "/foo", doc["keyStorePath"])
				assert.Equal(t, "********", doc["keyStorePassword"])
			},
		},
		{
			name: "resolve missing document",
			args: []string{"policy", "resolve", "test", "-c", filepath.Join(dir, "missing.yaml")},
			testFunc: func(t *testing.T, out string, err error) {
				assert.Error(t, err)
			},
		},
		{
			name: "explain lists every match",
			args: []string{"policy", "explain", "test", "-c", config},
			testFunc: func(t *testing.T, out string, err error) {
				require.NoError(t, err)
				assert.Contains(t, out, "te.*")
				assert.Contains(t, out, "/foo")
				assert.Contains(t, out, "/default")
				assert.NotContains(t, out, "| test")
			},
		},
		{
			name: "explain without matches",
			args: []string{"policy", "explain", "zzz", "-c", writeFile(t, dir, "only.cfg", []byte("orders.enabled=true\n"))},
			testFunc: func(t *testing.T, out string, err error) {
				require.NoError(t, err)
				assert.Contains(t, out, "validation is disabled")
			},
		},
		{
			name: "lint clean document",
			args: []string{"policy", "lint", "-c", config},
			testFunc: func(t *testing.T, out string, err error) {
				require.NoError(t, err)
				assert.Contains(t, out, "4 properties, no issues")
			},
		},
		{
			name: "lint reports issues",
			args: []string{"policy", "lint", "-c", broken},
			testFunc: func(t *testing.T, out string, err error) {
				assert.ErrorIs(t, err, cli.ErrPolicyIssues)
				assert.Contains(t, out, "orders.enabled")
			},
		},
		{
			name: "config flag is required",
			args: []string{"policy", "lint"},
			testFunc: func(t *testing.T, out string, err error) {
				assert.Error(t, err)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.args...)
			tt.testFunc(t, out, err)
		})
	}
}
