// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package templates_test

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/H0llyW00dzZ/tls-cert-trust-guard/src/internal/policy"
	"github.com/H0llyW00dzZ/tls-cert-trust-guard/src/mcp-server/templates"
)

func TestMagicEmbed_ReadFile(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		wantErr  bool
	}{
		{name: "policy template", filename: templates.PolicyTemplate},
		{name: "instructions", filename: templates.Instructions},
		{name: "missing file", filename: "non-existent.md", wantErr: true},
		{name: "escaping path", filename: "../invalid.md", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := templates.MagicEmbed.ReadFile(tt.filename)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, data)
		})
	}
}

func TestMagicEmbed_ReadDir(t *testing.T) {
	entries, err := templates.MagicEmbed.ReadDir(".")
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Contains(t, names, templates.PolicyTemplate)
	assert.Contains(t, names, templates.Instructions)
}

func TestMagicEmbed_Open(t *testing.T) {
	f, err := templates.MagicEmbed.Open(templates.Instructions)
	require.NoError(t, err)
	defer f.Close()

	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Contains(t, string(data), "{{TOOLS}}")
}

func TestPolicyTemplateLintsClean(t *testing.T) {
	data, err := templates.MagicEmbed.ReadFile(templates.PolicyTemplate)
	require.NoError(t, err)

	props, err := policy.Parse(data, policy.FormatYAML)
	require.NoError(t, err)
	assert.Len(t, props, 6)

	issues, err := policy.Lint(props)
	require.NoError(t, err)
	assert.Empty(t, issues)
}
