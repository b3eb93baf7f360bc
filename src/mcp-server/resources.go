// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/H0llyW00dzZ/tls-cert-trust-guard/src/mcp-server/templates"
)

const (
	policyTemplateURI = "policy://template"
	versionInfoURI    = "info://version"
)

// createResources returns the static resources this server exposes.
func createResources() []server.ServerResource {
	return []server.ServerResource{
		{
			Resource: mcp.NewResource(
				policyTemplateURI,
				"Policy Template",
				mcp.WithResourceDescription("Annotated trust guard policy document with pattern keyed entries"),
				mcp.WithMIMEType("application/yaml"),
			),
			Handler: handlePolicyTemplateResource,
		},
		{
			Resource: mcp.NewResource(
				versionInfoURI,
				"Version Information",
				mcp.WithResourceDescription("Server version and supported formats"),
				mcp.WithMIMEType("application/json"),
			),
			Handler: handleVersionResource,
		},
	}
}

// handlePolicyTemplateResource serves the embedded policy template.
func handlePolicyTemplateResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := templates.MagicEmbed.ReadFile(templates.PolicyTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy template: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      policyTemplateURI,
			MIMEType: "application/yaml",
			Text:     string(data),
		},
	}, nil
}

// handleVersionResource reports the server name, version and the formats
// the tools accept.
func handleVersionResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	info := map[string]any{
		"name":    serverName,
		"version": GetVersion(),
		"supportedFormats": map[string][]string{
			"trustStore": {"pem", "der", "pkcs7", "pkcs12"},
			"policy":     {"yaml", "json", "toml", "properties"},
			"output":     {"tree", "table", "json"},
		},
	}

	jsonData, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal version info: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      versionInfoURI,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}
