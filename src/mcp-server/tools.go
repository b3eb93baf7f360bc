// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/H0llyW00dzZ/tls-cert-trust-guard/src/logger"
)

// createTools creates and returns all MCP tool definitions with their handlers.
//
// The function defines the following tools:
//   - inspect_certificate: Decodes certificates and summarizes each one
//   - validate_trust: Checks whether a certificate chains to a trust store
//   - resolve_policy: Resolves the trust guard policy for an identifier
//   - lint_policy: Reports problems in a policy document
//
// Lookup failures during resolve_policy are reported to log.
func createTools(log logger.Logger) ([]ToolDefinition, []ToolDefinitionWithConfig) {
	tools := []ToolDefinition{
		{
			Tool: mcp.NewTool("inspect_certificate",
				mcp.WithDescription("Decode certificates and report subject, issuer, validity and whether each is self-signed"),
				mcp.WithString("certificate",
					mcp.Required(),
					mcp.Description("Certificate file path or base64-encoded PEM, DER, PKCS#7 or PKCS#12 data"),
				),
				mcp.WithString("password",
					mcp.Description("Password for PKCS#12 data"),
				),
			),
			Handler: handleInspectCertificate,
		},
	}

	toolsWithConfig := []ToolDefinitionWithConfig{
		{
			Tool: mcp.NewTool("validate_trust",
				mcp.WithDescription("Check whether a certificate chains to a self-signed root of a trust store, without revocation checks"),
				mcp.WithString("certificate",
					mcp.Required(),
					mcp.Description("Leaf certificate file path or base64-encoded certificate data; the first certificate is the leaf"),
				),
				mcp.WithString("truststore",
					mcp.Required(),
					mcp.Description("Trust store file or directory path, or base64-encoded PEM, DER, PKCS#7 or PKCS#12 data"),
				),
				mcp.WithString("password",
					mcp.Description("Trust store password for PKCS#12 data"),
				),
				mcp.WithString("format",
					mcp.Description("Output format: 'tree', 'table' or 'json' (default from server config)"),
					mcp.Enum("tree", "table", "json"),
				),
			),
			Handler: handleValidateTrust,
		},
		{
			Tool: mcp.NewTool("resolve_policy",
				mcp.WithDescription("Resolve whether client certificate validation is enabled for an identifier and which trust store applies"),
				mcp.WithString("identifier",
					mcp.Required(),
					mcp.Description("Connection or endpoint identifier matched against policy patterns"),
				),
				mcp.WithString("config",
					mcp.Description("Policy file path (.yaml, .json, .toml, .properties); defaults to the server's policy file"),
				),
				mcp.WithBoolean("show_secret",
					mcp.Description("Include the keystore password in the output (default: false)"),
					mcp.DefaultBool(false),
				),
			),
			Handler: func(ctx context.Context, request mcp.CallToolRequest, config *Config) (*mcp.CallToolResult, error) {
				return handleResolvePolicy(ctx, request, config, log)
			},
		},
		{
			Tool: mcp.NewTool("lint_policy",
				mcp.WithDescription("Report keys, values and patterns in a policy document that the resolver would ignore or misread"),
				mcp.WithString("config",
					mcp.Description("Policy file path; defaults to the server's policy file"),
				),
			),
			Handler: handleLintPolicy,
		},
	}

	return tools, toolsWithConfig
}
