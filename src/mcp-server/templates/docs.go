// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package templates provides embedded filesystem access for MCP server template files.
//
// It embeds the annotated trust guard policy document served as the
// policy://template resource and the markdown instructions the server
// hands to clients on initialize. [MagicEmbed] is the default [EmbedFS].
//
// Example usage:
//
//	import "github.com/H0llyW00dzZ/tls-cert-trust-guard/src/mcp-server/templates"
//
//	entries, err := templates.MagicEmbed.ReadDir(".")
//	if err != nil {
//		return fmt.Errorf("failed to list templates: %w", err)
//	}
package templates
