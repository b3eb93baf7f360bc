// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package mcpserver exposes the trust guard over the Model Context Protocol ([MCP]).
//
// Tools:
//   - inspect_certificate: decode certificates and summarize each one
//   - validate_trust: check a leaf against a trust store, rendered as tree, table or JSON
//   - resolve_policy: resolve a policy for an identifier and list every matching pattern
//   - lint_policy: report policy document problems
//
// Resources:
//   - policy://template: annotated policy document
//   - info://version: server version and supported formats
//
// The server speaks over stdio; see [Run]. [ServerBuilder] assembles a
// server for embedding or tests.
//
// [MCP]: https://modelcontextprotocol.io/docs/getting-started/intro
package mcpserver
