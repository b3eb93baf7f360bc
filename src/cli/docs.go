// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package cli provides the command-line interface for the TLS certificate trust guard.
// It implements a Cobra-based CLI with three command groups:
//   - verify: validate a leaf certificate, from a file or a remote endpoint, against a
//     local trust store and render the verdict as an ASCII tree, markdown table or JSON.
//   - policy: resolve, explain and lint identifier-keyed trust policy documents.
//   - serve: run an HTTPS endpoint guarded by the trust policy, with Prometheus metrics.
//
// The package honours context cancellation and integrates with the logger package
// for diagnostics.
package cli
