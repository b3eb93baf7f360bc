// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/H0llyW00dzZ/tls-cert-trust-guard/src/internal/keystore"
	"github.com/H0llyW00dzZ/tls-cert-trust-guard/src/internal/policy"
	x509certs "github.com/H0llyW00dzZ/tls-cert-trust-guard/src/internal/x509/certs"
	x509chain "github.com/H0llyW00dzZ/tls-cert-trust-guard/src/internal/x509/chain"
	"github.com/H0llyW00dzZ/tls-cert-trust-guard/src/logger"
)

const maskedSecret = "********"

// errNotPathOrBase64 is returned when a tool input is neither.
var errNotPathOrBase64 = errors.New("not a valid file path or base64 data")

// readInput returns the contents of the file named by input, or input
// decoded as standard base64 when no such file exists.
func readInput(input string) ([]byte, error) {
	if data, err := os.ReadFile(input); err == nil {
		return data, nil
	}
	if decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(input)); err == nil {
		return decoded, nil
	}
	return nil, errNotPathOrBase64
}

// loadTrustStore loads anchors from a file or directory path through
// [keystore.FileLoader], or decodes input as base64 keystore data.
func loadTrustStore(ctx context.Context, input, password string, timeout time.Duration) ([]*x509.Certificate, error) {
	if _, err := os.Stat(input); err == nil {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return keystore.NewFileLoader().Load(ctx, input, password)
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(input))
	if err != nil {
		return nil, errNotPathOrBase64
	}
	return x509certs.New().DecodeKeyStore(data, password)
}

// handleInspectCertificate decodes every certificate in the input and
// summarizes each one as JSON.
func handleInspectCertificate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	certInput, err := request.RequireString("certificate")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("certificate parameter required: %v", err)), nil
	}
	password := request.GetString("password", "")

	data, err := readInput(certInput)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read certificate: %v", err)), nil
	}

	certs, err := x509certs.New().DecodeKeyStore(data, password)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to decode certificate: %v", err)), nil
	}

	type summary struct {
		Subject    string    `json:"subject"`
		Issuer     string    `json:"issuer"`
		NotBefore  time.Time `json:"notBefore"`
		NotAfter   time.Time `json:"notAfter"`
		IsCA       bool      `json:"isCA"`
		SelfSigned bool      `json:"selfSigned"`
	}
	out := make([]summary, 0, len(certs))
	for _, cert := range certs {
		out = append(out, summary{
			Subject:    cert.Subject.String(),
			Issuer:     cert.Issuer.String(),
			NotBefore:  cert.NotBefore.UTC(),
			NotAfter:   cert.NotAfter.UTC(),
			IsCA:       cert.IsCA,
			SelfSigned: x509chain.IsSelfSigned(cert),
		})
	}

	jsonData, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal certificates: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

// handleValidateTrust checks the first certificate of the input against a
// trust store and renders the outcome.
//
// An untrusted leaf is a successful call whose output carries the verdict;
// only unusable inputs produce a tool error.
func handleValidateTrust(ctx context.Context, request mcp.CallToolRequest, config *Config) (*mcp.CallToolResult, error) {
	certInput, err := request.RequireString("certificate")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("certificate parameter required: %v", err)), nil
	}
	storeInput, err := request.RequireString("truststore")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("truststore parameter required: %v", err)), nil
	}
	password := request.GetString("password", "")
	format := request.GetString("format", config.Defaults.Format)

	leafData, err := readInput(certInput)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read certificate: %v", err)), nil
	}
	certs, err := x509certs.New().DecodeKeyStore(leafData, "")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to decode certificate: %v", err)), nil
	}

	anchors, err := loadTrustStore(ctx, storeInput, password, config.LoadTimeout())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load trust store: %v", err)), nil
	}

	outcome, err := x509chain.New().Validate(certs[0], anchors)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("validation failed: %v", err)), nil
	}

	switch format {
	case "json":
		data, err := outcome.ToJSON()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal outcome: %v", err)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	case "table":
		return mcp.NewToolResultText(outcome.RenderTable()), nil
	case "tree":
		return mcp.NewToolResultText(outcome.RenderASCIITree()), nil
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown format %q", format)), nil
	}
}

// policyFile returns the config argument or the server default.
func policyFile(request mcp.CallToolRequest, config *Config) (policy.FileSource, error) {
	path := request.GetString("config", config.Defaults.PolicyFile)
	if path == "" {
		return policy.FileSource{}, errors.New("config parameter required: no default policy file configured")
	}
	return policy.FileSource{Path: path}, nil
}

type fieldMatch struct {
	Pattern  string `json:"pattern"`
	Value    string `json:"value"`
	Selected bool   `json:"selected"`
}

type resolvedPolicy struct {
	Identifier string `json:"identifier"`
	PolicyFile string `json:"policyFile"`
	policy.Policy
	Password string                  `json:"keyStorePassword,omitempty"`
	Matches  map[string][]fieldMatch `json:"matches"`
}

// handleResolvePolicy resolves the policy for an identifier and lists
// every pattern that matched each field.
//
// An unreadable policy file is a tool error rather than a disabled
// policy so that a mistyped path is not mistaken for an opt out.
func handleResolvePolicy(ctx context.Context, request mcp.CallToolRequest, config *Config, log logger.Logger) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("identifier")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("identifier parameter required: %v", err)), nil
	}
	showSecret := request.GetBool("show_secret", false)

	source, err := policyFile(request, config)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, err := source.Properties(ctx); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read policy file: %v", err)), nil
	}

	resolver := policy.NewResolver(source, policy.WithLogger(log))
	out := resolvedPolicy{
		Identifier: id,
		PolicyFile: source.Path,
		Policy:     resolver.Resolve(ctx, id),
		Matches:    map[string][]fieldMatch{},
	}
	if out.HasKeyStorePassword {
		out.Password = maskedSecret
		if showSecret {
			out.Password = out.KeyStorePassword
		}
	}

	for _, suffix := range []string{policy.SuffixEnabled, policy.SuffixKeyStorePath, policy.SuffixKeyStorePassword} {
		field := strings.TrimPrefix(suffix, ".")
		matches, err := resolver.Matches(ctx, id, suffix)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to match %s: %v", field, err)), nil
		}
		for i, m := range matches {
			value := m.Value
			if suffix == policy.SuffixKeyStorePassword && !showSecret {
				value = maskedSecret
			}
			out.Matches[field] = append(out.Matches[field], fieldMatch{Pattern: m.Pattern, Value: value, Selected: i == 0})
		}
	}

	jsonData, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal policy: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

// handleLintPolicy reports every issue [policy.Lint] finds.
func handleLintPolicy(ctx context.Context, request mcp.CallToolRequest, config *Config) (*mcp.CallToolResult, error) {
	source, err := policyFile(request, config)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	props, err := source.Properties(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read policy file: %v", err)), nil
	}

	issues, err := policy.Lint(props)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to lint policy: %v", err)), nil
	}
	if len(issues) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("%d properties, no issues", len(props))), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d issues in %d properties:\n", len(issues), len(props))
	for _, issue := range issues {
		fmt.Fprintf(&b, "- %s\n", issue)
	}
	return mcp.NewToolResultText(b.String()), nil
}
