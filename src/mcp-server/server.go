// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/mark3labs/mcp-go/server"

	"github.com/H0llyW00dzZ/tls-cert-trust-guard/src/logger"
	"github.com/H0llyW00dzZ/tls-cert-trust-guard/src/mcp-server/templates"
	"github.com/H0llyW00dzZ/tls-cert-trust-guard/src/version"
)

var appVersion atomic.Value

func init() { appVersion.Store(version.Version) }

// GetVersion returns the version reported to clients. It is the version
// package default until [Run] sets it.
func GetVersion() string {
	return appVersion.Load().(string)
}

// loadInstructions renders the instructions template with one line per tool.
func loadInstructions(tools []ToolDefinition, toolsWithConfig []ToolDefinitionWithConfig) (string, error) {
	tmpl, err := templates.MagicEmbed.ReadFile(templates.Instructions)
	if err != nil {
		return "", fmt.Errorf("failed to load instructions template: %w", err)
	}

	var lines []string
	for _, t := range tools {
		lines = append(lines, fmt.Sprintf("- `%s`: %s", t.Tool.Name, t.Tool.Description))
	}
	for _, t := range toolsWithConfig {
		lines = append(lines, fmt.Sprintf("- `%s`: %s", t.Tool.Name, t.Tool.Description))
	}

	return strings.ReplaceAll(string(tmpl), "{{TOOLS}}", strings.Join(lines, "\n")), nil
}

// Run starts the MCP server on stdin and stdout.
//
// Parameters:
//   - version: Version string to report to clients
//
// Returns:
//   - error: Server startup or runtime error, or graceful shutdown signal
//
// Configuration is read from the file named by MCP_TRUST_GUARD_CONFIG_FILE.
// Logs go to stderr as JSON since stdout carries the protocol.
func Run(version string) error {
	appVersion.Store(version)

	config, err := loadConfig(os.Getenv(ConfigEnv))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.NewJSONLogger(os.Stderr, "mcp-server", false)

	tools, toolsWithConfig := createTools(log)
	instructions, err := loadInstructions(tools, toolsWithConfig)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := NewServerBuilder().
		WithConfig(config).
		WithVersion(version).
		WithLogger(log).
		WithTools(tools...).
		WithToolsWithConfig(toolsWithConfig...).
		WithResources(createResources()...).
		WithInstructions(instructions).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build server: %w", err)
	}

	stdioServer := server.NewStdioServer(s)

	errChan := make(chan error, 1)
	go func() {
		errChan <- stdioServer.Listen(ctx, os.Stdin, os.Stdout)
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		return fmt.Errorf("server shutdown: %w", ctx.Err())
	}
}
