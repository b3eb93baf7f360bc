// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/H0llyW00dzZ/tls-cert-trust-guard/src/logger"
)

var (
	// OperationPerformed reports whether a subcommand started running.
	OperationPerformed bool

	// OperationPerformedSuccessfully reports whether that subcommand completed.
	OperationPerformedSuccessfully bool
)

var (
	// ErrLeafRequired indicates that verify got neither a leaf file nor --remote.
	ErrLeafRequired = errors.New("cli: a leaf certificate file or --remote is required")

	// ErrNotTrusted indicates that verify completed with an untrusted verdict.
	ErrNotTrusted = errors.New("cli: certificate not trusted")

	// ErrPolicyIssues indicates that policy lint found problems.
	ErrPolicyIssues = errors.New("cli: policy document has issues")
)

// Execute runs the root command with the process arguments.
//
// Parameters:
//   - ctx: Context for cancellation, usually bound to SIGINT/SIGTERM
//   - version: Version reported by --version
//   - log: Logger for progress and diagnostics
//
// Returns:
//   - error: Error from the executed subcommand
func Execute(ctx context.Context, version string, log logger.Logger) error {
	cmd := NewRootCommand(version, log, os.Stdout)
	cmd.SetArgs(os.Args[1:])
	return cmd.ExecuteContext(ctx)
}

// NewRootCommand builds the command tree writing results to out.
func NewRootCommand(version string, log logger.Logger, out io.Writer) *cobra.Command {
	log = logger.OrNop(log)

	root := &cobra.Command{
		Use:           "tls-cert-trust-guard",
		Short:         "Client certificate trust guard",
		Long:          "Validate client certificates against local trust stores and inspect identifier-keyed trust policies.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			OperationPerformed = true
			OperationPerformedSuccessfully = false
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			OperationPerformedSuccessfully = true
		},
	}
	root.SetOut(out)

	root.AddCommand(
		newVerifyCommand(log),
		newPolicyCommand(log),
		newServeCommand(log),
	)
	return root
}
