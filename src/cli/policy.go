// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/H0llyW00dzZ/tls-cert-trust-guard/src/internal/policy"
	"github.com/H0llyW00dzZ/tls-cert-trust-guard/src/logger"
)

const redacted = "********"

func newPolicyCommand(log logger.Logger) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Inspect identifier-keyed trust policies",
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "policy document (.yaml, .json, .toml, .cfg) [required]")
	_ = cmd.MarkPersistentFlagRequired("config")

	source := func() policy.FileSource { return policy.FileSource{Path: configPath} }

	cmd.AddCommand(
		newPolicyResolveCommand(source, log),
		newPolicyExplainCommand(source),
		newPolicyLintCommand(source),
	)
	return cmd
}

func newPolicyResolveCommand(source func() policy.FileSource, log logger.Logger) *cobra.Command {
	var (
		showSecret bool
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "resolve IDENTIFIER",
		Short: "Show the policy an identifier resolves to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := source()
			// resolving never fails, so surface an unreadable document up front
			if _, err := src.Properties(cmd.Context()); err != nil {
				return err
			}

			p := policy.NewResolver(src, policy.WithLogger(log)).Resolve(cmd.Context(), args[0])
			return writePolicy(cmd.OutOrStdout(), args[0], p, showSecret, asJSON)
		},
	}
	cmd.Flags().BoolVar(&showSecret, "show-secret", false, "print the keystore password instead of masking it")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func writePolicy(out io.Writer, id string, p policy.Policy, showSecret, asJSON bool) error {
	password := "(absent)"
	if p.HasKeyStorePassword {
		password = redacted
		if showSecret {
			password = p.KeyStorePassword
		}
	}

	if asJSON {
		doc := struct {
			Identifier string `json:"identifier"`
			policy.Policy
			Password string `json:"keyStorePassword,omitempty"`
		}{Identifier: id, Policy: p}
		if p.HasKeyStorePassword {
			doc.Password = password
		}
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}

	path := "(absent)"
	if p.HasKeyStorePath {
		path = p.KeyStorePath
	}

	_, err := fmt.Fprintf(out, "identifier:        %s\nenabled:           %t\nkeystore.path:     %s\nkeystore.password: %s\n",
		id, p.Enabled, path, password)
	return err
}

func newPolicyExplainCommand(source func() policy.FileSource) *cobra.Command {
	return &cobra.Command{
		Use:   "explain IDENTIFIER",
		Short: "List every pattern matching an identifier, per field",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver := policy.NewResolver(source())

			var rows [][]string
			for _, suffix := range []string{policy.SuffixEnabled, policy.SuffixKeyStorePath, policy.SuffixKeyStorePassword} {
				matches, err := resolver.Matches(cmd.Context(), args[0], suffix)
				if err != nil {
					return err
				}
				for i, m := range matches {
					value := m.Value
					if suffix == policy.SuffixKeyStorePassword {
						value = redacted
					}
					rows = append(rows, []string{
						strings.TrimPrefix(suffix, "."),
						m.Pattern,
						value,
						fmt.Sprintf("%t", i == 0),
					})
				}
			}

			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintf(out, "No pattern matches %q; validation is disabled.\n", args[0])
				return nil
			}

			table := tablewriter.NewTable(out,
				tablewriter.WithRenderer(renderer.NewMarkdown(tw.Rendition{Streaming: true})),
			)
			table.Header([]string{"Field", "Pattern", "Value", "Selected"})
			table.Bulk(rows)
			table.Render()
			return nil
		},
	}
}

func newPolicyLintCommand(source func() policy.FileSource) *cobra.Command {
	return &cobra.Command{
		Use:   "lint",
		Short: "Check a policy document for keys and values the resolver would misread",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			props, err := source().Properties(cmd.Context())
			if err != nil {
				return err
			}

			issues, err := policy.Lint(props)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(issues) == 0 {
				fmt.Fprintf(out, "%d properties, no issues\n", len(props))
				return nil
			}
			for _, issue := range issues {
				fmt.Fprintf(out, "- %s\n", issue)
			}
			return fmt.Errorf("%w: %d found", ErrPolicyIssues, len(issues))
		},
	}
}
