// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"crypto/x509"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/H0llyW00dzZ/tls-cert-trust-guard/src/internal/keystore"
	x509certs "github.com/H0llyW00dzZ/tls-cert-trust-guard/src/internal/x509/certs"
	x509chain "github.com/H0llyW00dzZ/tls-cert-trust-guard/src/internal/x509/chain"
	"github.com/H0llyW00dzZ/tls-cert-trust-guard/src/logger"
)

type verifyOptions struct {
	trustStore string
	password   string
	remote     string
	format     string
	timeout    time.Duration
}

func newVerifyCommand(log logger.Logger) *cobra.Command {
	opts := &verifyOptions{}

	cmd := &cobra.Command{
		Use:   "verify [LEAF_FILE]",
		Short: "Check whether a certificate chains to a trust store",
		Long: `Check whether the first certificate of LEAF_FILE, or the certificate
presented by --remote, chains to a self-signed root of the trust store.

The trust store may be a PEM bundle, DER, PKCS#7 or PKCS#12 file, or a
directory of such files. Revocation is never checked.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd, args, opts, log)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.trustStore, "truststore", "t", "", "trust store file or directory [required]")
	flags.StringVarP(&opts.password, "password", "p", "", "trust store password (PKCS#12)")
	flags.StringVarP(&opts.remote, "remote", "r", "", "fetch the leaf from a TLS endpoint (host:port)")
	flags.StringVarP(&opts.format, "format", "f", "tree", "output format: tree, table or json")
	flags.DurationVar(&opts.timeout, "timeout", 10*time.Second, "timeout for --remote and trust store loading")
	_ = cmd.MarkFlagRequired("truststore")

	return cmd
}

func runVerify(cmd *cobra.Command, args []string, opts *verifyOptions, log logger.Logger) error {
	switch opts.format {
	case "tree", "table", "json":
	default:
		return fmt.Errorf("cli: unknown format %q", opts.format)
	}

	leaf, err := loadLeaf(cmd, args, opts)
	if err != nil {
		return err
	}

	anchors, err := keystore.NewFileLoader().Load(cmd.Context(), opts.trustStore, opts.password)
	if err != nil {
		return err
	}
	log.Printf("Loaded %d trust anchors from %s", len(anchors), opts.trustStore)

	outcome, err := x509chain.New().Validate(leaf, anchors)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch opts.format {
	case "json":
		data, err := outcome.ToJSON()
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
	case "table":
		fmt.Fprint(out, outcome.RenderTable())
	default:
		fmt.Fprint(out, outcome.RenderASCIITree())
	}

	if !outcome.Trusted {
		return fmt.Errorf("%w: %s", ErrNotTrusted, outcome.Reason)
	}
	return nil
}

func loadLeaf(cmd *cobra.Command, args []string, opts *verifyOptions) (*x509.Certificate, error) {
	if opts.remote != "" {
		host, portStr, err := net.SplitHostPort(opts.remote)
		if err != nil {
			return nil, fmt.Errorf("cli: invalid --remote %q: %w", opts.remote, err)
		}
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("cli: invalid --remote port %q: %w", portStr, err)
		}

		certs, err := x509chain.FetchPeerCertificates(cmd.Context(), host, port, opts.timeout)
		if err != nil {
			return nil, err
		}
		return certs[0], nil
	}

	if len(args) == 0 {
		return nil, ErrLeafRequired
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("cli: reading leaf: %w", err)
	}

	// leaf files often carry the whole presented chain; the sender's
	// certificate comes first
	certs, err := x509certs.New().DecodeKeyStore(data, "")
	if err != nil {
		return nil, fmt.Errorf("cli: decoding leaf: %w", err)
	}
	return certs[0], nil
}
