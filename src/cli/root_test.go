// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/H0llyW00dzZ/tls-cert-trust-guard/src/cli"
	"github.com/H0llyW00dzZ/tls-cert-trust-guard/src/internal/helper/pkitest"
)

const version = "1.3.3.7-testing"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := cli.NewRootCommand(version, nil, &out)
	cmd.SetArgs(args)
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestVerify(t *testing.T) {
	root := pkitest.Root(t, "CLI Root")
	inter := pkitest.Intermediate(t, "CLI Intermediate", root)
	leaf := pkitest.Leaf(t, "cli.example.com", inter)
	stranger := pkitest.Leaf(t, "stranger.example.com", pkitest.Root(t, "Stranger"))

	dir := t.TempDir()
	store := writeFile(t, dir, "trust.pem", pkitest.Bundle(inter, root))
	leafFile := writeFile(t, dir, "leaf.pem", pkitest.Bundle(leaf, inter))
	strangerFile := writeFile(t, dir, "stranger.pem", stranger.PEM())

	tests := []struct {
		name     string
		args     []string
		wantErr  error
		testFunc func(t *testing.T, out string)
	}{
		{
			name: "trusted leaf as tree",
			args: []string{"verify", leafFile, "--truststore", store},
			testFunc: func(t *testing.T, out string) {
				assert.True(t, strings.HasPrefix(out, "trusted\n"))
				assert.Contains(t, out, "CLI Root (Root CA Trust Anchor)")
			},
		},
		{
			name: "trusted leaf as table",
			args: []string{"verify", leafFile, "-t", store, "-f", "table"},
			testFunc: func(t *testing.T, out string) {
				assert.Contains(t, out, "CLI Intermediate")
			},
		},
		{
			name: "trusted leaf as JSON",
			args: []string{"verify", leafFile, "-t", store, "--format", "json"},
			testFunc: func(t *testing.T, out string) {
				var doc struct {
					Trusted      bool              `json:"trusted"`
					Certificates []json.RawMessage `json:"certificates"`
				}
				require.NoError(t, json.Unmarshal([]byte(out), &doc))
				assert.True(t, doc.Trusted)
				assert.Len(t, doc.Certificates, 3)
			},
		},
		{
			name:    "untrusted leaf",
			args:    []string{"verify", strangerFile, "-t", store},
			wantErr: cli.ErrNotTrusted,
			testFunc: func(t *testing.T, out string) {
				assert.Contains(t, out, "untrusted: no matching issuer")
			},
		},
		{
			name:    "no leaf",
			args:    []string{"verify", "-t", store},
			wantErr: cli.ErrLeafRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.args...)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			if tt.testFunc != nil {
				tt.testFunc(t, out)
			}
		})
	}
}

func TestVerifyErrors(t *testing.T) {
	root := pkitest.Root(t, "Err Root")
	dir := t.TempDir()
	store := writeFile(t, dir, "trust.pem", root.PEM())
	leaf := writeFile(t, dir, "leaf.pem", pkitest.Leaf(t, "err.example.com", root).PEM())

	for name, args := range map[string][]string{
		"missing truststore flag": {"verify", leaf},
		"unknown format":          {"verify", leaf, "-t", store, "-f", "yaml"},
		"missing leaf file":       {"verify", filepath.Join(dir, "nope.pem"), "-t", store},
		"missing truststore":      {"verify", leaf, "-t", filepath.Join(dir, "nope.pem")},
		"invalid remote":          {"verify", "-t", store, "--remote", "no-port"},
		"garbage leaf":            {"verify", writeFile(t, dir, "garbage.pem", []byte("junk")), "-t", store},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := run(t, args...)
			assert.Error(t, err)
		})
	}
}

func TestVerifyRemote(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	store := writeFile(t, t.TempDir(), "server.pem",
		pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: srv.Certificate().Raw}))

	out, err := run(t, "verify", "--remote", strings.TrimPrefix(srv.URL, "https://"), "-t", store)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "trusted\n"))
}

func TestOperationPerformed(t *testing.T) {
	root := pkitest.Root(t, "Op Root")
	dir := t.TempDir()
	store := writeFile(t, dir, "trust.pem", root.PEM())
	leaf := writeFile(t, dir, "leaf.pem", pkitest.Leaf(t, "op.example.com", root).PEM())

	_, err := run(t, "verify", leaf, "-t", store)
	require.NoError(t, err)
	assert.True(t, cli.OperationPerformed)
	assert.True(t, cli.OperationPerformedSuccessfully)

	_, err = run(t, "verify", "-t", store)
	require.Error(t, err)
	assert.True(t, cli.OperationPerformed)
	assert.False(t, cli.OperationPerformedSuccessfully)
}

func TestVersion(t *testing.T) {
	out, err := run(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, version)
}

func TestServeOptionsValidate(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "x.pem", []byte("x"))

	valid := cli.ServeOptions{
		Config: file, Cert: file, Key: file,
		Listen: "127.0.0.1:8443", ID: "orders",
		LoadTimeout: time.Second, ShutdownGrace: time.Second,
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(o *cli.ServeOptions)
		field  string
	}{
		{name: "missing config", mutate: func(o *cli.ServeOptions) { o.Config = "" }, field: "Config"},
		{name: "config not a file", mutate: func(o *cli.ServeOptions) { o.Config = dir }, field: "Config"},
		{name: "bad listen", mutate: func(o *cli.ServeOptions) { o.Listen = "8443" }, field: "Listen"},
		{name: "bad metrics listen", mutate: func(o *cli.ServeOptions) { o.MetricsListen = "metrics" }, field: "MetricsListen"},
		{name: "missing id", mutate: func(o *cli.ServeOptions) { o.ID = "" }, field: "ID"},
		{name: "zero timeout", mutate: func(o *cli.ServeOptions) { o.LoadTimeout = 0 }, field: "LoadTimeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := valid
			tt.mutate(&opts)
			err := opts.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestServeShutsDownOnCancel(t *testing.T) {
	root := pkitest.Root(t, "Serve Root")
	server := pkitest.Leaf(t, "localhost", root)

	dir := t.TempDir()
	opts := &cli.ServeOptions{
		Config:        writeFile(t, dir, "policy.yaml", []byte(`"orders.enabled": "false"`)),
		Cert:          writeFile(t, dir, "server.pem", server.PEM()),
		Key:           writeFile(t, dir, "server-key.pem", server.KeyPEM(t)),
		Listen:        "127.0.0.1:0",
		ID:            "orders",
		LoadTimeout:   time.Second,
		ShutdownGrace: time.Second,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	assert.NoError(t, cli.Serve(ctx, opts, nil))
}

func TestServeBadKeyPair(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "x.pem", []byte("x"))

	err := cli.Serve(context.Background(), &cli.ServeOptions{Cert: file, Key: file}, nil)
	assert.ErrorContains(t, err, "server key pair")
}
