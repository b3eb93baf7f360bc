// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"
)

// ErrNoPeerCertificates indicates that the remote endpoint completed the
// handshake without presenting a certificate.
var ErrNoPeerCertificates = errors.New("x509chain: no certificates received from server")

// FetchPeerCertificates establishes a TLS connection to the target host and
// returns the certificates presented during the handshake, sender's
// certificate first.
//
// The presented chain is not verified here; it is meant to be fed to
// [Validator.Validate] against a local trust store.
func FetchPeerCertificates(ctx context.Context, hostname string, port int, timeout time.Duration) ([]*x509.Certificate, error) {
	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: timeout},
		// We just want the cert chain, not to verify
		Config: &tls.Config{InsecureSkipVerify: true, ServerName: hostname},
	}

	addr := net.JoinHostPort(hostname, strconv.Itoa(port))
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	defer conn.Close()

	peerCerts := conn.(*tls.Conn).ConnectionState().PeerCertificates
	if len(peerCerts) == 0 {
		return nil, ErrNoPeerCertificates
	}

	return peerCerts, nil
}
