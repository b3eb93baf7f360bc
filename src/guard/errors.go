// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package guard

import (
	"errors"
	"fmt"
)

var (
	// ErrRejected is matched by every error returned from [Guard.Check].
	ErrRejected = errors.New("guard: connection rejected")

	// ErrNoSecureSession indicates a request that did not arrive over TLS.
	ErrNoSecureSession = errors.New("guard: no secure session")

	// ErrNoPeerCertificate indicates a TLS session without a client certificate.
	ErrNoPeerCertificate = errors.New("guard: no peer certificate presented")

	// ErrKeyStoreLoad indicates that trust material could not be loaded or decoded.
	ErrKeyStoreLoad = errors.New("guard: trust material could not be loaded")

	// ErrChainNotTrusted indicates that the client certificate does not chain
	// to a self-signed anchor of the trust material.
	ErrChainNotTrusted = errors.New("guard: certificate chain not trusted")
)

// RejectionError describes why a connection was rejected.
//
// Its details are meant for server-side logs only; clients are told no more
// than the incident ID.
type RejectionError struct {
	// IncidentID correlates the client-facing rejection with the log entry.
	IncidentID string
	// Identifier is the connection identifier the policy was resolved for.
	Identifier string
	// Cause is one of the guard sentinel errors.
	Cause error
	// Detail is the underlying error, if any.
	Detail error
}

// Error implements error.
func (e *RejectionError) Error() string {
	msg := fmt.Sprintf("%s (incident %s, identifier %q): %v", ErrRejected, e.IncidentID, e.Identifier, e.Cause)
	if e.Detail != nil {
		msg += ": " + e.Detail.Error()
	}
	return msg
}

// Unwrap lets [errors.Is] match [ErrRejected], the cause and the detail.
func (e *RejectionError) Unwrap() []error {
	errs := []error{ErrRejected, e.Cause}
	if e.Detail != nil {
		errs = append(errs, e.Detail)
	}
	return errs
}

// Reason returns a stable, low-cardinality label for the cause.
func (e *RejectionError) Reason() string {
	switch e.Cause {
	case ErrNoSecureSession:
		return "no_secure_session"
	case ErrNoPeerCertificate:
		return "no_peer_certificate"
	case ErrKeyStoreLoad:
		return "keystore_load_failure"
	case ErrChainNotTrusted:
		return "chain_not_trusted"
	default:
		return "unknown"
	}
}

// IncidentID returns the incident ID carried by err, if it is a rejection.
func IncidentID(err error) (string, bool) {
	var rej *RejectionError
	if errors.As(err, &rej) {
		return rej.IncidentID, true
	}
	return "", false
}
