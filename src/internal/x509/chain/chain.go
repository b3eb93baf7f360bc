// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain

import (
	"bytes"
	"crypto/x509"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrVerificationFailed is the parent of every structural input error
	// returned by the validator. A chain that simply does not lead to a
	// trusted root is reported through [Outcome], never through this error.
	ErrVerificationFailed = errors.New("x509chain: verification failed")

	// ErrNilLeaf indicates that no leaf certificate was supplied.
	ErrNilLeaf = fmt.Errorf("%w: nil leaf certificate", ErrVerificationFailed)

	// ErrInvalidTrustStore indicates that the trust store holds an entry
	// that is not a certificate.
	ErrInvalidTrustStore = fmt.Errorf("%w: invalid trust store", ErrVerificationFailed)
)

// Reason explains why a leaf was not trusted.
//
// Reasons are ordered by diagnostic weight; when several candidates fail
// for different reasons the heaviest one is reported.
type Reason int

const (
	// ReasonNone is reported for trusted outcomes.
	ReasonNone Reason = iota
	// ReasonEmptyTrustStore means there was nothing to chain to.
	ReasonEmptyTrustStore
	// ReasonNoMatchingIssuer means no anchor's subject equals the issuer.
	ReasonNoMatchingIssuer
	// ReasonPathValidation means a name-matching anchor did not verify the signature or validity.
	ReasonPathValidation
	// ReasonNotSelfSigned means the walk ended at an anchor that is not a self-signed root.
	ReasonNotSelfSigned
	// ReasonCycle means the walk revisited a certificate already on the path.
	ReasonCycle
)

var reasonNames = [...]string{
	ReasonNone:             "none",
	ReasonEmptyTrustStore:  "empty trust store",
	ReasonNoMatchingIssuer: "no matching issuer",
	ReasonPathValidation:   "path validation failed",
	ReasonNotSelfSigned:    "anchor not self-signed",
	ReasonCycle:            "cycle detected",
}

// String returns the human readable reason.
func (r Reason) String() string {
	if r < 0 || int(r) >= len(reasonNames) {
		return fmt.Sprintf("reason(%d)", int(r))
	}
	return reasonNames[r]
}

// MarshalText implements [encoding.TextMarshaler].
func (r Reason) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// Outcome is the verdict of a single validation.
type Outcome struct {
	// Leaf is the certificate whose trust was evaluated.
	Leaf *x509.Certificate
	// Trusted reports whether a path to a self-signed anchor was found.
	Trusted bool
	// Reason is [ReasonNone] when Trusted, otherwise the failure explanation.
	Reason Reason
	// Path lists the certificates from Leaf to the root when Trusted.
	Path []*x509.Certificate
}

// TrustStore is an unordered set of candidate trust anchors.
//
// Certificates are de-duplicated by their DER encoding. The store is
// immutable once built and safe for concurrent use.
type TrustStore struct {
	certs []*x509.Certificate
}

// NewTrustStore builds a trust store from certs.
//
// Parameters:
//   - certs: Candidate anchors in any order
//
// Returns:
//   - *TrustStore: De-duplicated store
//   - error: [ErrInvalidTrustStore] if any entry is nil
func NewTrustStore(certs []*x509.Certificate) (*TrustStore, error) {
	seen := make(map[string]struct{}, len(certs))
	store := &TrustStore{certs: make([]*x509.Certificate, 0, len(certs))}

	for i, cert := range certs {
		if cert == nil || len(cert.Raw) == 0 {
			return nil, fmt.Errorf("%w: entry %d is not a certificate", ErrInvalidTrustStore, i)
		}
		if _, dup := seen[string(cert.Raw)]; dup {
			continue
		}
		seen[string(cert.Raw)] = struct{}{}
		store.certs = append(store.certs, cert)
	}

	return store, nil
}

// Len returns the number of distinct anchors.
func (s *TrustStore) Len() int { return len(s.certs) }

// Certificates returns a copy of the anchors.
func (s *TrustStore) Certificates() []*x509.Certificate {
	return append([]*x509.Certificate(nil), s.certs...)
}

// Option configures a [Validator].
type Option func(*Validator)

// WithClock sets the time source used for validity checks.
func WithClock(now func() time.Time) Option {
	return func(v *Validator) {
		if now != nil {
			v.now = now
		}
	}
}

// Validator decides whether leaf certificates chain to a self-signed anchor.
//
// It performs no I/O and never consults revocation data. A Validator holds
// no mutable state and is safe for concurrent use.
type Validator struct {
	now func() time.Time
}

// New creates a Validator.
func New(opts ...Option) *Validator {
	v := &Validator{now: time.Now}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

var defaultValidator = New()

// ValidateTrust reports whether leaf is trusted by anchors using the
// wall clock. See [Validator.ValidateTrust].
func ValidateTrust(leaf *x509.Certificate, anchors []*x509.Certificate) (bool, error) {
	return defaultValidator.ValidateTrust(leaf, anchors)
}

// ValidateTrust reports whether leaf is trusted by anchors.
//
// A missing path is reported as false with a nil error. Errors are only
// returned for structurally invalid input and wrap [ErrVerificationFailed].
func (v *Validator) ValidateTrust(leaf *x509.Certificate, anchors []*x509.Certificate) (bool, error) {
	outcome, err := v.Validate(leaf, anchors)
	if err != nil {
		return false, err
	}
	return outcome.Trusted, nil
}

// Validate walks issuer links from leaf through anchors until it reaches a
// self-signed anchor.
//
// For each anchor whose subject equals the issuer of the current
// certificate, the certificate is verified against that anchor alone. A
// self-signed anchor that verifies ends the walk as trusted; any other
// verifying anchor becomes the next certificate to chain, scanning the full
// anchor set again. Certificates already on the current path are never
// walked twice.
//
// Parameters:
//   - leaf: Certificate presented by the peer
//   - anchors: Candidate trust anchors; order does not affect the verdict
//
// Returns:
//   - Outcome: Verdict, failure reason and trusted path
//   - error: [ErrNilLeaf] or [ErrInvalidTrustStore]
//
// Thread Safety: Safe for concurrent use.
func (v *Validator) Validate(leaf *x509.Certificate, anchors []*x509.Certificate) (Outcome, error) {
	if leaf == nil {
		return Outcome{}, ErrNilLeaf
	}

	store, err := NewTrustStore(anchors)
	if err != nil {
		return Outcome{}, err
	}

	return v.ValidateStore(leaf, store), nil
}

// ValidateStore is [Validator.Validate] over a prepared store.
// leaf and store must not be nil.
func (v *Validator) ValidateStore(leaf *x509.Certificate, store *TrustStore) Outcome {
	if store.Len() == 0 {
		return Outcome{Leaf: leaf, Reason: ReasonEmptyTrustStore}
	}

	w := &walk{
		store:  store,
		now:    v.now(),
		onPath: map[string]struct{}{string(leaf.Raw): {}},
		roots:  make(map[string]*x509.CertPool, store.Len()),
	}

	path, reason := w.from(leaf)
	if path == nil {
		return Outcome{Leaf: leaf, Reason: reason}
	}
	return Outcome{Leaf: leaf, Trusted: true, Path: path}
}

// walk carries the state of a single validation.
type walk struct {
	store  *TrustStore
	now    time.Time
	onPath map[string]struct{}
	roots  map[string]*x509.CertPool
}

// from returns the path from cert to a self-signed anchor, or nil and the
// heaviest failure seen.
func (w *walk) from(cert *x509.Certificate) ([]*x509.Certificate, Reason) {
	reason := ReasonNoMatchingIssuer

	for _, anchor := range w.store.certs {
		if !bytes.Equal(cert.RawIssuer, anchor.RawSubject) {
			continue
		}

		if !w.verifies(cert, anchor) {
			reason = max(reason, ReasonPathValidation)
			continue
		}

		identical := cert.Equal(anchor)
		if IsSelfSigned(anchor) {
			if identical {
				return []*x509.Certificate{cert}, ReasonNone
			}
			return []*x509.Certificate{cert, anchor}, ReasonNone
		}

		if identical {
			reason = max(reason, ReasonNotSelfSigned)
			continue
		}

		key := string(anchor.Raw)
		if _, visited := w.onPath[key]; visited {
			reason = max(reason, ReasonCycle)
			continue
		}

		w.onPath[key] = struct{}{}
		rest, sub := w.from(anchor)
		delete(w.onPath, key)

		if rest != nil {
			return append([]*x509.Certificate{cert}, rest...), ReasonNone
		}
		reason = max(reason, ReasonNotSelfSigned, sub)
	}

	return nil, reason
}

// verifies runs single-step path validation of cert against anchor.
// Revocation is not checked and any extended key usage is accepted.
func (w *walk) verifies(cert, anchor *x509.Certificate) bool {
	key := string(anchor.Raw)
	pool, ok := w.roots[key]
	if !ok {
		pool = x509.NewCertPool()
		pool.AddCert(anchor)
		w.roots[key] = pool
	}

	_, err := cert.Verify(x509.VerifyOptions{
		Roots:       pool,
		CurrentTime: w.now,
		KeyUsages:   []x509.ExtKeyUsage{x509.ExtKeyUsageAny},
	})
	return err == nil
}

// IsSelfSigned checks if a certificate is self-signed.
//
// It verifies the certificate's signature against its own public key. Any
// verification failure, including an unsupported key or algorithm, means
// the certificate is not self-signed.
func IsSelfSigned(cert *x509.Certificate) bool {
	if cert == nil {
		return false
	}
	return cert.CheckSignature(cert.SignatureAlgorithm, cert.RawTBSCertificate, cert.Signature) == nil
}
