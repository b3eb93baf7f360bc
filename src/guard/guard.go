// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package guard

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/H0llyW00dzZ/tls-cert-trust-guard/src/internal/keystore"
	"github.com/H0llyW00dzZ/tls-cert-trust-guard/src/internal/metrics"
	"github.com/H0llyW00dzZ/tls-cert-trust-guard/src/internal/policy"
	x509chain "github.com/H0llyW00dzZ/tls-cert-trust-guard/src/internal/x509/chain"
	"github.com/H0llyW00dzZ/tls-cert-trust-guard/src/logger"
)

// DefaultLoadTimeout bounds trust material loading when no other timeout is set.
const DefaultLoadTimeout = 10 * time.Second

// SecureSession is an established secure session. Only its ordered peer
// certificates are used; the sender's certificate comes first.
type SecureSession interface {
	PeerCertificates() []*x509.Certificate
}

// PeerCertificates is a [SecureSession] backed by a certificate slice.
type PeerCertificates []*x509.Certificate

// PeerCertificates implements [SecureSession].
func (p PeerCertificates) PeerCertificates() []*x509.Certificate { return p }

// SessionFromConnectionState adapts a TLS connection state. A nil state,
// which is what plain HTTP requests carry, yields a nil session.
func SessionFromConnectionState(cs *tls.ConnectionState) SecureSession {
	if cs == nil {
		return nil
	}
	return PeerCertificates(cs.PeerCertificates)
}

// PolicyResolver resolves the policy for a connection identifier.
type PolicyResolver interface {
	Resolve(ctx context.Context, id string) policy.Policy
}

// Option configures a [Guard].
type Option func(*Guard)

// WithLoadTimeout bounds each trust material load. Non-positive values are ignored.
func WithLoadTimeout(d time.Duration) Option {
	return func(g *Guard) {
		if d > 0 {
			g.loadTimeout = d
		}
	}
}

// WithLogger sets the logger receiving rejection details.
func WithLogger(l logger.Logger) Option {
	return func(g *Guard) { g.log = logger.OrNop(l) }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r *metrics.Recorder) Option {
	return func(g *Guard) { g.rec = r }
}

// WithValidator replaces the default trust chain validator.
func WithValidator(v *x509chain.Validator) Option {
	return func(g *Guard) {
		if v != nil {
			g.validator = v
		}
	}
}

// Guard decides whether to accept inbound connections based on the client
// certificate they present.
//
// For every connection it resolves the policy of the connection
// identifier, and when validation is enabled loads the trust material the
// policy points at and validates the first peer certificate against it.
// Trust material is loaded per check and never cached, so keystore
// changes apply to the next connection.
//
// Thread Safety: Safe for concurrent use.
type Guard struct {
	resolver    PolicyResolver
	loader      keystore.Loader
	validator   *x509chain.Validator
	loadTimeout time.Duration
	log         logger.Logger
	rec         *metrics.Recorder
	newIncident func() string
}

// New creates a Guard.
//
// Parameters:
//   - resolver: Policy lookup, usually a [policy.Resolver]
//   - loader: Trust material source, usually a [keystore.FileLoader]
//   - opts: Optional settings
//
// Returns:
//   - *Guard: Configured guard
func New(resolver PolicyResolver, loader keystore.Loader, opts ...Option) *Guard {
	g := &Guard{
		resolver:    resolver,
		loader:      loader,
		validator:   x509chain.New(),
		loadTimeout: DefaultLoadTimeout,
		log:         logger.Nop,
		newIncident: uuid.NewString,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Check decides whether the connection identified by id may proceed.
//
// It returns nil when validation is disabled for id or when the first peer
// certificate is trusted. Every other outcome is a *[RejectionError]
// matching [ErrRejected] and one of [ErrNoSecureSession],
// [ErrNoPeerCertificate], [ErrKeyStoreLoad] or [ErrChainNotTrusted].
func (g *Guard) Check(ctx context.Context, id string, session SecureSession) error {
	start := time.Now()

	p := g.resolver.Resolve(ctx, id)
	if !p.Enabled {
		g.rec.Skipped(time.Since(start))
		return nil
	}

	if session == nil {
		return g.reject(id, start, ErrNoSecureSession, nil)
	}

	peers := session.PeerCertificates()
	if len(peers) == 0 || peers[0] == nil {
		return g.reject(id, start, ErrNoPeerCertificate, nil)
	}

	if !p.HasKeyStorePath || p.KeyStorePath == "" {
		return g.reject(id, start, ErrKeyStoreLoad, errors.New("no keystore path configured"))
	}

	anchors, err := g.load(ctx, p)
	if err != nil {
		return g.reject(id, start, ErrKeyStoreLoad, err)
	}

	outcome, err := g.validator.Validate(peers[0], anchors)
	if err != nil {
		return g.reject(id, start, ErrKeyStoreLoad, err)
	}
	if !outcome.Trusted {
		return g.reject(id, start, ErrChainNotTrusted,
			fmt.Errorf("%s: %s", peers[0].Subject, outcome.Reason))
	}

	g.rec.Accepted(time.Since(start))
	return nil
}

func (g *Guard) load(ctx context.Context, p policy.Policy) ([]*x509.Certificate, error) {
	ctx, cancel := context.WithTimeout(ctx, g.loadTimeout)
	defer cancel()

	type result struct {
		certs []*x509.Certificate
		err   error
	}
	done := make(chan result, 1)
	go func() {
		certs, err := g.loader.Load(ctx, p.KeyStorePath, p.KeyStorePassword)
		done <- result{certs, err}
	}()

	select {
	case r := <-done:
		return r.certs, r.err
	case <-ctx.Done():
		return nil, fmt.Errorf("loading %s: %w", p.KeyStorePath, ctx.Err())
	}
}

func (g *Guard) reject(id string, start time.Time, cause, detail error) error {
	rej := &RejectionError{
		IncidentID: g.newIncident(),
		Identifier: id,
		Cause:      cause,
		Detail:     detail,
	}
	g.log.Printf("%v", rej)
	g.rec.Rejected(rej.Reason(), time.Since(start))
	return rej
}
