// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package guard

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

// IncidentHeader carries the incident ID of a rejected HTTP request.
const IncidentHeader = "X-Trust-Guard-Incident"

// errUnauthenticated is the single status every rejected RPC receives.
var errUnauthenticated = status.Error(codes.Unauthenticated, "authentication failed")

// HTTPMiddleware guards next with the policy of the listener identified by id.
//
// Rejected requests all receive the same 403 response; only the incident
// ID is disclosed.
func (g *Guard) HTTPMiddleware(id string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := g.Check(r.Context(), id, SessionFromConnectionState(r.TLS)); err != nil {
			incident, _ := IncidentID(err)
			w.Header().Set(IncidentHeader, incident)
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// VerifyConnection returns a hook for [tls.Config.VerifyConnection] that
// rejects handshakes of untrusted clients. The listener should request
// client certificates without verifying them (tls.RequireAnyClientCert or
// tls.RequestClientCert) so the guard is the one deciding.
func (g *Guard) VerifyConnection(id string) func(tls.ConnectionState) error {
	return func(cs tls.ConnectionState) error {
		if err := g.Check(context.Background(), id, SessionFromConnectionState(&cs)); err != nil {
			incident, _ := IncidentID(err)
			return fmt.Errorf("tls: client certificate rejected (incident %s)", incident)
		}
		return nil
	}
}

// UnaryServerInterceptor returns a gRPC unary server interceptor enforcing
// the policy of id.
func (g *Guard) UnaryServerInterceptor(id string) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if err := g.Check(ctx, id, sessionFromPeer(ctx)); err != nil {
			return nil, errUnauthenticated
		}
		return handler(ctx, req)
	}
}

// StreamServerInterceptor returns a gRPC stream server interceptor enforcing
// the policy of id.
func (g *Guard) StreamServerInterceptor(id string) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, _ *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		ctx := ss.Context()
		if err := g.Check(ctx, id, sessionFromPeer(ctx)); err != nil {
			return errUnauthenticated
		}
		return handler(srv, ss)
	}
}

// sessionFromPeer extracts the TLS session of a gRPC peer.
func sessionFromPeer(ctx context.Context) SecureSession {
	p, ok := peer.FromContext(ctx)
	if !ok || p.AuthInfo == nil {
		return nil
	}

	var tlsInfo credentials.TLSInfo
	switch info := p.AuthInfo.(type) {
	case credentials.TLSInfo:
		tlsInfo = info
	case *credentials.TLSInfo:
		tlsInfo = *info
	default:
		return nil
	}
	return SessionFromConnectionState(&tlsInfo.State)
}

// IsRejection reports whether err was produced by the guard.
func IsRejection(err error) bool { return errors.Is(err, ErrRejected) }
