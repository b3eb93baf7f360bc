// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package guard enforces client certificate trust on inbound connections.
//
// A [Guard] combines a policy resolver, a trust material loader and the
// trust chain validator. Hosts plug it in through one of its adapters:
//
//   - [Guard.HTTPMiddleware] for net/http handlers served over TLS
//   - [Guard.VerifyConnection] for [crypto/tls.Config.VerifyConnection]
//   - [Guard.UnaryServerInterceptor] and [Guard.StreamServerInterceptor] for gRPC
//
// Every rejection is fail-closed and looks the same to the client: a 403,
// a failed handshake, or codes.Unauthenticated. The reason is logged
// server-side together with a random incident ID.
package guard
