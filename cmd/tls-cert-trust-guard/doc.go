// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// tls-cert-trust-guard checks client certificates against local trust
// stores and inspects the pattern-keyed policies that decide when the
// check applies.
//
// # Installation
//
//	go install github.com/H0llyW00dzZ/tls-cert-trust-guard/cmd/tls-cert-trust-guard@latest
//
// # Usage
//
//	tls-cert-trust-guard verify LEAF_FILE --truststore PATH [--password P] [--format tree|table|json]
//	tls-cert-trust-guard verify --remote HOST:PORT --truststore PATH
//	tls-cert-trust-guard policy resolve ID --config FILE [--show-secret] [--json]
//	tls-cert-trust-guard policy explain ID --config FILE
//	tls-cert-trust-guard policy lint --config FILE
//	tls-cert-trust-guard serve --config FILE --cert CERT --key KEY --listen ADDR --id ID [--metrics-listen ADDR]
//
// # Examples
//
// Check a client certificate against a PKCS#12 trust store:
//
//	tls-cert-trust-guard verify client.pem -t roots.p12 -p changeit --format table
//
// Show which pattern decides the policy for an identifier:
//
//	tls-cert-trust-guard policy explain orders-eu -c policy.yaml
//
// Serve an HTTPS endpoint that rejects untrusted clients:
//
//	tls-cert-trust-guard serve -c policy.yaml --cert tls.crt --key tls.key \
//	  --listen :8443 --id orders-eu --metrics-listen :9090
package main
