// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package x509chain implements [X.509] trust chain validation against a local
// trust store.
// It provides capabilities to:
//   - Decide whether a leaf certificate chains to a self-signed trust anchor,
//     walking issuer to subject links with single-step path validation.
//   - Explain untrusted verdicts (no matching issuer, signature mismatch,
//     anchor not self-signed, cycle detected).
//   - Render outcomes as ASCII trees, markdown tables or JSON.
//   - Fetch the certificates presented by a remote TLS endpoint.
//
// Validation performs no I/O and never consults [OCSP] or [CRL] data.
//
// [X.509]: https://grokipedia.com/page/X.509
// [OCSP]: https://grokipedia.com/page/Online_Certificate_Status_Protocol
// [CRL]: https://grokipedia.com/page/Certificate_revocation_list
package x509chain
