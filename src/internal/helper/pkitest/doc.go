// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package pkitest generates throwaway [X.509] hierarchies for tests: self-signed
// roots, intermediates, leaves, and the pathological shapes the trust engine
// must reject (self-issued but not self-signed, name impostors, issuer cycles).
//
// [X.509]: https://grokipedia.com/page/X.509
package pkitest
