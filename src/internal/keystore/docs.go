// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package keystore loads trust material for the guard.
//
// A [Loader] receives the keystore location and password resolved from
// policy and returns the certificates the validator may chain to. The
// [FileLoader] understands PEM, DER, PKCS#7 and PKCS#12 files and
// directories of them.
package keystore
