// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package policy resolves per-identifier trust guard policy.
//
// A policy document is an ordered list of properties whose keys are regular
// expressions followed by a field suffix:
//
//	te.*.enabled           = true
//	te.*.keystore.path     = /etc/trust-guard/te.p12
//	te.*.keystore.password = changeit
//
// The pattern must match the whole identifier, and when several patterns
// match the first in document order wins. Documents can be written as
// YAML, JSON, TOML or Java properties files. In a properties file a ":" or
// "=" inside a pattern must be escaped with a backslash.
package policy
