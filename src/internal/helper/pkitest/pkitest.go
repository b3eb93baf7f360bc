// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package pkitest

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"testing"
	"time"
)

// Issued is a generated certificate together with its private key.
type Issued struct {
	Cert *x509.Certificate
	Key  *ecdsa.PrivateKey
}

// PEM returns the certificate encoded as a PEM block.
func (i *Issued) PEM() []byte {
	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: i.Cert.Raw})
}

// KeyPEM returns the private key encoded as a PKCS#8 PEM block.
func (i *Issued) KeyPEM(tb testing.TB) []byte {
	tb.Helper()
	der, err := x509.MarshalPKCS8PrivateKey(i.Key)
	if err != nil {
		tb.Fatalf("marshal key: %v", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})
}

// Bundle concatenates the PEM encoding of every certificate.
func Bundle(certs ...*Issued) []byte {
	var out []byte
	for _, c := range certs {
		out = append(out, c.PEM()...)
	}
	return out
}

// Certs returns the parsed certificates of the given issued values.
func Certs(issued ...*Issued) []*x509.Certificate {
	out := make([]*x509.Certificate, 0, len(issued))
	for _, i := range issued {
		out = append(out, i.Cert)
	}
	return out
}

// Root creates a self-signed CA certificate.
func Root(tb testing.TB, cn string) *Issued {
	tb.Helper()
	key := newKey(tb)
	tmpl := caTemplate(cn)
	return sign(tb, tmpl, tmpl, key, key)
}

// Intermediate creates a CA certificate signed by parent.
func Intermediate(tb testing.TB, cn string, parent *Issued) *Issued {
	tb.Helper()
	key := newKey(tb)
	return sign(tb, caTemplate(cn), parent.Cert, key, parent.Key)
}

// Leaf creates an end-entity client/server certificate signed by parent.
// The leaf carries cn as DNS SAN so it can also serve TLS in tests.
func Leaf(tb testing.TB, cn string, parent *Issued) *Issued {
	tb.Helper()
	key := newKey(tb)
	tmpl := &x509.Certificate{
		SerialNumber:          serial(tb),
		Subject:               pkix.Name{CommonName: cn, Organization: []string{"trust-guard tests"}},
		DNSNames:              []string{cn},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth, x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
	}
	return sign(tb, tmpl, parent.Cert, key, parent.Key)
}

// Expired creates an end-entity certificate signed by parent whose validity
// window ended an hour ago.
func Expired(tb testing.TB, cn string, parent *Issued) *Issued {
	tb.Helper()
	key := newKey(tb)
	tmpl := &x509.Certificate{
		SerialNumber:          serial(tb),
		Subject:               pkix.Name{CommonName: cn},
		NotBefore:             time.Now().Add(-48 * time.Hour),
		NotAfter:              time.Now().Add(-time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
		BasicConstraintsValid: true,
	}
	return sign(tb, tmpl, parent.Cert, key, parent.Key)
}

// SelfSignedLeaf creates an end-entity certificate signed by its own key.
// It is not a CA, so it cannot issue other certificates.
func SelfSignedLeaf(tb testing.TB, cn string) *Issued {
	tb.Helper()
	key := newKey(tb)
	tmpl := &x509.Certificate{
		SerialNumber:          serial(tb),
		Subject:               pkix.Name{CommonName: cn},
		DNSNames:              []string{cn},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth, x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
	}
	return sign(tb, tmpl, tmpl, key, key)
}

// SelfIssued creates a CA certificate whose issuer equals its subject but
// whose signature was produced by an unrelated key, so it is not self-signed.
func SelfIssued(tb testing.TB, cn string) *Issued {
	tb.Helper()
	key := newKey(tb)
	other := newKey(tb)
	tmpl := caTemplate(cn)
	return sign(tb, tmpl, caTemplate(cn), key, other)
}

// Impostor creates a CA certificate carrying the same subject as the real
// issuer but a different key. Certificates issued by the original will
// name-match the impostor and fail signature verification against it.
func Impostor(tb testing.TB, of *Issued) *Issued {
	tb.Helper()
	key := newKey(tb)
	tmpl := caTemplate(of.Cert.Subject.CommonName)
	tmpl.Subject = of.Cert.Subject
	return sign(tb, tmpl, tmpl, key, key)
}

// NonCARoot creates a self-signed version 3 certificate with the certificate
// signing key usage that is not a CA. With basicConstraints the extension is
// present with CA=false, otherwise it is omitted.
func NonCARoot(tb testing.TB, cn string, basicConstraints bool) *Issued {
	tb.Helper()
	key := newKey(tb)
	tmpl := caTemplate(cn)
	tmpl.IsCA = false
	tmpl.BasicConstraintsValid = basicConstraints
	return sign(tb, tmpl, tmpl, key, key)
}

// Cycle creates two CA certificates that name each other as issuer and sign
// each other, plus a leaf issued by the first. Neither CA is self-signed.
func Cycle(tb testing.TB, cnA, cnB string) (a, b, leaf *Issued) {
	tb.Helper()
	keyA := newKey(tb)
	keyB := newKey(tb)
	tmplA := caTemplate(cnA)
	tmplB := caTemplate(cnB)

	a = sign(tb, tmplA, caTemplate(cnB), keyA, keyB)
	b = sign(tb, tmplB, caTemplate(cnA), keyB, keyA)
	leaf = Leaf(tb, "cycle-leaf", a)
	return a, b, leaf
}

func caTemplate(cn string) *x509.Certificate {
	return &x509.Certificate{
		SerialNumber:          big.NewInt(time.Now().UnixNano()),
		Subject:               pkix.Name{CommonName: cn, Organization: []string{"trust-guard tests"}},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign | x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
}

func sign(tb testing.TB, tmpl, parent *x509.Certificate, key *ecdsa.PrivateKey, signer crypto.Signer) *Issued {
	tb.Helper()
	tmpl.SerialNumber = serial(tb)
	der, err := x509.CreateCertificate(rand.Reader, tmpl, parent, key.Public(), signer)
	if err != nil {
		tb.Fatalf("create certificate %q: %v", tmpl.Subject.CommonName, err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		tb.Fatalf("parse certificate %q: %v", tmpl.Subject.CommonName, err)
	}
	return &Issued{Cert: cert, Key: key}
}

func newKey(tb testing.TB) *ecdsa.PrivateKey {
	tb.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		tb.Fatalf("generate key: %v", err)
	}
	return key
}

func serial(tb testing.TB) *big.Int {
	tb.Helper()
	n, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 62))
	if err != nil {
		tb.Fatalf("serial: %v", err)
	}
	return n
}
