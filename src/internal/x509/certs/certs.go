// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509certs

import (
	"bytes"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"

	"github.com/cloudflare/cfssl/crypto/pkcs7"
	"software.sslmate.com/src/go-pkcs12"
)

var (
	// ErrInvalidPEMBlock indicates that the provided data does not contain a valid PEM block.
	ErrInvalidPEMBlock = errors.New("x509certs: invalid PEM block")

	// ErrInvalidBlockType indicates that the PEM block type is not the expected certificate type.
	ErrInvalidBlockType = errors.New("x509certs: invalid block type")

	// ErrParseCertificate indicates a failure to parse the certificate from the provided data.
	ErrParseCertificate = errors.New("x509certs: failed to parse certificate")

	// ErrParsePKCS7 indicates a failure to parse PKCS7 formatted data.
	ErrParsePKCS7 = errors.New("x509certs: failed to parse PKCS7 data")

	// ErrNoCertificatesInPKCS indicates that no certificates were found in the PKCS7 data.
	ErrNoCertificatesInPKCS = errors.New("x509certs: no certificates found in PKCS7 data")

	// ErrNoCertificates indicates that keystore data decoded cleanly but held no certificate.
	ErrNoCertificates = errors.New("x509certs: no certificates found in keystore")

	// ErrKeyStorePassword indicates that a PKCS#12 keystore rejected the supplied password.
	ErrKeyStorePassword = errors.New("x509certs: keystore password incorrect")

	// ErrUnsupportedKeyStore indicates that keystore data matched none of the supported formats.
	ErrUnsupportedKeyStore = errors.New("x509certs: unsupported keystore format")
)

const (
	blockCertificate = "CERTIFICATE"
	blockPKCS7       = "PKCS7"
)

// Certificate provides methods to decode and encode [X.509] certificates.
// It maintains internal configuration such as the certificate block type.
//
// [X.509]: https://en.wikipedia.org/wiki/X.509
type Certificate struct {
	certBlockType string
}

// New creates a new Certificate with default settings.
func New() *Certificate {
	return &Certificate{
		certBlockType: blockCertificate,
	}
}

// IsPEM checks if the data is in PEM format.
func (c *Certificate) IsPEM(data []byte) bool {
	block, _ := pem.Decode(data)
	return block != nil
}

// decodePEMBlock decodes a PEM block and checks its type.
func (c *Certificate) decodePEMBlock(data []byte) (*pem.Block, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, ErrInvalidPEMBlock
	}
	if block.Type != c.certBlockType {
		return nil, ErrInvalidBlockType
	}
	return block, nil
}

// DecodeMultiple decodes one or more certificates from data.
//
// PEM input must contain only certificate blocks. Anything else is treated
// as a concatenation of DER certificates.
func (c *Certificate) DecodeMultiple(data []byte) ([]*x509.Certificate, error) {
	if c.IsPEM(data) {
		var certs []*x509.Certificate

		for len(data) > 0 {
			block, rest := pem.Decode(data)
			if block == nil {
				break
			}
			if block.Type != c.certBlockType {
				return nil, ErrInvalidBlockType
			}

			cert, err := x509.ParseCertificate(block.Bytes)
			if err != nil {
				return nil, ErrParseCertificate
			}

			certs = append(certs, cert)
			data = rest
		}

		return certs, nil
	}

	certs, err := x509.ParseCertificates(data)
	if err != nil {
		return nil, ErrParseCertificate
	}

	return certs, nil
}

// Decode decodes a single certificate from data.
//
// It accepts a PEM certificate block, a DER certificate, or a PKCS#7
// bundle, in which case the first certificate of the bundle is returned.
func (c *Certificate) Decode(data []byte) (*x509.Certificate, error) {
	if c.IsPEM(data) {
		block, err := c.decodePEMBlock(data)
		if err != nil {
			return nil, err
		}

		data = block.Bytes
	}

	cert, err := x509.ParseCertificate(data)
	if err == nil {
		return cert, nil
	}

	certs, err := parsePKCS7(data)
	if err != nil {
		if errors.Is(err, ErrNoCertificatesInPKCS) {
			return nil, err
		}
		return nil, ErrParseCertificate
	}

	return certs[0], nil
}

// DecodeKeyStore extracts every certificate held by a trust keystore.
//
// Supported layouts, tried in order:
//   - PEM: all CERTIFICATE blocks, plus PKCS7 blocks; key blocks are ignored
//   - DER: one or more concatenated certificates
//   - PKCS#7 (certs-only SignedData), parsed with Cloudflare's library
//   - PKCS#12 trust store, or a key-bearing PKCS#12 bundle, decrypted with
//     password; both PBES2 (OpenSSL 3 default) and legacy encryption work
//
// Parameters:
//   - data: Raw keystore bytes
//   - password: Keystore passphrase; only PKCS#12 uses it
//
// Returns:
//   - []*x509.Certificate: Certificates in keystore order
//   - error: [ErrNoCertificates], [ErrKeyStorePassword], [ErrUnsupportedKeyStore]
//     or a parse error wrapping [ErrParseCertificate]
func (c *Certificate) DecodeKeyStore(data []byte, password string) ([]*x509.Certificate, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, ErrNoCertificates
	}

	if c.IsPEM(trimmed) {
		return c.decodePEMKeyStore(trimmed)
	}

	if certs, err := x509.ParseCertificates(trimmed); err == nil && len(certs) > 0 {
		return certs, nil
	}

	if certs, err := parsePKCS7(trimmed); err == nil {
		return certs, nil
	}

	return decodePKCS12(trimmed, password)
}

// decodePKCS12 reads a certificate-only trust store first, as written by
// keytool or "openssl pkcs12 -export -nokeys -jdktrust", then falls back
// to a key-bearing bundle whose certificates are returned leaf first.
func decodePKCS12(data []byte, password string) ([]*x509.Certificate, error) {
	certs, trustErr := pkcs12.DecodeTrustStore(data, password)
	if trustErr == nil {
		if len(certs) == 0 {
			return nil, ErrNoCertificates
		}
		return certs, nil
	}
	if errors.Is(trustErr, pkcs12.ErrIncorrectPassword) {
		return nil, ErrKeyStorePassword
	}

	_, cert, caCerts, chainErr := pkcs12.DecodeChain(data, password)
	if chainErr != nil {
		if errors.Is(chainErr, pkcs12.ErrIncorrectPassword) {
			return nil, ErrKeyStorePassword
		}
		return nil, fmt.Errorf("%w: %v; %v", ErrUnsupportedKeyStore, trustErr, chainErr)
	}

	return append([]*x509.Certificate{cert}, caCerts...), nil
}

func (c *Certificate) decodePEMKeyStore(data []byte) ([]*x509.Certificate, error) {
	var certs []*x509.Certificate

	for len(data) > 0 {
		block, rest := pem.Decode(data)
		if block == nil {
			break
		}
		data = rest

		switch block.Type {
		case c.certBlockType:
			cert, err := x509.ParseCertificate(block.Bytes)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrParseCertificate, err)
			}
			certs = append(certs, cert)
		case blockPKCS7:
			bundle, err := parsePKCS7(block.Bytes)
			if err != nil {
				return nil, err
			}
			certs = append(certs, bundle...)
		}
	}

	if len(certs) == 0 {
		return nil, ErrNoCertificates
	}

	return certs, nil
}

// parsePKCS7 returns the certificates of a PKCS#7 bundle using Cloudflare's library.
func parsePKCS7(data []byte) ([]*x509.Certificate, error) {
	p, err := pkcs7.ParsePKCS7(data)
	if err != nil {
		return nil, ErrParsePKCS7
	}
	if len(p.Content.SignedData.Certificates) == 0 {
		return nil, ErrNoCertificatesInPKCS
	}
	return p.Content.SignedData.Certificates, nil
}

// EncodePEM encodes a certificate to PEM format.
func (c *Certificate) EncodePEM(cert *x509.Certificate) []byte {
	block := pem.Block{
		Type:  c.certBlockType,
		Bytes: cert.Raw,
	}
	return pem.EncodeToMemory(&block)
}

// EncodeDER encodes a certificate to DER format.
func (c *Certificate) EncodeDER(cert *x509.Certificate) []byte { return cert.Raw }

// EncodeMultiplePEM encodes multiple certificates to PEM format.
func (c *Certificate) EncodeMultiplePEM(certs []*x509.Certificate) []byte {
	var data []byte

	for _, cert := range certs {
		data = append(data, c.EncodePEM(cert)...)
	}

	return data
}
