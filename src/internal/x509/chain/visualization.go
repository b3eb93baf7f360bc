// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
)

// certificates returns the certificates an outcome describes: the trusted
// path, or the bare leaf when untrusted.
func (o Outcome) certificates() []*x509.Certificate {
	if o.Trusted {
		return o.Path
	}
	if o.Leaf == nil {
		return nil
	}
	return []*x509.Certificate{o.Leaf}
}

// Verdict returns a one-line summary such as "trusted" or
// "untrusted: no matching issuer".
func (o Outcome) Verdict() string {
	if o.Trusted {
		return "trusted"
	}
	return "untrusted: " + o.Reason.String()
}

// RenderASCIITree renders the outcome as an ASCII tree diagram.
//
// Trusted outcomes show every hop from leaf to root; untrusted outcomes show
// the leaf followed by the failure reason.
//
// Returns:
//   - string: ASCII tree representation of the outcome
func (o Outcome) RenderASCIITree() string {
	certs := o.certificates()
	if len(certs) == 0 {
		return "No certificates in outcome"
	}

	var result strings.Builder
	result.WriteString(o.Verdict() + "\n")

	for i, cert := range certs {
		connector := "├── "
		if i == len(certs)-1 {
			connector = "└── "
		}

		statusIcon := "✓"
		if !o.Trusted {
			statusIcon = "✗"
		}

		result.WriteString(fmt.Sprintf("%s%s[%s] %s (%s)\n",
			strings.Repeat("    ", i), connector, statusIcon,
			displayName(cert), o.role(i, len(certs))))
	}

	return result.String()
}

// RenderTable renders the certificates of the outcome as a markdown table.
//
// Returns:
//   - string: Markdown table with role, subject, issuer, validity and key details
func (o Outcome) RenderTable() string {
	certs := o.certificates()
	if len(certs) == 0 {
		return "No certificates to display"
	}

	var buf strings.Builder
	table := tablewriter.NewTable(&buf,
		tablewriter.WithRenderer(renderer.NewMarkdown(tw.Rendition{Streaming: true})),
	)
	table.Header([]string{"#", "Role", "Subject", "Issuer", "Valid Until", "Key", "Self-Signed"})

	rows := make([][]string, 0, len(certs))
	for i, cert := range certs {
		algo, size := keyInfo(cert)
		key := algo
		if size > 0 {
			key = fmt.Sprintf("%d-bit %s", size, algo)
		}

		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			o.role(i, len(certs)),
			displayName(cert),
			cert.Issuer.CommonName,
			cert.NotAfter.Format("2006-01-02"),
			key,
			strconv.FormatBool(IsSelfSigned(cert)),
		})
	}

	table.Bulk(rows)
	table.Render()

	buf.WriteString("\n" + o.Verdict() + "\n")
	return buf.String()
}

type certificateJSON struct {
	Index              int       `json:"index"`
	Role               string    `json:"role"`
	Subject            string    `json:"subject"`
	Issuer             string    `json:"issuer"`
	SerialNumber       string    `json:"serialNumber"`
	SignatureAlgorithm string    `json:"signatureAlgorithm"`
	PublicKeyAlgorithm string    `json:"publicKeyAlgorithm"`
	KeySize            int       `json:"keySize"`
	NotBefore          time.Time `json:"notBefore"`
	NotAfter           time.Time `json:"notAfter"`
	IsCA               bool      `json:"isCA"`
	SelfSigned         bool      `json:"selfSigned"`
}

type outcomeJSON struct {
	Timestamp    string            `json:"timestamp"`
	Trusted      bool              `json:"trusted"`
	Reason       Reason            `json:"reason"`
	Certificates []certificateJSON `json:"certificates"`
}

// ToJSON converts the outcome to indented JSON for external tools.
//
// Returns:
//   - []byte: JSON document with the verdict and certificate details
//   - error: Error if JSON marshaling fails
func (o Outcome) ToJSON() ([]byte, error) {
	certs := o.certificates()
	data := outcomeJSON{
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		Trusted:      o.Trusted,
		Reason:       o.Reason,
		Certificates: make([]certificateJSON, len(certs)),
	}

	for i, cert := range certs {
		algo, size := keyInfo(cert)
		data.Certificates[i] = certificateJSON{
			Index:              i,
			Role:               o.role(i, len(certs)),
			Subject:            cert.Subject.String(),
			Issuer:             cert.Issuer.String(),
			SerialNumber:       cert.SerialNumber.String(),
			SignatureAlgorithm: cert.SignatureAlgorithm.String(),
			PublicKeyAlgorithm: algo,
			KeySize:            size,
			NotBefore:          cert.NotBefore,
			NotAfter:           cert.NotAfter,
			IsCA:               cert.IsCA,
			SelfSigned:         IsSelfSigned(cert),
		}
	}

	return json.MarshalIndent(data, "", "  ")
}

// role describes the position of a certificate in the rendered path.
func (o Outcome) role(index, total int) string {
	switch {
	case !o.Trusted:
		return "Untrusted Leaf Certificate"
	case total == 1:
		return "Self-Signed Trust Anchor"
	case index == 0:
		return "End-Entity (Client/Leaf) Certificate"
	case index == total-1:
		return "Root CA Trust Anchor"
	default:
		return "Intermediate CA Trust Anchor"
	}
}

func displayName(cert *x509.Certificate) string {
	if cert.Subject.CommonName != "" {
		return cert.Subject.CommonName
	}
	return cert.Subject.String()
}

func keyInfo(cert *x509.Certificate) (string, int) {
	switch pub := cert.PublicKey.(type) {
	case *rsa.PublicKey:
		return "RSA", pub.Size() * 8
	case *ecdsa.PublicKey:
		return "ECDSA", pub.Curve.Params().BitSize
	case ed25519.PublicKey:
		return "Ed25519", 256
	default:
		return "unknown", 0
	}
}
