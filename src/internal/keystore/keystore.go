// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package keystore

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/H0llyW00dzZ/tls-cert-trust-guard/src/internal/helper/gc"
	x509certs "github.com/H0llyW00dzZ/tls-cert-trust-guard/src/internal/x509/certs"
)

// DefaultMaxSize bounds a single keystore file.
const DefaultMaxSize int64 = 8 << 20

// ErrLoad is wrapped by every failure to produce a trust set.
var ErrLoad = errors.New("keystore: failed to load trust material")

// Loader turns a keystore location and its password into the set of
// trusted certificates it holds.
type Loader interface {
	Load(ctx context.Context, location, password string) ([]*x509.Certificate, error)
}

// LoaderFunc adapts a function to [Loader].
type LoaderFunc func(ctx context.Context, location, password string) ([]*x509.Certificate, error)

// Load implements [Loader].
func (f LoaderFunc) Load(ctx context.Context, location, password string) ([]*x509.Certificate, error) {
	return f(ctx, location, password)
}

// FileLoader reads trust material from the filesystem.
//
// The location may name a single keystore file or a directory, in which
// case every regular, non-hidden file directly inside it is decoded and the
// results are concatenated in file name order. Each file may be a PEM
// bundle, DER certificates, a PKCS#7 bundle or a PKCS#12 keystore
// unlocked with the password.
//
// Nothing is cached; every call reads the files again.
type FileLoader struct {
	// MaxSize bounds each file; zero means [DefaultMaxSize].
	MaxSize int64

	decoder *x509certs.Certificate
}

// NewFileLoader creates a FileLoader with default limits.
func NewFileLoader() *FileLoader {
	return &FileLoader{MaxSize: DefaultMaxSize, decoder: x509certs.New()}
}

// Load implements [Loader].
//
// Parameters:
//   - ctx: Checked before each file is read
//   - location: Keystore file or directory
//   - password: PKCS#12 passphrase, ignored by other formats
//
// Returns:
//   - []*x509.Certificate: Every certificate found
//   - error: Error wrapping [ErrLoad]
func (l *FileLoader) Load(ctx context.Context, location, password string) ([]*x509.Certificate, error) {
	if location == "" {
		return nil, fmt.Errorf("%w: empty location", ErrLoad)
	}

	info, err := os.Stat(location)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}

	files := []string{location}
	if info.IsDir() {
		if files, err = listKeyStores(location); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoad, err)
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("%w: no keystore files in %s", ErrLoad, location)
		}
	}

	var certs []*x509.Certificate
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoad, err)
		}

		loaded, err := l.loadFile(file, password)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoad, file, err)
		}
		certs = append(certs, loaded...)
	}

	return certs, nil
}

func (l *FileLoader) loadFile(path, password string) ([]*x509.Certificate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	limit := l.MaxSize
	if limit <= 0 {
		limit = DefaultMaxSize
	}

	data, err := gc.ReadAll(f, limit)
	if err != nil {
		return nil, err
	}

	decoder := l.decoder
	if decoder == nil {
		decoder = x509certs.New()
	}
	return decoder.DecodeKeyStore(data, password)
}

func listKeyStores(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") || !entry.Type().IsRegular() {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// StaticLoader serves in-memory trust sets keyed by location. Passwords
// are ignored.
type StaticLoader map[string][]*x509.Certificate

// Load implements [Loader].
func (s StaticLoader) Load(ctx context.Context, location, _ string) ([]*x509.Certificate, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	certs, ok := s[location]
	if !ok {
		return nil, fmt.Errorf("%w: unknown location %q", ErrLoad, location)
	}
	return append([]*x509.Certificate(nil), certs...), nil
}
