// Copyright (c) 2024 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package gc

import (
	"errors"
	"io"

	"github.com/valyala/bytebufferpool"
)

// ErrTooLarge is returned by [ReadAll] when the reader yields more bytes than allowed.
var ErrTooLarge = errors.New("gc: input exceeds size limit")

// Buffer defines the interface for a reusable byte buffer.
// It abstracts the [bytebufferpool.ByteBuffer] type to avoid direct dependencies.
type Buffer interface {
	Write(p []byte) (int, error)
	WriteString(s string) (int, error)
	WriteByte(c byte) error
	Bytes() []byte
	Len() int
	Reset()
	ReadFrom(r io.Reader) (int64, error)
}

// Pool defines the interface for buffer pooling.
// It abstracts the [bytebufferpool.Pool] type to avoid direct dependencies.
//
// Pool implementations must be safe for concurrent use by multiple goroutines.
type Pool interface {
	Get() Buffer
	Put(b Buffer)
}

// pool wraps [bytebufferpool.Pool] to implement Pool interface.
type pool struct{ p *bytebufferpool.Pool }

// Get returns a buffer from the pool.
func (p *pool) Get() Buffer { return p.p.Get() }

// Put returns a buffer to the pool.
func (p *pool) Put(b Buffer) {
	if buf, ok := b.(*bytebufferpool.ByteBuffer); ok {
		p.p.Put(buf)
	}
}

// Default is the default buffer pool used for efficient memory reuse in I/O operations.
//
// Keystore files are read once per inbound connection, so the loader borrows
// a buffer instead of growing a fresh slice every time:
//
//	buf := gc.Default.Get()
//	defer func() {
//		buf.Reset()
//		gc.Default.Put(buf)
//	}()
//
//	if _, err := buf.ReadFrom(file); err != nil {
//		return nil, fmt.Errorf("error reading keystore: %w", err)
//	}
//
//	// buf.Bytes() is only valid until the buffer is returned to the pool.
//	data := append([]byte(nil), buf.Bytes()...)
var Default Pool = &pool{p: &bytebufferpool.Pool{}}

// ReadAll reads r into a pooled buffer and returns a private copy of the bytes.
//
// Parameters:
//   - r: Source reader
//   - limit: Maximum number of bytes accepted; zero or negative means unlimited
//
// Returns:
//   - []byte: Data read from r, owned by the caller
//   - error: Read error, or [ErrTooLarge] when limit is exceeded
//
// Thread Safety: Safe for concurrent use.
func ReadAll(r io.Reader, limit int64) ([]byte, error) {
	return readAll(Default, r, limit)
}

func readAll(p Pool, r io.Reader, limit int64) ([]byte, error) {
	buf := p.Get()
	defer func() {
		buf.Reset()
		p.Put(buf)
	}()

	src := r
	if limit > 0 {
		src = io.LimitReader(r, limit+1)
	}

	if _, err := buf.ReadFrom(src); err != nil {
		return nil, err
	}

	if limit > 0 && int64(buf.Len()) > limit {
		return nil, ErrTooLarge
	}

	return append([]byte(nil), buf.Bytes()...), nil
}
