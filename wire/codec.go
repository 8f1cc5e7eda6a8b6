// Package wire implements the SSH binary packet primitives used by the
// user-authentication layer: uint32 and uint8 scalars and length-prefixed
// byte strings (RFC 4251 section 5).
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrTruncated is returned when a buffer ends before a length-prefixed
// field can be fully read.
var ErrTruncated = errors.New("wire: truncated buffer")

// Writer accumulates an outgoing packet body. The zero value is ready to
// use; callers should Reset and reuse a Writer across sends rather than
// allocate one per message.
type Writer struct {
	buf []byte
}

// NewWriter returns a Writer with capacity pre-reserved for typical
// USERAUTH_REQUEST payloads.
func NewWriter() *Writer {
	return &Writer{buf: make([]byte, 0, 256)}
}

// Reset discards any buffered bytes, scrubbing them first. Call this on
// the fail path instead of allocating a new Writer (section 5 of the
// specification: buffers are released or reinitialized immediately).
func (w *Writer) Reset() {
	for i := range w.buf {
		w.buf[i] = 0
	}
	w.buf = w.buf[:0]
}

// Bytes returns the accumulated packet body.
func (w *Writer) Bytes() []byte { return w.buf }

// Len reports the number of bytes written so far.
func (w *Writer) Len() int { return len(w.buf) }

// PutByte appends a single byte (an SSH `byte` or `uint8`).
func (w *Writer) PutByte(b byte) *Writer {
	w.buf = append(w.buf, b)
	return w
}

// PutBool appends an SSH `boolean` (0x00 or 0x01).
func (w *Writer) PutBool(v bool) *Writer {
	if v {
		return w.PutByte(1)
	}
	return w.PutByte(0)
}

// PutUint32 appends a 4-byte big-endian `uint32`.
func (w *Writer) PutUint32(v uint32) *Writer {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	w.buf = append(w.buf, tmp[:]...)
	return w
}

// PutString appends an SSH `string`: a 4-byte big-endian length prefix
// followed by the raw bytes. Both UTF-8 text and opaque blobs (public-key
// and signature wire encodings) use this framing.
func (w *Writer) PutString(s []byte) *Writer {
	w.PutUint32(uint32(len(s)))
	w.buf = append(w.buf, s...)
	return w
}

// PutASCII is a convenience wrapper over PutString for Go string literals
// such as method names and service names.
func (w *Writer) PutASCII(s string) *Writer {
	return w.PutString([]byte(s))
}

// Reader walks an incoming packet body left to right. It never panics on
// malformed input; every accessor returns ErrTruncated (or a descriptive
// wrap of it) instead.
type Reader struct {
	buf []byte
	pos int
}

// NewReader wraps buf for sequential decoding. buf is not copied; callers
// must not mutate it while the Reader is in use.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Remaining reports how many bytes are left to read.
func (r *Reader) Remaining() int { return len(r.buf) - r.pos }

// Byte reads a single byte.
func (r *Reader) Byte() (byte, error) {
	if r.Remaining() < 1 {
		return 0, ErrTruncated
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

// Bool reads an SSH `boolean`. Any nonzero byte is true.
func (r *Reader) Bool() (bool, error) {
	b, err := r.Byte()
	if err != nil {
		return false, err
	}
	return b != 0, nil
}

// Uint32 reads a 4-byte big-endian `uint32`.
func (r *Reader) Uint32() (uint32, error) {
	if r.Remaining() < 4 {
		return 0, ErrTruncated
	}
	v := binary.BigEndian.Uint32(r.buf[r.pos : r.pos+4])
	r.pos += 4
	return v, nil
}

// String reads a length-prefixed `string` and returns the raw bytes
// (no copy; the slice aliases the Reader's backing array).
func (r *Reader) String() ([]byte, error) {
	n, err := r.Uint32()
	if err != nil {
		return nil, fmt.Errorf("wire: string length: %w", err)
	}
	if n > uint32(r.Remaining()) {
		return nil, fmt.Errorf("wire: string of %d bytes exceeds remaining %d: %w", n, r.Remaining(), ErrTruncated)
	}
	s := r.buf[r.pos : r.pos+int(n)]
	r.pos += int(n)
	return s, nil
}

// ASCIIString is String with a Go string conversion, for method/service
// names and other short tokens that are always valid UTF-8.
func (r *Reader) ASCIIString() (string, error) {
	b, err := r.String()
	if err != nil {
		return "", err
	}
	return string(b), nil
}
