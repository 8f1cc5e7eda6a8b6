// Package transport defines the framed-packet collaborator the
// authentication subsystem drives. The concrete transport — multiplexing
// callbacks by message number, running a blocking or non-blocking read
// loop — is assumed available per the specification; this package
// specifies it at the interface level and ships two concrete
// implementations (a WebSocket-framed transport for real use, and an
// in-memory Stub for scripting exact server byte sequences in tests).
package transport

import (
	"errors"
	"time"
)

// Status is the three-way outcome of a transport operation (spec
// section 4.1): it either completed, would block, or failed fatally.
type Status int

const (
	StatusOK Status = iota
	StatusAgain
	StatusError
)

// ErrWouldBlock is an error value for a would-block condition. Stub and
// WSTransport do not return it; they report would-block as StatusAgain.
var ErrWouldBlock = errors.New("transport: would block")

// PacketHandler receives one decoded packet: the SSH message number
// (the first byte of the payload) and the remaining payload bytes. It
// is registered once per Transport and is expected to route by message
// number itself — this is the "packet dispatcher" of spec section 2,
// not part of the Transport collaborator.
type PacketHandler func(msgNum byte, payload []byte) error

// Transport sends and receives framed SSH binary packets and drives the
// handler registered via SetHandler for everything that arrives.
type Transport interface {
	// RequestService requests a named service (e.g. "ssh-userauth").
	// Idempotent after the first OK.
	RequestService(name string) (Status, error)

	// SetHandler installs the single packet callback. Replacing it
	// mid-session is the caller's responsibility to avoid.
	SetHandler(h PacketHandler)

	// Send writes one fully-framed packet (message number byte followed
	// by its payload). In non-blocking mode this may return
	// (StatusAgain, nil); the caller must retry with the same bytes.
	Send(packet []byte) (Status, error)

	// PumpUntil drives the read loop, invoking the registered handler
	// for each arriving packet, until done reports true, the timeout
	// elapses, or — for a non-blocking transport — the socket would
	// block. It never returns StatusOK unless done() held at return.
	PumpUntil(timeout time.Duration, done func() bool) (Status, error)
}
