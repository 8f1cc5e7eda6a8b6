package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/sage-x-project/sshauth/authstate"
	"github.com/sage-x-project/sshauth/internal/metrics"
	"github.com/sage-x-project/sshauth/transport"
)

// Builder constructs a Session with a fluent API, mirroring the
// teacher's handshake session builder.
type Builder struct {
	session *Session
}

// NewBuilder initializes a builder with a fresh ID and default state.
func NewBuilder(username string, tr transport.Transport) *Builder {
	now := time.Now().UTC()
	return &Builder{
		session: &Session{
			ID:         GeneralPrefix + "-" + uuid.NewString(),
			Username:   username,
			Transport:  tr,
			createdAt:  now,
			lastUsedAt: now,
			State:      authstate.None,
			Pending:    authstate.PendingNone,
		},
	}
}

// WithIdentityFiles sets the ordered list of private-key paths the auto
// driver walks.
func (b *Builder) WithIdentityFiles(paths ...string) *Builder {
	b.session.IdentityFiles = paths
	return b
}

// WithCrypto assigns the negotiated session identifier and delayed
// compression flag.
func (b *Builder) WithCrypto(c NegotiatedCrypto) *Builder {
	b.session.Crypto = c
	return b
}

// WithCallbacks assigns the event callbacks.
func (b *Builder) WithCallbacks(c Callbacks) *Builder {
	b.session.Callbacks = c
	return b
}

// Build returns the constructed Session.
func (b *Builder) Build() *Session {
	metrics.SessionsCreated.Inc()
	metrics.SessionsActive.Inc()
	return b.session
}

// Lock and Unlock expose the session's mutex directly so the userauth
// packet dispatcher (which runs from the transport's read loop) and a
// method driver (called from the application's goroutine) can serialize
// without either package reaching into the other's internals.
func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

// CreatedAt and LastUsedAt report the session's activity timestamps.
func (s *Session) CreatedAt() time.Time  { return s.createdAt }
func (s *Session) LastUsedAt() time.Time { return s.lastUsedAt }

// Touch updates the last-activity timestamp; the userauth dispatcher
// calls it for every dispatched packet.
func (s *Session) Touch() {
	s.lastUsedAt = time.Now()
}

// IdleSince reports whether the session has seen no activity for at
// least d.
func (s *Session) IdleSince(d time.Duration) bool {
	return time.Since(s.lastUsedAt) >= d
}

// BeginPending installs call as the single in-flight driver marker. It
// returns false if a different call is already pending; the driver
// skeleton (client's beginOrResume) treats that as a fatal re-entrancy
// error (the one-in-flight invariant coordinating drivers with the
// packet dispatcher).
func (s *Session) BeginPending(call authstate.PendingCall) bool {
	if s.Pending != authstate.PendingNone && s.Pending != call {
		return false
	}
	s.Pending = call
	return true
}

// ClearPending releases the in-flight marker once a driver call reaches
// a terminal Result.
func (s *Session) ClearPending() {
	s.Pending = authstate.PendingNone
}

// ResetForSend clears State back to None immediately before a driver
// sends a new USERAUTH_REQUEST.
func (s *Session) ResetForSend() {
	s.State = authstate.None
}

// MarkAuthenticated transitions the session to its terminal success
// state exactly once, firing OnAuthenticated and, if delayed
// compression was negotiated, EnableCompression first.
func (s *Session) MarkAuthenticated() {
	if s.Authenticated {
		return
	}
	s.Authenticated = true
	metrics.SessionsActive.Dec()
	metrics.SessionsAuthenticated.Inc()
	metrics.SessionAuthDuration.Observe(time.Since(s.createdAt).Seconds())
	if s.Crypto.DelayedCompression && s.Callbacks.EnableCompression != nil {
		s.Callbacks.EnableCompression(s)
	}
	if s.Callbacks.OnAuthenticated != nil {
		s.Callbacks.OnAuthenticated(s)
	}
}

// ScrubKbdint releases the live keyboard-interactive scratch object,
// zeroing any answers it holds, and clears the field.
func (s *Session) ScrubKbdint() {
	if s.Kbdint == nil {
		return
	}
	s.Kbdint.Scrub()
	s.Kbdint = nil
}
