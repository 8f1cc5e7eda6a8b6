package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sage-x-project/sshauth/authstate"
	"github.com/sage-x-project/sshauth/transport"
)

func TestBuilderDefaults(t *testing.T) {
	tr := transport.NewStub()
	s := NewBuilder("alice", tr).Build()
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, "alice", s.Username)
	assert.Equal(t, authstate.None, s.State)
	assert.Equal(t, authstate.PendingNone, s.Pending)
	assert.False(t, s.Authenticated)
}

func TestBuilderOptions(t *testing.T) {
	tr := transport.NewStub()
	called := false
	s := NewBuilder("bob", tr).
		WithIdentityFiles("/home/bob/.ssh/id_ed25519").
		WithCrypto(NegotiatedCrypto{SessionID: []byte("exchange-hash"), DelayedCompression: true}).
		WithCallbacks(Callbacks{EnableCompression: func(*Session) { called = true }}).
		Build()

	assert.Equal(t, []string{"/home/bob/.ssh/id_ed25519"}, s.IdentityFiles)
	assert.True(t, s.Crypto.DelayedCompression)

	s.MarkAuthenticated()
	assert.True(t, called)
}

func TestBeginPendingEnforcesSingleInFlight(t *testing.T) {
	s := NewBuilder("carol", transport.NewStub()).Build()
	require.True(t, s.BeginPending(authstate.PendingAuthPassword))
	// Resuming the same call is allowed.
	require.True(t, s.BeginPending(authstate.PendingAuthPassword))
	// A different call while one is in flight is rejected.
	require.False(t, s.BeginPending(authstate.PendingAuthOfferPubkey))
	s.ClearPending()
	require.True(t, s.BeginPending(authstate.PendingAuthOfferPubkey))
}

func TestMarkAuthenticatedFiresOnce(t *testing.T) {
	count := 0
	s := NewBuilder("dave", transport.NewStub()).
		WithCallbacks(Callbacks{OnAuthenticated: func(*Session) { count++ }}).
		Build()
	s.MarkAuthenticated()
	s.MarkAuthenticated()
	assert.Equal(t, 1, count)
}

func TestScrubKbdintIsNilSafe(t *testing.T) {
	s := NewBuilder("erin", transport.NewStub()).Build()
	s.ScrubKbdint()
	assert.Nil(t, s.Kbdint)
}

func TestIdleSince(t *testing.T) {
	s := NewBuilder("frank", transport.NewStub()).Build()
	assert.False(t, s.IdleSince(time.Hour))
}
