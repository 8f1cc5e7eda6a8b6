package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sage-x-project/sshauth/kbdint"
	"github.com/sage-x-project/sshauth/transport"
)

func TestManagerAddGetRemove(t *testing.T) {
	m := NewManager()
	defer m.Close()

	s := NewBuilder("alice", transport.NewStub()).Build()
	m.Add(s)
	assert.Equal(t, 1, m.Count())

	got, ok := m.Get(s.ID)
	require.True(t, ok)
	assert.Same(t, s, got)

	m.Remove(s.ID)
	assert.Equal(t, 0, m.Count())
	_, ok = m.Get(s.ID)
	assert.False(t, ok)
}

func TestManagerRemoveScrubsKbdint(t *testing.T) {
	m := NewManager()
	defer m.Close()

	s := NewBuilder("bob", transport.NewStub()).Build()
	kb, err := kbdint.New("", "", []kbdint.Prompt{{Text: "Password: ", Echo: false}})
	require.NoError(t, err)
	require.NoError(t, kb.SetAnswer(0, "hunter2"))
	s.Kbdint = kb
	m.Add(s)

	m.Remove(s.ID)
	assert.Equal(t, []string{""}, kb.Answers())
}

func TestManagerSweepIdleEvictsStaleSessions(t *testing.T) {
	m := NewManager()
	defer m.Close()
	m.SetDefaultConfig(Config{MaxAge: time.Hour, IdleTimeout: time.Millisecond})

	s := NewBuilder("carol", transport.NewStub()).Build()
	m.Add(s)
	time.Sleep(5 * time.Millisecond)

	m.sweepIdle()
	assert.Equal(t, 0, m.Count())
}

func TestManagerSweepIdleKeepsAuthenticatedSessions(t *testing.T) {
	m := NewManager()
	defer m.Close()
	m.SetDefaultConfig(Config{MaxAge: time.Hour, IdleTimeout: time.Millisecond})

	s := NewBuilder("dave", transport.NewStub()).Build()
	s.MarkAuthenticated()
	m.Add(s)
	time.Sleep(5 * time.Millisecond)

	m.sweepIdle()
	assert.Equal(t, 1, m.Count())
}
