package agentsign

import (
	"bytes"
	"sync"

	"github.com/sage-x-project/sshauth/pki"
)

// MemAgent is an in-process Agent backed by a fixed set of key pairs. It
// exists for tests and for embedding sshauth in a process that already
// holds its own keys and has no need for a separate ssh-agent socket.
type MemAgent struct {
	mu   sync.RWMutex
	keys []pki.KeyPair
}

// NewMemAgent wraps keys as an Agent. Each key must have private material
// (HasPrivate() == true); MemAgent never partially loads a public-only key.
func NewMemAgent(keys ...pki.KeyPair) *MemAgent {
	return &MemAgent{keys: keys}
}

// Add appends a key to the set the agent offers.
func (a *MemAgent) Add(k pki.KeyPair) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.keys = append(a.keys, k)
}

func (a *MemAgent) Identities() ([]Identity, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]Identity, 0, len(a.keys))
	for _, k := range a.keys {
		blob, err := k.PublicKeyBlob()
		if err != nil {
			return nil, err
		}
		out = append(out, Identity{Blob: blob, Comment: k.ID()})
	}
	return out, nil
}

func (a *MemAgent) Sign(blob, buf []byte) ([]byte, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, k := range a.keys {
		kb, err := k.PublicKeyBlob()
		if err != nil {
			return nil, err
		}
		if bytes.Equal(kb, blob) {
			return k.Sign(buf)
		}
	}
	return nil, ErrIdentityNotFound
}
