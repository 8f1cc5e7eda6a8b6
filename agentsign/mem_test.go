package agentsign

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sage-x-project/sshauth/pki"
)

func TestMemAgentIdentitiesAndSign(t *testing.T) {
	kp, err := pki.GenerateEd25519()
	require.NoError(t, err)
	agent := NewMemAgent(kp)

	ids, err := agent.Identities()
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.Equal(t, kp.ID(), ids[0].Comment)

	sig, err := agent.Sign(ids[0].Blob, []byte("buffer"))
	require.NoError(t, err)
	assert.NoError(t, kp.Verify([]byte("buffer"), sig))
}

func TestMemAgentSignUnknownIdentity(t *testing.T) {
	agent := NewMemAgent()
	_, err := agent.Sign([]byte("not-a-real-blob"), []byte("buffer"))
	assert.ErrorIs(t, err, ErrIdentityNotFound)
}

func TestMemAgentAdd(t *testing.T) {
	agent := NewMemAgent()
	kp, err := pki.GenerateEd25519()
	require.NoError(t, err)
	agent.Add(kp)

	ids, err := agent.Identities()
	require.NoError(t, err)
	assert.Len(t, ids, 1)
}
