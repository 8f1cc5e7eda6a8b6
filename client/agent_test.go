package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sage-x-project/sshauth/agentsign"
	"github.com/sage-x-project/sshauth/authstate"
	"github.com/sage-x-project/sshauth/pki"
	"github.com/sage-x-project/sshauth/session"
	"github.com/sage-x-project/sshauth/transport"
	"github.com/sage-x-project/sshauth/userauth"
)

func TestAuthAgentSucceedsOnSecondIdentity(t *testing.T) {
	tr := transport.NewStub()
	s := session.NewBuilder("gale", tr).
		WithCrypto(session.NegotiatedCrypto{SessionID: []byte("sid")}).
		Build()
	d := userauth.NewDispatcher(s)
	tr.SetHandler(d.Handle)

	kp1, err := pki.GenerateEd25519()
	require.NoError(t, err)
	kp2, err := pki.GenerateSecp256k1()
	require.NoError(t, err)
	mem := agentsign.NewMemAgent(kp1, kp2)

	c := New(s, nil, mem)

	blob1, err := kp1.PublicKeyBlob()
	require.NoError(t, err)
	blob2, err := kp2.PublicKeyBlob()
	require.NoError(t, err)

	// First identity: offer denied outright.
	tr.EnqueueServerPacket(failurePacket("publickey", false))
	// Second identity: offer accepted, then sign accepted.
	tr.EnqueueServerPacket(pkOKPacket(kp2.Algorithm(), blob2))
	tr.EnqueueServerPacket(successPacket())

	result, err := c.AuthAgent("")
	require.NoError(t, err)
	assert.Equal(t, authstate.AuthSuccess, result)
	assert.Equal(t, authstate.PendingNone, s.Pending)

	// Both offers were sent, followed by the agent-signed request: three
	// packets in all.
	require.Len(t, tr.Sent, 3)
	_ = blob1
}

func TestAuthAgentExhaustsToDenied(t *testing.T) {
	tr := transport.NewStub()
	s := session.NewBuilder("hank", tr).Build()
	d := userauth.NewDispatcher(s)
	tr.SetHandler(d.Handle)

	kp, err := pki.GenerateEd25519()
	require.NoError(t, err)
	mem := agentsign.NewMemAgent(kp)
	c := New(s, nil, mem)

	tr.EnqueueServerPacket(failurePacket("password", false))
	result, err := c.AuthAgent("")
	require.NoError(t, err)
	assert.Equal(t, authstate.AuthDenied, result)
}

func TestAuthAgentNoAgentConfigured(t *testing.T) {
	tr := transport.NewStub()
	s := session.NewBuilder("iris", tr).Build()
	c := New(s, nil, nil)

	_, err := c.AuthAgent("")
	assert.Error(t, err)
}
