package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sage-x-project/sshauth/authstate"
	"github.com/sage-x-project/sshauth/pki"
	"github.com/sage-x-project/sshauth/session"
	"github.com/sage-x-project/sshauth/transport"
	"github.com/sage-x-project/sshauth/userauth"
	"github.com/sage-x-project/sshauth/wire"
)

func newTestSession(username string, tr *transport.Stub) *session.Session {
	s := session.NewBuilder(username, tr).Build()
	d := userauth.NewDispatcher(s)
	tr.SetHandler(d.Handle)
	return s
}

func failurePacket(methods string, partial bool) []byte {
	return wire.NewWriter().
		PutByte(userauth.MsgUserauthFailure).
		PutASCII(methods).
		PutBool(partial).
		Bytes()
}

func successPacket() []byte {
	return wire.NewWriter().PutByte(userauth.MsgUserauthSuccess).Bytes()
}

func pkOKPacket(algorithm string, blob []byte) []byte {
	return wire.NewWriter().
		PutByte(userauth.MsgUserauthPKOK).
		PutASCII(algorithm).
		PutString(blob).
		Bytes()
}

func TestClientBannerReflectsLatestServerBanner(t *testing.T) {
	s := session.NewBuilder("alice", transport.NewStub()).Build()
	d := userauth.NewDispatcher(s)
	c := New(s, nil, nil)

	text, ok := c.Banner()
	assert.False(t, ok)
	assert.Empty(t, text)

	banner := wire.NewWriter().PutASCII("Welcome").PutASCII("en").Bytes()
	require.NoError(t, d.Handle(userauth.MsgUserauthBanner, banner))

	text, ok = c.Banner()
	assert.True(t, ok)
	assert.Equal(t, "Welcome", text)
}

func TestAuthNoneProvokesFailureAndListsMethods(t *testing.T) {
	tr := transport.NewStub()
	s := newTestSession("alice", tr)
	c := New(s, nil, nil)

	tr.EnqueueServerPacket(failurePacket("password,publickey", false))
	result, err := c.AuthNone("")
	require.NoError(t, err)
	assert.Equal(t, authstate.AuthDenied, result)
	assert.True(t, c.ListMethods().HasPassword())
	assert.True(t, c.ListMethods().HasPublicKey())
	assert.Equal(t, authstate.PendingNone, s.Pending)
}

func TestAuthPasswordSuccessEnablesDelayedCompression(t *testing.T) {
	tr := transport.NewStub()
	s := session.NewBuilder("bob", tr).
		WithCrypto(session.NegotiatedCrypto{SessionID: []byte("sid"), DelayedCompression: true}).
		Build()
	d := userauth.NewDispatcher(s)
	tr.SetHandler(d.Handle)

	var enabled, notified bool
	s.Callbacks.EnableCompression = func(*session.Session) { enabled = true }
	s.Callbacks.OnAuthenticated = func(*session.Session) { notified = true }

	c := New(s, nil, nil)
	tr.EnqueueServerPacket(successPacket())

	result, err := c.AuthPassword("", []byte("hunter2"))
	require.NoError(t, err)
	assert.Equal(t, authstate.AuthSuccess, result)
	assert.True(t, enabled)
	assert.True(t, notified)
	assert.True(t, s.Authenticated)
}

func TestAuthTryPublicKeyThenSignDenied(t *testing.T) {
	tr := transport.NewStub()
	s := session.NewBuilder("carol", tr).
		WithCrypto(session.NegotiatedCrypto{SessionID: []byte("sid")}).
		Build()
	d := userauth.NewDispatcher(s)
	tr.SetHandler(d.Handle)
	c := New(s, nil, nil)

	kp, err := pki.GenerateEd25519()
	require.NoError(t, err)
	blob, err := kp.PublicKeyBlob()
	require.NoError(t, err)

	tr.EnqueueServerPacket(pkOKPacket(kp.Algorithm(), blob))
	offerResult, err := c.AuthTryPublicKey("", kp)
	require.NoError(t, err)
	assert.Equal(t, authstate.AuthSuccess, offerResult)

	tr.EnqueueServerPacket(failurePacket("publickey", false))
	signResult, err := c.AuthPublicKey("", kp)
	require.NoError(t, err)
	assert.Equal(t, authstate.AuthDenied, signResult)
}

func TestAuthKbdintTwoPromptExchange(t *testing.T) {
	tr := transport.NewStub()
	s := newTestSession("dave", tr)
	c := New(s, nil, nil)

	infoReq := wire.NewWriter().
		PutByte(userauth.MsgUserauthInfoRequest).
		PutASCII("challenge").
		PutASCII("enter two codes").
		PutASCII(""). // lang
		PutUint32(2).
		PutASCII("Code 1: ").PutBool(true).
		PutASCII("Code 2: ").PutBool(false).
		Bytes()
	tr.EnqueueServerPacket(infoReq)

	result, err := c.AuthKbdint("", "")
	require.NoError(t, err)
	assert.Equal(t, authstate.AuthInfo, result)
	require.Equal(t, 2, c.KbdintNumPrompts())

	text, echo, err := c.KbdintPrompt(0)
	require.NoError(t, err)
	assert.Equal(t, "Code 1: ", text)
	assert.True(t, echo)

	require.NoError(t, c.KbdintSetAnswer(0, "111111"))
	require.NoError(t, c.KbdintSetAnswer(1, "222222"))

	tr.EnqueueServerPacket(successPacket())
	result, err = c.AuthKbdint("", "")
	require.NoError(t, err)
	assert.Equal(t, authstate.AuthSuccess, result)
	assert.Nil(t, s.Kbdint)
}

func TestDriverReEntrancyIsRejectedForDifferentCall(t *testing.T) {
	tr := transport.NewStub()
	s := newTestSession("erin", tr)
	c := New(s, nil, nil)

	tr.ServiceStatus = transport.StatusAgain
	result, err := c.AuthNone("")
	require.NoError(t, err)
	assert.Equal(t, authstate.AuthAgain, result)
	assert.Equal(t, authstate.PendingAuthNone, s.Pending)

	_, err = c.AuthPassword("", []byte("x"))
	assert.Error(t, err)
}

func TestDriverResumesAfterAgain(t *testing.T) {
	tr := transport.NewStub()
	s := newTestSession("frank", tr)
	c := New(s, nil, nil)

	tr.ServiceStatus = transport.StatusAgain
	result, err := c.AuthNone("")
	require.NoError(t, err)
	assert.Equal(t, authstate.AuthAgain, result)

	tr.EnqueueServerPacket(failurePacket("password", false))
	result, err = c.AuthNone("")
	require.NoError(t, err)
	assert.Equal(t, authstate.AuthDenied, result)
	assert.Equal(t, authstate.PendingNone, s.Pending)
}
