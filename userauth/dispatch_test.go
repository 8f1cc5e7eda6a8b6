package userauth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sage-x-project/sshauth/authstate"
	"github.com/sage-x-project/sshauth/session"
	"github.com/sage-x-project/sshauth/transport"
	"github.com/sage-x-project/sshauth/wire"
)

func TestDispatchBanner(t *testing.T) {
	s := session.NewBuilder("alice", transport.NewStub()).Build()
	d := NewDispatcher(s)

	body := wire.NewWriter().PutASCII("Welcome").PutASCII("en").Bytes()
	require.NoError(t, d.Handle(MsgUserauthBanner, body))
	require.NotNil(t, s.Banner)
	assert.Equal(t, "Welcome", *s.Banner)
	assert.Equal(t, authstate.None, s.State)
}

func TestDispatchFailureNonPartial(t *testing.T) {
	s := session.NewBuilder("alice", transport.NewStub()).Build()
	d := NewDispatcher(s)

	body := wire.NewWriter().PutASCII("password").PutBool(false).Bytes()
	require.NoError(t, d.Handle(MsgUserauthFailure, body))
	assert.Equal(t, authstate.Failed, s.State)
	assert.True(t, s.Methods.HasPassword())
	assert.False(t, s.Methods.HasPublicKey())
}

func TestDispatchFailurePartial(t *testing.T) {
	s := session.NewBuilder("alice", transport.NewStub()).Build()
	d := NewDispatcher(s)

	body := wire.NewWriter().PutASCII("publickey").PutBool(true).Bytes()
	require.NoError(t, d.Handle(MsgUserauthFailure, body))
	assert.Equal(t, authstate.Partial, s.State)
	assert.True(t, s.Methods.HasPublicKey())
}

func TestDispatchSuccessMarksAuthenticated(t *testing.T) {
	fired := false
	s := session.NewBuilder("alice", transport.NewStub()).
		WithCallbacks(session.Callbacks{OnAuthenticated: func(*session.Session) { fired = true }}).
		Build()
	d := NewDispatcher(s)

	require.NoError(t, d.Handle(MsgUserauthSuccess, nil))
	assert.Equal(t, authstate.Success, s.State)
	assert.True(t, s.Authenticated)
	assert.True(t, fired)
}

func TestDispatchMessage60AsPKOKWhenNotKbdintSent(t *testing.T) {
	s := session.NewBuilder("alice", transport.NewStub()).Build()
	s.State = authstate.None
	d := NewDispatcher(s)

	body := wire.NewWriter().PutASCII("ssh-ed25519").PutString([]byte("blob")).Bytes()
	require.NoError(t, d.Handle(MsgUserauthPKOK, body))
	assert.Equal(t, authstate.PKOK, s.State)
}

func TestDispatchMessage60AsInfoRequestWhenKbdintSent(t *testing.T) {
	s := session.NewBuilder("alice", transport.NewStub()).Build()
	s.State = authstate.KbdintSent
	d := NewDispatcher(s)

	body := wire.NewWriter().
		PutASCII("PAM").PutASCII("auth").PutASCII("").
		PutUint32(1).PutASCII("Password:").PutBool(false).
		Bytes()
	require.NoError(t, d.Handle(MsgUserauthInfoRequest, body))
	assert.Equal(t, authstate.Info, s.State)
	require.NotNil(t, s.Kbdint)
	assert.Equal(t, 1, s.Kbdint.NumPrompts())
}

func TestDispatchInfoRequestBoundsViolationIsFatal(t *testing.T) {
	s := session.NewBuilder("alice", transport.NewStub()).Build()
	s.State = authstate.KbdintSent
	d := NewDispatcher(s)

	body := wire.NewWriter().PutASCII("PAM").PutASCII("auth").PutASCII("").PutUint32(0).Bytes()
	err := d.Handle(MsgUserauthInfoRequest, body)
	assert.Error(t, err)
	assert.Equal(t, authstate.Error, s.State)
	assert.Nil(t, s.Kbdint)
}
