package authstate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateTerminal(t *testing.T) {
	assert.False(t, None.Terminal())
	assert.False(t, KbdintSent.Terminal())
	assert.True(t, Info.Terminal())
	assert.True(t, PKOK.Terminal())
	assert.True(t, Partial.Terminal())
	assert.True(t, Failed.Terminal())
	assert.True(t, Success.Terminal())
	assert.True(t, Error.Terminal())
}

func TestParseMethods(t *testing.T) {
	m := ParseMethods("publickey,password,keyboard-interactive")
	assert.True(t, m.HasPublicKey())
	assert.True(t, m.HasPassword())
	assert.True(t, m.HasKeyboardInteractive())
	assert.False(t, m.HasHostbased())

	empty := ParseMethods("")
	assert.False(t, empty.HasPassword())
}

func TestFromState(t *testing.T) {
	cases := []struct {
		s    State
		want Result
	}{
		{None, AuthAgain},
		{KbdintSent, AuthAgain},
		{Info, AuthInfo},
		{PKOK, AuthSuccess},
		{Partial, AuthPartial},
		{Failed, AuthDenied},
		{Success, AuthSuccess},
		{Error, AuthError},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, FromState(c.s), "state %s", c.s)
	}
}

func TestStringers(t *testing.T) {
	assert.NotEmpty(t, Success.String())
	assert.NotEmpty(t, PendingAuthPassword.String())
	assert.NotEmpty(t, AuthDenied.String())
}
