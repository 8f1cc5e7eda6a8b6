package client

import (
	"github.com/sage-x-project/sshauth/authstate"
	"github.com/sage-x-project/sshauth/userauth"
)

// AuthPassword attempts password authentication. The pending marker
// used here is distinct from the publickey-offer marker — the
// specification's design notes call out a copy-paste bug in the source
// this subsystem is modeled on, where the password driver reused the
// publickey-offer marker; that mistake is not replicated here.
func (c *Client) AuthPassword(username string, password []byte) (authstate.Result, error) {
	resuming, err := c.beginOrResume(authstate.PendingAuthPassword)
	if err != nil {
		return authstate.AuthError, err
	}
	if resuming {
		return c.await()
	}
	packet := userauth.BuildPasswordRequest(c.username(username), password)
	return c.send(packet)
}
