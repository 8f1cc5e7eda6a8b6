package client

import (
	"github.com/sage-x-project/sshauth/authstate"
	"github.com/sage-x-project/sshauth/userauth"
)

// AuthNone sends the trivial "none" probe, typically used to enumerate
// the server's acceptable methods via the USERAUTH_FAILURE it provokes.
func (c *Client) AuthNone(username string) (authstate.Result, error) {
	resuming, err := c.beginOrResume(authstate.PendingAuthNone)
	if err != nil {
		return authstate.AuthError, err
	}
	if resuming {
		return c.await()
	}
	return c.send(userauth.BuildNoneRequest(c.username(username)))
}
