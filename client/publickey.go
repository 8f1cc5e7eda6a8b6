package client

import (
	"fmt"

	"github.com/sage-x-project/sshauth/authstate"
	"github.com/sage-x-project/sshauth/pki"
	"github.com/sage-x-project/sshauth/userauth"
)

// AuthTryPublicKey offers pub (which need not carry private material) to
// the server and asks whether it would be acceptable, without actually
// signing anything yet. A SUCCESS-mapped result (driven by PK_OK) means
// the caller should follow up with AuthPublicKey or AuthAgent using the
// matching private key.
func (c *Client) AuthTryPublicKey(username string, pub pki.KeyPair) (authstate.Result, error) {
	resuming, err := c.beginOrResume(authstate.PendingAuthOfferPubkey)
	if err != nil {
		return authstate.AuthError, err
	}
	if resuming {
		return c.await()
	}
	blob, err := pub.PublicKeyBlob()
	if err != nil {
		c.Session.ClearPending()
		return authstate.AuthError, fmt.Errorf("client: public key blob: %w", err)
	}
	packet := userauth.BuildPublicKeyOfferRequest(c.username(username), pub.Algorithm(), blob)
	return c.send(packet)
}

// AuthPublicKey signs the session's canonical buffer with priv (which
// must carry private material) and submits it as a publickey "sign"
// request.
func (c *Client) AuthPublicKey(username string, priv pki.KeyPair) (authstate.Result, error) {
	resuming, err := c.beginOrResume(authstate.PendingAuthPubkey)
	if err != nil {
		return authstate.AuthError, err
	}
	if resuming {
		return c.await()
	}
	if !priv.HasPrivate() {
		c.Session.ClearPending()
		return authstate.AuthError, pki.ErrPublicKeyOnly
	}

	user := c.username(username)
	blob, err := priv.PublicKeyBlob()
	if err != nil {
		c.Session.ClearPending()
		return authstate.AuthError, fmt.Errorf("client: public key blob: %w", err)
	}
	payload := userauth.PublicKeySignaturePayload(c.Session.Crypto.SessionID, user, priv.Algorithm(), blob)
	sigBlob, err := priv.Sign(payload)
	if err != nil {
		c.Session.ClearPending()
		return authstate.AuthError, fmt.Errorf("client: sign: %w", err)
	}
	packet := userauth.BuildPublicKeySignRequest(user, priv.Algorithm(), blob, sigBlob)
	return c.send(packet)
}
