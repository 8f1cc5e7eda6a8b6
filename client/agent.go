package client

import (
	"fmt"

	"github.com/sage-x-project/sshauth/agentsign"
	"github.com/sage-x-project/sshauth/authstate"
	"github.com/sage-x-project/sshauth/pki"
	"github.com/sage-x-project/sshauth/userauth"
)

// AuthAgent walks the identities reported by the configured Agent in
// order: offer each one, and for every offer that comes back PK_OK, ask
// the agent to sign the driver's canonical buffer and submit it as a
// publickey-sign request. The private key itself never leaves the
// agent process (specification section 4.6). The first SUCCESS wins;
// any other terminal result moves on to the next identity.
func (c *Client) AuthAgent(username string) (authstate.Result, error) {
	if c.Agent == nil {
		return authstate.AuthError, fmt.Errorf("client: no agent configured")
	}
	identities, err := c.Agent.Identities()
	if err != nil {
		return authstate.AuthError, fmt.Errorf("client: list agent identities: %w", err)
	}

	var last authstate.Result = authstate.AuthDenied
	for _, id := range identities {
		result, err := c.tryAgentIdentity(username, id)
		if err != nil {
			return authstate.AuthError, err
		}
		if result == authstate.AuthAgain {
			return authstate.AuthAgain, nil
		}
		if result == authstate.AuthSuccess {
			return result, nil
		}
		last = result
	}
	return last, nil
}

func (c *Client) tryAgentIdentity(username string, id agentsign.Identity) (authstate.Result, error) {
	pub, err := pki.FromPublicKeyBlob(id.Blob)
	if err != nil {
		return authstate.AuthError, fmt.Errorf("client: agent identity %q: %w", id.Comment, err)
	}

	offerResult, err := c.AuthTryPublicKey(username, pub)
	if err != nil || offerResult != authstate.AuthSuccess {
		return offerResult, err
	}

	return c.signWithAgent(username, pub, id)
}

// signWithAgent repeats the sign half of the publickey driver
// (specification section 4.5) but asks the agent for the signature
// instead of calling KeyPair.Sign, since the loaded KeyPair here is
// public-only.
func (c *Client) signWithAgent(username string, pub pki.KeyPair, id agentsign.Identity) (authstate.Result, error) {
	resuming, err := c.beginOrResume(authstate.PendingAuthAgent)
	if err != nil {
		return authstate.AuthError, err
	}
	if resuming {
		return c.await()
	}

	user := c.username(username)
	payload := userauth.PublicKeySignaturePayload(c.Session.Crypto.SessionID, user, pub.Algorithm(), id.Blob)
	sigBlob, err := c.Agent.Sign(id.Blob, payload)
	if err != nil {
		c.Session.ClearPending()
		return authstate.AuthError, fmt.Errorf("client: agent sign: %w", err)
	}
	packet := userauth.BuildPublicKeySignRequest(user, pub.Algorithm(), id.Blob, sigBlob)
	return c.send(packet)
}
