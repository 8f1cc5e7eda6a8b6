// Package agentsign is the Agent collaborator of the specification: a
// narrow signing delegate the publickey and agent drivers consult instead
// of holding private key material themselves.
package agentsign

import "errors"

// ErrIdentityNotFound is returned by Sign when blob does not match any
// identity the agent currently holds.
var ErrIdentityNotFound = errors.New("agentsign: identity not found")

// Identity is one key an agent offers: the SSH wire public-key blob (the
// same framing pki.KeyPair.PublicKeyBlob produces) plus a free-form
// comment, mirroring the agent protocol's IDENTITIES_ANSWER entries.
type Identity struct {
	Blob    []byte
	Comment string
}

// Agent signs on behalf of identities it holds, without ever exposing
// private key material to the caller.
type Agent interface {
	// Identities lists the public keys currently available for signing.
	Identities() ([]Identity, error)

	// Sign produces an SSH signature blob (RFC 4252 section 7 framing)
	// over buf using the private key matching blob. Returns
	// ErrIdentityNotFound if no loaded identity matches.
	Sign(blob, buf []byte) ([]byte, error)
}
