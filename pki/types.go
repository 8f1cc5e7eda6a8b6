// SAGE - Secure Agent Guarantee Engine
// Copyright (C) 2025 SAGE-X-project
//
// This file is part of SAGE.
//
// SAGE is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// SAGE is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with SAGE. If not, see <https://www.gnu.org/licenses/>.

// Package pki is the PKI collaborator of the specification: key loading,
// export of public-key wire blobs, and signing given a buffer and a key.
package pki

import "errors"

var (
	ErrKeyNotFound        = errors.New("pki: key not found")
	ErrInvalidKeyType     = errors.New("pki: invalid key type")
	ErrInvalidSignature   = errors.New("pki: invalid signature")
	ErrPublicKeyOnly      = errors.New("pki: key pair has no private material loaded")
	ErrPassphraseRequired = errors.New("pki: private key is encrypted and no passphrase was supplied")
)

// PassphraseFunc prompts the caller for a passphrase to decrypt an
// encrypted private key. It is the "caller-supplied prompt callback" of
// spec section 4.7; nil means "do not prompt, fail instead".
type PassphraseFunc func(prompt string) ([]byte, error)

// KeyPair is one client identity: a public half that can always be
// offered, and (unless loaded public-only) a private half that can sign.
type KeyPair interface {
	// ID is a short, stable identifier for logging and key stores.
	ID() string

	// Algorithm returns the SSH wire algorithm name, e.g. "ssh-ed25519".
	Algorithm() string

	// PublicKeyBlob returns the SSH wire-format public key blob: the
	// algorithm name followed by algorithm-specific key fields, each
	// framed as an SSH string (RFC 4253 section 6.6). This is the raw
	// blob a caller frames with wire.Writer.PutString for the
	// publickey-offer and publickey-sign USERAUTH_REQUEST suffixes.
	PublicKeyBlob() ([]byte, error)

	// HasPrivate reports whether Sign can succeed.
	HasPrivate() bool

	// Sign signs buf and returns it wrapped as an SSH signature blob:
	// string algorithm-name, string raw-signature (RFC 4252 section 7).
	// Returns ErrPublicKeyOnly if HasPrivate is false.
	Sign(buf []byte) ([]byte, error)

	// Verify checks sigBlob (in the same wrapped form Sign returns)
	// against buf.
	Verify(buf, sigBlob []byte) error
}

// Loader loads identities from the filesystem, the shape the auto driver
// (spec section 4.7) walks over.
type Loader interface {
	// LoadPublic reads a standalone public-key file and returns a
	// KeyPair that can offer but not sign (HasPrivate() == false).
	LoadPublic(path string) (KeyPair, error)

	// LoadPrivate reads a private-key file, prompting via prompt (if
	// non-nil) when the key is passphrase-encrypted.
	LoadPrivate(path string, prompt PassphraseFunc) (KeyPair, error)

	// WritePublic persists blob (as returned by KeyPair.PublicKeyBlob)
	// to path in the loader's public-file format. Best-effort per spec
	// section 4.7: callers should log, not fail, on error.
	WritePublic(path string, algorithm string, blob []byte) error
}
