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

package pki

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"golang.org/x/crypto/scrypt"

	"github.com/sage-x-project/sshauth/wire"
)

const (
	scryptN  = 1 << 15
	scryptR  = 8
	scryptP  = 1
	saltSize = 16
	aesKeySize = 32
)

// publicKeyFile is the on-disk envelope WritePublic/LoadPublic read and
// write: a ".pub" sibling of the private key file, mirroring the teacher's
// file-storage key-file envelope but carrying the raw SSH wire blob rather
// than a JWK export.
type publicKeyFile struct {
	Algorithm string `json:"algorithm"`
	Blob      []byte `json:"blob"`
}

// privateKeyFile is the on-disk envelope for a private identity. When
// Encrypted is true, Seed holds nothing and Salt/Nonce/Ciphertext hold an
// AES-256-GCM-wrapped seed keyed by scrypt(passphrase, Salt).
type privateKeyFile struct {
	Algorithm  string `json:"algorithm"`
	Encrypted  bool   `json:"encrypted"`
	Salt       []byte `json:"salt,omitempty"`
	Nonce      []byte `json:"nonce,omitempty"`
	Ciphertext []byte `json:"ciphertext,omitempty"`
	Seed       []byte `json:"seed,omitempty"`
}

// FileLoader implements Loader against a pair of JSON envelope files per
// identity, the layout the auto driver (specification section 4.7) walks:
// a private-key file and an optional ".pub" sibling.
type FileLoader struct{}

// NewFileLoader returns a ready-to-use file-based Loader.
func NewFileLoader() *FileLoader { return &FileLoader{} }

func (l *FileLoader) LoadPublic(path string) (KeyPair, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("pki: read public key %s: %w", path, err)
	}
	var pf publicKeyFile
	if err := json.Unmarshal(raw, &pf); err != nil {
		return nil, fmt.Errorf("pki: parse public key %s: %w", path, err)
	}
	return fromPublicBlob(pf.Algorithm, pf.Blob)
}

func (l *FileLoader) LoadPrivate(path string, prompt PassphraseFunc) (KeyPair, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("pki: read private key %s: %w", path, err)
	}
	var pf privateKeyFile
	if err := json.Unmarshal(raw, &pf); err != nil {
		return nil, fmt.Errorf("pki: parse private key %s: %w", path, err)
	}

	seed := pf.Seed
	if pf.Encrypted {
		if prompt == nil {
			return nil, ErrPassphraseRequired
		}
		pass, err := prompt(fmt.Sprintf("Enter passphrase for %s: ", path))
		if err != nil {
			return nil, fmt.Errorf("pki: passphrase prompt: %w", err)
		}
		defer scrubBytes(pass)
		seed, err = decryptSeed(pass, pf.Salt, pf.Nonce, pf.Ciphertext)
		if err != nil {
			return nil, fmt.Errorf("pki: decrypt %s: %w", path, err)
		}
		defer scrubBytes(seed)
	}

	return fromSeed(pf.Algorithm, seed)
}

func (l *FileLoader) WritePublic(path string, algorithm string, blob []byte) error {
	pf := publicKeyFile{Algorithm: algorithm, Blob: blob}
	data, err := json.MarshalIndent(pf, "", "  ")
	if err != nil {
		return fmt.Errorf("pki: marshal public key: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("pki: create key directory: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// WritePrivateSeed persists seed to path as a private-key envelope,
// encrypting it under passphrase when non-nil. It is not part of the
// Loader interface (the specification's client only ever reads
// identities) but is the counterpart LoadPrivate expects, used by tests
// and identity-provisioning tooling.
func WritePrivateSeed(path, algorithm string, seed, passphrase []byte) error {
	pf := privateKeyFile{Algorithm: algorithm}
	if passphrase != nil {
		salt, nonce, ciphertext, err := encryptSeed(passphrase, seed)
		if err != nil {
			return fmt.Errorf("pki: encrypt seed: %w", err)
		}
		pf.Encrypted = true
		pf.Salt, pf.Nonce, pf.Ciphertext = salt, nonce, ciphertext
	} else {
		pf.Seed = seed
	}
	data, err := json.MarshalIndent(pf, "", "  ")
	if err != nil {
		return fmt.Errorf("pki: marshal private key: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("pki: create key directory: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

// FromPublicKeyBlob parses an SSH wire-format public key blob (the same
// shape PublicKeyBlob returns, algorithm name embedded as the first
// field) into a public-only KeyPair. It is how identities reported by an
// agentsign.Agent — which carry only a raw blob, not a stored file — are
// turned into something the publickey-offer driver can offer.
func FromPublicKeyBlob(blob []byte) (KeyPair, error) {
	r := wire.NewReader(blob)
	algo, err := r.ASCIIString()
	if err != nil {
		return nil, fmt.Errorf("pki: public blob algorithm: %w", err)
	}
	return fromPublicBlob(algo, blob)
}

func fromPublicBlob(algorithm string, blob []byte) (KeyPair, error) {
	r := wire.NewReader(blob)
	algo, err := r.ASCIIString()
	if err != nil {
		return nil, fmt.Errorf("pki: public blob algorithm: %w", err)
	}
	if algo != algorithm {
		return nil, fmt.Errorf("%w: file declares %s, blob carries %s", ErrInvalidKeyType, algorithm, algo)
	}
	raw, err := r.String()
	if err != nil {
		return nil, fmt.Errorf("pki: public blob key material: %w", err)
	}
	switch algo {
	case AlgorithmEd25519:
		if len(raw) != ed25519.PublicKeySize {
			return nil, fmt.Errorf("%w: ed25519 public key must be %d bytes, got %d", ErrInvalidKeyType, ed25519.PublicKeySize, len(raw))
		}
		return newEd25519KeyPair(ed25519.PublicKey(raw), nil), nil
	case AlgorithmSecp256k1:
		pub, err := secp256k1.ParsePubKey(raw)
		if err != nil {
			return nil, fmt.Errorf("pki: parse secp256k1 public key: %w", err)
		}
		return newSecp256k1KeyPair(pub, nil), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidKeyType, algo)
	}
}

func fromSeed(algorithm string, seed []byte) (KeyPair, error) {
	switch algorithm {
	case AlgorithmEd25519:
		return NewEd25519FromSeed(seed)
	case AlgorithmSecp256k1:
		priv := secp256k1.PrivKeyFromBytes(seed)
		return newSecp256k1KeyPair(priv.PubKey(), priv), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidKeyType, algorithm)
	}
}

func encryptSeed(passphrase, seed []byte) (salt, nonce, ciphertext []byte, err error) {
	salt = make([]byte, saltSize)
	if _, err = rand.Read(salt); err != nil {
		return nil, nil, nil, err
	}
	key, err := scrypt.Key(passphrase, salt, scryptN, scryptR, scryptP, aesKeySize)
	if err != nil {
		return nil, nil, nil, err
	}
	defer scrubBytes(key)
	gcm, err := newGCM(key)
	if err != nil {
		return nil, nil, nil, err
	}
	nonce = make([]byte, gcm.NonceSize())
	if _, err = rand.Read(nonce); err != nil {
		return nil, nil, nil, err
	}
	return salt, nonce, gcm.Seal(nil, nonce, seed, nil), nil
}

func decryptSeed(passphrase, salt, nonce, ciphertext []byte) ([]byte, error) {
	key, err := scrypt.Key(passphrase, salt, scryptN, scryptR, scryptP, aesKeySize)
	if err != nil {
		return nil, err
	}
	defer scrubBytes(key)
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	return gcm.Open(nil, nonce, ciphertext, nil)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func scrubBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
