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
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"time"

	"filippo.io/edwards25519"

	"github.com/sage-x-project/sshauth/internal/metrics"
	"github.com/sage-x-project/sshauth/wire"
)

const AlgorithmEd25519 = "ssh-ed25519"

type ed25519KeyPair struct {
	pub  ed25519.PublicKey
	priv ed25519.PrivateKey // nil when public-only
	id   string
}

// GenerateEd25519 creates a fresh Ed25519 identity.
func GenerateEd25519() (KeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("pki: generate ed25519: %w", err)
	}
	return newEd25519KeyPair(pub, priv), nil
}

// NewEd25519FromSeed rebuilds a KeyPair from a 32-byte Ed25519 seed,
// deriving the public key by the same scalar multiplication the signing
// algorithm itself performs, via filippo.io/edwards25519 rather than the
// convenience wrapper in crypto/ed25519 — this is the derivation path
// the auto driver (spec section 4.7) exercises when only a private seed
// file is present and the ".pub" sibling must be synthesized.
func NewEd25519FromSeed(seed []byte) (KeyPair, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("pki: ed25519 seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	priv := ed25519.NewKeyFromSeed(seed)
	pub, err := derivePublicPoint(seed)
	if err != nil {
		return nil, err
	}
	if string(pub) != string(priv.Public().(ed25519.PublicKey)) {
		return nil, fmt.Errorf("pki: derived public key mismatch")
	}
	return newEd25519KeyPair(pub, priv), nil
}

// derivePublicPoint computes A = s*B for the clamped scalar derived from
// seed, using edwards25519's group arithmetic directly.
func derivePublicPoint(seed []byte) (ed25519.PublicKey, error) {
	h := sha512.Sum512(seed)
	scalar, err := edwards25519.NewScalar().SetBytesWithClamping(h[:32])
	if err != nil {
		return nil, fmt.Errorf("pki: clamp scalar: %w", err)
	}
	point := new(edwards25519.Point).ScalarBaseMult(scalar)
	return ed25519.PublicKey(point.Bytes()), nil
}

func newEd25519KeyPair(pub ed25519.PublicKey, priv ed25519.PrivateKey) *ed25519KeyPair {
	sum := sha256.Sum256(pub)
	return &ed25519KeyPair{pub: pub, priv: priv, id: "ed25519:" + hex.EncodeToString(sum[:8])}
}

func (k *ed25519KeyPair) ID() string        { return k.id }
func (k *ed25519KeyPair) Algorithm() string { return AlgorithmEd25519 }
func (k *ed25519KeyPair) HasPrivate() bool  { return k.priv != nil }

func (k *ed25519KeyPair) PublicKeyBlob() ([]byte, error) {
	return wire.NewWriter().PutASCII(AlgorithmEd25519).PutString(k.pub).Bytes(), nil
}

func (k *ed25519KeyPair) Sign(buf []byte) ([]byte, error) {
	started := time.Now()
	if k.priv == nil {
		metrics.SigningErrors.WithLabelValues("sign").Inc()
		return nil, ErrPublicKeyOnly
	}
	sig := ed25519.Sign(k.priv, buf)
	metrics.SigningOperations.WithLabelValues("sign", AlgorithmEd25519).Inc()
	metrics.SigningDuration.WithLabelValues("sign", AlgorithmEd25519).Observe(time.Since(started).Seconds())
	return wire.NewWriter().PutASCII(AlgorithmEd25519).PutString(sig).Bytes(), nil
}

func (k *ed25519KeyPair) Verify(buf, sigBlob []byte) error {
	r := wire.NewReader(sigBlob)
	algo, err := r.ASCIIString()
	if err != nil {
		return fmt.Errorf("pki: sig blob algo: %w", err)
	}
	if algo != AlgorithmEd25519 {
		return fmt.Errorf("%w: expected %s, got %s", ErrInvalidKeyType, AlgorithmEd25519, algo)
	}
	sig, err := r.String()
	if err != nil {
		return fmt.Errorf("pki: sig blob payload: %w", err)
	}
	if !ed25519.Verify(k.pub, buf, sig) {
		return ErrInvalidSignature
	}
	return nil
}
