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
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/sage-x-project/sshauth/internal/metrics"
	"github.com/sage-x-project/sshauth/wire"
)

// AlgorithmSecp256k1 is a vendor ECDSA algorithm over the secp256k1
// curve, following OpenSSH's "ecdsa-sha2-nistp*" naming convention for
// curve-qualified ECDSA identifiers rather than the NIST curves
// themselves (secp256k1 is not one of RFC 5656's three mandatory
// curves).
const AlgorithmSecp256k1 = "ecdsa-sha2-secp256k1"

type secp256k1KeyPair struct {
	priv *secp256k1.PrivateKey // nil when public-only
	pub  *secp256k1.PublicKey
	id   string
}

// GenerateSecp256k1 creates a fresh secp256k1 identity.
func GenerateSecp256k1() (KeyPair, error) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, fmt.Errorf("pki: generate secp256k1: %w", err)
	}
	return newSecp256k1KeyPair(priv.PubKey(), priv), nil
}

func newSecp256k1KeyPair(pub *secp256k1.PublicKey, priv *secp256k1.PrivateKey) *secp256k1KeyPair {
	sum := sha256.Sum256(pub.SerializeCompressed())
	return &secp256k1KeyPair{priv: priv, pub: pub, id: "secp256k1:" + hex.EncodeToString(sum[:8])}
}

func (k *secp256k1KeyPair) ID() string        { return k.id }
func (k *secp256k1KeyPair) Algorithm() string { return AlgorithmSecp256k1 }
func (k *secp256k1KeyPair) HasPrivate() bool  { return k.priv != nil }

func (k *secp256k1KeyPair) PublicKeyBlob() ([]byte, error) {
	return wire.NewWriter().
		PutASCII(AlgorithmSecp256k1).
		PutString(k.pub.SerializeUncompressed()).
		Bytes(), nil
}

func (k *secp256k1KeyPair) Sign(buf []byte) ([]byte, error) {
	started := time.Now()
	if k.priv == nil {
		metrics.SigningErrors.WithLabelValues("sign").Inc()
		return nil, ErrPublicKeyOnly
	}
	hash := sha256.Sum256(buf)
	r, s, err := ecdsa.Sign(rand.Reader, k.priv.ToECDSA(), hash[:])
	if err != nil {
		metrics.SigningErrors.WithLabelValues("sign").Inc()
		return nil, fmt.Errorf("pki: sign: %w", err)
	}
	sig := serializeRS(r, s)
	metrics.SigningOperations.WithLabelValues("sign", AlgorithmSecp256k1).Inc()
	metrics.SigningDuration.WithLabelValues("sign", AlgorithmSecp256k1).Observe(time.Since(started).Seconds())
	return wire.NewWriter().PutASCII(AlgorithmSecp256k1).PutString(sig).Bytes(), nil
}

func (k *secp256k1KeyPair) Verify(buf, sigBlob []byte) error {
	r := wire.NewReader(sigBlob)
	algo, err := r.ASCIIString()
	if err != nil {
		return fmt.Errorf("pki: sig blob algo: %w", err)
	}
	if algo != AlgorithmSecp256k1 {
		return fmt.Errorf("%w: expected %s, got %s", ErrInvalidKeyType, AlgorithmSecp256k1, algo)
	}
	raw, err := r.String()
	if err != nil {
		return fmt.Errorf("pki: sig blob payload: %w", err)
	}
	sr, ss, err := deserializeRS(raw)
	if err != nil {
		return err
	}
	hash := sha256.Sum256(buf)
	if !ecdsa.Verify(k.pub.ToECDSA(), hash[:], sr, ss) {
		return ErrInvalidSignature
	}
	return nil
}

func serializeRS(r, s *big.Int) []byte {
	rb, sb := r.Bytes(), s.Bytes()
	out := make([]byte, 64)
	copy(out[32-len(rb):32], rb)
	copy(out[64-len(sb):64], sb)
	return out
}

func deserializeRS(data []byte) (*big.Int, *big.Int, error) {
	if len(data) != 64 {
		return nil, nil, ErrInvalidSignature
	}
	return new(big.Int).SetBytes(data[:32]), new(big.Int).SetBytes(data[32:]), nil
}
