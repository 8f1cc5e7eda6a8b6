// Copyright (C) 2025 sage-x-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

// Package session holds the mutable state a client-side SSH
// authentication conversation accumulates between the "ssh-userauth"
// service request and either USERAUTH_SUCCESS or a fatal disconnect.
package session

import (
	"sync"
	"time"

	"github.com/sage-x-project/sshauth/authstate"
	"github.com/sage-x-project/sshauth/kbdint"
	"github.com/sage-x-project/sshauth/pki"
	"github.com/sage-x-project/sshauth/transport"
)

const GeneralPrefix = "session"

// NegotiatedCrypto carries the two pieces of transport-layer context the
// signature buffer and the post-success compression switch need, both
// established during key exchange and handed to the authentication
// layer read-only.
type NegotiatedCrypto struct {
	// SessionID is the exchange hash of the first key exchange on this
	// connection (RFC 4253 section 7.2); it is the first field folded
	// into every publickey signature buffer (RFC 4252 section 7).
	SessionID []byte

	// DelayedCompression is true when both sides negotiated
	// "zlib@openssh.com": compression must not actually switch on until
	// USERAUTH_SUCCESS, even though it was agreed during key exchange.
	DelayedCompression bool
}

// Callbacks are invoked by method drivers on events the client embedding
// this library must react to.
type Callbacks struct {
	// OnAuthenticated fires exactly once, the moment the session first
	// reaches a successful terminal state.
	OnAuthenticated func(s *Session)

	// EnableCompression is called once, at USERAUTH_SUCCESS, when
	// Crypto.DelayedCompression is true — the linearization point at
	// which "zlib@openssh.com" is allowed to actually start compressing.
	EnableCompression func(s *Session)

	// PromptPassphrase prompts for a private key's passphrase. A nil
	// value means the auto driver must skip any encrypted identity it
	// cannot decrypt without prompting.
	PromptPassphrase pki.PassphraseFunc
}

// Config bounds a Manager's housekeeping of idle or abandoned sessions.
type Config struct {
	MaxAge      time.Duration
	IdleTimeout time.Duration
}

// Session is one client's view of an authentication conversation: the
// transport it rides on, the identity material it may offer, and the
// state machine coordinating driver calls with the packet handler.
type Session struct {
	mu sync.Mutex

	ID       string
	Username string

	createdAt  time.Time
	lastUsedAt time.Time

	// IdentityFiles is the private-key path list the auto driver walks
	// in order (specification section 4.7).
	IdentityFiles []string

	Crypto    NegotiatedCrypto
	Callbacks Callbacks

	State   authstate.State
	Pending authstate.PendingCall
	Methods authstate.Methods

	// Banner holds the most recent USERAUTH_BANNER message text, or nil
	// if none has arrived yet.
	Banner *string

	// Kbdint is the live keyboard-interactive scratch object; non-nil
	// only while an INFO_REQUEST is outstanding and awaiting answers.
	Kbdint *kbdint.State

	ServiceRequested bool
	Authenticated    bool

	Transport transport.Transport
}
