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

package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/gorilla/websocket"

	"github.com/sage-x-project/sshauth/client"
	"github.com/sage-x-project/sshauth/pki"
	"github.com/sage-x-project/sshauth/session"
	"github.com/sage-x-project/sshauth/transport"
	"github.com/sage-x-project/sshauth/userauth"
)

var probeSessionIDHex string

// dialClient connects probeURL and returns a Client bound to a fresh
// Session for probeUser. sessionID is the exchange hash a real
// connection would already have negotiated during key exchange; a
// probe run that doesn't supply --session-id uses an all-zero stand-in,
// which is fine for none/password/keyboard-interactive probes but makes
// any publickey signature the server checks invalid.
func dialClient() (*client.Client, func(), error) {
	if probeUser == "" {
		return nil, nil, fmt.Errorf("sshauth-probe: --user is required")
	}

	sessionID := make([]byte, 32)
	if probeSessionIDHex != "" {
		decoded, err := hex.DecodeString(probeSessionIDHex)
		if err != nil {
			return nil, nil, fmt.Errorf("sshauth-probe: --session-id: %w", err)
		}
		sessionID = decoded
	} else {
		fmt.Fprintln(os.Stderr, "sshauth-probe: no --session-id given, using an all-zero stand-in; publickey signatures will not verify against a real server")
	}

	conn, _, err := websocket.DefaultDialer.Dial(probeURL, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("sshauth-probe: dial %s: %w", probeURL, err)
	}

	tr := transport.NewWSTransport(conn)
	s := session.NewBuilder(probeUser, tr).
		WithCrypto(session.NegotiatedCrypto{SessionID: sessionID}).
		Build()
	tr.SetHandler(userauth.NewDispatcher(s).Handle)

	c := client.New(s, pki.NewFileLoader(), nil)
	c.Timeout = probeTimeout

	closeFn := func() { conn.Close() }
	return c, closeFn, nil
}
