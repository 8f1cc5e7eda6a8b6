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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sage-x-project/sshauth/authstate"
)

var probeIdentity string

var pubkeyCmd = &cobra.Command{
	Use:   "pubkey",
	Short: "Attempt publickey authentication with one identity file",
	Long: `Offers the key at --identity (RFC 4252 section 7's trial
SSH_MSG_USERAUTH_REQUEST with no signature) and, if the server responds
PK_OK, signs and sends the follow-up request.`,
	RunE: runPubkey,
}

func init() {
	rootCmd.AddCommand(pubkeyCmd)
	pubkeyCmd.Flags().StringVar(&probeIdentity, "identity", "", "private key path, without a .pub suffix (required)")
	pubkeyCmd.MarkFlagRequired("identity")
}

func runPubkey(cmd *cobra.Command, args []string) error {
	c, closeFn, err := dialClient()
	if err != nil {
		return err
	}
	defer closeFn()

	priv, err := c.PKI.LoadPrivate(probeIdentity, nil)
	if err != nil {
		return fmt.Errorf("sshauth-probe: load identity: %w", err)
	}

	offerResult, err := c.AuthTryPublicKey(probeUser, priv)
	if err != nil {
		return fmt.Errorf("sshauth-probe: offer: %w", err)
	}
	if offerResult != authstate.AuthSuccess {
		return reportResult(c, offerResult, nil)
	}

	result, err := c.AuthPublicKey(probeUser, priv)
	return reportResult(c, result, err)
}
