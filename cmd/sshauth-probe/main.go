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
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	probeURL     string
	probeUser    string
	probeTimeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "sshauth-probe",
	Short: "Drive a single user-authentication attempt against a server",
	Long: `sshauth-probe exercises the sshauth client state machine against a
live server for diagnosis: it dials the WebSocket-framed transport,
runs one method driver to completion, and reports the terminal result
and the method list the server advertises.

It is a diagnostic tool, not an interactive shell client: each
subcommand performs one authentication attempt and exits.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&probeURL, "url", "ws://127.0.0.1:2222/ssh", "WebSocket URL of the authentication transport")
	rootCmd.PersistentFlags().StringVarP(&probeUser, "user", "u", "", "username to authenticate as (required)")
	rootCmd.PersistentFlags().DurationVar(&probeTimeout, "timeout", 10*time.Second, "per-attempt timeout")
	rootCmd.PersistentFlags().StringVar(&probeSessionIDHex, "session-id", "", "hex-encoded key-exchange hash (required for a publickey attempt to verify against a real server)")

	// Commands are registered in their respective files:
	// - methods.go: methodsCmd
	// - password.go: passwordCmd
	// - pubkey.go: pubkeyCmd
	// - agent.go: agentCmd
}
