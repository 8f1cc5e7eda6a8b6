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
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var probePassword string

var passwordCmd = &cobra.Command{
	Use:   "password",
	Short: "Attempt password authentication",
	Long: `Sends SSH_MSG_USERAUTH_REQUEST with method "password" (RFC 4252
section 8). With no --password flag, reads one line from stdin; this is
a diagnostic tool and does not suppress terminal echo.`,
	RunE: runPassword,
}

func init() {
	rootCmd.AddCommand(passwordCmd)
	passwordCmd.Flags().StringVar(&probePassword, "password", "", "password to send (read from stdin if omitted)")
}

func runPassword(cmd *cobra.Command, args []string) error {
	password := probePassword
	if password == "" {
		fmt.Fprint(os.Stderr, "password: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return fmt.Errorf("sshauth-probe: read password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}

	c, closeFn, err := dialClient()
	if err != nil {
		return err
	}
	defer closeFn()

	result, err := c.AuthPassword(probeUser, []byte(password))
	return reportResult(c, result, err)
}
