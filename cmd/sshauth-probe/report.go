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
	"strings"

	"github.com/sage-x-project/sshauth/authstate"
	"github.com/sage-x-project/sshauth/client"
)

// reportResult prints a method attempt's outcome and, whenever it is
// non-empty, the method list the server last advertised.
func reportResult(c *client.Client, result authstate.Result, err error) error {
	if err != nil {
		return fmt.Errorf("sshauth-probe: %w", err)
	}

	fmt.Printf("result: %s\n", resultName(result))
	if names := methodNames(c.ListMethods()); len(names) > 0 {
		fmt.Printf("server advertises: %s\n", strings.Join(names, ","))
	}
	return nil
}

func methodNames(m authstate.Methods) []string {
	var names []string
	if m.HasPassword() {
		names = append(names, "password")
	}
	if m.HasPublicKey() {
		names = append(names, "publickey")
	}
	if m.HasHostbased() {
		names = append(names, "hostbased")
	}
	if m.HasKeyboardInteractive() {
		names = append(names, "keyboard-interactive")
	}
	return names
}

func resultName(r authstate.Result) string {
	switch r {
	case authstate.AuthSuccess:
		return "success"
	case authstate.AuthDenied:
		return "denied"
	case authstate.AuthPartial:
		return "partial (more authentication required)"
	case authstate.AuthInfo:
		return "info (keyboard-interactive prompts pending)"
	case authstate.AuthError:
		return "error"
	default:
		return "again (would block)"
	}
}
