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

	"github.com/spf13/cobra"

	"github.com/sage-x-project/sshauth/agentsign"
)

var probeAgentSocket string

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Attempt publickey authentication via ssh-agent",
	Long: `Lists identities from the ssh-agent at --socket (default
$SSH_AUTH_SOCK) and offers each in turn until one is accepted or the
list is exhausted.`,
	RunE: runAgent,
}

func init() {
	rootCmd.AddCommand(agentCmd)
	agentCmd.Flags().StringVar(&probeAgentSocket, "socket", os.Getenv("SSH_AUTH_SOCK"), "ssh-agent socket path")
}

func runAgent(cmd *cobra.Command, args []string) error {
	if probeAgentSocket == "" {
		return fmt.Errorf("sshauth-probe: no agent socket given and SSH_AUTH_SOCK is unset")
	}

	agent, err := agentsign.DialSocketAgent(probeAgentSocket)
	if err != nil {
		return fmt.Errorf("sshauth-probe: %w", err)
	}
	defer agent.Close()

	c, closeFn, err := dialClient()
	if err != nil {
		return err
	}
	defer closeFn()
	c.Agent = agent

	result, err := c.AuthAgent(probeUser)
	return reportResult(c, result, err)
}
