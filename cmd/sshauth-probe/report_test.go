package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sage-x-project/sshauth/authstate"
)

func TestMethodNamesListsAdvertisedMethods(t *testing.T) {
	m := authstate.MethodPassword | authstate.MethodInteractive
	names := methodNames(m)
	assert.Equal(t, []string{"password", "keyboard-interactive"}, names)
}

func TestMethodNamesEmptyWhenNoneAdvertised(t *testing.T) {
	assert.Empty(t, methodNames(authstate.Methods(0)))
}

func TestResultNameCoversEveryTerminalResult(t *testing.T) {
	assert.Equal(t, "success", resultName(authstate.AuthSuccess))
	assert.Equal(t, "denied", resultName(authstate.AuthDenied))
	assert.Equal(t, "partial (more authentication required)", resultName(authstate.AuthPartial))
	assert.Equal(t, "info (keyboard-interactive prompts pending)", resultName(authstate.AuthInfo))
	assert.Equal(t, "error", resultName(authstate.AuthError))
}
