// Package client drives the user-authentication method calls — none,
// password, publickey (offer/sign/agent/auto), and keyboard-interactive
// — against a session.Session, coordinating each with the dispatcher's
// asynchronous state updates.
package client

import (
	"fmt"
	"time"

	"github.com/sage-x-project/sshauth/agentsign"
	"github.com/sage-x-project/sshauth/authstate"
	"github.com/sage-x-project/sshauth/internal/logger"
	"github.com/sage-x-project/sshauth/internal/metrics"
	"github.com/sage-x-project/sshauth/pki"
	"github.com/sage-x-project/sshauth/session"
	"github.com/sage-x-project/sshauth/transport"
	"github.com/sage-x-project/sshauth/userauth"
)

const serviceNameUserauth = "ssh-userauth"

// Client bundles the pieces a method driver needs: the session it
// mutates, the PKI collaborator for key loading, and an optional signing
// Agent. A Client is not safe for concurrent use by more than one
// goroutine at a time — the specification's model is a single thread of
// execution per session (specification section 5).
type Client struct {
	Session *session.Session
	PKI     pki.Loader
	Agent   agentsign.Agent

	// Timeout bounds each PumpUntil call; zero means block until a
	// terminal state or a transport error.
	Timeout time.Duration

	// Logger receives best-effort diagnostics (e.g. a failed derived
	// public-key write in the auto driver). A nil Logger falls back to
	// the package default.
	Logger logger.Logger

	attemptStarted time.Time
}

// methodLabel maps a pending call to the metrics label used for it,
// matching the SSH authentication method name where one exists.
func methodLabel(call authstate.PendingCall) string {
	switch call {
	case authstate.PendingAuthNone:
		return "none"
	case authstate.PendingAuthPassword:
		return "password"
	case authstate.PendingAuthOfferPubkey, authstate.PendingAuthPubkey:
		return "publickey"
	case authstate.PendingAuthAgent:
		return "agent"
	case authstate.PendingAuthKbdint:
		return "keyboard-interactive"
	default:
		return "unknown"
	}
}

// resultLabel maps a Result to the metrics label used for it.
func resultLabel(result authstate.Result) string {
	switch result {
	case authstate.AuthSuccess:
		return "success"
	case authstate.AuthDenied:
		return "denied"
	case authstate.AuthPartial:
		return "partial"
	case authstate.AuthError:
		return "error"
	case authstate.AuthInfo:
		return "info"
	default:
		return "again"
	}
}

func (c *Client) log() logger.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return logger.GetDefaultLogger()
}

// New returns a Client driving s.
func New(s *session.Session, loader pki.Loader, agent agentsign.Agent) *Client {
	return &Client{Session: s, PKI: loader, Agent: agent}
}

// ListMethods returns the last method bitset a USERAUTH_FAILURE reported.
func (c *Client) ListMethods() authstate.Methods {
	return c.Session.Methods
}

// Banner returns the most recent USERAUTH_BANNER text and true, or ""
// and false if the server has not sent one this session.
func (c *Client) Banner() (string, bool) {
	if c.Session.Banner == nil {
		return "", false
	}
	return *c.Session.Banner, true
}

func (c *Client) username(override string) string {
	if override != "" {
		return override
	}
	return c.Session.Username
}

// beginOrResume implements the re-entrancy rules of the common driver
// skeleton (specification section 4.5, steps 2-3): if call is already
// pending, the caller resumes by awaiting again; if a different call is
// pending, that is a fatal local precondition error; otherwise call
// becomes the new pending marker.
func (c *Client) beginOrResume(call authstate.PendingCall) (resuming bool, err error) {
	s := c.Session
	if s.Pending == call {
		return true, nil
	}
	if s.Pending != authstate.PendingNone {
		return false, fmt.Errorf("client: %s called while %s is still pending", call, s.Pending)
	}
	if !s.BeginPending(call) {
		return false, fmt.Errorf("client: failed to begin pending call %s", call)
	}

	c.attemptStarted = time.Now()
	method := methodLabel(call)
	metrics.AuthAttemptsInitiated.WithLabelValues(method).Inc()
	metrics.GetGlobalCollector().RecordAttempt(method)
	return false, nil
}

// send performs the service-request-then-send half of a fresh (not
// resumed) driver call: request "ssh-userauth" (idempotent after first
// success), reset auth_state, and hand packet to the transport.
func (c *Client) send(packet []byte) (authstate.Result, error) {
	s := c.Session
	status, err := s.Transport.RequestService(serviceNameUserauth)
	if err != nil {
		s.ClearPending()
		return authstate.AuthError, err
	}
	if status == transport.StatusAgain {
		return authstate.AuthAgain, nil
	}
	s.ServiceRequested = true

	s.ResetForSend()
	metrics.UserauthPacketsSent.WithLabelValues("USERAUTH_REQUEST").Inc()
	metrics.UserauthPacketSize.WithLabelValues("sent").Observe(float64(len(packet)))
	status, err = s.Transport.Send(packet)
	if err != nil {
		s.ClearPending()
		return authstate.AuthError, err
	}
	if status == transport.StatusAgain {
		return authstate.AuthAgain, nil
	}
	return c.await()
}

// await drives the transport until auth_state is terminal (not None,
// not KbdintSent), then maps it to a Result, clearing the pending
// marker unless the result is AGAIN (specification section 4.3).
func (c *Client) await() (authstate.Result, error) {
	s := c.Session
	status, err := s.Transport.PumpUntil(c.Timeout, func() bool {
		return s.State.Terminal()
	})
	if err != nil {
		s.State = authstate.Error
		c.recordTerminal(s.Pending, authstate.AuthError)
		s.ClearPending()
		return authstate.AuthError, err
	}
	if status == transport.StatusAgain && !s.State.Terminal() {
		return authstate.AuthAgain, nil
	}

	result := authstate.FromState(s.State)
	c.recordTerminal(s.Pending, result)
	s.ClearPending()
	return result, nil
}

// recordTerminal reports a driver call's terminal result and elapsed
// time to the package-level metrics collectors.
func (c *Client) recordTerminal(call authstate.PendingCall, result authstate.Result) {
	method := methodLabel(call)
	outcome := resultLabel(result)
	duration := time.Since(c.attemptStarted)

	metrics.AuthAttemptsCompleted.WithLabelValues(method, outcome).Inc()
	metrics.AuthAttemptDuration.WithLabelValues(method).Observe(duration.Seconds())
	metrics.GetGlobalCollector().RecordResult(outcome, duration)
}
