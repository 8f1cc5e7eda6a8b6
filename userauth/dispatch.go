package userauth

import (
	"fmt"

	"github.com/sage-x-project/sshauth/authstate"
	"github.com/sage-x-project/sshauth/internal/metrics"
	"github.com/sage-x-project/sshauth/kbdint"
	"github.com/sage-x-project/sshauth/session"
)

// messageName returns the SSH_MSG_USERAUTH_* name for msgNum, for use as
// a metrics label. The PKOK/InfoRequest ambiguity is resolved by the
// caller before this is used for anything but a raw received-packet
// count.
func messageName(msgNum byte) string {
	switch msgNum {
	case MsgUserauthFailure:
		return "USERAUTH_FAILURE"
	case MsgUserauthSuccess:
		return "USERAUTH_SUCCESS"
	case MsgUserauthBanner:
		return "USERAUTH_BANNER"
	case MsgUserauthPKOK: // == MsgUserauthInfoRequest
		return "USERAUTH_PK_OK_OR_INFO_REQUEST"
	case MsgUserauthInfoResponse:
		return "USERAUTH_INFO_RESPONSE"
	case MsgUserauthRequest:
		return "USERAUTH_REQUEST"
	default:
		return "unknown"
	}
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// Dispatcher routes inbound authentication packets into a Session's
// state machine. It is installed as a session's transport.PacketHandler
// and runs synchronously from the transport's read loop (specification
// section 5: single-threaded cooperative scheduling, no internal locks
// beyond the Session's own).
type Dispatcher struct {
	s *session.Session
}

// NewDispatcher returns a Dispatcher bound to s.
func NewDispatcher(s *session.Session) *Dispatcher {
	return &Dispatcher{s: s}
}

// Handle implements transport.PacketHandler.
func (d *Dispatcher) Handle(msgNum byte, payload []byte) error {
	d.s.Lock()
	defer d.s.Unlock()
	d.s.Touch()

	metrics.UserauthPacketsReceived.WithLabelValues(messageName(msgNum)).Inc()
	metrics.UserauthPacketSize.WithLabelValues("received").Observe(float64(len(payload)))

	switch msgNum {
	case MsgUserauthBanner:
		return d.handleBanner(payload)
	case MsgUserauthFailure:
		return d.handleFailure(payload)
	case MsgUserauthSuccess:
		return d.handleSuccess()
	case MsgUserauthPKOK: // == MsgUserauthInfoRequest; disambiguated below
		if d.s.State == authstate.KbdintSent {
			return d.handleInfoRequest(payload)
		}
		return d.handlePKOK(payload)
	default:
		return fmt.Errorf("userauth: unexpected message number %d", msgNum)
	}
}

func (d *Dispatcher) handleBanner(payload []byte) error {
	metrics.BannersReceived.Inc()
	banner, err := ParseBanner(payload)
	if err != nil {
		d.s.State = authstate.Error
		return err
	}
	d.s.Banner = &banner
	return nil
}

func (d *Dispatcher) handleFailure(payload []byte) error {
	res, err := ParseFailure(payload)
	if err != nil {
		d.s.State = authstate.Error
		return err
	}
	metrics.AuthFailuresByReason.WithLabelValues(boolLabel(res.Partial)).Inc()
	if res.Partial {
		d.s.Methods |= authstate.ParseMethods(res.MethodList)
		d.s.State = authstate.Partial
		return nil
	}
	d.s.Methods = authstate.ParseMethods(res.MethodList)
	d.s.State = authstate.Failed
	return nil
}

func (d *Dispatcher) handleSuccess() error {
	d.s.State = authstate.Success
	d.s.MarkAuthenticated()
	return nil
}

func (d *Dispatcher) handlePKOK(payload []byte) error {
	if _, err := ParsePKOK(payload); err != nil {
		d.s.State = authstate.Error
		return err
	}
	d.s.State = authstate.PKOK
	return nil
}

func (d *Dispatcher) handleInfoRequest(payload []byte) error {
	req, err := ParseInfoRequest(payload)
	if err != nil {
		d.s.ScrubKbdint()
		d.s.State = authstate.Error
		return err
	}

	prompts := make([]kbdint.Prompt, len(req.Prompts))
	for i, p := range req.Prompts {
		prompts[i] = kbdint.Prompt{Text: p.Text, Echo: p.Echo}
	}

	d.s.ScrubKbdint()
	kb, err := kbdint.New(req.Name, req.Instruction, prompts)
	if err != nil {
		d.s.State = authstate.Error
		return err
	}
	d.s.Kbdint = kb
	d.s.State = authstate.Info
	return nil
}
