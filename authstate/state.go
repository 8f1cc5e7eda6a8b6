// Package authstate holds the small enum-valued fields that coordinate a
// Session between its driver calls and its asynchronous packet handlers:
// the authentication state, the single in-flight pending-call marker, and
// the server-advertised method bitset.
package authstate

import "strings"

// State is the session-scoped authentication state (spec section 3).
// It is mutated both by local driver calls (reset to None before a send)
// and by packet handlers invoked from the transport's read loop.
type State int

const (
	// None is the initial state, and the state a driver resets to
	// immediately before sending a USERAUTH_REQUEST.
	None State = iota
	// KbdintSent means a keyboard-interactive request was sent and no
	// INFO_REQUEST or terminal response has arrived yet.
	KbdintSent
	// Info means an INFO_REQUEST arrived; a kbdint scratch is live and
	// waiting for Client.SetAnswer calls.
	Info
	// PKOK means a publickey offer was accepted; the client may now sign.
	PKOK
	Partial
	Failed
	Success
	Error
)

func (s State) String() string {
	switch s {
	case None:
		return "none"
	case KbdintSent:
		return "kbdint-sent"
	case Info:
		return "info"
	case PKOK:
		return "pk-ok"
	case Partial:
		return "partial"
	case Failed:
		return "failed"
	case Success:
		return "success"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Terminal reports whether a driver blocked on this state may stop
// waiting and translate it into a Result. None and KbdintSent are the
// two "keep waiting" states (spec section 3).
func (s State) Terminal() bool {
	return s != None && s != KbdintSent
}

// PendingCall is the single-slot re-entrancy marker (spec section 2/5).
// Only one driver may be in flight on a Session at a time.
type PendingCall int

const (
	PendingNone PendingCall = iota
	PendingAuthNone
	PendingAuthPassword
	PendingAuthOfferPubkey
	PendingAuthPubkey
	PendingAuthAgent
	PendingAuthKbdint
)

func (p PendingCall) String() string {
	switch p {
	case PendingNone:
		return "none"
	case PendingAuthNone:
		return "auth-none"
	case PendingAuthPassword:
		return "auth-password"
	case PendingAuthOfferPubkey:
		return "auth-offer-pubkey"
	case PendingAuthPubkey:
		return "auth-pubkey"
	case PendingAuthAgent:
		return "auth-agent"
	case PendingAuthKbdint:
		return "auth-kbdint"
	default:
		return "unknown"
	}
}

// Methods is the bitset parsed from a USERAUTH_FAILURE method list.
type Methods uint8

const (
	MethodPassword Methods = 1 << iota
	MethodPublicKey
	MethodHostbased
	MethodInteractive
)

// ParseMethods parses the comma-separated "auth-continue" field of a
// USERAUTH_FAILURE message. Unrecognized tokens (e.g. "gssapi-with-mic")
// are ignored, matching the specification's "OR of recognized tokens"
// wording — they neither set a bit nor cause an error.
func ParseMethods(list string) Methods {
	var m Methods
	for _, tok := range strings.Split(list, ",") {
		switch strings.TrimSpace(tok) {
		case "password":
			m |= MethodPassword
		case "publickey":
			m |= MethodPublicKey
		case "hostbased":
			m |= MethodHostbased
		case "keyboard-interactive":
			m |= MethodInteractive
		}
	}
	return m
}

func (m Methods) HasPassword() bool            { return m&MethodPassword != 0 }
func (m Methods) HasPublicKey() bool           { return m&MethodPublicKey != 0 }
func (m Methods) HasHostbased() bool           { return m&MethodHostbased != 0 }
func (m Methods) HasKeyboardInteractive() bool { return m&MethodInteractive != 0 }

// Result is the outcome a method driver returns to its caller.
type Result int

const (
	AuthError Result = iota
	AuthDenied
	AuthPartial
	AuthSuccess
	AuthInfo
	AuthAgain
)

func (r Result) String() string {
	switch r {
	case AuthError:
		return "error"
	case AuthDenied:
		return "denied"
	case AuthPartial:
		return "partial"
	case AuthSuccess:
		return "success"
	case AuthInfo:
		return "info"
	case AuthAgain:
		return "again"
	default:
		return "unknown"
	}
}

// FromState maps a terminal auth_state to the driver Result it produces
// (spec section 4.3). Callers must only invoke this once s.Terminal()
// holds; a non-terminal state has no defined result.
func FromState(s State) Result {
	switch s {
	case Error:
		return AuthError
	case Failed:
		return AuthDenied
	case Partial:
		return AuthPartial
	case Info:
		return AuthInfo
	case PKOK, Success:
		return AuthSuccess
	default:
		return AuthAgain
	}
}
