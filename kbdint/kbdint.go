// Package kbdint implements the keyboard-interactive scratch object
// (spec section 3): the per-exchange prompt/answer state refreshed on
// every INFO_REQUEST and scrubbed on release.
package kbdint

import "fmt"

// MaxPrompts is the denial-of-service ceiling on a single INFO_REQUEST
// (spec section 9: "do not grow it dynamically"). It is exported so
// config.Config can be validated against it but is never itself mutated
// at runtime.
const MaxPrompts = 32

// Prompt is one server-issued challenge line.
type Prompt struct {
	Text string
	Echo bool // false means the answer is sensitive and must be scrubbed.
}

// State holds one live keyboard-interactive exchange. A Session owns at
// most one State at a time; it is replaced wholesale on each INFO_REQUEST
// and destroyed on send, teardown, or fatal error.
//
// Answers are kept as []byte rather than string: a Go string's backing
// array can't be overwritten once created, so the only way to honor the
// "zero before free" invariant is to never let the secret live in an
// immutable string in the first place.
type State struct {
	Name        string
	Instruction string
	Prompts     []Prompt
	answers     [][]byte
	hasAnswer   []bool
}

// New validates nprompts against the protocol ceiling and constructs a
// scratch object with nil answer slots (lazily allocated by SetAnswer).
func New(name, instruction string, prompts []Prompt) (*State, error) {
	n := len(prompts)
	if n < 1 || n > MaxPrompts {
		return nil, fmt.Errorf("kbdint: nprompts %d out of range [1,%d]", n, MaxPrompts)
	}
	return &State{
		Name:        name,
		Instruction: instruction,
		Prompts:     prompts,
	}, nil
}

// NumPrompts returns nprompts.
func (s *State) NumPrompts() int { return len(s.Prompts) }

// GetPrompt returns the text and echo flag for prompt i.
func (s *State) GetPrompt(i int) (string, bool, error) {
	if i < 0 || i >= len(s.Prompts) {
		return "", false, fmt.Errorf("kbdint: prompt index %d out of range [0,%d)", i, len(s.Prompts))
	}
	return s.Prompts[i].Text, s.Prompts[i].Echo, nil
}

// SetAnswer lazily allocates the answer slots on first use, scrubs and
// replaces any prior value at i, and stores a copy of answer.
//
// Bounds check is strict: i must satisfy 0 <= i < nprompts. The source
// implementation used `i > nprompts`, permitting an off-by-one read at
// i == nprompts; this implementation rejects i >= nprompts per the
// specification's explicit correction.
func (s *State) SetAnswer(i int, answer string) error {
	if i < 0 || i >= len(s.Prompts) {
		return fmt.Errorf("kbdint: answer index %d out of range [0,%d)", i, len(s.Prompts))
	}
	if s.answers == nil {
		s.answers = make([][]byte, len(s.Prompts))
		s.hasAnswer = make([]bool, len(s.Prompts))
	}
	scrubBytes(s.answers[i])
	s.answers[i] = []byte(answer)
	s.hasAnswer[i] = true
	return nil
}

// Answers returns one response per prompt in order, exactly as the wire
// layer must emit them in INFO_RESPONSE: a missing slot is an empty
// string (spec section 4.5).
func (s *State) Answers() []string {
	out := make([]string, len(s.Prompts))
	for i := range out {
		if s.hasAnswer != nil && s.hasAnswer[i] {
			out[i] = string(s.answers[i])
		}
	}
	return out
}

// Scrub zeroes every allocated answer byte range before the scratch is
// discarded (spec sections 3 and 5: sensitive memory hygiene). It is
// idempotent and safe to call on a nil receiver.
func (s *State) Scrub() {
	if s == nil {
		return
	}
	for _, a := range s.answers {
		scrubBytes(a)
	}
	s.answers = nil
	s.hasAnswer = nil
}

func scrubBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
