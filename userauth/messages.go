// Package userauth builds and parses the SSH user-authentication wire
// messages (RFC 4252) and dispatches inbound packets to the session's
// auth_state machine.
package userauth

import (
	"fmt"

	"github.com/sage-x-project/sshauth/wire"
)

// Wire message numbers (RFC 4252 section 6).
const (
	MsgUserauthRequest     = 50
	MsgUserauthFailure     = 51
	MsgUserauthSuccess     = 52
	MsgUserauthBanner      = 53
	MsgUserauthPKOK        = 60 // shares a wire number with MsgUserauthInfoRequest
	MsgUserauthInfoRequest = 60
	MsgUserauthInfoResponse = 61
)

const serviceNameConnection = "ssh-connection"

// BuildRequestPrefix writes the common USERAUTH_REQUEST prefix shared by
// every method (specification section 4.2).
func BuildRequestPrefix(w *wire.Writer, username, method string) {
	w.PutByte(MsgUserauthRequest).
		PutASCII(username).
		PutASCII(serviceNameConnection).
		PutASCII(method)
}

// BuildNoneRequest encodes the "none" probe: just the common prefix.
func BuildNoneRequest(username string) []byte {
	w := wire.NewWriter()
	BuildRequestPrefix(w, username, "none")
	return w.Bytes()
}

// BuildPasswordRequest encodes a password attempt.
func BuildPasswordRequest(username string, password []byte) []byte {
	w := wire.NewWriter()
	BuildRequestPrefix(w, username, "password")
	w.PutBool(false).PutString(password)
	return w.Bytes()
}

// BuildPublicKeyOfferRequest encodes a publickey "may I offer this key"
// probe: bool 0, followed by algorithm and key blob.
func BuildPublicKeyOfferRequest(username, algorithm string, keyBlob []byte) []byte {
	w := wire.NewWriter()
	BuildRequestPrefix(w, username, "publickey")
	w.PutBool(false).PutASCII(algorithm).PutString(keyBlob)
	return w.Bytes()
}

// PublicKeySignaturePayload returns the byte buffer the PKI collaborator
// signs for a publickey "sign" request: the session identifier as an SSH
// string, followed by the USERAUTH_REQUEST bytes from the message byte
// through `bool 1` inclusive, then algorithm and key blob — RFC 4252
// section 7.
func PublicKeySignaturePayload(sessionID []byte, username, algorithm string, keyBlob []byte) []byte {
	w := wire.NewWriter()
	w.PutString(sessionID)
	BuildRequestPrefix(w, username, "publickey")
	w.PutBool(true).PutASCII(algorithm).PutString(keyBlob)
	return w.Bytes()
}

// BuildPublicKeySignRequest encodes a publickey "sign" request: the same
// prefix as the offer, bool 1 instead of bool 0, and the wrapped
// signature blob the PKI collaborator produced over
// PublicKeySignaturePayload.
func BuildPublicKeySignRequest(username, algorithm string, keyBlob, sigBlob []byte) []byte {
	w := wire.NewWriter()
	BuildRequestPrefix(w, username, "publickey")
	w.PutBool(true).PutASCII(algorithm).PutString(keyBlob).PutString(sigBlob)
	return w.Bytes()
}

// BuildKbdintRequest encodes a keyboard-interactive init request: no
// language tag, and a submethods hint the server may ignore.
func BuildKbdintRequest(username, submethods string) []byte {
	w := wire.NewWriter()
	BuildRequestPrefix(w, username, "keyboard-interactive")
	w.PutASCII("").PutASCII(submethods)
	return w.Bytes()
}

// BuildInfoResponse encodes SSH_MSG_USERAUTH_INFO_RESPONSE: the answer
// count followed by each answer in order. Missing slots must already be
// represented as empty strings by the caller (kbdint.State.Answers does
// this).
func BuildInfoResponse(answers []string) []byte {
	w := wire.NewWriter()
	w.PutByte(MsgUserauthInfoResponse).PutUint32(uint32(len(answers)))
	for _, a := range answers {
		w.PutASCII(a)
	}
	return w.Bytes()
}

// FailureResult is the parsed payload of a USERAUTH_FAILURE message.
type FailureResult struct {
	MethodList string
	Partial    bool
}

// ParseFailure decodes a USERAUTH_FAILURE payload: string auth-continue,
// bool partial.
func ParseFailure(payload []byte) (FailureResult, error) {
	r := wire.NewReader(payload)
	methods, err := r.ASCIIString()
	if err != nil {
		return FailureResult{}, fmt.Errorf("userauth: failure method list: %w", err)
	}
	partial, err := r.Bool()
	if err != nil {
		return FailureResult{}, fmt.Errorf("userauth: failure partial flag: %w", err)
	}
	return FailureResult{MethodList: methods, Partial: partial}, nil
}

// ParseBanner decodes a USERAUTH_BANNER payload: string banner, string
// lang. The language tag is discarded.
func ParseBanner(payload []byte) (string, error) {
	r := wire.NewReader(payload)
	banner, err := r.ASCIIString()
	if err != nil {
		return "", fmt.Errorf("userauth: banner text: %w", err)
	}
	return banner, nil
}

// PKOKResult is the parsed payload of a USERAUTH_PK_OK message.
type PKOKResult struct {
	Algorithm string
	KeyBlob   []byte
}

// ParsePKOK decodes a USERAUTH_PK_OK payload: string algo, string pubkey.
func ParsePKOK(payload []byte) (PKOKResult, error) {
	r := wire.NewReader(payload)
	algo, err := r.ASCIIString()
	if err != nil {
		return PKOKResult{}, fmt.Errorf("userauth: pk_ok algorithm: %w", err)
	}
	blob, err := r.String()
	if err != nil {
		return PKOKResult{}, fmt.Errorf("userauth: pk_ok key blob: %w", err)
	}
	cp := make([]byte, len(blob))
	copy(cp, blob)
	return PKOKResult{Algorithm: algo, KeyBlob: cp}, nil
}

// InfoRequest is the parsed payload of a USERAUTH_INFO_REQUEST message.
type InfoRequest struct {
	Name        string
	Instruction string
	Prompts     []InfoPrompt
}

// InfoPrompt is one prompt within an InfoRequest.
type InfoPrompt struct {
	Text string
	Echo bool
}

// MaxPrompts bounds the number of prompts a single INFO_REQUEST may
// carry, the denial-of-service ceiling the specification requires
// (mirrors kbdint.MaxPrompts; kept separate so userauth does not import
// kbdint just for a constant).
const MaxPrompts = 32

// ParseInfoRequest decodes a USERAUTH_INFO_REQUEST payload: string name,
// string instruction, string lang (discarded), uint32 n, n ×
// (string prompt, bool echo). Rejects n outside [1, MaxPrompts].
func ParseInfoRequest(payload []byte) (InfoRequest, error) {
	r := wire.NewReader(payload)
	name, err := r.ASCIIString()
	if err != nil {
		return InfoRequest{}, fmt.Errorf("userauth: info_request name: %w", err)
	}
	instruction, err := r.ASCIIString()
	if err != nil {
		return InfoRequest{}, fmt.Errorf("userauth: info_request instruction: %w", err)
	}
	if _, err := r.ASCIIString(); err != nil {
		return InfoRequest{}, fmt.Errorf("userauth: info_request lang: %w", err)
	}
	n, err := r.Uint32()
	if err != nil {
		return InfoRequest{}, fmt.Errorf("userauth: info_request prompt count: %w", err)
	}
	if n < 1 || n > MaxPrompts {
		return InfoRequest{}, fmt.Errorf("userauth: info_request prompt count %d outside [1, %d]", n, MaxPrompts)
	}
	prompts := make([]InfoPrompt, 0, n)
	for i := uint32(0); i < n; i++ {
		text, err := r.ASCIIString()
		if err != nil {
			return InfoRequest{}, fmt.Errorf("userauth: info_request prompt %d text: %w", i, err)
		}
		echo, err := r.Bool()
		if err != nil {
			return InfoRequest{}, fmt.Errorf("userauth: info_request prompt %d echo: %w", i, err)
		}
		prompts = append(prompts, InfoPrompt{Text: text, Echo: echo})
	}
	return InfoRequest{Name: name, Instruction: instruction, Prompts: prompts}, nil
}
