package agentsign

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/sage-x-project/sshauth/wire"
)

// Agent protocol message numbers (draft-miller-ssh-agent), implemented
// against the module's own wire codec rather than golang.org/x/crypto/ssh/agent
// so that the signing delegate does not import the very SSH protocol
// library this package stands in for.
const (
	msgRequestIdentities = 11
	msgIdentitiesAnswer  = 12
	msgSignRequest       = 13
	msgSignResponse      = 14
	msgFailure           = 5
)

// SocketAgent talks the ssh-agent wire protocol over a Unix domain socket.
type SocketAgent struct {
	mu   sync.Mutex
	conn net.Conn
}

// DialSocketAgent connects to the ssh-agent listening at path (typically
// $SSH_AUTH_SOCK).
func DialSocketAgent(path string) (*SocketAgent, error) {
	conn, err := net.Dial("unix", path)
	if err != nil {
		return nil, fmt.Errorf("agentsign: dial %s: %w", path, err)
	}
	return &SocketAgent{conn: conn}, nil
}

// Close releases the underlying socket.
func (a *SocketAgent) Close() error {
	return a.conn.Close()
}

func (a *SocketAgent) Identities() ([]Identity, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := sendFrame(a.conn, msgRequestIdentities, nil); err != nil {
		return nil, err
	}
	msgNum, body, err := readFrame(a.conn)
	if err != nil {
		return nil, err
	}
	if msgNum == msgFailure {
		return nil, fmt.Errorf("agentsign: agent returned failure for identities request")
	}
	if msgNum != msgIdentitiesAnswer {
		return nil, fmt.Errorf("agentsign: expected IDENTITIES_ANSWER, got message %d", msgNum)
	}

	r := wire.NewReader(body)
	n, err := r.Uint32()
	if err != nil {
		return nil, fmt.Errorf("agentsign: identities count: %w", err)
	}
	out := make([]Identity, 0, n)
	for i := uint32(0); i < n; i++ {
		blob, err := r.String()
		if err != nil {
			return nil, fmt.Errorf("agentsign: identity %d blob: %w", i, err)
		}
		comment, err := r.ASCIIString()
		if err != nil {
			return nil, fmt.Errorf("agentsign: identity %d comment: %w", i, err)
		}
		cp := make([]byte, len(blob))
		copy(cp, blob)
		out = append(out, Identity{Blob: cp, Comment: comment})
	}
	return out, nil
}

func (a *SocketAgent) Sign(blob, buf []byte) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	body := wire.NewWriter().PutString(blob).PutString(buf).PutUint32(0).Bytes()
	if err := sendFrame(a.conn, msgSignRequest, body); err != nil {
		return nil, err
	}
	msgNum, resp, err := readFrame(a.conn)
	if err != nil {
		return nil, err
	}
	if msgNum == msgFailure {
		return nil, ErrIdentityNotFound
	}
	if msgNum != msgSignResponse {
		return nil, fmt.Errorf("agentsign: expected SIGN_RESPONSE, got message %d", msgNum)
	}
	r := wire.NewReader(resp)
	sig, err := r.String()
	if err != nil {
		return nil, fmt.Errorf("agentsign: sign response payload: %w", err)
	}
	cp := make([]byte, len(sig))
	copy(cp, sig)
	return cp, nil
}

// sendFrame writes the agent protocol's outer framing: a 4-byte
// big-endian length covering the message number and body, then the
// message number, then the body.
func sendFrame(w io.Writer, msgNum byte, body []byte) error {
	frame := make([]byte, 4+1+len(body))
	binary.BigEndian.PutUint32(frame[:4], uint32(1+len(body)))
	frame[4] = msgNum
	copy(frame[5:], body)
	_, err := w.Write(frame)
	if err != nil {
		return fmt.Errorf("agentsign: write frame: %w", err)
	}
	return nil
}

func readFrame(r io.Reader) (byte, []byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return 0, nil, fmt.Errorf("agentsign: read frame length: %w", err)
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	if n == 0 {
		return 0, nil, fmt.Errorf("agentsign: zero-length frame")
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, nil, fmt.Errorf("agentsign: read frame body: %w", err)
	}
	return buf[0], buf[1:], nil
}
