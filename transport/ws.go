package transport

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sage-x-project/sshauth/wire"
)

const (
	msgServiceRequest = 5
	msgServiceAccept  = 6
)

// WSTransport frames each SSH binary packet as one WebSocket binary
// message over conn. It is non-blocking-capable: PumpUntil sets a read
// deadline and treats a timeout as "would block" rather than an error,
// matching the specification's distinction between a fatal error and a
// transient would-block condition.
type WSTransport struct {
	conn *websocket.Conn

	mu      sync.Mutex
	handler PacketHandler

	serviceOK bool
}

// NewWSTransport wraps an already-established WebSocket connection
// (post key-exchange, in the specification's model). The caller owns
// conn's lifecycle.
func NewWSTransport(conn *websocket.Conn) *WSTransport {
	return &WSTransport{conn: conn}
}

func (t *WSTransport) SetHandler(h PacketHandler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handler = h
}

// RequestService sends SSH_MSG_SERVICE_REQUEST and waits for the
// corresponding SSH_MSG_SERVICE_ACCEPT. Re-entry after success
// short-circuits (spec section 4.1).
func (t *WSTransport) RequestService(name string) (Status, error) {
	if t.serviceOK {
		return StatusOK, nil
	}
	body := wire.NewWriter().PutByte(msgServiceRequest).PutASCII(name).Bytes()
	if err := t.conn.WriteMessage(websocket.BinaryMessage, body); err != nil {
		if isTimeout(err) {
			return StatusAgain, nil
		}
		return StatusError, fmt.Errorf("transport: service request write: %w", err)
	}

	_, msg, err := t.conn.ReadMessage()
	if err != nil {
		if isTimeout(err) {
			return StatusAgain, nil
		}
		return StatusError, fmt.Errorf("transport: service accept read: %w", err)
	}
	if len(msg) == 0 || msg[0] != msgServiceAccept {
		return StatusError, fmt.Errorf("transport: expected SERVICE_ACCEPT, got msg %v", msg)
	}
	t.serviceOK = true
	return StatusOK, nil
}

func (t *WSTransport) Send(packet []byte) (Status, error) {
	if err := t.conn.WriteMessage(websocket.BinaryMessage, packet); err != nil {
		if isTimeout(err) {
			return StatusAgain, nil
		}
		return StatusError, fmt.Errorf("transport: send: %w", err)
	}
	return StatusOK, nil
}

// PumpUntil reads WebSocket frames and dispatches each to the registered
// handler until done reports true or timeout elapses. A read deadline of
// zero disables the deadline (blocking mode); a nonzero timeout makes a
// deadline-exceeded error surface as StatusAgain.
func (t *WSTransport) PumpUntil(timeout time.Duration, done func() bool) (Status, error) {
	deadline := time.Time{}
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	for !done() {
		if err := t.conn.SetReadDeadline(deadline); err != nil {
			return StatusError, fmt.Errorf("transport: set read deadline: %w", err)
		}
		_, msg, err := t.conn.ReadMessage()
		if err != nil {
			if isTimeout(err) {
				return StatusAgain, nil
			}
			return StatusError, fmt.Errorf("transport: read: %w", err)
		}
		if len(msg) == 0 {
			continue
		}
		t.mu.Lock()
		h := t.handler
		t.mu.Unlock()
		if h == nil {
			continue
		}
		if err := h(msg[0], msg[1:]); err != nil {
			return StatusError, err
		}
	}
	return StatusOK, nil
}

func isTimeout(err error) bool {
	ne, ok := err.(net.Error)
	return ok && ne.Timeout()
}
