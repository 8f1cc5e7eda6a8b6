package transport

import "time"

// Stub is an in-memory Transport for tests: it records every packet the
// client sends and lets the test enqueue exact server packets to be
// delivered on the next PumpUntil call, simulating would-block whenever
// the queue runs dry before done() is satisfied.
type Stub struct {
	handler PacketHandler

	// Sent captures every packet passed to Send, in order.
	Sent [][]byte

	queue [][]byte

	// ServiceStatus/ServiceErr let a test force RequestService to
	// return AGAIN or ERROR; zero value behaves as an immediate OK.
	ServiceStatus Status
	ServiceErr    error

	// SendStatus/SendErr override the next Send call's result once,
	// then reset to the OK default.
	SendStatus Status
	SendErr    error
}

// NewStub returns a ready-to-script Stub transport.
func NewStub() *Stub {
	return &Stub{}
}

// EnqueueServerPacket schedules payload (message number byte followed by
// its fields) to be delivered to the registered handler on a future
// PumpUntil call.
func (s *Stub) EnqueueServerPacket(payload []byte) {
	s.queue = append(s.queue, payload)
}

func (s *Stub) RequestService(name string) (Status, error) {
	if s.ServiceErr != nil {
		err := s.ServiceErr
		s.ServiceErr = nil
		return StatusError, err
	}
	if s.ServiceStatus == StatusAgain {
		s.ServiceStatus = StatusOK
		return StatusAgain, nil
	}
	return StatusOK, nil
}

func (s *Stub) SetHandler(h PacketHandler) { s.handler = h }

func (s *Stub) Send(packet []byte) (Status, error) {
	if s.SendErr != nil {
		err := s.SendErr
		s.SendErr = nil
		return StatusError, err
	}
	if s.SendStatus == StatusAgain {
		s.SendStatus = StatusOK
		return StatusAgain, nil
	}
	cp := make([]byte, len(packet))
	copy(cp, packet)
	s.Sent = append(s.Sent, cp)
	return StatusOK, nil
}

func (s *Stub) PumpUntil(timeout time.Duration, done func() bool) (Status, error) {
	for !done() {
		if len(s.queue) == 0 {
			return StatusAgain, nil
		}
		next := s.queue[0]
		s.queue = s.queue[1:]
		if len(next) == 0 {
			continue
		}
		if err := s.handler(next[0], next[1:]); err != nil {
			return StatusError, err
		}
	}
	return StatusOK, nil
}
