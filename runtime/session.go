package runtime

import (
	"fmt"
	"log/slog"
	"nfinite/domain/protocol"
	"nfinite/errors"
	"sync"
)

type State int

const (
	Idle State = iota
	AwaitingPayload
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingPayload:
		return "awaiting_payload"
	default:
		return "unknown"
	}
}

// Session pairs a control message announcing a payload with the binary frame
// that follows it. It holds at most one pending message.
type Session struct {
	mu      sync.Mutex
	log     *slog.Logger
	state   State
	pending *protocol.ControlMessage
}

func NewSession(log *slog.Logger) *Session {
	return &Session{log: log, state: Idle}
}

// HandleFrame routes a frame to HandleText or HandleBinary depending on its kind.
// A nil unit with a nil error means the frame was absorbed into the pairing slot.
func (s *Session) HandleFrame(frame protocol.Frame) (*protocol.Unit, error) {
	switch frame.Kind {
	case protocol.TextFrame:
		return s.HandleText(frame.Data)
	case protocol.BinaryFrame:
		return s.HandleBinary(frame.Data)
	default:
		return nil, fmt.Errorf("unsupported frame kind %d", frame.Kind)
	}
}

// HandleText parses a control message. Messages that announce a payload move the
// session to AwaitingPayload; every other message is returned for immediate dispatch.
// A control message arriving while a payload is awaited is rejected and the pending
// message is kept.
func (s *Session) HandleText(data []byte) (*protocol.Unit, error) {
	msg, err := protocol.Decode(data)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == AwaitingPayload {
		return nil, fmt.Errorf("%w: %s received while %s %q is pending",
			errors.ErrPairingInProgress, msg.Type, s.pending.Type, pendingName(s.pending))
	}
	if msg.Type.RequiresPayload() {
		s.pending = &msg
		s.state = AwaitingPayload
		s.log.Debug("Awaiting payload", "type", msg.Type, "name", pendingName(&msg))
		return nil, nil
	}
	return &protocol.Unit{Message: msg}, nil
}

// HandleBinary completes the pending pairing. A binary frame with nothing pending
// is dropped and reported as ErrUnexpectedPayload; the session stays Idle.
func (s *Session) HandleBinary(data []byte) (*protocol.Unit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != AwaitingPayload {
		return nil, fmt.Errorf("%w: dropped %d bytes", errors.ErrUnexpectedPayload, len(data))
	}
	unit := &protocol.Unit{Message: *s.pending, Payload: data, HasPayload: true}
	s.pending = nil
	s.state = Idle
	return unit, nil
}

// Reset discards any pending message without dispatching it. Called on close.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending != nil {
		s.log.Debug("Discarding pending message", "type", s.pending.Type, "name", pendingName(s.pending))
	}
	s.pending = nil
	s.state = Idle
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Pending returns a copy of the message awaiting its payload, if any.
func (s *Session) Pending() (protocol.ControlMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return protocol.ControlMessage{}, false
	}
	return *s.pending, true
}

func pendingName(msg *protocol.ControlMessage) string {
	if msg == nil || msg.FileMeta == nil {
		return ""
	}
	return msg.FileMeta.Name
}
