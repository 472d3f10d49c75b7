package errors

import "fmt"

var (
	ErrWorkerPanic = fmt.Errorf("worker panic")

	// Transport
	ErrConnectionClosed = fmt.Errorf("connection closed")

	// Framing
	ErrMalformedControlMessage = fmt.Errorf("malformed control message")
	ErrUnexpectedPayload       = fmt.Errorf("unexpected payload: no control message awaiting pairing")
	ErrPairingInProgress       = fmt.Errorf("control message rejected: a payload is still awaited")

	// Dispatch
	ErrUnknownMessageType = fmt.Errorf("unknown message type")
	ErrUnknownFragment    = fmt.Errorf("unknown fragment")
	ErrUnsolicitedPart    = fmt.Errorf("unsolicited part")

	// Hub
	ErrNotRegistered      = fmt.Errorf("session is not registered")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrUserNotFound       = fmt.Errorf("user not found")
	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrFileAlreadyExists  = fmt.Errorf("file already exists")
	ErrFileNotFound       = fmt.Errorf("file not found")
	ErrNoPeerAvailable    = fmt.Errorf("no available peer to fetch part from")
	ErrFetchTimeout       = fmt.Errorf("timed out waiting for part")
)
