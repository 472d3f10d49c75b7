package protocol

import (
	"encoding/json"
	"fmt"
	"nfinite/errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Encode serializes a control message into the body of a text frame.
func Encode(msg ControlMessage) ([]byte, error) {
	if msg.Type == "" {
		return nil, fmt.Errorf("%w: missing type", errors.ErrMalformedControlMessage)
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrMalformedControlMessage, err)
	}
	return data, nil
}

// Decode parses a text frame. Unknown types are returned as-is so the
// dispatcher can report them; known types are checked against their schema.
func Decode(data []byte) (ControlMessage, error) {
	var msg ControlMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return ControlMessage{}, fmt.Errorf("%w: %v", errors.ErrMalformedControlMessage, err)
	}
	if msg.Type == "" {
		return ControlMessage{}, fmt.Errorf("%w: missing type", errors.ErrMalformedControlMessage)
	}
	if err := Validate(msg); err != nil {
		return ControlMessage{}, err
	}
	return msg, nil
}

// Validate checks the fields each known message type depends on.
func Validate(msg ControlMessage) error {
	switch msg.Type {
	case Registration:
		if msg.UserMeta == nil {
			return fmt.Errorf("%w: %s without userMeta", errors.ErrMalformedControlMessage, msg.Type)
		}
		if err := validate.Struct(msg.UserMeta); err != nil {
			return fmt.Errorf("%w: %v", errors.ErrMalformedControlMessage, err)
		}
	case File, Part, Request, Response:
		if msg.FileMeta == nil {
			return fmt.Errorf("%w: %s without fileMeta", errors.ErrMalformedControlMessage, msg.Type)
		}
		if err := validate.Struct(msg.FileMeta); err != nil {
			return fmt.Errorf("%w: %v", errors.ErrMalformedControlMessage, err)
		}
	case FileList:
		for i, entry := range msg.Files {
			if err := validate.Struct(entry.FileMeta); err != nil {
				return fmt.Errorf("%w: files[%d]: %v", errors.ErrMalformedControlMessage, i, err)
			}
		}
	}
	return nil
}
