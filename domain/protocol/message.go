// Package protocol describes the control messages exchanged over the hub socket.
// A control message travels as one JSON text frame. Messages of type file, part and
// response are followed by exactly one binary frame carrying their bytes.
package protocol

import (
	"encoding/json"
	"strconv"
	"time"
)

type MessageType string

const (
	Registration MessageType = "registration"
	FileList     MessageType = "fileList"
	File         MessageType = "file"
	Part         MessageType = "part"
	Request      MessageType = "request"
	Response     MessageType = "response"
)

// RequiresPayload reports whether a binary frame must follow a message of this type.
func (t MessageType) RequiresPayload() bool {
	switch t {
	case File, Part, Response:
		return true
	default:
		return false
	}
}

func (t MessageType) Known() bool {
	switch t {
	case Registration, FileList, File, Part, Request, Response:
		return true
	default:
		return false
	}
}

type ControlMessage struct {
	Type     MessageType `json:"type"`
	FileMeta *FileMeta   `json:"fileMeta,omitempty"`
	UserMeta *UserMeta   `json:"userMeta,omitempty"`
	Files    []FileEntry `json:"files,omitempty"`
}

// MarshalJSON always writes "files" on a fileList, as an empty array when
// the owner has nothing stored. Other types leave it out.
func (m ControlMessage) MarshalJSON() ([]byte, error) {
	type plain ControlMessage
	if m.Type != FileList {
		return json.Marshal(plain(m))
	}
	files := m.Files
	if files == nil {
		files = []FileEntry{}
	}
	return json.Marshal(struct {
		plain
		Files []FileEntry `json:"files"`
	}{plain: plain(m), Files: files})
}

// FileMeta identifies a file by name within a session.
// DateModified is an opaque string timestamp, milliseconds since epoch when set by a client.
type FileMeta struct {
	Name         string `json:"name" validate:"required"`
	DateModified string `json:"dateModified"`
}

// UnmarshalJSON accepts the legacy "lastModified" key used by older hubs in file lists.
func (f *FileMeta) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name         string `json:"name"`
		DateModified string `json:"dateModified"`
		LastModified string `json:"lastModified"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	f.Name = raw.Name
	f.DateModified = raw.DateModified
	if f.DateModified == "" {
		f.DateModified = raw.LastModified
	}
	return nil
}

// ModifiedAt parses DateModified as epoch milliseconds.
func (f FileMeta) ModifiedAt() (time.Time, bool) {
	ms, err := strconv.ParseInt(f.DateModified, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(ms).UTC(), true
}

type UserMeta struct {
	Name string `json:"name" validate:"required"`
	Pass string `json:"pass" validate:"required"`
}

type FileEntry struct {
	FileMeta FileMeta `json:"fileMeta"`
}

// Unit is a fully reassembled protocol message: a control message and,
// when its type requires one, the binary payload that followed it.
type Unit struct {
	Message    ControlMessage
	Payload    []byte
	HasPayload bool
}

func (u Unit) Name() string {
	if u.Message.FileMeta == nil {
		return ""
	}
	return u.Message.FileMeta.Name
}

func NewRegistration(name, pass string) ControlMessage {
	return ControlMessage{Type: Registration, UserMeta: &UserMeta{Name: name, Pass: pass}}
}

func NewFileList(files []FileMeta) ControlMessage {
	entries := make([]FileEntry, 0, len(files))
	for _, f := range files {
		entries = append(entries, FileEntry{FileMeta: f})
	}
	return ControlMessage{Type: FileList, Files: entries}
}

func NewFile(name, dateModified string) ControlMessage {
	return ControlMessage{Type: File, FileMeta: &FileMeta{Name: name, DateModified: dateModified}}
}

func NewPart(name, dateModified string) ControlMessage {
	return ControlMessage{Type: Part, FileMeta: &FileMeta{Name: name, DateModified: dateModified}}
}

// NewRequest always carries an empty dateModified.
func NewRequest(name string) ControlMessage {
	return ControlMessage{Type: Request, FileMeta: &FileMeta{Name: name}}
}

func NewResponse(name, dateModified string) ControlMessage {
	return ControlMessage{Type: Response, FileMeta: &FileMeta{Name: name, DateModified: dateModified}}
}

type FrameKind int

const (
	TextFrame FrameKind = iota + 1
	BinaryFrame
)

func (k FrameKind) String() string {
	switch k {
	case TextFrame:
		return "text"
	case BinaryFrame:
		return "binary"
	default:
		return "unknown"
	}
}

// Frame is one websocket message as it arrived on the wire.
type Frame struct {
	Kind FrameKind
	Data []byte
}
