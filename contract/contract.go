//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"nfinite/domain"
	"nfinite/domain/protocol"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// Sender is the outbound half of a connection.
// SendPaired writes a control message and its payload with no frame in between.
type Sender interface {
	SendControl(msg protocol.ControlMessage) error
	SendPayload(data []byte) error
	SendPaired(msg protocol.ControlMessage, data []byte) error
}

// Connection is one persistent socket: frames are read in arrival order by a single consumer.
type Connection interface {
	Sender
	ReadFrame() (protocol.Frame, error)
	RemoteAddr() string
	Close() error
}

type Dispatcher interface {
	Dispatch(ctx context.Context, unit protocol.Unit) error
}

type ActivitySink interface {
	OnTransferActivity(direction domain.Direction)
}

type Presenter interface {
	ActivitySink
	OnFileListUpdated(entries []protocol.FileMeta)
}

// FileSink persists complete files handed over by the dispatcher.
type FileSink interface {
	Save(meta protocol.FileMeta, data []byte) error
}
