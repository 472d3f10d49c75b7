package workers

import (
	"context"
	"errors"
	"log/slog"
	"nfinite/contract"
	apperrors "nfinite/errors"
	"nfinite/runtime"
)

// SessionWorker is the single receive loop of a connection.
// Frames go through the session state machine; completed units go to the dispatcher.
// Framing and dispatch errors are logged and the frame is dropped.
type SessionWorker struct {
	log        *slog.Logger
	conn       contract.Connection
	session    *runtime.Session
	dispatcher contract.Dispatcher
}

func NewSessionWorker(
	log *slog.Logger,
	conn contract.Connection,
	session *runtime.Session,
	dispatcher contract.Dispatcher,
) *SessionWorker {
	return &SessionWorker{
		log:        log,
		conn:       conn,
		session:    session,
		dispatcher: dispatcher,
	}
}

// Run returns nil once the connection is closed, by either side or by ctx.
func (w *SessionWorker) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		_ = w.conn.Close()
	})
	defer stop()
	defer w.session.Reset()

	for {
		frame, err := w.conn.ReadFrame()
		if err != nil {
			if errors.Is(err, apperrors.ErrConnectionClosed) || ctx.Err() != nil {
				w.log.Info("Receive loop stopped", "remote", w.conn.RemoteAddr(), "reason", err)
				return nil
			}
			return err
		}

		unit, err := w.session.HandleFrame(frame)
		if err != nil {
			w.log.Warn("Frame dropped", "kind", frame.Kind, "size", len(frame.Data), "error", err)
			continue
		}
		if unit == nil {
			continue
		}
		if err := w.dispatcher.Dispatch(ctx, *unit); err != nil {
			w.log.Warn("Dispatch failed", "type", unit.Message.Type, "name", unit.Name(), "error", err)
		}
	}
}
