package transport

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"nfinite/domain"
	"nfinite/domain/protocol"
	"nfinite/errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

type countingActivity struct {
	up, down atomic.Int32
}

func (c *countingActivity) OnTransferActivity(direction domain.Direction) {
	if direction == domain.Upload {
		c.up.Add(1)
		return
	}
	c.down.Add(1)
}

// echoServer accepts one connection and writes back every frame it reads.
func echoServer(t *testing.T) *httptest.Server {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := Accept(w, r, DefaultOptions(), log, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			frame, err := conn.ReadFrame()
			if err != nil {
				return
			}
			if frame.Kind == protocol.TextFrame {
				msg, err := protocol.Decode(frame.Data)
				if err != nil {
					return
				}
				_ = conn.SendControl(msg)
				continue
			}
			_ = conn.SendPayload(frame.Data)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestConn_PairedFramesArriveInOrder(t *testing.T) {
	req := require.New(t)
	srv := echoServer(t)
	activity := &countingActivity{}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := Dial(ctx, wsURL(srv), DefaultOptions(), logs.GetLoggerFromLevel(slog.LevelDebug), activity)
	req.NoError(err)
	defer conn.Close()

	// When a part is sent with its payload
	req.NoError(conn.SendPaired(protocol.NewPart("chunk1", "1"), []byte{1, 2, 3}))

	// Then the echo comes back as text then binary
	frame, err := conn.ReadFrame()
	req.NoError(err)
	req.Equal(protocol.TextFrame, frame.Kind)
	msg, err := protocol.Decode(frame.Data)
	req.NoError(err)
	req.Equal(protocol.NewPart("chunk1", "1"), msg)

	frame, err = conn.ReadFrame()
	req.NoError(err)
	req.Equal(protocol.BinaryFrame, frame.Kind)
	req.Equal([]byte{1, 2, 3}, frame.Data)

	// And every frame was reported to the activity sink
	req.Equal(int32(2), activity.up.Load())
	req.Equal(int32(2), activity.down.Load())
}

func TestConn_SendAfterClose(t *testing.T) {
	req := require.New(t)
	srv := echoServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := Dial(ctx, wsURL(srv), DefaultOptions(), slog.Default(), nil)
	req.NoError(err)

	req.NoError(conn.Close())
	req.NoError(conn.Close())

	req.ErrorIs(conn.SendControl(protocol.NewRequest("x")), errors.ErrConnectionClosed)
	req.ErrorIs(conn.SendPayload([]byte{1}), errors.ErrConnectionClosed)
	_, err = conn.ReadFrame()
	req.ErrorIs(err, errors.ErrConnectionClosed)
}

func TestConn_RemoteCloseSurfacesAsClosed(t *testing.T) {
	req := require.New(t)
	log := slog.Default()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := Accept(w, r, DefaultOptions(), log, nil)
		if err != nil {
			return
		}
		_ = conn.Close()
	}))
	defer srv.Close()

	conn, err := Dial(context.Background(), wsURL(srv), DefaultOptions(), log, nil)
	req.NoError(err)
	defer conn.Close()

	_, err = conn.ReadFrame()
	req.ErrorIs(err, errors.ErrConnectionClosed)
}

func TestConn_EncodeFailureDoesNotWrite(t *testing.T) {
	req := require.New(t)
	srv := echoServer(t)

	conn, err := Dial(context.Background(), wsURL(srv), DefaultOptions(), slog.Default(), nil)
	req.NoError(err)
	defer conn.Close()

	err = conn.SendControl(protocol.ControlMessage{})
	req.ErrorIs(err, errors.ErrMalformedControlMessage)
}
