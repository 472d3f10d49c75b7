package internal

import (
	"fmt"
	"strings"
	"time"
)

// Config of the hub, read from the environment.
type Config struct {
	Addr              string        `env:"HUB_ADDR,default=0.0.0.0:8080"`
	WebsocketPath     string        `env:"WS_PATH,default=/websockets"`
	BadgerFilepath    string        `env:"BADGER_FILEPATH,required=true"`
	LogLevel          string        `env:"LOG_LEVEL,default=INFO"`
	FetchTimeout      time.Duration `env:"FETCH_TIMEOUT,default=10s"`
	HeartbeatInterval time.Duration `env:"HEARTBEAT_INTERVAL,default=30s"`
	RestartInterval   time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT,default=5s"`
	ReadBufferSize    int           `env:"READ_BUFFER_SIZE,default=1024"`
	WriteBufferSize   int           `env:"WRITE_BUFFER_SIZE,default=1024"`
	MaxFrameSize      int           `env:"MAX_FRAME_SIZE,default=0"`
	// INSPECT_PATH mounts a read-only dump of the hub database, empty disables it
	InspectPath string `env:"INSPECT_PATH"`
}

func (c Config) Validate() error {
	if !strings.HasPrefix(c.WebsocketPath, "/") {
		return fmt.Errorf("WS_PATH must start with '/', got %q", c.WebsocketPath)
	}
	if c.InspectPath != "" && !strings.HasPrefix(c.InspectPath, "/") {
		return fmt.Errorf("INSPECT_PATH must start with '/', got %q", c.InspectPath)
	}
	if c.InspectPath != "" && c.InspectPath == c.WebsocketPath {
		return fmt.Errorf("INSPECT_PATH and WS_PATH must differ")
	}
	if c.FetchTimeout <= 0 || c.HeartbeatInterval <= 0 {
		return fmt.Errorf("FETCH_TIMEOUT and HEARTBEAT_INTERVAL must be positive")
	}
	if c.MaxFrameSize < 0 {
		return fmt.Errorf("MAX_FRAME_SIZE must not be negative, got %d", c.MaxFrameSize)
	}
	return nil
}
