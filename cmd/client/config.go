package main

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	HubURL string `envconfig:"NFINITE_HUB_URL" default:"ws://localhost:8080/websockets"`
	// Credentials are sent verbatim whenever the hub asks for them
	Username string `envconfig:"NFINITE_USERNAME" default:"DEFAULT"`
	Password string `envconfig:"NFINITE_PASSWORD" default:"DEFAULT"`

	DownloadDir string `envconfig:"NFINITE_DOWNLOAD_DIR" default:"downloads"`
	// NFINITE_FRAGMENT_DIR keeps held fragments across restarts, empty keeps them in memory
	FragmentDir string        `envconfig:"NFINITE_FRAGMENT_DIR"`
	Timeout     time.Duration `envconfig:"NFINITE_TIMEOUT" default:"30s"`
	LogLevel    string        `envconfig:"LOG_LEVEL" default:"INFO"`
	// NFINITE_COLOURS enables colorized transfer indicators
	Colours bool `envconfig:"NFINITE_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
