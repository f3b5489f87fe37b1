package e2e

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// SERVER_ADDR points at a running chat-core instance, e.g. "127.0.0.1:8080".
	// When empty the e2e suite is skipped.
	ServerAddr string `envconfig:"SERVER_ADDR"`
	// E2E_TIMEOUT bounds every individual HTTP call of the suite
	Timeout time.Duration `envconfig:"E2E_TIMEOUT" default:"5s"`
	// E2E_DEBUG_JSON allows dumping full request/response bodies as JSON
	DebugJSON bool `envconfig:"E2E_DEBUG_JSON" default:"false"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
