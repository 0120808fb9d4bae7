package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// CHAT_E2E_ADDR is the gRPC address of a running hub, the suites are skipped when empty
	HubAddr string `envconfig:"CHAT_E2E_ADDR"`
	// E2E_DEBUG_JSON dumps every envelope sent and received on the session streams
	DebugJSON bool `envconfig:"E2E_DEBUG_JSON" default:"false"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
