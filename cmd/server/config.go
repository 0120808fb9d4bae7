package main

import (
	"fmt"
	"strings"
	"time"
)

type Config struct {
	LogLevel             string        `env:"LOG_LEVEL,default=INFO"`
	GrpcHost             string        `env:"GRPC_HOST,default=localhost"`
	GrpcPort             int           `env:"GRPC_PORT,default=8080"`
	WsEnabled            bool          `env:"WS_ENABLED,default=false"`
	WsAddr               string        `env:"WS_ADDR,default=localhost:8081"`
	MailboxSize          int           `env:"MAILBOX_SIZE,default=256"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=64"`
	DeliveryTimeout      time.Duration `env:"DELIVERY_TIMEOUT,default=100ms"`
	RequestTimeout       time.Duration `env:"REQUEST_TIMEOUT,default=5s"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	MonitorInterval      time.Duration `env:"MONITOR_INTERVAL,default=10s"`
	MailboxWarnRatio     float64       `env:"MAILBOX_WARN_RATIO,default=0.8"`
	HistoryBackend       string        `env:"HISTORY_BACKEND,default=memory"`
	SearchEnabled        bool          `env:"SEARCH_ENABLED,default=true"`
	AnnouncePresence     bool          `env:"ANNOUNCE_PRESENCE,default=true"`
	OfflineQueueEnabled  bool          `env:"OFFLINE_QUEUE_ENABLED,default=false"`
	OfflineQueueLimit    int           `env:"OFFLINE_QUEUE_LIMIT,default=100"`
	CensoredWords        string        `env:"CENSORED_WORDS"` // comma separated
	CensoredDir          string        `env:"CENSORED_DIR"`   // directory of <lang>.txt word lists
	CharReplacement      string        `env:"CHARACTER_REPLACEMENT,default=*"`
}

func (c Config) CharacterRune() (rune, error) {
	r := []rune(c.CharReplacement)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			c.CharReplacement,
		)
	}
	return r[0], nil
}

func (c Config) Words() []string {
	var words []string
	for _, w := range strings.Split(c.CensoredWords, ",") {
		if w = strings.TrimSpace(w); w != "" {
			words = append(words, w)
		}
	}
	return words
}

func (c Config) GrpcAddress() string {
	return fmt.Sprintf("%s:%d", c.GrpcHost, c.GrpcPort)
}
