package internal

import (
	"fmt"
	"time"
)

type Config struct {
	Host string `env:"HOST,required=true"`
	Port int    `env:"PORT,required=true"`

	BufferSize           int `env:"BUFFER_SIZE,required=true"`
	ConnectionBufferSize int `env:"CONNECTION_BUFFER_SIZE,required=true"`

	// LimitMessages bounds a single history page; nil means no bound.
	LimitMessages *int `env:"LIMIT_MESSAGES"`

	SinkTimeout     time.Duration `env:"SINK_TIMEOUT,required=true"`
	DeliveryTimeout time.Duration `env:"DELIVERY_TIMEOUT,required=true"`
	MetricInterval  time.Duration `env:"METRIC_INTERVAL,required=true"`
	RestartInterval time.Duration `env:"RESTART_INTERVAL,required=true"`

	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath  string `env:"BLUGE_FILEPATH,required=true"`

	LogLevel        string `env:"LOG_LEVEL,required=true"`
	CharReplacement string `env:"CHARACTER_REPLACEMENT,required=true"`

	MaxContentLength int `env:"MAX_CONTENT_LENGTH,required=true"`
	SearchPageSize   int `env:"SEARCH_PAGE_SIZE,required=true"`
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
