package internal

import (
	"time"
)

type Config struct {
	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	Host           string `env:"HOST,default=0.0.0.0"`
	Port           int    `env:"PORT,default=8080"`
	LogLevel       string `env:"LOG_LEVEL,default=INFO"`

	AuthSecret        string        `env:"AUTH_SECRET,required=true"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`

	BufferSize       int           `env:"BUFFER_SIZE,default=256"`
	SinkTimeout      time.Duration `env:"SINK_TIMEOUT,default=2s"`
	StreamKeepAlive  time.Duration `env:"STREAM_KEEPALIVE,default=15s"`
	CleanupInterval  time.Duration `env:"CLEANUP_INTERVAL,default=1m"`
	HealthInterval   time.Duration `env:"HEALTH_INTERVAL,default=30s"`
	MaxContentLength int           `env:"MAX_CONTENT_LENGTH,default=512"`
	LimitMessages    *int          `env:"LIMIT_MESSAGES"`
}
