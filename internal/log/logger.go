package log

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Newはアプリ全体で使うrootロガーを作る。
// devはコンソール出力 + debug、prodはJSON + info
func New(env string) zerolog.Logger {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	if env == "prod" {
		return zerolog.New(os.Stdout).With().
			Timestamp().
			Str("env", env).
			Logger()
	}

	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}

	return zerolog.New(output).With().
		Timestamp().
		Str("env", env).
		Logger()
}
