package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
)

// Config holds logger configuration options
type Config struct {
	// Format is "json" or "console"
	Format string `envconfig:"LOG_FORMAT" default:"console"`
	// Level is the minimum level: "debug", "info", "warn", "error"
	Level string `envconfig:"LOG_LEVEL" default:"info"`
	// Output defaults to os.Stderr
	Output io.Writer `ignored:"true"`
}

// ConfigFromEnv reads ADBINTERP_LOG_LEVEL and ADBINTERP_LOG_FORMAT
func ConfigFromEnv() (cfg Config, err error) {
	if err = envconfig.Process("ADBINTERP", &cfg); err != nil {
		return
	}
	cfg.Output = os.Stderr
	return
}

func NewLogger(cfg Config) (logger zerolog.Logger, err error) {
	var level zerolog.Level
	if level, err = parseLevel(cfg.Level); err != nil {
		return
	}
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	switch strings.ToLower(cfg.Format) {
	case "json", "":
	case "text", "console":
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: time.Kitchen}
	default:
		err = fmt.Errorf("invalid log format: %s", cfg.Format)
		return
	}
	logger = zerolog.New(output).Level(level).With().Timestamp().Logger()
	return
}

func parseLevel(level string) (zerolog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel, nil
	case "info", "":
		return zerolog.InfoLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	case "disabled", "off":
		return zerolog.Disabled, nil
	default:
		return zerolog.InfoLevel, fmt.Errorf("invalid log level: %s", level)
	}
}
