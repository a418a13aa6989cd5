package logx

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitFromEnv configures zerolog using env vars.
// - LOG_LEVEL  : trace|debug|info|warn|error (default: info)
// - LOG_FORMAT : json|console                (default: json)
func InitFromEnv() {
	Init(getenv("LOG_LEVEL", "info"), getenv("LOG_FORMAT", "json"), os.Stdout)
}

// Init sets the global level and replaces log.Logger with one writing to w.
func Init(level, format string, w io.Writer) {
	// Always use UTC timestamps in RFC3339.
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.TimestampFunc = func() time.Time { return time.Now().UTC() }

	zerolog.SetGlobalLevel(parseLevel(level))

	out := w
	if strings.EqualFold(strings.TrimSpace(format), "console") {
		out = zerolog.NewConsoleWriter(func(cw *zerolog.ConsoleWriter) {
			cw.Out = w
			cw.TimeFormat = time.RFC3339
		})
	} // default: structured JSON
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
}

// parseLevel maps a level name to zerolog, falling back to info.
func parseLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	switch s {
	case "trace", "debug", "info", "warn", "error":
		lvl, err := zerolog.ParseLevel(s)
		if err == nil {
			return lvl
		}
	}
	return zerolog.InfoLevel
}

// getenv returns the env var value if set and non-empty, otherwise def.
func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && strings.TrimSpace(v) != "" {
		return v
	}
	return def
}
