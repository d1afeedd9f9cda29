package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/vaultview/vaultview/pkg/configuration"
)

// New builds the application logger. Output goes through a scrubbing writer
// so registered tenant tokens are masked; the returned ScrubbingWriter is
// used to register tokens as credential sets are submitted.
func New(config configuration.Configuration, out io.Writer) (zerolog.Logger, ScrubbingWriter) {
	if out == nil {
		out = os.Stderr
	}

	level, err := zerolog.ParseLevel(config.GetString(configuration.LOG_LEVEL))
	if err != nil {
		level = zerolog.InfoLevel
	}
	if config.GetBool(configuration.DEBUG) {
		level = zerolog.DebugLevel
	}

	console := zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	writer := NewScrubbingWriter(zerolog.MultiLevelWriter(console))

	logger := zerolog.New(writer).Level(level).With().Timestamp().Logger()
	scrubber, _ := writer.(ScrubbingWriter)
	return logger, scrubber
}
