package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls where and how verbosely the process logs.
type Options struct {
	Level   string
	Debug   bool
	File    string
	Service string
}

// New builds the process logger. The returned closer releases the log file, if any.
func New(opts Options) (zerolog.Logger, io.Closer) {
	zerolog.TimeFieldFormat = time.RFC3339

	level, err := zerolog.ParseLevel(opts.Level)
	if err != nil || opts.Level == "" {
		level = zerolog.InfoLevel
	}
	if opts.Debug {
		level = zerolog.DebugLevel
	}

	var out io.Writer = os.Stdout
	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		file := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    50, // megabytes
			MaxBackups: 5,
			MaxAge:     14, // days
			Compress:   true,
		}
		out = zerolog.MultiLevelWriter(os.Stdout, file)
		closer = file
	}

	service := opts.Service
	if service == "" {
		service = "govhotline-backend"
	}
	logger := zerolog.New(out).Level(level).With().Timestamp().Str("service", service).Logger()
	return logger, closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
