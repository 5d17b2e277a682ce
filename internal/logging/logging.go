// Package logging builds the bot's zerolog logger: a bracketed console format
// for humans plus rotating JSON files for everything and for errors alone.
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	ServiceField   = "service"
	DefaultService = "SYSTEM"

	timeLayout = "02-01-2006•15.04.05"
)

type Options struct {
	Level   string    // debug, info, warn, error
	Dir     string    // empty disables file output
	Console io.Writer // defaults to stdout

	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// New returns the root logger and a closer for its file sinks.
func New(opts Options) (zerolog.Logger, io.Closer) {
	console := opts.Console
	if console == nil {
		console = os.Stdout
	}

	writers := []io.Writer{NewConsoleWriter(console)}
	var files closers

	if opts.Dir != "" {
		combined := rotating(filepath.Join(opts.Dir, "combined.log"), opts)
		errorsOnly := rotating(filepath.Join(opts.Dir, "error.log"), opts)
		files = append(files, combined, errorsOnly)

		writers = append(writers,
			combined,
			&zerolog.FilteredLevelWriter{
				Writer: zerolog.LevelWriterAdapter{Writer: errorsOnly},
				Level:  zerolog.ErrorLevel,
			},
		)
	}

	l := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(ParseLevel(opts.Level)).
		With().Timestamp().Logger()
	return l, files
}

// For returns a child logger tagged with a service name.
func For(l zerolog.Logger, service string) zerolog.Logger {
	return l.With().Str(ServiceField, strings.ToUpper(service)).Logger()
}

// ParseLevel maps a config string to a level, falling back to info.
func ParseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// NewConsoleWriter renders `[time] [LEVEL] [SERVICE] message key=value`.
func NewConsoleWriter(out io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:           out,
		NoColor:       true,
		PartsOrder:    []string{zerolog.TimestampFieldName, zerolog.LevelFieldName, ServiceField, zerolog.MessageFieldName},
		FieldsExclude: []string{ServiceField},
		FormatPrepare: func(evt map[string]interface{}) error {
			if _, ok := evt[ServiceField]; !ok {
				evt[ServiceField] = DefaultService
			}
			return nil
		},
		FormatTimestamp: func(i interface{}) string {
			s, _ := i.(string)
			t, err := time.Parse(zerolog.TimeFieldFormat, s)
			if err != nil {
				return "[" + s + "]"
			}
			return "[" + t.Local().Format(timeLayout) + "]"
		},
		FormatLevel: func(i interface{}) string {
			return "[" + strings.ToUpper(fmt.Sprint(i)) + "]"
		},
		FormatPartValueByName: func(i interface{}, name string) string {
			if name == ServiceField {
				return "[" + fmt.Sprint(i) + "]"
			}
			return fmt.Sprint(i)
		},
	}
}

func rotating(path string, opts Options) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    orDefault(opts.MaxSizeMB, 10),
		MaxBackups: orDefault(opts.MaxBackups, 5),
		MaxAge:     orDefault(opts.MaxAgeDays, 28),
	}
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

type closers []io.Closer

func (c closers) Close() error {
	var errs []error
	for _, cl := range c {
		errs = append(errs, cl.Close())
	}
	return errors.Join(errs...)
}
