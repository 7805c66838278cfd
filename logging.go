package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"gopkg.in/natefinch/lumberjack.v2"
)

// initLogging installs the default slog logger. Logs go to stderr through
// tint, or to a rotating JSON log file when log.file is set.
func (a *app) initLogging() error {
	level, err := parseLevel(a.v.GetString("log.level"))
	if err != nil {
		return err
	}
	var h slog.Handler
	if path := a.v.GetString("log.file"); path != "" {
		w := &lumberjack.Logger{
			Filename:   path,
			MaxSize:    a.v.GetInt("log.max_size"), // MB
			MaxBackups: a.v.GetInt("log.max_files"),
			MaxAge:     30, // days
			Compress:   true,
		}
		a.logSink = w
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	} else {
		h = newConsoleHandler(os.Stderr, level)
	}
	slog.SetDefault(slog.New(h))
	return nil
}

func newConsoleHandler(f *os.File, level slog.Leveler) slog.Handler {
	return tint.NewHandler(colorable.NewColorable(f), &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05.000",
		NoColor:    !isatty.IsTerminal(f.Fd()),
	})
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q (supported: debug, info, warn, error)", s)
	}
	return level, nil
}
