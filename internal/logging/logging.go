package logging

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var (
	once      sync.Once
	singleton *log.Logger
)

func get() *log.Logger {
	once.Do(func() {
		singleton = log.NewWithOptions(os.Stderr, log.Options{
			ReportCaller:    true,
			ReportTimestamp: true,
			TimeFormat:      time.RFC3339,
			Prefix:          "voxbatch",
		})
		singleton.SetLevel(log.InfoLevel)
	})
	return singleton
}

// SetLevel accepts "debug", "info", "warn", "error" or "fatal".
func SetLevel(level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return err
	}
	get().SetLevel(lvl)
	return nil
}

func SetOutput(w io.Writer) {
	get().SetOutput(w)
}

// With returns a child logger carrying the given key/value pairs.
func With(keyvals ...interface{}) *log.Logger {
	return get().With(keyvals...)
}

func Debugf(msg string, args ...interface{}) {
	l := get()
	l.Helper()
	l.Debugf(msg, args...)
}

func Infof(msg string, args ...interface{}) {
	l := get()
	l.Helper()
	l.Infof(msg, args...)
}

func Warnf(msg string, args ...interface{}) {
	l := get()
	l.Helper()
	l.Warnf(msg, args...)
}

func Errorf(msg string, args ...interface{}) {
	l := get()
	l.Helper()
	l.Errorf(msg, args...)
}

func Fatalf(msg string, args ...interface{}) {
	l := get()
	l.Helper()
	l.Fatalf(msg, args...)
}
