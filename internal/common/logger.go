// Package common holds ambient concerns (logging, flag parsing, filesystem
// helpers) shared by every symgen package, the same role internal/common
// plays in nocc.
package common

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"
)

// Level mirrors the four-level enum from the original SymbolGenerator logger
// (VERBOSE, NORMAL, WARNING, ERROR).
type Level int

const (
	Verbose Level = iota
	Normal
	Warning
	Error
)

// Logger wraps the standard log.Logger, whose Output method already
// serializes concurrent writers, satisfying the "line-atomic sink" contract
// required when TUs are processed in parallel.
type Logger struct {
	impl   *log.Logger
	prefix string
	level  Level
}

// New builds a root logger writing to out, filtering messages below level.
func New(out io.Writer, level Level) *Logger {
	if out == nil {
		out = os.Stderr
	}
	return &Logger{impl: log.New(out, "", 0), level: level}
}

// Fork returns a logger sharing the same sink but carrying a message prefix,
// used to scope per-translation-unit log lines (spec's "TU-scoped prefix").
func (l *Logger) Fork(prefix string) *Logger {
	return &Logger{impl: l.impl, prefix: prefix, level: l.level}
}

func (l *Logger) formatAndWrite(level Level, levelName string, v ...interface{}) {
	if level < l.level {
		return
	}
	ts := time.Now().Format("2006-01-02 15:04:05")
	body := fmt.Sprintln(v...)
	if l.prefix != "" {
		_ = l.impl.Output(0, fmt.Sprintf("%s %s [%s] %s", ts, levelName, l.prefix, body))
	} else {
		_ = l.impl.Output(0, fmt.Sprintf("%s %s %s", ts, levelName, body))
	}
}

func (l *Logger) Verbosef(v ...interface{}) { l.formatAndWrite(Verbose, "VERBOSE", v...) }
func (l *Logger) Normalf(v ...interface{})  { l.formatAndWrite(Normal, "NORMAL", v...) }
func (l *Logger) Warningf(v ...interface{}) { l.formatAndWrite(Warning, "WARNING", v...) }
func (l *Logger) Errorf(v ...interface{})   { l.formatAndWrite(Error, "ERROR", v...) }

// Fatalf logs an error-level message unconditionally and terminates the
// process, mirroring logger::assert_that's unconditional std::exit(-1).
func (l *Logger) Fatalf(v ...interface{}) {
	l.formatAndWrite(Error, "FATAL", v...)
	os.Exit(1)
}
