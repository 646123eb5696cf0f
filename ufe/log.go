// Copyright (c) 2016-2026 The libufec developers. All rights reserved.
// Project site: https://github.com/BabyMINDdaq/libufec
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package ufe

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync/atomic"
)

// Verbosity selects which messages a session logs.
type Verbosity int

// Verbosity levels. Each level includes the ones below it.
const (
	Mute         Verbosity = -1
	ErrorLevel   Verbosity = 0
	WarningLevel Verbosity = 1
	InfoLevel    Verbosity = 2
	DebugLevel   Verbosity = 3
)

var verbosities = map[Verbosity]string{
	Mute:         "mute",
	ErrorLevel:   "error",
	WarningLevel: "warning",
	InfoLevel:    "info",
	DebugLevel:   "debug",
}

func (v Verbosity) String() string {
	if s, ok := verbosities[v]; ok {
		return s
	}
	return fmt.Sprintf("verbosity %d", int(v))
}

// Publisher receives the warning and error lines of a session, typically to
// broadcast them to remote monitors.
type Publisher interface {
	Publish(msg string)
}

// Logger is the leveled logger of a session. The print methods return the
// length of the formatted message, or 0 when the level is suppressed.
type Logger struct {
	verbosity int32
	std       *log.Logger
	pub       Publisher
}

func newLogger(w io.Writer, v Verbosity, pub Publisher) *Logger {
	if w == nil {
		w = os.Stderr
	}
	return &Logger{
		verbosity: int32(v),
		std:       log.New(w, "", log.LstdFlags),
		pub:       pub,
	}
}

// Verbosity returns the current level.
func (l *Logger) Verbosity() Verbosity {
	return Verbosity(atomic.LoadInt32(&l.verbosity))
}

func (l *Logger) setVerbosity(v Verbosity) {
	atomic.StoreInt32(&l.verbosity, int32(v))
}

// Errorf logs an error. Errors are published.
func (l *Logger) Errorf(format string, v ...interface{}) int {
	return l.print(ErrorLevel, "!!!Error: ", true, format, v...)
}

// Warningf logs a warning. Warnings are published.
func (l *Logger) Warningf(format string, v ...interface{}) int {
	return l.print(WarningLevel, "!!!Warning: ", true, format, v...)
}

// Infof logs an informational message.
func (l *Logger) Infof(format string, v ...interface{}) int {
	return l.print(InfoLevel, "+++ Info: ", false, format, v...)
}

// Debugf logs a debug message.
func (l *Logger) Debugf(format string, v ...interface{}) int {
	return l.print(DebugLevel, "### Debug: ", false, format, v...)
}

func (l *Logger) print(level Verbosity, prefix string, publish bool, format string, v ...interface{}) int {
	if l == nil || l.Verbosity() < level {
		return 0
	}
	msg := fmt.Sprintf(format, v...)
	l.std.Print(prefix + msg)
	if publish && l.pub != nil {
		l.pub.Publish(prefix + msg)
	}
	return len(msg)
}
