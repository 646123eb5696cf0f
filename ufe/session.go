// Copyright (c) 2016-2026 The libufec developers. All rights reserved.
// Project site: https://github.com/BabyMINDdaq/libufec
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package ufe

import (
	"io"
	"sync"
	"time"
)

// Config holds the tunables of a session.
type Config struct {
	Verbosity         Verbosity
	ReadoutBufferSize int
	ReadoutTimeout    time.Duration
	CommandTimeout    time.Duration
	LogOutput         io.Writer
	Publisher         Publisher
}

// DefaultConfig returns the configuration of a session created without
// options.
func DefaultConfig() Config {
	return Config{
		Verbosity:         DefaultVerbosity,
		ReadoutBufferSize: DefaultReadoutBufferSize,
		ReadoutTimeout:    DefaultReadoutTimeout,
		CommandTimeout:    DefaultCommandTimeout,
	}
}

// Option modifies the configuration of a new session.
type Option func(*Config)

// WithVerbosity sets the log level.
func WithVerbosity(v Verbosity) Option {
	return func(c *Config) {
		c.Verbosity = v
	}
}

// WithReadoutBufferSize sets the size of a single readout transfer.
func WithReadoutBufferSize(size int) Option {
	return func(c *Config) {
		if size > 0 {
			c.ReadoutBufferSize = size
		}
	}
}

// WithReadoutTimeout sets the timeout of a single readout transfer.
func WithReadoutTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.ReadoutTimeout = d
	}
}

// WithCommandTimeout sets the timeout of command and answer transfers.
func WithCommandTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.CommandTimeout = d
	}
}

// WithLogOutput sends the session log to w instead of stderr.
func WithLogOutput(w io.Writer) Option {
	return func(c *Config) {
		c.LogOutput = w
	}
}

// WithPublisher forwards warnings and errors to pub.
func WithPublisher(pub Publisher) Option {
	return func(c *Config) {
		c.Publisher = pub
	}
}

// Session owns the USB bus and the settings shared by every board operation.
// A session must be released with Exit; operations on an exited session fail
// with ErrNotInitialized.
type Session struct {
	bus Bus
	log *Logger
	cfg Config

	mu     sync.RWMutex
	active bool
}

// openBus opens the system USB bus.
var openBus = openLibusb

// NewSession creates a session on an already opened bus.
func NewSession(bus Bus, opts ...Option) *Session {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Session{
		bus:    bus,
		log:    newLogger(cfg.LogOutput, cfg.Verbosity, cfg.Publisher),
		cfg:    cfg,
		active: true,
	}
}

// Init opens the system USB bus and creates a session on it.
func Init(opts ...Option) (*Session, error) {
	bus, err := openBus()
	if err != nil {
		return nil, err
	}
	return NewSession(bus, opts...), nil
}

// Default creates a session with default settings. A previous session passed
// as prev is exited first.
func Default(prev *Session) (*Session, error) {
	if prev != nil {
		prev.Exit()
	}
	return Init()
}

// Exit releases the USB bus. Exiting twice is a no-op.
func (s *Session) Exit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return nil
	}
	s.active = false
	return s.bus.Close()
}

func (s *Session) check() error {
	if s == nil {
		return ErrNotInitialized
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.active {
		return ErrNotInitialized
	}
	return nil
}

// Logger returns the session logger.
func (s *Session) Logger() *Logger {
	return s.log
}

// Config returns the settings in use.
func (s *Session) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Verbosity returns the log level.
func (s *Session) Verbosity() Verbosity {
	return s.log.Verbosity()
}

// SetVerbosity changes the log level.
func (s *Session) SetVerbosity(v Verbosity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.Verbosity = v
	s.log.setVerbosity(v)
}

// ReadoutTimeout returns the timeout of a single readout transfer.
func (s *Session) ReadoutTimeout() time.Duration {
	return s.Config().ReadoutTimeout
}

// SetReadoutTimeout changes the timeout of a single readout transfer.
func (s *Session) SetReadoutTimeout(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.ReadoutTimeout = d
}

// ReadoutBufferSize returns the size of a single readout transfer.
func (s *Session) ReadoutBufferSize() int {
	return s.Config().ReadoutBufferSize
}
