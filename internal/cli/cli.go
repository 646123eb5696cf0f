// Copyright (c) 2016-2026 The libufec developers. All rights reserved.
// Project site: https://github.com/BabyMINDdaq/libufec
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

// Package cli holds the plumbing shared by the UFE command line tools:
// flags with short and long spellings, logging, telemetry and exit codes.
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/BabyMINDdaq/libufec/telemetry"
	"github.com/BabyMINDdaq/libufec/ufe"
	"github.com/pkg/errors"
)

// Exit codes of the tools.
const (
	ExitOK      = 0
	ExitFailure = 1
)

// Tool is a command line tool. Common flags are registered by New and
// NewUSB; the tool adds its own before calling Run or Serve.
type Tool struct {
	Name   string
	Flags  *flag.FlagSet
	Stdout io.Writer
	Stderr io.Writer

	LogFile     string
	Verbosity   int
	ProductID   Number
	MessagePort int

	// Open opens the USB session of Run.
	Open func(opts ...ufe.Option) (*ufe.Session, error)

	usage  string
	logOut io.Writer
	bus    *telemetry.Bus
	server *telemetry.Server
}

// UsageError reports invalid command line arguments.
type UsageError struct {
	msg     string
	printed bool
}

func (e *UsageError) Error() string {
	return e.msg
}

// Usagef returns a UsageError.
func Usagef(format string, v ...interface{}) error {
	return &UsageError{msg: fmt.Sprintf(format, v...)}
}

// New returns a tool registering --log-file and --verbosity. usage is the
// synopsis printed before the flag list.
func New(name, usage string) *Tool {
	t := &Tool{
		Name:   name,
		Flags:  flag.NewFlagSet(name, flag.ContinueOnError),
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Open:   ufe.Init,
		usage:  usage,
	}
	t.Flags.Usage = t.printUsage
	t.StringVar(&t.LogFile, "", "log-file", "", "Log into a file, rotating after 5MB")
	t.IntVar(&t.Verbosity, "", "verbosity", int(ufe.DefaultVerbosity),
		"Log level: 0 errors, 1 warnings, 2 info, 3 debug")
	return t
}

// NewUSB returns a tool talking to boards. It adds -l as short spelling of
// --log-file, -i/--product-id and -m/--message-port.
func NewUSB(name, usage string) *Tool {
	t := New(name, usage)
	t.Flags.StringVar(&t.LogFile, "l", "", "Same as --log-file")
	t.ProductID = Number{Value: ufe.BMFEBProductID}
	t.Var(&t.ProductID, "i", "product-id", "USB product id of the boards")
	t.IntVar(&t.MessagePort, "m", "message-port", 0,
		"Serve warnings and errors on this port while running")
	return t
}

func (t *Tool) printUsage() {
	fmt.Fprintf(t.Flags.Output(), "Usage: %s %s\n", t.Name, t.usage)
	t.Flags.PrintDefaults()
}

// StringVar registers a string flag under both spellings; an empty short
// or long name is skipped.
func (t *Tool) StringVar(p *string, short, long, value, usage string) {
	t.each(short, long, usage, func(name, usage string) {
		t.Flags.StringVar(p, name, value, usage)
	})
}

// BoolVar registers a bool flag under both spellings.
func (t *Tool) BoolVar(p *bool, short, long string, value bool, usage string) {
	t.each(short, long, usage, func(name, usage string) {
		t.Flags.BoolVar(p, name, value, usage)
	})
}

// IntVar registers an int flag under both spellings. Values may be given in
// hexadecimal with a 0x prefix.
func (t *Tool) IntVar(p *int, short, long string, value int, usage string) {
	*p = value
	t.Var((*intValue)(p), short, long, usage)
}

// Var registers a flag value under both spellings.
func (t *Tool) Var(v flag.Value, short, long, usage string) {
	t.each(short, long, usage, func(name, usage string) {
		t.Flags.Var(v, name, usage)
	})
}

func (t *Tool) each(short, long, usage string, register func(name, usage string)) {
	if long != "" {
		register(long, usage)
	}
	if short != "" {
		if long != "" {
			usage = "Same as --" + long
		}
		register(short, usage)
	}
}

type intValue int

func (i *intValue) String() string {
	if i == nil {
		return "0"
	}
	return fmt.Sprint(int(*i))
}

func (i *intValue) Set(s string) error {
	v, err := ParseInt(s)
	if err != nil {
		return err
	}
	*i = intValue(v)
	return nil
}

// Parse parses args and opens the tool log.
func (t *Tool) Parse(args []string) error {
	t.Flags.SetOutput(t.Stderr)
	if err := t.Flags.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return err
		}
		// The flag set has already reported the error with the usage.
		return &UsageError{msg: err.Error(), printed: true}
	}
	if t.ProductID.Value > 0xFFFF {
		return Usagef("product id 0x%x does not fit in 16 bits", t.ProductID.Value)
	}
	t.logOut = OpenLog(t.LogFile, t.Stderr)
	log.SetOutput(t.logOut)
	return nil
}

// Logf writes to the tool log.
func (t *Tool) Logf(format string, v ...interface{}) {
	w := t.logOut
	if w == nil {
		w = t.Stderr
	}
	fmt.Fprintf(w, format+"\n", v...)
}

// Printf writes to the tool output.
func (t *Tool) Printf(format string, v ...interface{}) {
	fmt.Fprintf(t.Stdout, format, v...)
}

// Run parses args, runs check, opens a session and runs fn with it. It
// returns the exit code of the tool.
func (t *Tool) Run(args []string, check func() error, fn func(s *ufe.Session) error) int {
	return t.finish(t.run(args, check, fn))
}

func (t *Tool) run(args []string, check func() error, fn func(s *ufe.Session) error) error {
	if err := t.Parse(args); err != nil {
		return err
	}
	if check != nil {
		if err := check(); err != nil {
			return err
		}
	}
	if err := t.startMessages(); err != nil {
		return err
	}
	defer t.stopMessages()

	opts := []ufe.Option{
		ufe.WithVerbosity(ufe.Verbosity(t.Verbosity)),
		ufe.WithLogOutput(t.logOut),
	}
	if t.bus != nil {
		opts = append(opts, ufe.WithPublisher(t.bus))
	}
	s, err := t.Open(opts...)
	if err != nil {
		return errors.Wrap(err, "opening usb")
	}
	err = fn(s)
	if exitErr := s.Exit(); err == nil {
		err = exitErr
	}
	return err
}

// Serve parses args, runs check and runs fn until it returns or the process
// is interrupted. It returns the exit code of the tool.
func (t *Tool) Serve(args []string, check func() error, fn func(ctx context.Context) error) int {
	return t.finish(t.serve(args, check, fn))
}

func (t *Tool) serve(args []string, check func() error, fn func(ctx context.Context) error) error {
	if err := t.Parse(args); err != nil {
		return err
	}
	if check != nil {
		if err := check(); err != nil {
			return err
		}
	}
	ctx, stop := Interruptible(context.Background())
	defer stop()
	return fn(ctx)
}

// Interruptible returns a context cancelled on SIGINT or SIGTERM.
func Interruptible(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func (t *Tool) finish(err error) int {
	if err == nil || err == flag.ErrHelp {
		return ExitOK
	}
	var uerr *UsageError
	if errors.As(err, &uerr) {
		if !uerr.printed {
			fmt.Fprintf(t.Stderr, "%s: %s\n", t.Name, uerr.msg)
			t.printUsage()
		}
		return ExitFailure
	}
	fmt.Fprintf(t.Stderr, "%s: %s\n", t.Name, err)
	return ExitFailure
}

// startMessages serves the session warnings and errors on MessagePort.
func (t *Tool) startMessages() error {
	if t.MessagePort == 0 {
		return nil
	}
	if t.MessagePort < 0 || t.MessagePort > 0xFFFF {
		return Usagef("invalid message port %d", t.MessagePort)
	}
	host, err := os.Hostname()
	if err != nil {
		host = "localhost"
	}
	t.bus = telemetry.NewBus(host+"/"+t.Name, telemetry.NewBacklog(2000, 200, true))
	t.server = telemetry.NewServer(fmt.Sprintf(":%d", t.MessagePort), t.bus, t.Name, t.logOut)
	go func() {
		if err := t.server.Run(); err != nil {
			t.Logf("%s: message server: %s", t.Name, err)
		}
	}()
	return nil
}

func (t *Tool) stopMessages() {
	if t.server != nil {
		t.server.Close()
	}
}
