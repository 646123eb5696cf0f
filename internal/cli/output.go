// Copyright (c) 2016-2026 The libufec developers. All rights reserved.
// Project site: https://github.com/BabyMINDdaq/libufec
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package cli

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/ulikunitz/xz"
	"gopkg.in/natefinch/lumberjack.v2"
)

// DefaultFIFO is the named pipe written by --fifo-output.
const DefaultFIFO = "/tmp/ufe_data_fifo"

// OpenLog returns the writer of the tool log: a log file rotating after 5MB
// when path is given, stderr otherwise.
func OpenLog(path string, stderr io.Writer) io.Writer {
	if path == "" {
		return stderr
	}
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    5, // megabytes
		MaxBackups: 3,
	}
}

// OpenOutput opens the destination of readout data. With fifo set, path is
// a named pipe created when missing, and opening blocks until a reader
// attaches. With compress set, the data is written as an xz stream.
func OpenOutput(path string, fifo, compress bool) (io.WriteCloser, error) {
	if fifo {
		if err := makeFIFO(path); err != nil {
			return nil, err
		}
	}
	flags := os.O_WRONLY
	if !fifo {
		flags |= os.O_CREATE | os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, "opening output %s", path)
	}
	if !compress {
		return f, nil
	}
	xw, err := xz.NewWriter(f)
	if err != nil {
		f.Close()
		return nil, errors.Wrap(err, "starting xz stream")
	}
	return &xzFile{Writer: xw, f: f}, nil
}

type xzFile struct {
	*xz.Writer
	f *os.File
}

// Close ends the xz stream, then closes the file.
func (x *xzFile) Close() error {
	err := x.Writer.Close()
	if cerr := x.f.Close(); err == nil {
		err = cerr
	}
	return err
}
