// Copyright (c) 2016-2026 The libufec developers. All rights reserved.
// Project site: https://github.com/BabyMINDdaq/libufec
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

//go:build !windows

package cli

import (
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// makeFIFO creates the named pipe at path unless one is already there.
func makeFIFO(path string) error {
	fi, err := os.Stat(path)
	if err == nil {
		if fi.Mode()&os.ModeNamedPipe == 0 {
			return errors.Errorf("%s exists and is not a named pipe", path)
		}
		return nil
	}
	if err := unix.Mkfifo(path, 0666); err != nil {
		return errors.Wrapf(err, "creating fifo %s", path)
	}
	return nil
}
