// Copyright (c) 2016-2026 The libufec developers. All rights reserved.
// Project site: https://github.com/BabyMINDdaq/libufec
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

// Command data_readout records the data stream of a board for a fixed time,
// to a file or to a named pipe.
package main

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/BabyMINDdaq/libufec/internal/cli"
	"github.com/BabyMINDdaq/libufec/ufe"
)

const notSet = 0xFFFF

func main() {
	os.Exit(run(cli.NewUSB("data_readout",
		"-b <board> (-o <file> | -f) [-t <seconds>] (-p <param> | -s) [-z] [-v]"),
		os.Args[1:], os.Stdin))
}

func run(t *cli.Tool, args []string, stdin io.Reader) int {
	var board, param cli.Number
	var outFile, fifoPath string
	var fifo, fromStdin, compress, verbose bool
	seconds := 10
	t.Var(&board, "b", "board-id", "Board id (required)")
	t.StringVar(&outFile, "o", "output-file", "", "Name of the output file")
	t.BoolVar(&fifo, "f", "fifo-output", false, "Output data to the FIFO file")
	t.StringVar(&fifoPath, "", "fifo-path", cli.DefaultFIFO, "Path of the FIFO file")
	t.IntVar(&seconds, "t", "time", seconds, "Duration in seconds")
	t.Var(&param, "p", "param", "Param bit array value")
	t.BoolVar(&fromStdin, "s", "stdin", false, "Read the param bit array from stdin")
	t.BoolVar(&compress, "z", "xz", false, "Compress the data with xz")
	t.BoolVar(&verbose, "v", "verbose", false, "Print human readable")

	value := uint32(notSet)
	check := func() error {
		if !board.IsSet {
			return cli.Usagef("a board id is required")
		}
		if param.IsSet == fromStdin {
			return cli.Usagef("exactly one of -p and -s is required")
		}
		if (outFile != "") == fifo {
			return cli.Usagef("exactly one of -o and -f is required")
		}
		if seconds <= 0 {
			return cli.Usagef("invalid duration %d s", seconds)
		}
		value = param.Value
		if fromStdin {
			var err error
			if value, err = cli.ReadNumber(stdin); err != nil {
				return cli.Usagef("%s", err)
			}
		}
		if value >= notSet {
			return cli.Usagef("no param value given")
		}
		return nil
	}
	return t.Run(args, check, func(s *ufe.Session) error {
		pid := uint16(t.ProductID.Value)
		if verbose {
			t.Printf("\nOn device 0x%x  board %d -> Setting readout params: 0x%x\n", pid, board.Int(), value)
			ufe.DumpReadoutParam(t.Stdout, uint16(value))
			t.Printf("\n")
		}
		path := outFile
		if fifo {
			path = fifoPath
		}
		out, err := cli.OpenOutput(path, fifo, compress)
		if err != nil {
			return err
		}
		ctx, stop := cli.Interruptible(context.Background())
		defer stop()
		ctx, cancel := context.WithTimeout(ctx, time.Duration(seconds)*time.Second)
		defer cancel()
		err = s.OnBoardDo(pid, board.Int(), func(u *ufe.UFE, board int) error {
			return u.Readout(ctx, board, uint16(value), out)
		})
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		return err
	})
}
