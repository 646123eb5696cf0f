// Copyright (c) 2016-2026 The libufec developers. All rights reserved.
// Project site: https://github.com/BabyMINDdaq/libufec
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

// Command set_param sets the direct parameters of a board.
package main

import (
	"io"
	"os"

	"github.com/BabyMINDdaq/libufec/internal/cli"
	"github.com/BabyMINDdaq/libufec/ufe"
	"github.com/BabyMINDdaq/libufec/ufe/descriptor"
	"github.com/pkg/errors"
)

// notSet is the parameter value standing for no value.
const notSet = 0xFFFF

func main() {
	os.Exit(run(cli.NewUSB("set_param", "-b <board> (-p <param> | -s) [-j <descriptor>] [-v]"),
		os.Args[1:], os.Stdin))
}

func run(t *cli.Tool, args []string, stdin io.Reader) int {
	var board, param cli.Number
	var fromStdin, verbose bool
	var descPath string
	t.Var(&board, "b", "board-id", "Board id (required)")
	t.Var(&param, "p", "param", "Param bit array value")
	t.BoolVar(&fromStdin, "s", "stdin", false, "Read the param bit array from stdin")
	t.StringVar(&descPath, "j", "descriptor", "", "Board descriptor checking the param fields")
	t.BoolVar(&verbose, "v", "verbose", false, "Print human readable")

	value := uint32(notSet)
	check := func() error {
		if !board.IsSet {
			return cli.Usagef("a board id is required")
		}
		if param.IsSet == fromStdin {
			return cli.Usagef("exactly one of -p and -s is required")
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
		if descPath != "" {
			return checkDescriptor(descPath, value)
		}
		return nil
	}
	return t.Run(args, check, func(s *ufe.Session) error {
		pid := uint16(t.ProductID.Value)
		params := ufe.DirectParam(value)
		if verbose {
			t.Printf("\nOn device 0x%x  board %d -> Setting direct params: 0x%x\n", pid, board.Int(), value)
			params.Dump(t.Stdout)
			t.Printf("\n")
		}
		return s.OnBoardDo(pid, board.Int(), func(u *ufe.UFE, board int) error {
			_, err := u.SetDirectParam(board, params)
			return err
		})
	})
}

// checkDescriptor validates every direct parameter field of value.
func checkDescriptor(path string, value uint32) error {
	frame, err := descriptor.Load(path)
	if err != nil {
		return err
	}
	params, _ := frame.Parameters(descriptor.DirectParameters)
	if err := params.Check(value); err != nil {
		return errors.Wrapf(err, "param 0x%x rejected by %s", value, frame.Name)
	}
	return nil
}
