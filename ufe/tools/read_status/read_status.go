// Copyright (c) 2016-2026 The libufec developers. All rights reserved.
// Project site: https://github.com/BabyMINDdaq/libufec
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

// Command read_status prints the status word of a board.
package main

import (
	"os"

	"github.com/BabyMINDdaq/libufec/internal/cli"
	"github.com/BabyMINDdaq/libufec/ufe"
)

func main() {
	os.Exit(run(cli.NewUSB("read_status", "-b <board> [-v]"), os.Args[1:]))
}

func run(t *cli.Tool, args []string) int {
	var board cli.Number
	var verbose bool
	t.Var(&board, "b", "board-id", "Board id (required)")
	t.BoolVar(&verbose, "v", "verbose", false, "Print human readable")

	check := func() error {
		if !board.IsSet {
			return cli.Usagef("a board id is required")
		}
		return nil
	}
	return t.Run(args, check, func(s *ufe.Session) error {
		pid := uint16(t.ProductID.Value)
		return s.OnBoardDo(pid, board.Int(), func(u *ufe.UFE, board int) error {
			status, err := u.ReadStatus(board)
			if err != nil {
				return err
			}
			t.Printf("0x%x\n", uint16(status))
			if verbose {
				t.Printf("On device 0x%x  board %d -> Status is:\n", pid, board)
				status.Dump(t.Stdout)
				t.Printf("\n")
			}
			return nil
		})
	})
}
