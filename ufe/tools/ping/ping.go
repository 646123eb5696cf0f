// Copyright (c) 2016-2026 The libufec developers. All rights reserved.
// Project site: https://github.com/BabyMINDdaq/libufec
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

// Command ping lights the LED of every board.
package main

import (
	"os"

	"github.com/BabyMINDdaq/libufec/internal/cli"
	"github.com/BabyMINDdaq/libufec/ufe"
)

func main() {
	os.Exit(run(cli.NewUSB("ping", "-b <board>"), os.Args[1:]))
}

func run(t *cli.Tool, args []string) int {
	var board cli.Number
	t.Var(&board, "b", "board-id", "Board id (required)")

	check := func() error {
		if !board.IsSet {
			return cli.Usagef("a board id is required")
		}
		return nil
	}
	return t.Run(args, check, func(s *ufe.Session) error {
		return s.OnAllBoardsDo(uint16(t.ProductID.Value), board.Int(), func(u *ufe.UFE, _ int) error {
			return u.EnableLED(true)
		})
	})
}
