// Copyright (c) 2016-2026 The libufec developers. All rights reserved.
// Project site: https://github.com/BabyMINDdaq/libufec
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

// Command led_on turns the LED of every board on or off.
package main

import (
	"os"

	"github.com/BabyMINDdaq/libufec/internal/cli"
	"github.com/BabyMINDdaq/libufec/ufe"
)

func main() {
	os.Exit(run(cli.NewUSB("led_on", "<1 | 0>"), os.Args[1:]))
}

func run(t *cli.Tool, args []string) int {
	on := true
	check := func() error {
		if t.Flags.NArg() != 1 {
			return cli.Usagef("expected a single argument, 1 or 0")
		}
		on = t.Flags.Arg(0) != "0"
		return nil
	}
	return t.Run(args, check, func(s *ufe.Session) error {
		return s.OnAllBoardsDo(uint16(t.ProductID.Value), 0, func(u *ufe.UFE, _ int) error {
			return u.EnableLED(on)
		})
	})
}
