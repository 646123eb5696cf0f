// Copyright (c) 2016-2026 The libufec developers. All rights reserved.
// Project site: https://github.com/BabyMINDdaq/libufec
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

// Command usb_reset resets an IN endpoint of every board.
package main

import (
	"os"

	"github.com/BabyMINDdaq/libufec/internal/cli"
	"github.com/BabyMINDdaq/libufec/ufe"
)

func main() {
	os.Exit(run(cli.NewUSB("usb_reset", "-e <end point>"), os.Args[1:]))
}

func run(t *cli.Tool, args []string) int {
	var ep cli.Number
	t.Var(&ep, "e", "end-point", "USB end point id, 1 or 2 (required)")

	check := func() error {
		if !ep.IsSet {
			return cli.Usagef("an end point is required")
		}
		if ep.Value != ufe.EndpointControl && ep.Value != ufe.EndpointCommand {
			return cli.Usagef("invalid end point %d", ep.Value)
		}
		return nil
	}
	return t.Run(args, check, func(s *ufe.Session) error {
		return s.OnAllBoardsDo(uint16(t.ProductID.Value), ep.Int(), func(u *ufe.UFE, ep int) error {
			return u.EPxInReset(ep)
		})
	})
}
