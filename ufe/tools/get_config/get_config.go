// Copyright (c) 2016-2026 The libufec developers. All rights reserved.
// Project site: https://github.com/BabyMINDdaq/libufec
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

// Command get_config prints the configuration words held by the devices of a
// board, one word per line.
package main

import (
	"os"

	"github.com/BabyMINDdaq/libufec/internal/cli"
	"github.com/BabyMINDdaq/libufec/ufe"
)

func main() {
	os.Exit(run(cli.NewUSB("get_config", "-b <board> (-a | -f | -d)"), os.Args[1:]))
}

func run(t *cli.Tool, args []string) int {
	var board cli.Number
	var asics, fpga, all bool
	t.Var(&board, "b", "board-id", "Board id (required)")
	t.BoolVar(&asics, "a", "asics", false, "Read the 3 asics")
	t.BoolVar(&fpga, "f", "fpga", false, "Read the fpga")
	t.BoolVar(&all, "d", "all-devices", false, "Read all devices")

	var groups []cli.DeviceGroup
	check := func() error {
		if !board.IsSet {
			return cli.Usagef("a board id is required")
		}
		var err error
		groups, err = cli.SelectDevices(asics, fpga, all)
		return err
	}
	return t.Run(args, check, func(s *ufe.Session) error {
		return s.OnBoardDo(uint16(t.ProductID.Value), board.Int(), func(u *ufe.UFE, board int) error {
			for _, g := range groups {
				for _, device := range g.Devices {
					conf, err := u.GetConfig(board, device)
					if err != nil {
						return err
					}
					for _, w := range conf {
						t.Printf("0x%x\n", w)
					}
				}
			}
			return nil
		})
	})
}
