// Copyright (c) 2016-2026 The libufec developers. All rights reserved.
// Project site: https://github.com/BabyMINDdaq/libufec
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

// Command firmware_version prints the firmware version of a board.
package main

import (
	"os"

	"github.com/BabyMINDdaq/libufec/internal/cli"
	"github.com/BabyMINDdaq/libufec/ufe"
)

func main() {
	os.Exit(run(cli.NewUSB("firmware_version", "-b <board> [-u]"), os.Args[1:]))
}

func run(t *cli.Tool, args []string) int {
	var board cli.Number
	var usbVersion bool
	t.Var(&board, "b", "board-id", "Board id (required)")
	t.BoolVar(&usbVersion, "u", "usb", false, "Also print the version of the USB controller")

	check := func() error {
		if !board.IsSet {
			return cli.Usagef("a board id is required")
		}
		return nil
	}
	return t.Run(args, check, func(s *ufe.Session) error {
		return s.OnBoardDo(uint16(t.ProductID.Value), board.Int(), func(u *ufe.UFE, board int) error {
			version, err := u.FirmwareVersion(board)
			if err != nil {
				return err
			}
			t.Printf("0x%x\n", version)
			if usbVersion {
				v, err := u.GetVersion()
				if err != nil {
					return err
				}
				t.Printf("usb 0x%x\n", v)
			}
			return nil
		})
	})
}
