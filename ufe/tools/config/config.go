// Copyright (c) 2016-2026 The libufec developers. All rights reserved.
// Project site: https://github.com/BabyMINDdaq/libufec
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

// Command config loads device configurations into a board, reads them back
// and applies them.
package main

import (
	"io"
	"os"

	"github.com/BabyMINDdaq/libufec/internal/cli"
	"github.com/BabyMINDdaq/libufec/ufe"
	"github.com/pkg/errors"
)

func main() {
	os.Exit(run(cli.NewUSB("config", "-b <board> (-a | -f | -d) (-c <file> | -s)"),
		os.Args[1:], os.Stdin))
}

func run(t *cli.Tool, args []string, stdin io.Reader) int {
	var board cli.Number
	var asics, fpga, all, fromStdin bool
	var file string
	t.Var(&board, "b", "board-id", "Board id (required)")
	t.BoolVar(&asics, "a", "asics", false, "Configure the 3 asics")
	t.BoolVar(&fpga, "f", "fpga", false, "Configure the fpga")
	t.BoolVar(&all, "d", "all-devices", false, "Configure all devices")
	t.StringVar(&file, "c", "config-file", "", "Text file containing the config words")
	t.BoolVar(&fromStdin, "s", "stdin", false, "Read the config words from stdin")

	var groups []cli.DeviceGroup
	var input io.Reader
	var f *os.File
	check := func() error {
		if !board.IsSet {
			return cli.Usagef("a board id is required")
		}
		var err error
		if groups, err = cli.SelectDevices(asics, fpga, all); err != nil {
			return err
		}
		if (file != "") == fromStdin {
			return cli.Usagef("exactly one of -c and -s is required")
		}
		input = stdin
		if file != "" {
			if f, err = os.Open(file); err != nil {
				return errors.Wrapf(err, "can not open file %s", file)
			}
			input = f
		}
		return nil
	}
	code := t.Run(args, check, func(s *ufe.Session) error {
		cr := ufe.NewConfigReader(input)
		return s.OnBoardDo(uint16(t.ProductID.Value), board.Int(), func(u *ufe.UFE, board int) error {
			for _, g := range groups {
				if err := configure(u, board, g, cr); err != nil {
					return err
				}
			}
			return nil
		})
	})
	if f != nil {
		f.Close()
	}
	return code
}

// configure loads, verifies and applies the configuration of every device of
// the group.
func configure(u *ufe.UFE, board int, g cli.DeviceGroup, cr *ufe.ConfigReader) error {
	for _, device := range g.Devices {
		conf, err := cr.Next()
		if err == io.EOF {
			return errors.Errorf("no configuration left for device %d", device)
		}
		if err != nil {
			return err
		}
		if err := u.SetConfig(board, device, &conf); err != nil {
			return err
		}
		back, err := u.GetConfig(board, device)
		if err != nil {
			return err
		}
		if back != conf {
			return errors.Errorf("on board %d, device %d - configuration mismatch", board, device)
		}
	}
	answer, err := u.ApplyConfig(board, g.Apply)
	if err != nil {
		return err
	}
	if answer.Errors() {
		return errors.Errorf("on board %d, applying %s failed: %s", board, g.Apply, answer)
	}
	return nil
}
