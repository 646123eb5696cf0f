// Copyright (c) 2016-2026 The libufec developers. All rights reserved.
// Project site: https://github.com/BabyMINDdaq/libufec
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package main

import (
	"strings"
	"testing"

	"github.com/BabyMINDdaq/libufec/internal/cli"
	"github.com/BabyMINDdaq/libufec/internal/cli/clitest"
)

func TestGetConfigArguments(t *testing.T) {
	testCases := []struct {
		name   string
		args   []string
		opens  int
		stderr string
	}{
		{"no board", []string{"-a"}, 0, "board id is required"},
		{"no device", []string{"-b", "1"}, 0, "one of -a, -f or -d"},
		{"no board found", []string{"-b", "1", "--all-devices"}, 1, "get_config:"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var out clitest.Capture
			tool := out.Attach(cli.NewUSB("get_config", ""))
			if code := run(tool, tc.args); code != cli.ExitFailure {
				t.Errorf("Expected exit %d, got %d", cli.ExitFailure, code)
			}
			if out.Opens != tc.opens {
				t.Errorf("Expected %d opens, got %d", tc.opens, out.Opens)
			}
			if !strings.Contains(out.Stderr.String(), tc.stderr) {
				t.Errorf("Expected `%v` in `%v`", tc.stderr, out.Stderr.String())
			}
		})
	}
}
