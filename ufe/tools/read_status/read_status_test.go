// Copyright (c) 2016-2026 The libufec developers. All rights reserved.
// Project site: https://github.com/BabyMINDdaq/libufec
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package main

import (
	"testing"

	"github.com/BabyMINDdaq/libufec/internal/cli"
	"github.com/BabyMINDdaq/libufec/internal/cli/clitest"
	c "github.com/smartystreets/goconvey/convey"
)

func TestReadStatus(t *testing.T) {
	c.Convey("Given the read_status tool", t, func() {
		var out clitest.Capture
		tool := out.Attach(cli.NewUSB("read_status", "-b <board> [-v]"))
		c.Convey("When no board id is given", func() {
			code := run(tool, []string{"-v"})
			c.Convey("Then it fails with the usage before touching USB", func() {
				c.So(code, c.ShouldEqual, cli.ExitFailure)
				c.So(out.Opens, c.ShouldEqual, 0)
				c.So(out.Stderr.String(), c.ShouldContainSubstring, "Usage: read_status")
			})
		})
		c.Convey("When the board cannot be found", func() {
			code := run(tool, []string{"--board-id", "0x2"})
			c.Convey("Then it fails after opening the session", func() {
				c.So(code, c.ShouldEqual, cli.ExitFailure)
				c.So(out.Opens, c.ShouldEqual, 1)
				c.So(out.Stdout.Len(), c.ShouldEqual, 0)
				c.So(out.Stderr.String(), c.ShouldContainSubstring, "read_status:")
			})
		})
	})
}
