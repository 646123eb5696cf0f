// Copyright (c) 2016-2026 The libufec developers. All rights reserved.
// Project site: https://github.com/BabyMINDdaq/libufec
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

// Package clitest runs tools without USB hardware.
package clitest

import (
	"bytes"
	"io/ioutil"

	"github.com/BabyMINDdaq/libufec/internal/cli"
	"github.com/BabyMINDdaq/libufec/ufe"
)

// EmptyBus is a USB bus without any device attached.
type EmptyBus struct{}

// Devices returns no device.
func (EmptyBus) Devices() ([]ufe.Device, error) {
	return nil, nil
}

// Close does nothing.
func (EmptyBus) Close() error {
	return nil
}

// Capture is a tool whose output is kept in memory and whose sessions are
// opened on an EmptyBus.
type Capture struct {
	Stdout bytes.Buffer
	Stderr bytes.Buffer
	// Opens counts the sessions opened.
	Opens int
}

// Attach redirects the output and the sessions of t.
func (c *Capture) Attach(t *cli.Tool) *cli.Tool {
	t.Stdout = &c.Stdout
	t.Stderr = &c.Stderr
	t.Open = func(opts ...ufe.Option) (*ufe.Session, error) {
		c.Opens++
		opts = append(opts, ufe.WithLogOutput(ioutil.Discard))
		return ufe.NewSession(EmptyBus{}, opts...), nil
	}
	return t
}
