// Copyright (c) 2016-2026 The libufec developers. All rights reserved.
// Project site: https://github.com/BabyMINDdaq/libufec
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package ufe

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Configurable devices of a board.
const (
	DeviceASIC0 = 0
	DeviceASIC1 = 1
	DeviceASIC2 = 2
	DeviceFPGA  = 3
	NumDevices  = 4
)

// ConfigWords is the number of 32-bit words configuring one device.
const ConfigWords = 36

// ConfigBuffer is the configuration of one device.
type ConfigBuffer [ConfigWords]uint32

// Args splits the buffer into frame arguments, low half of each word first.
func (b *ConfigBuffer) Args() []uint16 {
	args := make([]uint16, 0, 2*ConfigWords)
	for _, w := range b {
		args = append(args, uint16(w), uint16(w>>16))
	}
	return args
}

func configFromArgs(args []uint16) ConfigBuffer {
	var b ConfigBuffer
	for i := range b {
		b[i] = uint32(args[2*i]) | uint32(args[2*i+1])<<16
	}
	return b
}

func checkDevice(device int) error {
	if device < 0 || device >= NumDevices {
		return errors.Wrapf(ErrInvalidArg, "invalid device id %d", device)
	}
	return nil
}

// SetConfig loads the configuration of one device of a board and validates
// the transfer with the device's acknowledge code.
func (u *UFE) SetConfig(board, device int, conf *ConfigBuffer) error {
	if err := checkDevice(device); err != nil {
		u.Session.log.Errorf("%s", err)
		return err
	}
	if _, err := u.exchange(board, CommandSetConfig, device, conf.Args(), 0); err != nil {
		return err
	}
	_, err := u.exchange(board, CommandSetConfig, device,
		[]uint16{setConfigValidate[device]}, 1)
	return err
}

// GetConfig reads back the configuration of one device of a board.
func (u *UFE) GetConfig(board, device int) (ConfigBuffer, error) {
	if err := checkDevice(device); err != nil {
		u.Session.log.Errorf("%s", err)
		return ConfigBuffer{}, err
	}
	answer, err := u.exchange(board, CommandGetConfig, device, nil, 2*ConfigWords)
	if err != nil {
		return ConfigBuffer{}, err
	}
	return configFromArgs(answer), nil
}

// ApplyConfig makes the devices selected by mask use their loaded
// configuration.
func (u *UFE) ApplyConfig(board int, mask ApplyMask) (ApplyAnswer, error) {
	answer, err := u.exchange(board, CommandApplyConfig, NoSubCommand,
		[]uint16{uint16(mask)}, 1)
	if err != nil {
		return 0, err
	}
	return ApplyAnswer(answer[0]), nil
}

// ParseWord parses a number given in hex with a 0x prefix, or in decimal.
func ParseWord(s string) (uint32, error) {
	digits := strings.TrimSpace(s)
	base := 10
	if strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X") {
		digits = digits[2:]
		base = 16
	}
	v, err := strconv.ParseUint(digits, base, 32)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidArg, "%q is not a number", s)
	}
	return uint32(v), nil
}

// ConfigReader reads device configurations from text holding one word per
// line. Consecutive calls to Next return consecutive devices.
type ConfigReader struct {
	sc   *bufio.Scanner
	line int
}

// NewConfigReader returns a ConfigReader reading from r.
func NewConfigReader(r io.Reader) *ConfigReader {
	return &ConfigReader{sc: bufio.NewScanner(r)}
}

// Next reads the next ConfigWords words. Blank lines are skipped. When the
// input ends early the remaining words are zero; io.EOF is returned only if
// no word was left at all.
func (cr *ConfigReader) Next() (ConfigBuffer, error) {
	var buf ConfigBuffer
	n := 0
	for n < ConfigWords && cr.sc.Scan() {
		cr.line++
		text := strings.TrimSpace(cr.sc.Text())
		if text == "" {
			continue
		}
		w, err := ParseWord(text)
		if err != nil {
			return buf, errors.Wrapf(err, "configuration line %d", cr.line)
		}
		buf[n] = w
		n++
	}
	if err := cr.sc.Err(); err != nil {
		return buf, errors.Wrap(err, "reading configuration")
	}
	if n == 0 {
		return buf, io.EOF
	}
	return buf, nil
}
