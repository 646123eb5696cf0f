// Copyright (c) 2016-2026 The libufec developers. All rights reserved.
// Project site: https://github.com/BabyMINDdaq/libufec
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package ufe

import (
	"github.com/pkg/errors"
)

// control issues a class request with a single byte data stage and returns
// that byte.
func (u *UFE) control(req request, value uint16) (byte, error) {
	if err := u.Session.check(); err != nil {
		return 0, err
	}
	data := make([]byte, 1)
	n, err := u.DeviceHandle.ControlTransfer(
		requestTypeClassIn, byte(req), value, 0, data, controlTimeout)
	if err != nil || n != 1 {
		terr := &TransferError{Endpoint: 0x80, Want: 1, Got: n, Err: err}
		u.Session.log.Errorf("control request %s failed: %s", req, terr)
		return 0, terr
	}
	u.Session.log.Debugf("control request %s ( value %d ): 0x%x", req, value, data[0])
	return data[0], nil
}

// GetVersion returns the version of the USB controller firmware.
func (u *UFE) GetVersion() (int, error) {
	v, err := u.control(requestGetVersion, 0)
	return int(v), err
}

// GetBufferSize returns the size code of the USB controller buffer.
func (u *UFE) GetBufferSize() (uint64, error) {
	v, err := u.control(requestGetBufferSize, 0)
	return uint64(v), err
}

// EnableLED switches the front panel LED on or off.
func (u *UFE) EnableLED(on bool) error {
	var value uint16
	if !on {
		value = 1
	}
	_, err := u.control(requestLEDOff, value)
	return err
}

// EP2InWrapUp asks the controller to flush the pending answer to EP2 IN.
func (u *UFE) EP2InWrapUp() error {
	_, err := u.control(requestEP2InWrapUp, 2)
	return err
}

// EPxInReset resets the IN endpoint selected by ep.
func (u *UFE) EPxInReset(ep int) error {
	if ep != EndpointControl && ep != EndpointCommand {
		err := errors.Wrapf(ErrInvalidArg, "invalid endpoint id %d", ep)
		u.Session.log.Errorf("%s", err)
		return err
	}
	_, err := u.control(requestEPxInReset, uint16(ep))
	return err
}
