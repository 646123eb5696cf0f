// Copyright (c) 2016-2026 The libufec developers. All rights reserved.
// Project site: https://github.com/BabyMINDdaq/libufec
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package ufe

import (
	"time"

	"github.com/pkg/errors"
)

func outEndpoint(ep int) (byte, error) {
	switch ep {
	case EndpointControl:
		return ep1Out, nil
	case EndpointCommand:
		return ep2Out, nil
	}
	return 0, errors.Wrapf(ErrInvalidArg, "invalid endpoint id %d", ep)
}

func inEndpoint(ep int) (byte, error) {
	switch ep {
	case EndpointControl:
		return ep1In, nil
	case EndpointCommand:
		return ep2In, nil
	}
	return 0, errors.Wrapf(ErrInvalidArg, "invalid endpoint id %d", ep)
}

// SendRaw writes data to the OUT endpoint selected by ep. Payloads larger
// than the board's transfer size are sent in sequential chunks.
func (u *UFE) SendRaw(ep int, data []byte) error {
	addr, err := outEndpoint(ep)
	if err != nil {
		u.Session.log.Errorf("%s", err)
		return err
	}
	timeout := u.Session.Config().CommandTimeout
	for sent := 0; sent < len(data); {
		size := len(data) - sent
		if size > maxChunkSize {
			size = maxChunkSize
		}
		n, err := u.DeviceHandle.BulkTransfer(addr, data[sent:sent+size], timeout)
		if err != nil || n != size {
			terr := &TransferError{Endpoint: addr, Want: size, Got: n, Err: err}
			u.Session.log.Errorf("%s", terr)
			return terr
		}
		sent += size
		time.Sleep(chunkDelay)
	}
	return nil
}

// RecvRaw reads exactly size bytes from the IN endpoint selected by ep.
func (u *UFE) RecvRaw(ep int, size int) ([]byte, error) {
	addr, err := inEndpoint(ep)
	if err != nil {
		u.Session.log.Errorf("%s", err)
		return nil, err
	}
	buf := make([]byte, size)
	n, err := u.DeviceHandle.BulkTransfer(addr, buf, u.Session.Config().CommandTimeout)
	if err != nil || n != size {
		terr := &TransferError{Endpoint: addr, Want: size, Got: n, Err: err}
		u.Session.log.Errorf("%s", terr)
		return nil, terr
	}
	return buf, nil
}
