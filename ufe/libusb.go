// Copyright (c) 2016-2026 The libufec developers. All rights reserved.
// Project site: https://github.com/BabyMINDdaq/libufec
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package ufe

import (
	"sync/atomic"
	"time"

	"github.com/gotmc/libusb"
	"github.com/pkg/errors"
)

// libusbBus is the Bus backed by a libusb context.
type libusbBus struct {
	ctx *libusb.Context
}

func openLibusb() (Bus, error) {
	ctx, err := libusb.NewContext()
	if err != nil {
		return nil, errors.Wrapf(ErrIO, "creating libusb context: %s", err)
	}
	return &libusbBus{ctx: ctx}, nil
}

func (b *libusbBus) Devices() ([]Device, error) {
	usbDevices, err := b.ctx.GetDeviceList()
	if err != nil {
		return nil, errors.Wrapf(ErrIO, "getting USB device list: %s", err)
	}
	devs := make([]Device, 0, len(usbDevices))
	for _, usbDevice := range usbDevices {
		devs = append(devs, &libusbDevice{dev: usbDevice, refs: 1})
	}
	return devs, nil
}

func (b *libusbBus) Close() error {
	b.ctx.Close()
	return nil
}

// libusbDevice counts references in Go only. GetDeviceList has already
// dropped the list references of the libusb devices.
type libusbDevice struct {
	dev  *libusb.Device
	refs int32
}

func (d *libusbDevice) Descriptor() (Descriptor, error) {
	desc, err := d.dev.GetDeviceDescriptor()
	if err != nil {
		return Descriptor{}, errors.Wrapf(ErrIO, "getting device descriptor: %s", err)
	}
	return Descriptor{
		VendorID:  uint16(desc.VendorID),
		ProductID: uint16(desc.ProductID),
	}, nil
}

func (d *libusbDevice) Open() (DeviceHandle, error) {
	if atomic.LoadInt32(&d.refs) < 1 {
		return nil, errors.Wrap(ErrInvalidArg, "opening a released device")
	}
	dh, err := d.dev.Open()
	if err != nil {
		return nil, errors.Wrapf(ErrIO, "getting device handle: %s", err)
	}
	if err := dh.ClaimInterface(0); err != nil {
		dh.Close()
		return nil, errors.Wrapf(ErrIO, "claiming the bulk interface: %s", err)
	}
	return &libusbHandle{dh: dh}, nil
}

func (d *libusbDevice) Ref() {
	atomic.AddInt32(&d.refs, 1)
}

func (d *libusbDevice) Unref() {
	atomic.AddInt32(&d.refs, -1)
}

type libusbHandle struct {
	dh *libusb.DeviceHandle
}

func (h *libusbHandle) BulkTransfer(endpoint byte, data []byte, timeout time.Duration) (int, error) {
	ms := milliseconds(timeout)
	var n int
	var err error
	switch endpoint {
	case ep1Out:
		n, err = h.dh.BulkTransfer(ep1Out, data, len(data), ms)
	case ep1In:
		n, err = h.dh.BulkTransfer(ep1In, data, len(data), ms)
	case ep2Out:
		n, err = h.dh.BulkTransfer(ep2Out, data, len(data), ms)
	case ep2In:
		n, err = h.dh.BulkTransfer(ep2In, data, len(data), ms)
	default:
		return 0, errors.Wrapf(ErrInvalidArg, "unknown endpoint 0x%x", endpoint)
	}
	return n, translate(err)
}

func (h *libusbHandle) ControlTransfer(requestType, request byte, value, index uint16, data []byte, timeout time.Duration) (int, error) {
	if requestType != requestTypeClassIn {
		return 0, errors.Wrapf(ErrInvalidArg, "unsupported request type 0x%x", requestType)
	}
	rt := libusb.BitmapRequestType(
		libusb.DeviceToHost, libusb.Class, libusb.DeviceRecipient)
	n, err := h.dh.ControlTransfer(
		rt, request, value, index, data, len(data), milliseconds(timeout))
	return n, translate(err)
}

func (h *libusbHandle) Close() error {
	err := h.dh.ReleaseInterface(0)
	h.dh.Close()
	if err != nil {
		return errors.Wrapf(ErrIO, "releasing interface: %s", err)
	}
	return nil
}

// libusbErrorTimeout is LIBUSB_ERROR_TIMEOUT.
const libusbErrorTimeout libusb.ErrorCode = -7

// translate maps libusb timeouts onto ErrTimeout.
func translate(err error) error {
	var code libusb.ErrorCode
	if errors.As(err, &code) && code == libusbErrorTimeout {
		return ErrTimeout
	}
	return err
}

func milliseconds(d time.Duration) int {
	return int(d / time.Millisecond)
}
