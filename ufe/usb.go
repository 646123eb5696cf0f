// Copyright (c) 2016-2026 The libufec developers. All rights reserved.
// Project site: https://github.com/BabyMINDdaq/libufec
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package ufe

import (
	"time"

	"github.com/pkg/errors"
)

// ErrTimeout is returned by a DeviceHandle when a transfer did not complete
// within its timeout.
var ErrTimeout = errors.New("ufe: usb transfer timed out")

// Request type of the board's class requests: device-to-host, class,
// device recipient.
const requestTypeClassIn = 0xA0

// Descriptor identifies an attached USB device.
type Descriptor struct {
	VendorID  uint16
	ProductID uint16
}

// Device is a USB device found during enumeration. Devices are reference
// counted: Open refuses a device whose last reference was released. The
// count is kept by this package. The libusb binding frees its device list
// while enumerating and exposes no libusb_ref_device, so a count held here
// does not keep the underlying libusb device alive; a board unplugged after
// enumeration fails on Open.
type Device interface {
	Descriptor() (Descriptor, error)
	Open() (DeviceHandle, error)
	Ref()
	Unref()
}

// DeviceHandle is an opened USB device.
type DeviceHandle interface {
	BulkTransfer(endpoint byte, data []byte, timeout time.Duration) (int, error)
	ControlTransfer(requestType, request byte, value, index uint16, data []byte, timeout time.Duration) (int, error)
	Close() error
}

// Bus enumerates the USB devices currently attached. Each device of the
// returned list carries one reference owned by the list.
type Bus interface {
	Devices() ([]Device, error)
	Close() error
}

// ReleaseDevices drops one reference from every device of devs.
func ReleaseDevices(devs []Device) {
	for _, dev := range devs {
		dev.Unref()
	}
}
