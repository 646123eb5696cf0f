// Copyright (c) 2016-2026 The libufec developers. All rights reserved.
// Project site: https://github.com/BabyMINDdaq/libufec
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package cli

import "github.com/BabyMINDdaq/libufec/ufe"

// DeviceGroup is a set of devices configured together, then applied with
// Apply.
type DeviceGroup struct {
	Devices []int
	Apply   ufe.ApplyMask
}

var (
	asicGroup = DeviceGroup{
		Devices: []int{ufe.DeviceASIC0, ufe.DeviceASIC1, ufe.DeviceASIC2},
		Apply:   ufe.ApplyASICs,
	}
	fpgaGroup = DeviceGroup{
		Devices: []int{ufe.DeviceFPGA},
		Apply:   ufe.ApplyFPGA,
	}
)

// SelectDevices returns the groups chosen by the -a, -f and -d flags: the
// ASICs first, then the FPGA.
func SelectDevices(asics, fpga, all bool) ([]DeviceGroup, error) {
	switch {
	case all || (asics && fpga):
		return []DeviceGroup{asicGroup, fpgaGroup}, nil
	case fpga:
		return []DeviceGroup{fpgaGroup}, nil
	case asics:
		return []DeviceGroup{asicGroup}, nil
	}
	return nil, Usagef("one of -a, -f or -d is required")
}
