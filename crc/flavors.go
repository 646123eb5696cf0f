// Copyright (c) 2016-2026 The libufec developers. All rights reserved.
// Project site: https://github.com/BabyMINDdaq/libufec
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package crc

// Named flavors used by the board and its readout stream.
var (
	// Config16 guards the arguments of multi-word GET/SET config frames.
	Config16 = Params{
		Name:      "CRC-16/A2EB",
		Poly:      0xA2EB,
		Width:     16,
		Init:      0xFFFF,
		ReflectIn: true,
	}
	// Beacon21 guards the TDM beacons of the readout stream.
	Beacon21 = Params{
		Name:      "CRC-21/21BF1F",
		Poly:      0x21BF1F,
		Width:     21,
		Init:      0xFFFFFF,
		ReflectIn: true,
	}
	// Ethernet32 is the standard 32-bit Ethernet CRC.
	Ethernet32 = Params{
		Name:       "CRC-32/04C11DB7",
		Poly:       0x04C11DB7,
		Width:      32,
		Init:       0xFFFFFFFF,
		FinalXor:   0xFFFFFFFF,
		ReflectIn:  true,
		ReflectOut: true,
	}
	// CCITT16 is the unreflected CCITT polynomial with an all-ones start
	// (CCITT-FALSE).
	CCITT16 = Params{
		Name:  "CRC-16/CCITT-1021",
		Poly:  0x1021,
		Width: 16,
		Init:  0xFFFF,
	}
	// Standard16 is the plain reflected 16-bit CRC (ARC).
	Standard16 = Params{
		Name:       "CRC-16/8005",
		Poly:       0x8005,
		Width:      16,
		ReflectIn:  true,
		ReflectOut: true,
	}
)

// Flavors lists the predefined parameter sets by name.
var Flavors = map[string]Params{
	Config16.Name:   Config16,
	Beacon21.Name:   Beacon21,
	Ethernet32.Name: Ethernet32,
	CCITT16.Name:    CCITT16,
	Standard16.Name: Standard16,
}
