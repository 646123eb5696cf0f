// Copyright (c) 2016-2026 The libufec developers. All rights reserved.
// Project site: https://github.com/BabyMINDdaq/libufec
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package ufe

import (
	"fmt"
	"io"
	"strings"
)

// DirectParam is the direct parameter word of a board.
type DirectParam uint16

// Direct parameter bits.
const (
	DirectRSSR DirectParam = 0x1
	DirectRSTA DirectParam = 0x2
	DirectRTTA DirectParam = 0x4
	DirectRL0F DirectParam = 0x8
	DirectRL1F DirectParam = 0x10
	DirectRL2F DirectParam = 0x20
	DirectRADC DirectParam = 0x40
	DirectGTEN DirectParam = 0x80
	DirectAVE  DirectParam = 0x100
	DirectHVON DirectParam = 0x200
	DirectRDEN DirectParam = 0x400
	DirectIGEN DirectParam = 0x800
	DirectFCLR DirectParam = 0x8000
)

var directParamFlags = []flagName{
	{uint16(DirectRSSR), "RSSR"},
	{uint16(DirectRSTA), "RSTA"},
	{uint16(DirectRTTA), "RTTA"},
	{uint16(DirectRL0F), "RL0F"},
	{uint16(DirectRL1F), "RL1F"},
	{uint16(DirectRL2F), "RL2F"},
	{uint16(DirectRADC), "RADC"},
	{uint16(DirectGTEN), "GTEN"},
	{uint16(DirectAVE), "AVE"},
	{uint16(DirectHVON), "HVON"},
	{uint16(DirectRDEN), "RDEN"},
	{uint16(DirectIGEN), "IGEN"},
	{uint16(DirectFCLR), "FCLR"},
}

func (p DirectParam) String() string {
	return flagString(uint16(p), directParamFlags)
}

// Dump writes one line per direct parameter bit.
func (p DirectParam) Dump(w io.Writer) error {
	return dumpFlags(w, uint16(p), directParamFlags)
}

// Status is the status word of a board.
type Status uint16

// Status bits.
const (
	StatusGTEN     Status = 0x1
	StatusAVE      Status = 0x2
	StatusL0FErr   Status = 0x4
	StatusL1FErr   Status = 0x8
	StatusL2FErr   Status = 0x10
	StatusMUXErr   Status = 0x20
	StatusL1ADCErr Status = 0x40
	StatusVWASIC0  Status = 0x80
	StatusVWASIC1  Status = 0x100
	StatusVWASIC2  Status = 0x200
	StatusVWFPGA   Status = 0x400
	StatusHVON     Status = 0x800
	StatusIGEN     Status = 0x1000
)

var statusFlags = []flagName{
	{uint16(StatusGTEN), "GTEN"},
	{uint16(StatusAVE), "AVE"},
	{uint16(StatusL0FErr), "L0F_ERR"},
	{uint16(StatusL1FErr), "L1F_ERR"},
	{uint16(StatusL2FErr), "L2F_ERR"},
	{uint16(StatusMUXErr), "MUX_ERR"},
	{uint16(StatusL1ADCErr), "L1_ADC_ERR"},
	{uint16(StatusVWASIC0), "VW_ASIC0"},
	{uint16(StatusVWASIC1), "VW_ASIC1"},
	{uint16(StatusVWASIC2), "VW_ASIC2"},
	{uint16(StatusVWFPGA), "VW_FPGA"},
	{uint16(StatusHVON), "HVON"},
	{uint16(StatusIGEN), "IGEN"},
}

func (s Status) String() string {
	return flagString(uint16(s), statusFlags)
}

// Dump writes one line per status bit.
func (s Status) Dump(w io.Writer) error {
	return dumpFlags(w, uint16(s), statusFlags)
}

// ApplyMask selects the devices an apply-config command acts on.
type ApplyMask uint16

// Apply-config command bits.
const (
	ApplyASIC0 ApplyMask = 0x1
	ApplyASIC1 ApplyMask = 0x2
	ApplyASIC2 ApplyMask = 0x4
	ApplyFPGA  ApplyMask = 0x8
	ApplyASICs           = ApplyASIC0 | ApplyASIC1 | ApplyASIC2
)

var applyMaskFlags = []flagName{
	{uint16(ApplyASIC0), "ASIC0"},
	{uint16(ApplyASIC1), "ASIC1"},
	{uint16(ApplyASIC2), "ASIC2"},
	{uint16(ApplyFPGA), "FPGA"},
}

func (m ApplyMask) String() string {
	return flagString(uint16(m), applyMaskFlags)
}

// Dump writes one line per device bit.
func (m ApplyMask) Dump(w io.Writer) error {
	return dumpFlags(w, uint16(m), applyMaskFlags)
}

// ApplyAnswer is the answer word of an apply-config command.
type ApplyAnswer uint16

// Apply-config answer bits.
const (
	AnswerWWID  ApplyAnswer = 0x1
	AnswerWCID  ApplyAnswer = 0x2
	AnswerWSCID ApplyAnswer = 0x4
	AnswerWFIDX ApplyAnswer = 0x8
	AnswerASIC0 ApplyAnswer = 0x10
	AnswerASIC1 ApplyAnswer = 0x20
	AnswerASIC2 ApplyAnswer = 0x40
	AnswerFPGA  ApplyAnswer = 0x80
	AnswerWVAL  ApplyAnswer = 0x2000
)

var applyAnswerFlags = []flagName{
	{uint16(AnswerWWID), "WWID"},
	{uint16(AnswerWCID), "WCID"},
	{uint16(AnswerWSCID), "WSCID"},
	{uint16(AnswerWFIDX), "WFIDX"},
	{uint16(AnswerASIC0), "ASIC0"},
	{uint16(AnswerASIC1), "ASIC1"},
	{uint16(AnswerASIC2), "ASIC2"},
	{uint16(AnswerFPGA), "FPGA"},
	{uint16(AnswerWVAL), "WVAL"},
}

func (a ApplyAnswer) String() string {
	return flagString(uint16(a), applyAnswerFlags)
}

// Dump writes one line per answer bit.
func (a ApplyAnswer) Dump(w io.Writer) error {
	return dumpFlags(w, uint16(a), applyAnswerFlags)
}

// Errors reports whether any of the W* error bits is set.
func (a ApplyAnswer) Errors() bool {
	return a&(AnswerWWID|AnswerWCID|AnswerWSCID|AnswerWFIDX|AnswerWVAL) != 0
}

var readoutFlags = []flagName{
	{ReadoutStop, "STOP"},
}

// DumpReadoutParam writes the readout parameter bits of param.
func DumpReadoutParam(w io.Writer, param uint16) error {
	return dumpFlags(w, param, readoutFlags)
}

type flagName struct {
	bit  uint16
	name string
}

// flagString joins the names of the set bits with "|". Bits without a name
// are shown in hex.
func flagString(v uint16, names []flagName) string {
	if v == 0 {
		return "0"
	}
	var parts []string
	rest := v
	for _, f := range names {
		if v&f.bit != 0 {
			parts = append(parts, f.name)
			rest &^= f.bit
		}
	}
	if rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", rest))
	}
	return strings.Join(parts, "|")
}

func dumpFlags(w io.Writer, v uint16, names []flagName) error {
	for _, f := range names {
		set := 0
		if v&f.bit != 0 {
			set = 1
		}
		if _, err := fmt.Fprintf(w, "  %-10s : %d\n", f.name, set); err != nil {
			return err
		}
	}
	return nil
}
