// Copyright (c) 2016-2026 The libufec developers. All rights reserved.
// Project site: https://github.com/BabyMINDdaq/libufec
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package ufe

import (
	"fmt"
	"time"
)

// USB identifiers.
const (
	VendorID = 0x206b
	// BMFEBProductID is the product id of the Baby MIND front-end board.
	BMFEBProductID = 0x1003
)

// Defaults of a new session.
const (
	DefaultVerbosity         = WarningLevel
	DefaultReadoutBufferSize = 32 * 1024
	DefaultReadoutTimeout    = 100 * time.Millisecond
	DefaultCommandTimeout    = 1000 * time.Millisecond
	controlTimeout           = 1000 * time.Millisecond
)

// Endpoint addresses.
const (
	ep1Out = 0x01
	ep1In  = 0x81
	ep2Out = 0x02
	ep2In  = 0x82
)

// ReadoutPacketSize is the maximum packet size of the high-speed EP1 IN
// bulk endpoint. Readout transfers never ask for more.
const ReadoutPacketSize = 512

// Logical endpoint selectors. EndpointControl carries the control sequencing
// and the readout stream, EndpointCommand the command/answer frames.
const (
	EndpointControl = 1
	EndpointCommand = 2
)

const (
	// maxChunkSize is the largest single bulk transfer the board accepts.
	maxChunkSize = 256
	chunkDelay   = 10 * time.Microsecond
)

// Field masks of a frame word.
const (
	dwTagMask      = 0xF0000000
	boardIDMask    = 0x0FE00000
	commandIDMask  = 0x001F0000
	subCommandMask = 0x0000F000
	argumentMask   = 0x0000FFFF
	argCountMask   = 0x00000FFF
	frameIndexMask = 0x0FFF0000
)

// Field shifts of a frame word.
const (
	dwTagShift      = 28
	boardIDShift    = 21
	commandIDShift  = 16
	subCommandShift = 12
	frameIndexShift = 16
)

// WordTag is the 4-bit type field of a frame word.
type WordTag uint8

// Frame word tags.
const (
	TagHeader   WordTag = 0x8
	TagArgument WordTag = 0x9
	TagTrailer  WordTag = 0xA
)

var wordTags = map[WordTag]string{
	TagHeader:   "header",
	TagArgument: "argument",
	TagTrailer:  "trailer",
}

func (t WordTag) String() string {
	if s, ok := wordTags[t]; ok {
		return s
	}
	return fmt.Sprintf("tag 0x%x", uint8(t))
}

// NoSubCommand disables the sub-command field on encode and its check on
// decode.
const NoSubCommand = -1

// MaxBoardID is the largest address the 7-bit board field can carry.
const MaxBoardID = 0x7F

// Limits of the multi-word header fields. Argument indices share the 12-bit
// width of the argument count.
const (
	MaxArgs       = argCountMask
	MaxSubCommand = subCommandMask >> subCommandShift
)

type request byte

// Class requests understood by the board firmware.
const (
	requestGetVersion    request = 0x20
	requestGetBufferSize request = 0x21
	requestLEDOff        request = 0x22
	requestEP2InWrapUp   request = 0x23
	requestEPxInReset    request = 0x24
)

var requests = map[request]string{
	requestGetVersion:    "Get version",
	requestGetBufferSize: "Get buffer size",
	requestLEDOff:        "LED off",
	requestEP2InWrapUp:   "EP2-IN wrap-up",
	requestEPxInReset:    "EPx-IN reset",
}

func (r request) String() string {
	return requests[r]
}

// Magic codes acknowledging a set-config transfer, indexed by device.
var setConfigValidate = [NumDevices]uint16{
	0xFA5,
	0xED8,
	0x9CD,
	0x76A,
}
