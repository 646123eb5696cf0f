// Copyright (c) 2016-2026 The libufec developers. All rights reserved.
// Project site: https://github.com/BabyMINDdaq/libufec
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package ufe

import (
	"fmt"

	"github.com/pkg/errors"
)

// Error kinds. Every error returned by this package matches exactly one of
// them with errors.Is.
var (
	ErrIO             = errors.New("ufe: i/o error")
	ErrInvalidArg     = errors.New("ufe: invalid argument")
	ErrNotFound       = errors.New("ufe: device not found")
	ErrFirmware       = errors.New("ufe: firmware error")
	ErrInvalidAnswer  = errors.New("ufe: invalid command answer")
	ErrNotInitialized = errors.New("ufe: session not initialized")
)

// Error codes used by the original C tools, kept for log compatibility.
const (
	codeInternal      = -13
	codeIO            = -14
	codeInvalidAnswer = -15
	codeInvalidArg    = -16
	codeNotFound      = -17
)

// Code returns the numeric status the board tools historically reported for
// err, or 0 for a nil error.
func Code(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrIO):
		return codeIO
	case errors.Is(err, ErrInvalidAnswer):
		return codeInvalidAnswer
	case errors.Is(err, ErrInvalidArg):
		return codeInvalidArg
	case errors.Is(err, ErrNotFound):
		return codeNotFound
	default:
		return codeInternal
	}
}

// AnswerPart names the part of an answer frame that failed validation.
type AnswerPart int

// Parts of an answer frame.
const (
	PartHeader AnswerPart = iota
	PartArgument
	PartTrailer
	PartCRC
	PartLength
)

var answerParts = map[AnswerPart]string{
	PartHeader:   "header",
	PartArgument: "argument",
	PartTrailer:  "trailer",
	PartCRC:      "CRC",
	PartLength:   "length",
}

func (p AnswerPart) String() string {
	return answerParts[p]
}

// AnswerError reports an answer frame that does not match the command it
// answers.
type AnswerError struct {
	Part    AnswerPart
	Command Command
	Word    uint32
	// Index is the position of the offending argument word.
	Index int
}

func (e *AnswerError) Error() string {
	switch e.Part {
	case PartArgument:
		return fmt.Sprintf("inconsistent answer argument %d ( 0x%08x ) after command %s",
			e.Index, e.Word, e.Command)
	case PartLength:
		return fmt.Sprintf("inconsistent answer length ( header 0x%08x ) after command %s",
			e.Word, e.Command)
	case PartCRC:
		return fmt.Sprintf("CRC16 mismatch ( trailer 0x%08x ) after command %s",
			e.Word, e.Command)
	default:
		return fmt.Sprintf("inconsistent answer %s ( 0x%08x ) after command %s",
			e.Part, e.Word, e.Command)
	}
}

// Is makes AnswerError match ErrInvalidAnswer.
func (e *AnswerError) Is(target error) bool {
	return target == ErrInvalidAnswer
}

// FirmwareError is reported when the board answers with the error command.
type FirmwareError struct {
	Command Command
	Word    uint32
}

// Code returns the diagnostic payload of the error answer.
func (e *FirmwareError) Code() uint16 {
	return uint16(e.Word & argumentMask)
}

func (e *FirmwareError) Error() string {
	return fmt.Sprintf("firmware error ( 0x%08x ) after command %s", e.Word, e.Command)
}

// Is makes FirmwareError match ErrFirmware.
func (e *FirmwareError) Is(target error) bool {
	return target == ErrFirmware
}

// TransferError reports a failed or short bulk transfer.
type TransferError struct {
	Endpoint byte
	Want     int
	Got      int
	Err      error
}

func (e *TransferError) Error() string {
	dir := "to"
	if e.Endpoint&0x80 != 0 {
		dir = "from"
	}
	if e.Err != nil {
		return fmt.Sprintf("data transfer %s EP 0x%x failed ( %d of %d bytes ): %s",
			dir, e.Endpoint, e.Got, e.Want, e.Err)
	}
	return fmt.Sprintf("short data transfer %s EP 0x%x ( %d of %d bytes )",
		dir, e.Endpoint, e.Got, e.Want)
}

// Is makes TransferError match ErrIO.
func (e *TransferError) Is(target error) bool {
	return target == ErrIO
}

func (e *TransferError) Unwrap() error {
	return e.Err
}
