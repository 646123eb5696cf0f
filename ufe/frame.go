// Copyright (c) 2016-2026 The libufec developers. All rights reserved.
// Project site: https://github.com/BabyMINDdaq/libufec
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package ufe

import (
	"encoding/binary"

	"github.com/BabyMINDdaq/libufec/crc"
)

// configCRC guards the arguments of multi-word frames.
var configCRC = crc.MustNew(crc.Config16)

// FrameSize returns the size in bytes of a command or answer frame carrying
// argc arguments.
func FrameSize(argc int) int {
	if argc > 1 {
		return (argc + 2) * 4
	}
	return 4
}

// HeaderWord is the first word of every frame.
type HeaderWord struct {
	Tag     WordTag
	Board   uint8
	Command Command
	// Payload holds the single argument value, or the sub-command in bits
	// 15:12 and the argument count in bits 11:0.
	Payload uint16
}

// Encode packs the header into a frame word.
func (h HeaderWord) Encode() uint32 {
	w := uint32(h.Tag) << dwTagShift
	w |= (uint32(h.Board) << boardIDShift) & boardIDMask
	w |= (uint32(h.Command) << commandIDShift) & commandIDMask
	w |= uint32(h.Payload)
	return w
}

// DecodeHeader unpacks a header word.
func DecodeHeader(w uint32) HeaderWord {
	return HeaderWord{
		Tag:     WordTag((w & dwTagMask) >> dwTagShift),
		Board:   uint8((w & boardIDMask) >> boardIDShift),
		Command: Command((w & commandIDMask) >> commandIDShift),
		Payload: uint16(w & argumentMask),
	}
}

// SubCommand returns the sub-command field.
func (h HeaderWord) SubCommand() int {
	return int((uint32(h.Payload) & subCommandMask) >> subCommandShift)
}

// ArgCount returns the argument count field of a multi-word frame.
func (h HeaderWord) ArgCount() int {
	return int(uint32(h.Payload) & argCountMask)
}

// ArgumentWord carries one argument of a multi-word frame.
type ArgumentWord struct {
	Tag   WordTag
	Index uint16
	Value uint16
}

// Encode packs the argument into a frame word.
func (a ArgumentWord) Encode() uint32 {
	w := uint32(a.Tag) << dwTagShift
	w |= (uint32(a.Index) << frameIndexShift) & frameIndexMask
	w |= uint32(a.Value)
	return w
}

// DecodeArgument unpacks an argument word.
func DecodeArgument(w uint32) ArgumentWord {
	return ArgumentWord{
		Tag:   WordTag((w & dwTagMask) >> dwTagShift),
		Index: uint16((w & frameIndexMask) >> frameIndexShift),
		Value: uint16(w & argumentMask),
	}
}

// TrailerWord closes a multi-word frame.
type TrailerWord struct {
	Tag     WordTag
	Board   uint8
	Command Command
	CRC     uint16
}

// Encode packs the trailer into a frame word.
func (t TrailerWord) Encode() uint32 {
	w := uint32(t.Tag) << dwTagShift
	w |= (uint32(t.Board) << boardIDShift) & boardIDMask
	w |= (uint32(t.Command) << commandIDShift) & commandIDMask
	w |= uint32(t.CRC)
	return w
}

// DecodeTrailer unpacks a trailer word.
func DecodeTrailer(w uint32) TrailerWord {
	return TrailerWord{
		Tag:     WordTag((w & dwTagMask) >> dwTagShift),
		Board:   uint8((w & boardIDMask) >> boardIDShift),
		Command: Command((w & commandIDMask) >> commandIDShift),
		CRC:     uint16(w & configCRC.Mask()),
	}
}

// ArgumentsCRC computes the config CRC over argument values laid out as
// little-endian 16-bit words.
func ArgumentsCRC(args []uint16) uint16 {
	buf := make([]byte, 2*len(args))
	for i, v := range args {
		binary.LittleEndian.PutUint16(buf[2*i:], v)
	}
	return uint16(configCRC.Checksum(buf))
}

// EncodeCommand builds the command frame addressed to a board. A single
// argument travels in the header; more than one argument adds argument words
// and a CRC trailer. A sub-command is encoded only when it is positive.
//
// The header fields are truncated to their widths: frames hold at most MaxArgs
// arguments and sub-commands go up to MaxSubCommand. Commands sent to a board
// are checked against these limits before encoding.
func EncodeCommand(board int, cmd Command, sub int, args []uint16) []byte {
	argc := len(args)
	header := HeaderWord{
		Tag:     TagHeader,
		Board:   uint8(board),
		Command: cmd,
	}
	switch {
	case argc == 1:
		header.Payload = args[0]
	case argc > 1:
		header.Payload = uint16(argc & argCountMask)
	}
	if sub > 0 {
		header.Payload |= uint16((sub << subCommandShift) & subCommandMask)
	}

	words := make([]uint32, 0, FrameSize(argc)/4)
	words = append(words, header.Encode())
	if argc > 1 {
		for i, v := range args {
			words = append(words, ArgumentWord{
				Tag:   TagArgument,
				Index: uint16(i),
				Value: v,
			}.Encode())
		}
		words = append(words, TrailerWord{
			Tag:     TagTrailer,
			Board:   uint8(board),
			Command: cmd,
			CRC:     ArgumentsCRC(args),
		}.Encode())
	}
	return wordsToBytes(words)
}

// DecodeAnswer validates the answer to a command and returns its argc
// argument values. A sub-command of NoSubCommand is not checked.
//
// An answer carrying the error command yields a *FirmwareError; for a single
// argument command the diagnostic payload is still returned as the value.
// Any mismatch with the expected structure yields an *AnswerError.
func DecodeAnswer(board int, cmd Command, sub int, argc int, raw []byte) ([]uint16, error) {
	if len(raw) < 4 {
		return nil, &AnswerError{Part: PartLength, Command: cmd}
	}
	words := bytesToWords(raw)
	header := DecodeHeader(words[0])

	if header.Command == CommandError {
		ferr := &FirmwareError{Command: cmd, Word: words[0]}
		if argc == 1 {
			return []uint16{ferr.Code()}, ferr
		}
		return nil, ferr
	}

	if len(raw) != FrameSize(argc) {
		return nil, &AnswerError{Part: PartLength, Command: cmd, Word: words[0]}
	}

	if header.Tag != TagHeader ||
		int(header.Board) != board ||
		header.Command != cmd {
		return nil, &AnswerError{Part: PartHeader, Command: cmd, Word: words[0]}
	}

	values := make([]uint16, argc)
	if argc == 1 {
		values[0] = header.Payload
	}

	if sub >= 0 && header.SubCommand() != sub {
		return nil, &AnswerError{Part: PartHeader, Command: cmd, Word: words[0]}
	}

	if argc > 1 {
		if header.ArgCount() != argc {
			return nil, &AnswerError{Part: PartHeader, Command: cmd, Word: words[0]}
		}
		for i := 0; i < argc; i++ {
			arg := DecodeArgument(words[i+1])
			if arg.Tag != TagArgument || int(arg.Index) != i {
				return nil, &AnswerError{
					Part:    PartArgument,
					Command: cmd,
					Word:    words[i+1],
					Index:   i,
				}
			}
			values[i] = arg.Value
		}

		trailer := DecodeTrailer(words[argc+1])
		if trailer.Tag != TagTrailer ||
			int(trailer.Board) != board ||
			trailer.Command != cmd {
			return nil, &AnswerError{Part: PartTrailer, Command: cmd, Word: words[argc+1]}
		}
		if ArgumentsCRC(values) != trailer.CRC {
			return nil, &AnswerError{Part: PartCRC, Command: cmd, Word: words[argc+1]}
		}
	}
	return values, nil
}

func wordsToBytes(words []uint32) []byte {
	buf := make([]byte, 4*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint32(buf[4*i:], w)
	}
	return buf
}

func bytesToWords(buf []byte) []uint32 {
	words := make([]uint32, len(buf)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(buf[4*i:])
	}
	return words
}
