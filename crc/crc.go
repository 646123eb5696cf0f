// Copyright (c) 2016-2026 The libufec developers. All rights reserved.
// Project site: https://github.com/BabyMINDdaq/libufec
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

// Package crc implements the parameterized, table driven cyclic redundancy
// checks used by the UFE front-end board protocol and its data stream.
package crc

import (
	"fmt"
	"math/bits"

	"github.com/pkg/errors"
)

// Params describes one CRC flavor.
type Params struct {
	Name       string
	Poly       uint32
	Width      uint8
	Init       uint32
	FinalXor   uint32
	ReflectIn  bool
	ReflectOut bool
}

func (p Params) String() string {
	return fmt.Sprintf("%s (poly 0x%x, width %d)", p.Name, p.Poly, p.Width)
}

// Table holds the parameters of a CRC flavor together with its 256 entry
// lookup table. A Table is immutable once built and can be shared.
type Table struct {
	params Params
	mask   uint32
	data   [256]uint32
}

// New builds the lookup table for the given parameters. Widths from 8 to 32
// bits are supported.
func New(p Params) (*Table, error) {
	if p.Width < 8 || p.Width > 32 {
		return nil, errors.Errorf("crc: unsupported width %d", p.Width)
	}
	t := Table{
		params: p,
		mask:   widthMask(p.Width),
	}
	topBit := uint32(1) << (p.Width - 1)
	for dividend := 0; dividend < 256; dividend++ {
		remainder := uint32(dividend) << (p.Width - 8)
		for bit := 0; bit < 8; bit++ {
			if remainder&topBit != 0 {
				remainder = (remainder << 1) ^ p.Poly
			} else {
				remainder <<= 1
			}
		}
		t.data[dividend] = remainder & t.mask
	}
	return &t, nil
}

// MustNew is like New but panics if the parameters are invalid. It is
// intended for package level tables.
func MustNew(p Params) *Table {
	t, err := New(p)
	if err != nil {
		panic(err)
	}
	return t
}

// Params returns the parameters the table was built from.
func (t *Table) Params() Params {
	return t.params
}

// Mask returns the bit mask covering the width of the checksum.
func (t *Table) Mask() uint32 {
	return t.mask
}

// Checksum computes the CRC of data.
func (t *Table) Checksum(data []byte) uint32 {
	shift := t.params.Width - 8
	remainder := t.params.Init
	for _, b := range data {
		if t.params.ReflectIn {
			b = bits.Reverse8(b)
		}
		idx := byte(uint32(b) ^ (remainder >> shift))
		remainder = t.data[idx] ^ (remainder << 8)
	}
	crc := (remainder & t.mask) ^ t.params.FinalXor
	if t.params.ReflectOut {
		crc = Reflect(crc, t.params.Width)
	}
	return crc
}

// Reflect mirrors the n low order bits of v.
func Reflect(v uint32, n uint8) uint32 {
	return bits.Reverse32(v) >> (32 - n)
}

func widthMask(width uint8) uint32 {
	if width == 32 {
		return 0xFFFFFFFF
	}
	return uint32(1)<<width - 1
}
