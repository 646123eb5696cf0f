// Copyright (c) 2016-2026 The libufec developers. All rights reserved.
// Project site: https://github.com/BabyMINDdaq/libufec
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package cli

import (
	"bufio"
	"fmt"
	"io"

	"github.com/BabyMINDdaq/libufec/ufe"
	"github.com/pkg/errors"
)

// ParseInt parses a decimal or 0x prefixed hexadecimal integer.
func ParseInt(s string) (int, error) {
	v, err := ufe.ParseWord(s)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

// Number is a flag value accepting decimal or 0x hexadecimal input. IsSet
// tells whether the flag appeared on the command line.
type Number struct {
	Value uint32
	IsSet bool
}

func (n *Number) String() string {
	if n == nil {
		return ""
	}
	return fmt.Sprintf("0x%x", n.Value)
}

// Set implements flag.Value.
func (n *Number) Set(s string) error {
	v, err := ufe.ParseWord(s)
	if err != nil {
		return err
	}
	n.Value = v
	n.IsSet = true
	return nil
}

// Int returns the value as an int.
func (n *Number) Int() int {
	return int(n.Value)
}

// ReadNumber parses the first line of r as a number.
func ReadNumber(r io.Reader) (uint32, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		if err == io.EOF {
			return 0, errors.New("no value on input")
		}
		return 0, errors.Wrap(err, "reading input")
	}
	return ufe.ParseWord(line)
}
