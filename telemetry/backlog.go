// Copyright (c) 2016-2026 The libufec developers. All rights reserved.
// Project site: https://github.com/BabyMINDdaq/libufec
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package telemetry

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"sync"
	"time"
)

// maxLineLength bounds the memory a single line may take. Longer lines are
// cut.
const maxLineLength = 500

// Backlog keeps the first lines written to it and a rotating window of the
// most recent ones. A run of a data taking tool can log for hours; the
// backlog stays bounded while still showing how the run started.
type Backlog struct {
	mu        sync.Mutex
	tailSize  int
	tail      [][]byte // lines include newlines
	headSize  int
	head      [][]byte
	startTime time.Time
	stamp     bool
}

// NewBacklog returns a backlog keeping headSize first lines and tailSize
// latest lines. When stamp is set every line is prefixed by the elapsed and
// the wall clock time.
func NewBacklog(tailSize, headSize int, stamp bool) *Backlog {
	return &Backlog{
		tailSize:  tailSize,
		tail:      make([][]byte, 0, tailSize),
		headSize:  headSize,
		head:      make([][]byte, 0, headSize),
		startTime: time.Now(),
		stamp:     stamp,
	}
}

// Println adds s as one line.
func (b *Backlog) Println(s string) {
	b.Write([]byte(s + "\n"))
}

// Write remembers p as one line.
func (b *Backlog) Write(p []byte) (int, error) {
	n := len(p)
	if len(p) > maxLineLength {
		p = append(p[:maxLineLength:maxLineLength], '\n')
	}

	var line []byte
	if b.stamp {
		now := time.Now()
		line = []byte(fmt.Sprintf("[%.6f : %s] %s",
			now.Sub(b.startTime).Seconds(), now.Format("15:04:05"), p))
	} else {
		line = make([]byte, len(p))
		copy(line, p)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.head) < b.headSize {
		b.head = append(b.head, line)
		return n, nil
	}
	if b.tailSize <= 0 {
		return n, nil
	}
	for len(b.tail) >= b.tailSize {
		b.tail = b.tail[1:]
	}
	b.tail = append(b.tail, line)
	return n, nil
}

// Len returns the number of lines held.
func (b *Backlog) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.head) + len(b.tail)
}

// writeTo writes header, then the latest lines newest first, then the first
// lines.
func (b *Backlog) writeTo(header string, w io.Writer) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := io.WriteString(w, header); err != nil {
		return err
	}
	for i := len(b.tail) - 1; i >= 0; i-- {
		if _, err := w.Write(b.tail[i]); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(w, "...\n"); err != nil {
		return err
	}
	for i := len(b.head) - 1; i >= 0; i-- {
		if _, err := w.Write(b.head[i]); err != nil {
			return err
		}
	}
	return nil
}

// String exports the backlog as text.
func (b *Backlog) String(header string) (string, error) {
	var buf bytes.Buffer
	if err := b.writeTo(header, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Gzip exports the backlog as a gzip stream holding a single log.txt.
func (b *Backlog) Gzip(header string) ([]byte, error) {
	var buf bytes.Buffer
	gw, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, err
	}
	gw.Name = "log.txt"
	if err := b.writeTo(header, gw); err != nil {
		return nil, err
	}
	if err := gw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
