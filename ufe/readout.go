// Copyright (c) 2016-2026 The libufec developers. All rights reserved.
// Project site: https://github.com/BabyMINDdaq/libufec
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package ufe

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// ReadBuffer reads the readout stream into p and returns the number of bytes
// read. A read that times out with nothing received returns 0 and no error.
//
// The libusb binding reports a timed out transfer as 0 bytes, dropping
// whatever the transfer had already received. ReadBuffer therefore issues one
// transfer per ReadoutPacketSize bytes: such a transfer completes as soon as a
// packet arrives, so a timeout means no data was received by that transfer.
// Reading stops early on a short packet or a timeout. The length of p should
// be a multiple of ReadoutPacketSize, or a full last packet overflows.
func (u *UFE) ReadBuffer(p []byte) (int, error) {
	if err := u.Session.check(); err != nil {
		return 0, err
	}
	total := 0
	for total < len(p) {
		end := total + ReadoutPacketSize
		if end > len(p) {
			end = len(p)
		}
		piece := p[total:end]
		n, err := u.DeviceHandle.BulkTransfer(ep1In, piece, u.Session.ReadoutTimeout())
		if errors.Is(err, ErrTimeout) {
			return total, nil
		}
		if err != nil {
			terr := &TransferError{Endpoint: ep1In, Want: len(p), Got: total + n, Err: err}
			u.Session.log.Errorf("%s", terr)
			return total + n, terr
		}
		total += n
		if n < len(piece) {
			break
		}
	}
	return total, nil
}

// Readout starts the data readout of a board and copies the stream to w
// until ctx is done, then stops the readout and drains the data still
// buffered by the board. Gaps in the stream do not end the copy while the
// readout runs. Bit 0 of param is managed by Readout. The error of the stop
// command takes precedence over the error of the stream.
func (u *UFE) Readout(ctx context.Context, board int, param uint16, w io.Writer) error {
	param &^= ReadoutStop
	if _, err := u.DataReadout(board, param); err != nil {
		return err
	}
	u.Session.log.Infof("readout started on board %d", board)

	stopped, halted := make(chan struct{}), make(chan struct{})
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return u.copyStream(w, stopped, halted)
	})
	<-gctx.Done()

	param |= ReadoutStop
	_, stopErr := u.DataReadout(board, param)
	if stopErr != nil {
		// The board may still be streaming, a drain would not end.
		close(halted)
	} else {
		close(stopped)
	}
	streamErr := g.Wait()
	u.Session.log.Infof("readout stopped on board %d", board)
	if stopErr != nil {
		return stopErr
	}
	return streamErr
}

// copyStream writes the readout stream to w. Once stopped is closed, the
// first read returning no data ends the copy. Closing halted ends it at the
// next read.
func (u *UFE) copyStream(w io.Writer, stopped, halted <-chan struct{}) error {
	buf := make([]byte, u.Session.ReadoutBufferSize())
	for {
		select {
		case <-halted:
			return nil
		default:
		}
		n, err := u.ReadBuffer(buf)
		if err != nil {
			return err
		}
		if n == 0 {
			select {
			case <-stopped:
				return nil
			default:
				continue
			}
		}
		u.Session.log.Debugf("%d bytes of readout data", n)
		if _, err := w.Write(buf[:n]); err != nil {
			return errors.Wrap(err, "writing readout data")
		}
	}
}
