// Copyright (c) 2016-2026 The libufec developers. All rights reserved.
// Project site: https://github.com/BabyMINDdaq/libufec
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package ufe

import (
	"bytes"
	"encoding/binary"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// fakeBus is an in-memory USB bus.
type fakeBus struct {
	devices []*fakeDevice
	listErr error
	closed  int
}

func (b *fakeBus) Devices() ([]Device, error) {
	if b.listErr != nil {
		return nil, b.listErr
	}
	devs := make([]Device, 0, len(b.devices))
	for _, d := range b.devices {
		d.Ref()
		devs = append(devs, d)
	}
	return devs, nil
}

func (b *fakeBus) Close() error {
	b.closed++
	return nil
}

// fakeDevice is a USB device with simulated boards daisy-chained behind it.
type fakeDevice struct {
	desc   Descriptor
	boards map[int]*fakeBoard

	openErr    error
	controlErr error
	// shortWrite truncates every OUT transfer to this many bytes when > 0.
	shortWrite int

	mu       sync.Mutex
	refs     int
	opens    int
	closes   int
	chunks   []int
	requests []controlCall
	inReads  []int
	pending  []byte
	answers  [][]byte
}

type controlCall struct {
	request byte
	value   uint16
}

func newFakeDevice(productID uint16, boards ...*fakeBoard) *fakeDevice {
	d := &fakeDevice{
		desc:   Descriptor{VendorID: VendorID, ProductID: productID},
		boards: make(map[int]*fakeBoard),
	}
	for _, b := range boards {
		d.boards[b.id] = b
	}
	return d
}

func (d *fakeDevice) Descriptor() (Descriptor, error) {
	return d.desc, nil
}

func (d *fakeDevice) Open() (DeviceHandle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.refs < 1 {
		return nil, errors.Wrap(ErrInvalidArg, "opening a released device")
	}
	if d.openErr != nil {
		return nil, d.openErr
	}
	d.opens++
	return &fakeHandle{dev: d}, nil
}

func (d *fakeDevice) Ref() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.refs++
}

func (d *fakeDevice) Unref() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.refs--
}

func (d *fakeDevice) refCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.refs
}

func (d *fakeDevice) openCount() (opens, closes int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.opens, d.closes
}

type fakeHandle struct {
	dev    *fakeDevice
	closed bool
}

func (h *fakeHandle) BulkTransfer(endpoint byte, data []byte, timeout time.Duration) (int, error) {
	d := h.dev
	if endpoint == ep1In {
		n, err := d.readStream(data)
		if errors.Is(err, ErrTimeout) {
			time.Sleep(timeout)
		}
		return n, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	switch endpoint {
	case ep1Out:
		return len(data), nil
	case ep2Out:
		d.chunks = append(d.chunks, len(data))
		n := len(data)
		if d.shortWrite > 0 && n > d.shortWrite {
			n = d.shortWrite
		}
		d.pending = append(d.pending, data[:n]...)
		d.process()
		return n, nil
	case ep2In:
		if len(d.answers) == 0 {
			return 0, ErrTimeout
		}
		answer := d.answers[0]
		d.answers = d.answers[1:]
		return copy(data, answer), nil
	}
	return 0, errors.Wrapf(ErrInvalidArg, "unknown endpoint 0x%x", endpoint)
}

func (h *fakeHandle) ControlTransfer(requestType, req byte, value, index uint16, data []byte, timeout time.Duration) (int, error) {
	d := h.dev
	d.mu.Lock()
	defer d.mu.Unlock()
	d.requests = append(d.requests, controlCall{request: req, value: value})
	if d.controlErr != nil {
		return 0, d.controlErr
	}
	if requestType != requestTypeClassIn || len(data) != 1 {
		return 0, ErrInvalidArg
	}
	switch request(req) {
	case requestGetVersion:
		data[0] = 3
	case requestGetBufferSize:
		data[0] = 2
	default:
		data[0] = 0
	}
	return 1, nil
}

func (h *fakeHandle) Close() error {
	d := h.dev
	d.mu.Lock()
	defer d.mu.Unlock()
	if !h.closed {
		h.closed = true
		d.closes++
	}
	return nil
}

// readStream serves an EP1 IN transfer from the bursts of the first running
// board. A transfer completes when data is full or a burst ends with a short
// packet. A burst made of full packets that leaves data unfilled times out,
// and like the libusb binding the transfer then reports no bytes: the burst
// is lost.
func (d *fakeDevice) readStream(data []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.inReads = append(d.inReads, len(data))
	for _, b := range d.boards {
		if !b.running || len(b.stream) == 0 {
			continue
		}
		burst := b.stream[0]
		if len(burst) >= len(data) {
			n := copy(data, burst)
			if rest := burst[n:]; len(rest) > 0 {
				b.stream[0] = rest
			} else {
				b.stream = b.stream[1:]
			}
			return n, nil
		}
		b.stream = b.stream[1:]
		if len(burst)%ReadoutPacketSize == 0 {
			return 0, ErrTimeout
		}
		return copy(data, burst), nil
	}
	return 0, ErrTimeout
}

// process dispatches every complete command frame received on EP2 OUT.
func (d *fakeDevice) process() {
	for len(d.pending) >= 4 {
		header := DecodeHeader(binary.LittleEndian.Uint32(d.pending))
		size := 4
		if header.Command == CommandSetConfig && header.ArgCount() == 2*ConfigWords {
			size = FrameSize(2 * ConfigWords)
		}
		if len(d.pending) < size {
			return
		}
		frame := d.pending[:size]
		d.pending = d.pending[size:]
		b, ok := d.boards[int(header.Board)]
		if !ok {
			continue
		}
		if answer := b.answer(header, frame); answer != nil {
			d.answers = append(d.answers, answer)
		}
	}
}

// fakeBoard simulates the firmware of one front-end board.
type fakeBoard struct {
	id       int
	firmware uint16
	status   Status
	direct   DirectParam
	configs  [NumDevices]ConfigBuffer
	applied  []ApplyMask
	readout  []uint16
	stream   [][]byte
	running  bool
	commands []Command

	// firmwareError answers every command with the error command.
	firmwareError bool
	// corruptCRC flips a bit of the trailer CRC of get-config answers.
	corruptCRC bool
	// readBackXor alters the first word of get-config answers.
	readBackXor uint32
}

func (b *fakeBoard) answer(h HeaderWord, frame []byte) []byte {
	b.commands = append(b.commands, h.Command)
	if b.firmwareError {
		return EncodeCommand(b.id, CommandError, NoSubCommand, []uint16{0x0BAD})
	}
	switch h.Command {
	case CommandIdle:
		return EncodeCommand(b.id, CommandIdle, NoSubCommand, nil)
	case CommandFirmwareVersion:
		return EncodeCommand(b.id, h.Command, NoSubCommand, []uint16{b.firmware})
	case CommandSetDirectParam:
		b.direct = DirectParam(h.Payload)
		return EncodeCommand(b.id, h.Command, NoSubCommand, []uint16{h.Payload})
	case CommandReadStatus:
		return EncodeCommand(b.id, h.Command, NoSubCommand, []uint16{uint16(b.status)})
	case CommandDataReadout:
		b.readout = append(b.readout, h.Payload)
		b.running = h.Payload&ReadoutStop == 0
		return EncodeCommand(b.id, h.Command, NoSubCommand, []uint16{h.Payload})
	case CommandSetConfig:
		device := h.SubCommand()
		if device >= NumDevices {
			return nil
		}
		if len(frame) > 4 {
			args, err := DecodeAnswer(b.id, CommandSetConfig, device, 2*ConfigWords, frame)
			if err != nil {
				return EncodeCommand(b.id, CommandError, NoSubCommand, []uint16{0xC0C})
			}
			b.configs[device] = configFromArgs(args)
			return EncodeCommand(b.id, CommandSetConfig, device, nil)
		}
		code := h.Payload & argCountMask
		if code != setConfigValidate[device] {
			return EncodeCommand(b.id, CommandError, NoSubCommand, []uint16{code})
		}
		return EncodeCommand(b.id, CommandSetConfig, device, []uint16{code})
	case CommandGetConfig:
		device := h.SubCommand()
		if device >= NumDevices {
			return nil
		}
		conf := b.configs[device]
		conf[0] ^= b.readBackXor
		answer := EncodeCommand(b.id, CommandGetConfig, device, conf.Args())
		if b.corruptCRC {
			answer[len(answer)-4] ^= 0x01
		}
		return answer
	case CommandApplyConfig:
		b.applied = append(b.applied, ApplyMask(h.Payload))
		return EncodeCommand(b.id, h.Command, NoSubCommand, []uint16{h.Payload << 4})
	}
	return nil
}

// newTestSession returns a session over the given devices logging to a
// buffer.
func newTestSession(devs ...*fakeDevice) (*Session, *fakeBus, *bytes.Buffer) {
	bus := &fakeBus{devices: devs}
	var logs bytes.Buffer
	s := NewSession(bus, WithLogOutput(&logs), WithVerbosity(DebugLevel))
	return s, bus, &logs
}

// openFake opens dev the way a selection helper does.
func openFake(s *Session, dev *fakeDevice) (*UFE, error) {
	dev.Ref()
	defer dev.Unref()
	return s.Open(dev)
}
