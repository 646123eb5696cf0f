// Copyright (c) 2016-2026 The libufec developers. All rights reserved.
// Project site: https://github.com/BabyMINDdaq/libufec
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package ufe

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	c "github.com/smartystreets/goconvey/convey"
)

func TestCommandString(t *testing.T) {
	testCases := []struct {
		cmd      Command
		expected string
	}{
		{CommandDataReadout, "Data readout"},
		{CommandSetConfig, "Set config"},
		{CommandIdle, "Idle"},
		{Command(0x10), "Unknown command"},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(fmt.Sprintf("command 0x%x", byte(tc.cmd)), func(t *testing.T) {
			t.Parallel()
			if tc.cmd.String() != tc.expected {
				t.Errorf("Expected %v, got %v", tc.expected, tc.cmd)
			}
		})
	}
}

func TestSingleWordCommands(t *testing.T) {
	c.Convey("Given board 3 behind an opened device", t, func() {
		board := &fakeBoard{id: 3, firmware: 0x0105, status: StatusAVE}
		dev := newFakeDevice(BMFEBProductID, board)
		s, _, _ := newTestSession(dev)
		u, err := openFake(s, dev)
		c.So(err, c.ShouldBeNil)

		c.Convey("When sending the idle command", func() {
			err := u.Idle(3)
			c.Convey("Then the empty answer should be accepted", func() {
				c.So(err, c.ShouldBeNil)
			})
		})
		c.Convey("When reading the firmware version", func() {
			version, err := u.FirmwareVersion(3)
			c.Convey("Then the version word should be returned", func() {
				c.So(err, c.ShouldBeNil)
				c.So(version, c.ShouldEqual, uint16(0x0105))
			})
		})
		c.Convey("When writing the direct parameters", func() {
			echo, err := u.SetDirectParam(3, DirectGTEN|DirectHVON)
			c.Convey("Then the board should hold them and echo them", func() {
				c.So(err, c.ShouldBeNil)
				c.So(echo, c.ShouldEqual, DirectGTEN|DirectHVON)
				c.So(board.direct, c.ShouldEqual, DirectGTEN|DirectHVON)
			})
		})
		c.Convey("When pinging", func() {
			c.Convey("Then only the present board should answer", func() {
				c.So(u.Ping(3), c.ShouldBeTrue)
				c.So(u.Ping(4), c.ShouldBeFalse)
			})
		})
		c.Convey("When addressing a board id out of range", func() {
			_, err := u.ReadStatus(MaxBoardID + 1)
			c.Convey("Then the command should not be sent", func() {
				c.So(errors.Is(err, ErrInvalidArg), c.ShouldBeTrue)
				c.So(dev.chunks, c.ShouldBeEmpty)
			})
		})
		c.Convey("When the firmware answers with an error", func() {
			board.firmwareError = true
			_, err := u.ReadStatus(3)
			c.Convey("Then a firmware error should be returned", func() {
				c.So(errors.Is(err, ErrFirmware), c.ShouldBeTrue)
			})
		})
		c.Convey("When a command is exchanged", func() {
			_, err := u.ReadStatus(3)
			c.So(err, c.ShouldBeNil)
			c.Convey("Then the answer should be wrapped up on EP2 IN", func() {
				c.So(dev.requests, c.ShouldResemble, []controlCall{
					{byte(requestEP2InWrapUp), 2},
				})
			})
		})
	})
}

func testConfig(seed uint32) ConfigBuffer {
	var conf ConfigBuffer
	for i := range conf {
		conf[i] = seed*0x01010101 + uint32(i)<<20 + uint32(i)
	}
	return conf
}

func TestConfigBufferArgs(t *testing.T) {
	c.Convey("Given a configuration buffer", t, func() {
		conf := testConfig(7)
		args := conf.Args()
		c.Convey("Then every word should be split low half first", func() {
			c.So(args, c.ShouldHaveLength, 72)
			c.So(args[0], c.ShouldEqual, uint16(conf[0]))
			c.So(args[1], c.ShouldEqual, uint16(conf[0]>>16))
			c.So(args[71], c.ShouldEqual, uint16(conf[35]>>16))
			c.So(configFromArgs(args), c.ShouldResemble, conf)
		})
	})
}

func TestConfigCommands(t *testing.T) {
	c.Convey("Given board 2 behind an opened device", t, func() {
		board := &fakeBoard{id: 2}
		dev := newFakeDevice(BMFEBProductID, board)
		s, _, _ := newTestSession(dev)
		u, err := openFake(s, dev)
		c.So(err, c.ShouldBeNil)

		c.Convey("When configuring ASIC 1", func() {
			conf := testConfig(1)
			err := u.SetConfig(2, DeviceASIC1, &conf)
			c.So(err, c.ShouldBeNil)
			c.Convey("Then the frame should be sent in two chunks followed by the validation", func() {
				c.So(dev.chunks, c.ShouldResemble, []int{256, 40, 4})
				c.So(board.configs[DeviceASIC1], c.ShouldResemble, conf)
			})
			c.Convey("Then reading it back should return the same words", func() {
				back, err := u.GetConfig(2, DeviceASIC1)
				c.So(err, c.ShouldBeNil)
				c.So(back, c.ShouldResemble, conf)
			})
		})
		c.Convey("When configuring every device in turn", func() {
			for device := 0; device < NumDevices; device++ {
				conf := testConfig(uint32(device))
				c.So(u.SetConfig(2, device, &conf), c.ShouldBeNil)
			}
			c.Convey("Then each device should hold its own configuration", func() {
				for device := 0; device < NumDevices; device++ {
					c.So(board.configs[device], c.ShouldResemble, testConfig(uint32(device)))
				}
			})
		})
		c.Convey("When addressing device 4", func() {
			var conf ConfigBuffer
			err := u.SetConfig(2, NumDevices, &conf)
			_, gerr := u.GetConfig(2, NumDevices)
			c.Convey("Then both commands should be rejected", func() {
				c.So(errors.Is(err, ErrInvalidArg), c.ShouldBeTrue)
				c.So(errors.Is(gerr, ErrInvalidArg), c.ShouldBeTrue)
				c.So(board.commands, c.ShouldBeEmpty)
			})
		})
		c.Convey("When the read back frame is corrupted", func() {
			board.corruptCRC = true
			_, err := u.GetConfig(2, DeviceFPGA)
			c.Convey("Then a CRC error should be returned", func() {
				var aerr *AnswerError
				c.So(errors.As(err, &aerr), c.ShouldBeTrue)
				c.So(aerr.Part, c.ShouldEqual, PartCRC)
			})
		})
		c.Convey("When applying the ASIC configuration", func() {
			answer, err := u.ApplyConfig(2, ApplyASICs)
			c.Convey("Then the answer should flag the three ASICs", func() {
				c.So(err, c.ShouldBeNil)
				c.So(answer, c.ShouldEqual, AnswerASIC0|AnswerASIC1|AnswerASIC2)
				c.So(answer.Errors(), c.ShouldBeFalse)
				c.So(board.applied, c.ShouldResemble, []ApplyMask{ApplyASICs})
			})
		})
	})
}

func TestParseWord(t *testing.T) {
	testCases := []struct {
		given    string
		expected uint32
		valid    bool
	}{
		{"0x1f", 0x1f, true},
		{"0XFFFFFFFF", 0xFFFFFFFF, true},
		{"42", 42, true},
		{" 010 \n", 10, true},
		{"0x", 0, false},
		{"ten", 0, false},
		{"-1", 0, false},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(fmt.Sprintf("parse %q", tc.given), func(t *testing.T) {
			t.Parallel()
			computed, err := ParseWord(tc.given)
			if (err == nil) != tc.valid {
				t.Fatalf("Expected valid %v, got %v", tc.valid, err)
			}
			if computed != tc.expected {
				t.Errorf("Expected %v, got %v", tc.expected, computed)
			}
		})
	}
}

func TestConfigReader(t *testing.T) {
	c.Convey("Given a text with one and a half device configurations", t, func() {
		var text strings.Builder
		for i := 0; i < ConfigWords+10; i++ {
			fmt.Fprintf(&text, "0x%x\n", i+1)
			if i == 3 {
				text.WriteString("\n")
			}
		}
		r := NewConfigReader(strings.NewReader(text.String()))
		c.Convey("When reading the first device", func() {
			first, err := r.Next()
			c.Convey("Then 36 words should be read skipping blank lines", func() {
				c.So(err, c.ShouldBeNil)
				c.So(first[0], c.ShouldEqual, uint32(1))
				c.So(first[35], c.ShouldEqual, uint32(36))
			})
			c.Convey("When reading the second device", func() {
				second, err := r.Next()
				c.Convey("Then the missing words should be zero", func() {
					c.So(err, c.ShouldBeNil)
					c.So(second[9], c.ShouldEqual, uint32(46))
					c.So(second[10], c.ShouldEqual, uint32(0))
				})
				c.Convey("Then the input should be exhausted", func() {
					_, err := r.Next()
					c.So(err, c.ShouldEqual, io.EOF)
				})
			})
		})
	})
	c.Convey("Given a text with a malformed word", t, func() {
		r := NewConfigReader(strings.NewReader("0x1\n0x2\nzz\n"))
		_, err := r.Next()
		c.Convey("Then the error should name the line", func() {
			c.So(errors.Is(err, ErrInvalidArg), c.ShouldBeTrue)
			c.So(err.Error(), c.ShouldContainSubstring, "line 3")
		})
	})
}

func TestReadout(t *testing.T) {
	c.Convey("Given board 6 with buffered readout data", t, func() {
		board := &fakeBoard{
			id:     6,
			stream: [][]byte{[]byte("spill-1 "), []byte("spill-2 "), []byte("spill-3")},
		}
		dev := newFakeDevice(BMFEBProductID, board)
		bus := &fakeBus{devices: []*fakeDevice{dev}}
		s := NewSession(bus, WithVerbosity(Mute), WithReadoutTimeout(time.Millisecond))
		u, err := openFake(s, dev)
		c.So(err, c.ShouldBeNil)

		c.Convey("When reading out for a short while", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()
			var out bytes.Buffer
			err := u.Readout(ctx, 6, 0x0011, &out)
			c.Convey("Then the whole stream should be written in order", func() {
				c.So(err, c.ShouldBeNil)
				c.So(out.String(), c.ShouldEqual, "spill-1 spill-2 spill-3")
			})
			c.Convey("Then the readout should be started and stopped", func() {
				c.So(board.readout, c.ShouldResemble, []uint16{0x0010, 0x0011})
				c.So(board.running, c.ShouldBeFalse)
			})
		})
		c.Convey("When the output cannot be written", func() {
			err := u.Readout(context.Background(), 6, 0, failingWriter{})
			c.Convey("Then the write error should end the readout", func() {
				c.So(err, c.ShouldNotBeNil)
				c.So(err.Error(), c.ShouldContainSubstring, "writing readout data")
				c.So(board.readout, c.ShouldResemble, []uint16{0x0000, 0x0001})
			})
		})
		c.Convey("When the board does not answer the start command", func() {
			board.firmwareError = true
			err := u.Readout(context.Background(), 6, 0, &bytes.Buffer{})
			c.Convey("Then the readout should not start", func() {
				c.So(errors.Is(err, ErrFirmware), c.ShouldBeTrue)
			})
		})
		c.Convey("When no data is pending", func() {
			buf := make([]byte, 16)
			n, err := u.ReadBuffer(buf)
			c.Convey("Then a timed out read should return no data and no error", func() {
				c.So(err, c.ShouldBeNil)
				c.So(n, c.ShouldEqual, 0)
			})
		})
	})
}

func TestReadBufferPackets(t *testing.T) {
	c.Convey("Given a running board with two full packets then a short one", t, func() {
		full := bytes.Repeat([]byte{0xA5}, 2*ReadoutPacketSize)
		board := &fakeBoard{id: 2, running: true, stream: [][]byte{full, []byte("tail")}}
		dev := newFakeDevice(BMFEBProductID, board)
		s := NewSession(&fakeBus{devices: []*fakeDevice{dev}},
			WithVerbosity(Mute), WithReadoutTimeout(time.Millisecond))
		u, err := openFake(s, dev)
		c.So(err, c.ShouldBeNil)

		c.Convey("When a single transfer asks for more than the board sent", func() {
			n, err := u.DeviceHandle.BulkTransfer(ep1In, make([]byte, 4096), time.Millisecond)
			c.Convey("Then the transfer times out and the received packets are lost", func() {
				c.So(errors.Is(err, ErrTimeout), c.ShouldBeTrue)
				c.So(n, c.ShouldEqual, 0)
				c.So(board.stream, c.ShouldHaveLength, 1)
			})
		})
		c.Convey("When reading a buffer larger than the data", func() {
			buf := make([]byte, 4096)
			n, err := u.ReadBuffer(buf)
			c.Convey("Then every byte should be returned", func() {
				c.So(err, c.ShouldBeNil)
				c.So(n, c.ShouldEqual, len(full)+4)
				c.So(buf[:n], c.ShouldResemble, append(full, "tail"...))
			})
			c.Convey("Then no transfer should ask for more than a packet", func() {
				c.So(dev.inReads, c.ShouldResemble, []int{512, 512, 512})
			})
		})
		c.Convey("When the data ends on a packet boundary", func() {
			board.stream = [][]byte{full}
			buf := make([]byte, 4096)
			n, err := u.ReadBuffer(buf)
			c.Convey("Then the timeout after the data should keep it", func() {
				c.So(err, c.ShouldBeNil)
				c.So(n, c.ShouldEqual, len(full))
			})
		})
	})
}

func TestReadoutGap(t *testing.T) {
	c.Convey("Given a board whose stream pauses between two spills", t, func() {
		board := &fakeBoard{
			id:     4,
			stream: [][]byte{[]byte("spill-1 "), {}, {}, []byte("spill-2")},
		}
		dev := newFakeDevice(BMFEBProductID, board)
		s := NewSession(&fakeBus{devices: []*fakeDevice{dev}},
			WithVerbosity(Mute), WithReadoutTimeout(time.Millisecond))
		u, err := openFake(s, dev)
		c.So(err, c.ShouldBeNil)

		c.Convey("When reading out past the pause", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()
			var out bytes.Buffer
			err := u.Readout(ctx, 4, 0, &out)
			c.Convey("Then both spills should be recorded", func() {
				c.So(err, c.ShouldBeNil)
				c.So(out.String(), c.ShouldEqual, "spill-1 spill-2")
				c.So(board.running, c.ShouldBeFalse)
			})
		})
	})
}

func TestExchangeLimits(t *testing.T) {
	c.Convey("Given an opened board", t, func() {
		dev := newFakeDevice(BMFEBProductID, &fakeBoard{id: 1})
		s, _, logs := newTestSession(dev)
		u, err := openFake(s, dev)
		c.So(err, c.ShouldBeNil)

		c.Convey("When a command carries more arguments than a frame holds", func() {
			_, err := u.exchange(1, CommandSetConfig, 0, make([]uint16, MaxArgs+1), 0)
			c.Convey("Then it should be refused before sending", func() {
				c.So(errors.Is(err, ErrInvalidArg), c.ShouldBeTrue)
				c.So(dev.chunks, c.ShouldBeEmpty)
				c.So(logs.String(), c.ShouldContainSubstring, "do not fit a frame")
			})
		})
		c.Convey("When a sub-command exceeds its field", func() {
			_, err := u.exchange(1, CommandGetConfig, MaxSubCommand+1, nil, 0)
			c.Convey("Then it should be refused before sending", func() {
				c.So(errors.Is(err, ErrInvalidArg), c.ShouldBeTrue)
				c.So(dev.chunks, c.ShouldBeEmpty)
			})
		})
	})
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestFlagStrings(t *testing.T) {
	testCases := []struct {
		given    fmt.Stringer
		expected string
	}{
		{Status(0), "0"},
		{StatusGTEN | StatusVWFPGA, "GTEN|VW_FPGA"},
		{DirectFCLR | DirectRSSR, "RSSR|FCLR"},
		{DirectParam(0x1000), "0x1000"},
		{ApplyASICs, "ASIC0|ASIC1|ASIC2"},
		{AnswerFPGA | AnswerWVAL, "FPGA|WVAL"},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.expected, func(t *testing.T) {
			t.Parallel()
			if tc.given.String() != tc.expected {
				t.Errorf("Expected %v, got %v", tc.expected, tc.given)
			}
		})
	}
}

func TestFlagDump(t *testing.T) {
	c.Convey("Given a status word with two bits set", t, func() {
		var buf bytes.Buffer
		err := (StatusAVE | StatusIGEN).Dump(&buf)
		c.Convey("Then every flag should get its own line", func() {
			c.So(err, c.ShouldBeNil)
			lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
			c.So(lines, c.ShouldHaveLength, 13)
			c.So(lines[1], c.ShouldEqual, "  AVE        : 1")
			c.So(lines[2], c.ShouldEqual, "  L0F_ERR    : 0")
			c.So(lines[12], c.ShouldEqual, "  IGEN       : 1")
		})
	})
	c.Convey("Given a stopped readout parameter", t, func() {
		var buf bytes.Buffer
		c.So(DumpReadoutParam(&buf, ReadoutStop), c.ShouldBeNil)
		c.Convey("Then the stop bit should be shown", func() {
			c.So(buf.String(), c.ShouldEqual, "  STOP       : 1\n")
		})
	})
}
