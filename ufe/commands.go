// Copyright (c) 2016-2026 The libufec developers. All rights reserved.
// Project site: https://github.com/BabyMINDdaq/libufec
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package ufe

// Command is the 5-bit command identifier of a frame.
type Command byte

// Command identifiers of the board protocol.
const (
	CommandDataReadout     Command = 0x00
	CommandFirmwareVersion Command = 0x01
	CommandSetDirectParam  Command = 0x02
	CommandReadStatus      Command = 0x03
	CommandSetConfig       Command = 0x04
	CommandGetConfig       Command = 0x05
	CommandApplyConfig     Command = 0x06
	CommandError           Command = 0x1E
	CommandIdle            Command = 0x1F
)

var commands = map[Command]string{
	CommandDataReadout:     "Data readout",
	CommandFirmwareVersion: "Firmware version",
	CommandSetDirectParam:  "Set direct parameters",
	CommandReadStatus:      "Read status",
	CommandSetConfig:       "Set config",
	CommandGetConfig:       "Get config",
	CommandApplyConfig:     "Apply config",
	CommandError:           "Error",
	CommandIdle:            "Idle",
}

func (c Command) String() string {
	if s, ok := commands[c]; ok {
		return s
	}
	return "Unknown command"
}

// Readout parameter bits.
const (
	ReadoutStart uint16 = 0x0
	ReadoutStop  uint16 = 0x1
)

// Idle sends the idle command and checks the empty answer.
func (u *UFE) Idle(board int) error {
	_, err := u.exchange(board, CommandIdle, NoSubCommand, nil, 0)
	return err
}

// FirmwareVersion returns the firmware version word of a board.
func (u *UFE) FirmwareVersion(board int) (uint16, error) {
	answer, err := u.exchange(board, CommandFirmwareVersion, NoSubCommand, nil, 1)
	if err != nil {
		return 0, err
	}
	return answer[0], nil
}

// SetDirectParam writes the direct parameter bits of a board and returns the
// value echoed by the firmware.
func (u *UFE) SetDirectParam(board int, params DirectParam) (DirectParam, error) {
	answer, err := u.exchange(board, CommandSetDirectParam, NoSubCommand,
		[]uint16{uint16(params)}, 1)
	if err != nil {
		return 0, err
	}
	return DirectParam(answer[0]), nil
}

// ReadStatus reads the status word of a board.
func (u *UFE) ReadStatus(board int) (Status, error) {
	answer, err := u.exchange(board, CommandReadStatus, NoSubCommand, nil, 1)
	if err != nil {
		return 0, err
	}
	return Status(answer[0]), nil
}

// DataReadout writes the readout parameter word. Bit 0 clear starts the
// readout, bit 0 set stops it.
func (u *UFE) DataReadout(board int, param uint16) (uint16, error) {
	answer, err := u.exchange(board, CommandDataReadout, NoSubCommand,
		[]uint16{param}, 1)
	if err != nil {
		return 0, err
	}
	return answer[0], nil
}

// Ping reports whether the board with the given id answers a status probe.
func (u *UFE) Ping(board int) bool {
	_, err := u.ReadStatus(board)
	return err == nil
}

// exchange runs one command/answer round trip on the command endpoint. The
// error of the first failing step is returned unchanged.
func (u *UFE) exchange(board int, cmd Command, sub int, args []uint16, answerArgc int) ([]uint16, error) {
	if err := u.Session.check(); err != nil {
		return nil, err
	}
	if board < 0 || board > MaxBoardID {
		u.Session.log.Errorf("invalid board id %d", board)
		return nil, ErrInvalidArg
	}
	if len(args) > MaxArgs || sub > MaxSubCommand {
		u.Session.log.Errorf("%s: %d args, sub %d do not fit a frame", cmd, len(args), sub)
		return nil, ErrInvalidArg
	}
	u.Session.log.Debugf("%s ( board %d, sub %d, %d args )", cmd, board, sub, len(args))
	if err := u.SendRaw(EndpointCommand, EncodeCommand(board, cmd, sub, args)); err != nil {
		u.Session.log.Errorf("error during command %s ( board %d )", cmd, board)
		return nil, err
	}
	if err := u.EP2InWrapUp(); err != nil {
		u.Session.log.Errorf("error during command %s ( board %d )", cmd, board)
		return nil, err
	}
	raw, err := u.RecvRaw(EndpointCommand, FrameSize(answerArgc))
	if err != nil {
		u.Session.log.Errorf("error during command %s ( board %d )", cmd, board)
		return nil, err
	}
	answer, err := DecodeAnswer(board, cmd, sub, answerArgc, raw)
	if err != nil {
		u.Session.log.Errorf("%s", err)
		return answer, err
	}
	return answer, nil
}
