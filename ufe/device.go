// Copyright (c) 2016-2026 The libufec developers. All rights reserved.
// Project site: https://github.com/BabyMINDdaq/libufec
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

/*
Package ufe provides slow control and data readout of the UFE front-end
boards of the Baby MIND detector over USB.

A Session owns the USB bus. Devices are selected with a Predicate and opened
as a UFE, which sends commands to any board daisy-chained behind that USB
device:

	s, err := ufe.Init()
	if err != nil {
		log.Fatal(err)
	}
	defer s.Exit()
	err = s.OnBoardDo(ufe.BMFEBProductID, 0, func(u *ufe.UFE, board int) error {
		status, err := u.ReadStatus(board)
		if err != nil {
			return err
		}
		fmt.Printf("0x%x\n", uint16(status))
		return nil
	})
*/
package ufe

// UFE is an opened USB front-end device.
type UFE struct {
	Session      *Session
	DeviceHandle DeviceHandle
	Descriptor   Descriptor
}

// Open opens dev and claims its bulk interface. The returned UFE must be
// closed by the caller.
func (s *Session) Open(dev Device) (*UFE, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	desc, err := dev.Descriptor()
	if err != nil {
		s.log.Errorf("cannot read device descriptor: %s", err)
		return nil, err
	}
	dh, err := dev.Open()
	if err != nil {
		s.log.Errorf("cannot open device 0x%04x:0x%04x: %s",
			desc.VendorID, desc.ProductID, err)
		return nil, err
	}
	s.log.Debugf("opened device 0x%04x:0x%04x", desc.VendorID, desc.ProductID)
	return &UFE{
		Session:      s,
		DeviceHandle: dh,
		Descriptor:   desc,
	}, nil
}

// Close releases the bulk interface and closes the device.
func (u *UFE) Close() error {
	return u.DeviceHandle.Close()
}
