// Copyright (c) 2016-2026 The libufec developers. All rights reserved.
// Project site: https://github.com/BabyMINDdaq/libufec
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package ufe

// Predicate selects devices during enumeration. arg is the value given to
// the selection call, a board id for ReachableBoard.
type Predicate interface {
	Matches(dev Device, arg int) bool
}

// PredicateFunc adapts a function to a Predicate.
type PredicateFunc func(dev Device, arg int) bool

// Matches calls f(dev, arg).
func (f PredicateFunc) Matches(dev Device, arg int) bool {
	return f(dev, arg)
}

// Action runs on one opened device. arg is the value given to the selection
// call.
type Action func(u *UFE, arg int) error

// VendorMatch selects every device of the UFE vendor.
func VendorMatch() Predicate {
	return PredicateFunc(func(dev Device, _ int) bool {
		desc, err := dev.Descriptor()
		return err == nil && desc.VendorID == VendorID
	})
}

// VendorProductMatch selects the UFE devices with the given product id.
func VendorProductMatch(productID uint16) Predicate {
	return PredicateFunc(func(dev Device, _ int) bool {
		desc, err := dev.Descriptor()
		return err == nil &&
			desc.VendorID == VendorID &&
			desc.ProductID == productID
	})
}

// ReachableBoard selects the UFE devices with the given product id behind
// which the board arg answers a status probe. Matching opens and closes the
// device.
func ReachableBoard(s *Session, productID uint16) Predicate {
	vp := VendorProductMatch(productID)
	return PredicateFunc(func(dev Device, board int) bool {
		if !vp.Matches(dev, board) {
			return false
		}
		u, err := s.Open(dev)
		if err != nil {
			return false
		}
		defer u.Close()
		return u.Ping(board)
	})
}

// ListDevices returns the attached devices matching p, in enumeration order.
// The caller owns one reference on each returned device and must release
// them with ReleaseDevices.
func (s *Session) ListDevices(p Predicate, arg int) ([]Device, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	all, err := s.bus.Devices()
	if err != nil {
		s.log.Errorf("cannot list USB devices: %s", err)
		return nil, err
	}
	defer ReleaseDevices(all)

	var selected []Device
	for _, dev := range all {
		if p.Matches(dev, arg) {
			dev.Ref()
			selected = append(selected, dev)
		}
	}
	s.log.Debugf("%d of %d USB devices selected", len(selected), len(all))
	return selected, nil
}

// WithEachSelectedDevice opens every device matching p in turn and runs
// action on it. It stops at the first failing action and returns its error.
// ErrNotFound is returned when no device matches.
func (s *Session) WithEachSelectedDevice(p Predicate, arg int, action Action) error {
	return s.withSelected(p, arg, action, false)
}

// OnBoardDo runs action on the device through which board is reachable.
func (s *Session) OnBoardDo(productID uint16, board int, action Action) error {
	return s.withSelected(ReachableBoard(s, productID), board, action, false)
}

// OnAllBoardsDo runs action on every device with the given product id.
func (s *Session) OnAllBoardsDo(productID uint16, arg int, action Action) error {
	return s.withSelected(VendorProductMatch(productID), arg, action, false)
}

// OnDeviceDo runs action on the first device with the given product id.
func (s *Session) OnDeviceDo(productID uint16, arg int, action Action) error {
	return s.withSelected(VendorProductMatch(productID), arg, action, true)
}

// OnUFEDo runs action on every device of the UFE vendor.
func (s *Session) OnUFEDo(arg int, action Action) error {
	return s.withSelected(VendorMatch(), arg, action, false)
}

func (s *Session) withSelected(p Predicate, arg int, action Action, firstOnly bool) error {
	devs, err := s.ListDevices(p, arg)
	if err != nil {
		return err
	}
	defer ReleaseDevices(devs)

	if len(devs) == 0 {
		s.log.Errorf("no UFE device found")
		return ErrNotFound
	}
	if firstOnly {
		devs = devs[:1]
	}
	for _, dev := range devs {
		if err := s.runOn(dev, arg, action); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) runOn(dev Device, arg int, action Action) error {
	u, err := s.Open(dev)
	if err != nil {
		return err
	}
	aerr := action(u, arg)
	cerr := u.Close()
	if aerr != nil {
		return aerr
	}
	return cerr
}
