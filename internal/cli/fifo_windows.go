// Copyright (c) 2016-2026 The libufec developers. All rights reserved.
// Project site: https://github.com/BabyMINDdaq/libufec
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package cli

import "github.com/pkg/errors"

func makeFIFO(path string) error {
	return errors.Errorf("cannot create fifo %s: named pipes are not supported on windows", path)
}
