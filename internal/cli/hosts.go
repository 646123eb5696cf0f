// Copyright (c) 2016-2026 The libufec developers. All rights reserved.
// Project site: https://github.com/BabyMINDdaq/libufec
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package cli

import (
	"net"
	"strconv"

	"github.com/google/shlex"
	"github.com/pkg/errors"
)

// Endpoints turns a space separated host list into host:port endpoints.
// With local set localhost comes first.
func Endpoints(hosts string, local bool, port int) ([]string, error) {
	if port <= 0 || port > 0xFFFF {
		return nil, errors.Errorf("invalid port %d", port)
	}
	names, err := shlex.Split(hosts)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing host list %q", hosts)
	}
	if local {
		names = append([]string{"localhost"}, names...)
	}
	if len(names) == 0 {
		return nil, errors.New("no host given")
	}
	endpoints := make([]string, 0, len(names))
	for _, h := range names {
		endpoints = append(endpoints, net.JoinHostPort(h, strconv.Itoa(port)))
	}
	return endpoints, nil
}
