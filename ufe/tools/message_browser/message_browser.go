// Copyright (c) 2016-2026 The libufec developers. All rights reserved.
// Project site: https://github.com/BabyMINDdaq/libufec
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

// Command message_browser prints the messages published by UFE tools
// running with -m.
package main

import (
	"context"
	"os"
	"sync"

	"github.com/BabyMINDdaq/libufec/internal/cli"
	"github.com/BabyMINDdaq/libufec/telemetry"
)

func main() {
	os.Exit(run(cli.New("message_browser", `(-i "<host> ..." | -l) -p <port>`), os.Args[1:]))
}

func run(t *cli.Tool, args []string) int {
	var hosts string
	var local bool
	var port int
	t.StringVar(&hosts, "i", "ip-address", "", "Space separated message publisher hosts")
	t.BoolVar(&local, "l", "localhost", false, "Messages from localhost")
	t.IntVar(&port, "p", "port", 0, "Port of the message publishers (required)")

	var endpoints []string
	check := func() error {
		if hosts == "" && !local {
			return cli.Usagef("one of -i and -l is required")
		}
		var err error
		if endpoints, err = cli.Endpoints(hosts, local, port); err != nil {
			return cli.Usagef("%s", err)
		}
		return nil
	}
	return t.Serve(args, check, func(ctx context.Context) error {
		return browse(ctx, t, endpoints)
	})
}

func browse(ctx context.Context, t *cli.Tool, endpoints []string) error {
	for _, ep := range endpoints {
		t.Printf("subscribing to %s ...\n", telemetry.MessagesURL(ep))
	}
	var mu sync.Mutex
	err := telemetry.Subscribe(ctx, endpoints, func(m telemetry.Message) error {
		mu.Lock()
		defer mu.Unlock()
		t.Printf("%s\n", m)
		return nil
	})
	if err == nil {
		t.Printf("\n\ngoodbye ...\n\n")
	}
	return err
}
