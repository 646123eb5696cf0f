// Copyright (c) 2016-2026 The libufec developers. All rights reserved.
// Project site: https://github.com/BabyMINDdaq/libufec
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

// Command message_proxy collects the messages of several publishers, prints
// them and publishes them again on a single port.
package main

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/BabyMINDdaq/libufec/internal/cli"
	"github.com/BabyMINDdaq/libufec/telemetry"
	"golang.org/x/sync/errgroup"
)

// seenSize bounds the number of message ids remembered for deduplication.
const seenSize = 4096

func main() {
	os.Exit(run(cli.New("message_proxy", `(-i "<host> ..." | -l) -p <port> -P <publish port>`),
		os.Args[1:]))
}

func run(t *cli.Tool, args []string) int {
	var hosts string
	var local bool
	var port, publish int
	t.StringVar(&hosts, "i", "ip-address", "", "Space separated message publisher hosts")
	t.BoolVar(&local, "l", "localhost", false, "Messages from localhost")
	t.IntVar(&port, "p", "port", 0, "Port of the message publishers (required)")
	t.IntVar(&publish, "P", "publish-port", 0, "Port the messages are published on (required)")

	var endpoints []string
	check := func() error {
		if hosts == "" && !local {
			return cli.Usagef("one of -i and -l is required")
		}
		if publish <= 0 || publish > 0xFFFF {
			return cli.Usagef("invalid publish port %d", publish)
		}
		var err error
		if endpoints, err = cli.Endpoints(hosts, local, port); err != nil {
			return cli.Usagef("%s", err)
		}
		return nil
	}
	return t.Serve(args, check, func(ctx context.Context) error {
		host, err := os.Hostname()
		if err != nil {
			host = "localhost"
		}
		bus := telemetry.NewBus(host+"/message_proxy", telemetry.NewBacklog(2000, 200, true))
		srv := telemetry.NewServer(fmt.Sprintf(":%d", publish), bus, "message_proxy", t.Stderr)
		return proxy(ctx, t, srv, bus, endpoints)
	})
}

// proxy relays the messages of endpoints to bus while srv serves them.
func proxy(ctx context.Context, t *cli.Tool, srv *telemetry.Server, bus *telemetry.Bus, endpoints []string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Run)
	g.Go(func() error {
		defer srv.Close()
		seen := newIDSet(seenSize)
		var mu sync.Mutex
		return telemetry.Subscribe(gctx, endpoints, func(m telemetry.Message) error {
			mu.Lock()
			defer mu.Unlock()
			if !seen.add(m.ID) {
				return nil
			}
			t.Printf("%s\n", m)
			bus.Send(m)
			return nil
		})
	})
	err := g.Wait()
	if err == nil {
		t.Printf("\ngoodbye ...\n\n")
	}
	return err
}

// idSet remembers the last ids added to it.
type idSet struct {
	ids   map[string]struct{}
	order []string
	next  int
}

func newIDSet(size int) *idSet {
	return &idSet{ids: make(map[string]struct{}, size), order: make([]string, size)}
}

// add records id and reports whether it was new.
func (s *idSet) add(id string) bool {
	if _, ok := s.ids[id]; ok {
		return false
	}
	if old := s.order[s.next]; old != "" {
		delete(s.ids, old)
	}
	s.order[s.next] = id
	s.next = (s.next + 1) % len(s.order)
	s.ids[id] = struct{}{}
	return true
}
