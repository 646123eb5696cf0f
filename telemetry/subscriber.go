// Copyright (c) 2016-2026 The libufec developers. All rights reserved.
// Project site: https://github.com/BabyMINDdaq/libufec
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package telemetry

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Subscribe follows the message streams of every endpoint, given as
// host:port or as a URL, and calls fn for each message received. fn is
// called concurrently from one goroutine per endpoint.
//
// Subscribe returns nil once ctx is cancelled, or the first error of a
// stream or of fn.
func Subscribe(ctx context.Context, endpoints []string, fn func(Message) error) error {
	if len(endpoints) == 0 {
		return errors.New("no endpoint to subscribe to")
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, ep := range endpoints {
		url := MessagesURL(ep)
		g.Go(func() error {
			return follow(gctx, url, fn)
		})
	}
	err := g.Wait()
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// MessagesURL returns the URL of the message stream served at endpoint.
func MessagesURL(endpoint string) string {
	if !strings.Contains(endpoint, "://") {
		endpoint = "http://" + endpoint
	}
	return strings.TrimSuffix(endpoint, "/") + "/messages"
}

func follow(ctx context.Context, url string, fn func(Message) error) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrapf(err, "subscribing to %s", url)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return errors.Wrapf(err, "subscribing to %s", url)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("subscribing to %s: %s", url, resp.Status)
	}

	dec := json.NewDecoder(resp.Body)
	for {
		var msg Message
		if err := dec.Decode(&msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if err == io.EOF {
				return errors.Errorf("stream from %s closed", url)
			}
			return errors.Wrapf(err, "reading %s", url)
		}
		if err := fn(msg); err != nil {
			return err
		}
	}
}
