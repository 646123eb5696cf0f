// Copyright (c) 2016-2026 The libufec developers. All rights reserved.
// Project site: https://github.com/BabyMINDdaq/libufec
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package telemetry

import (
	"encoding/json"
	"html/template"
	"io"
	"log"
	"net"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/csrf"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
)

// Server publishes the messages of a bus over HTTP:
//
//	GET  /messages       newline delimited JSON stream of the messages
//	GET  /status/        status page
//	POST /status/log.gz  gzip export of the backlog
type Server struct {
	http    *http.Server
	bus     *Bus
	version string
}

// NewServer returns a server for bus listening on addr. Requests are logged
// to logger in the Apache format.
func NewServer(addr string, bus *Bus, version string, logger io.Writer) *Server {
	s := &Server{
		http:    &http.Server{Addr: addr},
		bus:     bus,
		version: version,
	}
	r := mux.NewRouter()
	r.Methods("GET").Path("/messages").HandlerFunc(s.messages)

	sr := r.PathPrefix("/status").Subrouter()
	sr.Methods("GET").Path("/").HandlerFunc(s.statusPage)
	sr.Methods("POST").Path("/log.gz").HandlerFunc(s.statusGzip)
	sr.Use(csrf.Protect(csrfKey(), csrf.Secure(false)))

	var h http.Handler = r
	h = handlers.LoggingHandler(logger, h)
	h = logRequest(h)
	s.http.Handler = h
	return s
}

// csrfKey returns a fresh 32 byte key; tokens do not survive a restart.
func csrfKey() []byte {
	a, b := uuid.New(), uuid.New()
	return append(a[:], b[:]...)
}

func logRequest(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Printf("%s %s", r.Method, r.URL)
		handler.ServeHTTP(w, r)
	})
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Run serves until Close is called.
func (s *Server) Run() error {
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Serve serves on l until Close is called.
func (s *Server) Serve(l net.Listener) error {
	err := s.http.Serve(l)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Close stops the server and ends every open stream.
func (s *Server) Close() error {
	return s.http.Close()
}

func (s *Server) messages(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, errors.New("streaming not supported"))
		return
	}
	ch, cancel := s.bus.Subscribe(DefaultSubscriberBuffer)
	defer cancel()

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	enc := json.NewEncoder(w)
	for {
		select {
		case <-r.Context().Done():
			return
		case msg := <-ch:
			if err := enc.Encode(msg); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func (s *Server) statusPage(w http.ResponseWriter, r *http.Request) {
	var text string
	if backlog := s.bus.Backlog(); backlog != nil {
		var err error
		if text, err = backlog.String(s.version + "\n"); err != nil {
			respondError(w, err)
			return
		}
	}
	data := &statusTemplateData{
		Version:     s.version,
		Source:      s.bus.Source(),
		Subscribers: s.bus.Subscribers(),
		Dropped:     s.bus.Dropped(),
		Log:         text,
		CSRFField:   csrf.TemplateField(r),
	}
	if err := statusTemplate.Execute(w, data); err != nil {
		respondError(w, err)
	}
}

func (s *Server) statusGzip(w http.ResponseWriter, r *http.Request) {
	backlog := s.bus.Backlog()
	if backlog == nil {
		respondError(w, errors.New("no backlog kept"))
		return
	}
	gz, err := backlog.Gzip(s.version + "\nCurrent log:\n")
	if err != nil {
		respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/gzip")
	w.Write(gz)
}

func respondError(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), http.StatusBadRequest)
}

type statusTemplateData struct {
	Version     string
	Source      string
	Subscribers int
	Dropped     uint64
	Log         string
	CSRFField   template.HTML
}

var statusTemplate = template.Must(template.New("status").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>UFE messages status</title>
</head>
<body>
  <h1>UFE messages</h1>
  <p>Version {{.Version}}</p>
  <p>Source {{.Source}}</p>
  <p>{{.Subscribers}} subscribers, {{.Dropped}} messages dropped</p>
  <form method="POST" action="/status/log.gz">
    {{.CSRFField}}
    <input type="submit" value="Download log">
  </form>
  <pre>{{.Log}}</pre>
</body>
</html>
`))
