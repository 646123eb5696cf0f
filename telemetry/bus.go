// Copyright (c) 2016-2026 The libufec developers. All rights reserved.
// Project site: https://github.com/BabyMINDdaq/libufec
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

// Package telemetry fans the warning and error messages of UFE sessions out
// to remote monitors over HTTP.
package telemetry

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultSubscriberBuffer is the number of messages a subscriber may lag
// behind before messages are dropped for it.
const DefaultSubscriberBuffer = 64

// Message is one published line.
type Message struct {
	ID     string    `json:"id"`
	Source string    `json:"source"`
	Time   time.Time `json:"time"`
	Text   string    `json:"text"`
}

func (m Message) String() string {
	return fmt.Sprintf("[%s] %s %s", m.Source, m.Time.Format("15:04:05.000"), m.Text)
}

// Bus broadcasts messages to its subscribers. It implements ufe.Publisher.
type Bus struct {
	source  string
	backlog *Backlog

	mu      sync.Mutex
	subs    map[chan Message]struct{}
	dropped uint64
}

// NewBus returns a bus stamping its messages with source. Every message is
// also kept in backlog when it is not nil.
func NewBus(source string, backlog *Backlog) *Bus {
	return &Bus{
		source:  source,
		backlog: backlog,
		subs:    make(map[chan Message]struct{}),
	}
}

// Source returns the name the bus stamps on its messages.
func (b *Bus) Source() string {
	return b.source
}

// Backlog returns the backlog of the bus, possibly nil.
func (b *Bus) Backlog() *Backlog {
	return b.backlog
}

// Publish broadcasts text as a new message.
func (b *Bus) Publish(text string) {
	b.Send(Message{
		ID:     uuid.New().String(),
		Source: b.source,
		Time:   time.Now(),
		Text:   text,
	})
}

// Send broadcasts msg unchanged. A subscriber whose buffer is full misses
// the message.
func (b *Bus) Send(msg Message) {
	if b.backlog != nil {
		b.backlog.Println(msg.String())
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- msg:
		default:
			b.dropped++
		}
	}
}

// Subscribe registers a subscriber able to lag buffer messages behind. The
// returned function unregisters it and closes the channel.
func (b *Bus) Subscribe(buffer int) (<-chan Message, func()) {
	if buffer <= 0 {
		buffer = DefaultSubscriberBuffer
	}
	ch := make(chan Message, buffer)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, ch)
			b.mu.Unlock()
			close(ch)
		})
	}
}

// Subscribers returns the number of registered subscribers.
func (b *Bus) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Dropped returns the number of deliveries missed by slow subscribers.
func (b *Bus) Dropped() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}
