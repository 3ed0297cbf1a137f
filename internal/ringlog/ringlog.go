// Package ringlog implements the bounded, sequence-numbered, concurrent
// log of VLCB frames (C3): single writer, many wait-free readers, no
// individual slot freeing — overwrite is the only deletion.
package ringlog

import (
	"sync/atomic"
	"time"

	"github.com/penguintutor/vlcbbridge/internal/vlcb"
)

type record struct {
	seq       uint64
	timestamp time.Time
	direction vlcb.Direction
	body      []byte
}

// Log is a fixed-capacity cyclic buffer of timestamped frames. The zero
// value is not usable; construct with New.
//
// Concurrency: Append is called by exactly one goroutine (the bridge
// loop, C6). Query may be called concurrently by any number of HTTP
// handler goroutines (C7) without taking a lock. Append publishes a new
// slot by writing its fields with plain stores and then advancing
// totalWritten with an atomic Store; Query reads totalWritten with an
// atomic Load before touching any slot. Per the Go memory model, an
// atomic Load that observes the value written by an atomic Store is
// synchronized-after it, so a reader that sees the new totalWritten also
// sees every plain write that preceded the Store — this is the "release
// ordering" spec.md §4.3 calls for, without a mutex on the read path.
type Log struct {
	capacity uint64
	safe     uint64

	totalWritten atomic.Uint64
	slots        []record
}

// New creates a ring log with the given capacity and safe-read window.
// safe must be strictly less than capacity (spec.md §3: SAFE ≤ CAP − ε).
func New(capacity, safe uint64) *Log {
	if capacity == 0 {
		panic("ringlog: capacity must be > 0")
	}
	if safe >= capacity {
		safe = capacity - 1
	}
	return &Log{
		capacity: capacity,
		safe:     safe,
		slots:    make([]record, capacity),
	}
}

// Append stores body under a freshly assigned, monotonically increasing
// sequence number and returns it. body is copied; the caller's slice may
// be reused afterwards.
func (l *Log) Append(direction vlcb.Direction, body []byte) uint64 {
	seq := l.totalWritten.Load()
	idx := seq % l.capacity

	cp := make([]byte, len(body))
	copy(cp, body)

	l.slots[idx] = record{
		seq:       seq,
		timestamp: time.Now().UTC(),
		direction: direction,
		body:      cp,
	}

	l.totalWritten.Store(seq + 1)
	return seq
}

// Result is the outcome of a Query: the frames produced plus the echoed
// range and produced count the HTTP adapter reports in its header line
// (spec.md §4.7).
type Result struct {
	Frames     []vlcb.Frame
	EchoedFrom int64
	EchoedTo   int64
	Produced   int64
}

// Query returns the frames with sequence numbers in [from, to], clamped
// to what's currently safely readable and to at most maxBatch frames,
// per the algorithm in spec.md §4.3. It never fails and never blocks.
//
// A negative from is interpreted as an offset from the newest sequence
// number (from = W + from) — the corrected reading of the source's
// ambiguous arithmetic, per spec.md §9 Open Question 1.
func (l *Log) Query(from, to int64, maxBatch int) Result {
	w := int64(l.totalWritten.Load())

	if from < 0 {
		from = w + from
	}

	if w == 0 {
		produced := int64(0)
		if from < 0 {
			produced = -from
		}
		return Result{EchoedFrom: 0, EchoedTo: 0, Produced: produced}
	}

	oldest := w - int64(l.safe)
	if oldest < 0 {
		oldest = 0
	}
	newest := w - 1

	if from < oldest {
		from = oldest
	}
	if from > newest {
		return Result{EchoedFrom: 0, EchoedTo: 0, Produced: w - from}
	}

	if to < from || to > newest {
		to = newest
	}
	if to-from+1 > int64(maxBatch) {
		to = from + int64(maxBatch) - 1
	}

	frames := make([]vlcb.Frame, 0, to-from+1)
	for s := from; s <= to; s++ {
		rec := l.slots[uint64(s)%l.capacity]
		body := make([]byte, len(rec.body))
		copy(body, rec.body)
		frames = append(frames, vlcb.Frame{
			Seq:       rec.seq,
			Timestamp: rec.timestamp,
			Direction: rec.direction,
			Body:      body,
		})
	}

	return Result{
		Frames:     frames,
		EchoedFrom: from,
		EchoedTo:   to,
		Produced:   int64(len(frames)),
	}
}

// Newest returns the most recently assigned sequence number and whether
// the log has ever had an append.
func (l *Log) Newest() (seq uint64, ok bool) {
	w := l.totalWritten.Load()
	if w == 0 {
		return 0, false
	}
	return w - 1, true
}
