// Package reframer turns a raw, possibly corrupted or partial byte
// stream from the serial adapter into a sequence of complete VLCB frames
// (C5). The resync-on-every-colon strategy is adapted from the
// length-prefixed resync loop in kstaniek/go-ampio-server's
// internal/serial Codec.DecodeStream, retargeted from a binary
// preamble+length header to this protocol's ':'...';' delimiters.
package reframer

import "github.com/penguintutor/vlcbbridge/internal/vlcb"

// Reframer accumulates bytes into frames. It is not safe for concurrent
// use — the bridge loop is its only caller.
type Reframer struct {
	pending []byte
}

// New returns an empty Reframer.
func New() *Reframer {
	return &Reframer{pending: make([]byte, 0, vlcb.MaxFrame)}
}

// Feed processes chunk and invokes emit once per completed frame, in the
// order they were completed. Frames are emitted exactly as accumulated,
// including ones that would later fail C1 validation (spec.md §4.5:
// validation is the caller's job, not the reframer's).
func (r *Reframer) Feed(chunk []byte, emit func(frame []byte)) {
	for _, b := range chunk {
		switch {
		case b == ':':
			r.pending = append(r.pending[:0], ':')
		case len(r.pending) == 0:
			// garbage before any start-of-frame; drop it
		case b == ';':
			r.pending = append(r.pending, ';')
			frame := make([]byte, len(r.pending))
			copy(frame, r.pending)
			emit(frame)
			r.pending = r.pending[:0]
		default:
			r.pending = append(r.pending, b)
			if len(r.pending) >= vlcb.MaxFrame {
				r.pending = r.pending[:0]
			}
		}
	}
}
