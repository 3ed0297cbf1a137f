// Package bridge implements the single-threaded bridge loop (C6): the
// sole writer to the ring log and the sole owner of the serial write
// descriptor. Its drain-then-read-then-sleep shape and "log and
// continue" error policy follow the main loop in
// original_source/c-server/vlcbserver.c, reshaped per spec.md §9 to
// poll a context.Context instead of a volatile sig_atomic_t.
package bridge

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/penguintutor/vlcbbridge/internal/outbound"
	"github.com/penguintutor/vlcbbridge/internal/reframer"
	"github.com/penguintutor/vlcbbridge/internal/ringlog"
	"github.com/penguintutor/vlcbbridge/internal/vlcb"
)

// Device is the subset of *serialport.Port the bridge loop depends on.
// Tests substitute a net.Pipe-backed fake; production wires the real
// serial port.
type Device interface {
	Write(data []byte) (int, error)
	ReadTimeout(data []byte, timeout time.Duration) (int, error)
}

// Config tunes the bridge loop's timing, independent of any particular
// Device implementation.
type Config struct {
	// ReadTimeout bounds each serial read attempt (spec.md §6: VTIME=5,
	// i.e. 0.5s).
	ReadTimeout time.Duration
	// PollInterval caps CPU use between iterations (spec.md §4.6 step 4).
	PollInterval time.Duration
	// ReadChunk is the maximum number of bytes requested per serial read.
	ReadChunk int
}

// DefaultConfig matches spec.md §4.6/§6's defaults.
func DefaultConfig() Config {
	return Config{
		ReadTimeout:  500 * time.Millisecond,
		PollInterval: 100 * time.Millisecond,
		ReadChunk:    vlcb.MaxFrame,
	}
}

// Loop is the bridge coordinator. The zero value is not usable; use New.
type Loop struct {
	dev    Device
	out    *outbound.Channel
	ring   *ringlog.Log
	rf     *reframer.Reframer
	cfg    Config
	logger *zap.SugaredLogger
}

// New builds a bridge loop over dev, draining out and appending to ring.
func New(dev Device, out *outbound.Channel, ring *ringlog.Log, cfg Config, logger *zap.SugaredLogger) *Loop {
	return &Loop{
		dev:    dev,
		out:    out,
		ring:   ring,
		rf:     reframer.New(),
		cfg:    cfg,
		logger: logger,
	}
}

// Run executes the bridge loop until ctx is cancelled. It never returns a
// non-nil error on a clean shutdown; it exists to satisfy
// errgroup.Group's Go signature in internal/lifecycle.
func (l *Loop) Run(ctx context.Context) error {
	buf := make([]byte, l.cfg.ReadChunk)
	for {
		l.drainOutbound()
		l.readSerial(buf)

		select {
		case <-ctx.Done():
			return nil
		default:
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(l.cfg.PollInterval):
		}
	}
}

// drainOutbound writes every currently queued outbound frame to the
// serial port, in FIFO order, appending each successfully written frame
// to the ring log as OUTBOUND. A write failure drops the frame — it is
// neither retried nor logged as OUTBOUND (spec.md §7).
func (l *Loop) drainOutbound() {
	for {
		body, ok := l.out.TryRecv()
		if !ok {
			return
		}
		if err := l.writeFrame(body); err != nil {
			l.logger.Warnw("serial write failed, dropping outbound frame",
				"body", string(body), "error", err)
			continue
		}
		l.ring.Append(vlcb.Outbound, body)
	}
}

// writeFrame writes body one byte at a time, matching the discovery-frame
// write loop in original_source/c-server/vlcbserver.c.
func (l *Loop) writeFrame(body []byte) error {
	for _, b := range body {
		if _, err := l.dev.Write([]byte{b}); err != nil {
			return errors.Wrap(err, "serial write")
		}
	}
	return nil
}

// readSerial performs one bounded read and feeds whatever arrived to the
// reframer, appending every completed frame to the ring log as INBOUND.
// A read error (including an ordinary VTIME timeout with no data) is
// logged at low severity and otherwise ignored — frames between reads
// may be lost, per spec.md §7.
func (l *Loop) readSerial(buf []byte) {
	n, err := l.dev.ReadTimeout(buf, l.cfg.ReadTimeout)
	if err != nil {
		l.logger.Debugw("serial read returned no data", "error", err)
		return
	}
	if n == 0 {
		return
	}
	l.rf.Feed(buf[:n], func(frame []byte) {
		l.ring.Append(vlcb.Inbound, frame)
	})
}
