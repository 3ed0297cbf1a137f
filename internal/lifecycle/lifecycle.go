// Package lifecycle wires together C1-C7 into a running daemon and owns
// the startup/shutdown ordering of spec.md §4.8.
package lifecycle

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/penguintutor/vlcbbridge/internal/bridge"
	"github.com/penguintutor/vlcbbridge/internal/config"
	"github.com/penguintutor/vlcbbridge/internal/httpapi"
	"github.com/penguintutor/vlcbbridge/internal/outbound"
	"github.com/penguintutor/vlcbbridge/internal/ringlog"
	"github.com/penguintutor/vlcbbridge/internal/serialport"
	"github.com/penguintutor/vlcbbridge/internal/xcmd"
)

// Run opens the serial device, starts the HTTP API and the bridge loop,
// and blocks until ctx is cancelled or SIGINT/SIGTERM arrives. On
// return, shutdown has already completed in the order spec.md §4.8
// mandates: stop HTTP, restore+close the serial port, close the
// outbound channel.
func Run(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) error {
	port, err := serialport.Open(cfg.SerialDevice)
	if err != nil {
		return errors.Wrap(err, "open serial device")
	}
	if err := port.Configure(serialport.DefaultConfig()); err != nil {
		port.Close()
		return errors.Wrap(err, "configure serial device")
	}

	ring := ringlog.New(cfg.RingCapacity, cfg.RingSafeWindow)
	out := outbound.New(cfg.OutboundQueueDepth)

	bridgeCfg := bridge.DefaultConfig()
	bridgeCfg.ReadChunk = cfg.MaxFrame
	loop := bridge.New(port, out, ring, bridgeCfg, log)

	handler := httpapi.New(ring, out, cfg.MaxBatch, log)
	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: handler.Mux(),
	}

	wg, gctx := errgroup.WithContext(ctx)

	wg.Go(func() error {
		log.Infow("http api listening", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return errors.Wrap(err, "http server")
		}
		return nil
	})

	wg.Go(func() error {
		return loop.Run(gctx)
	})

	wg.Go(func() error {
		err := xcmd.WaitInterrupted(gctx)
		log.Infow("shutting down", "cause", err)

		if shutdownErr := server.Shutdown(context.Background()); shutdownErr != nil {
			log.Warnw("http server shutdown failed", "error", shutdownErr)
		}
		if restoreErr := port.Restore(); restoreErr != nil {
			log.Warnw("serial termios restore failed", "error", restoreErr)
		}
		if closeErr := port.Close(); closeErr != nil {
			log.Warnw("serial port close failed", "error", closeErr)
		}
		out.Close()

		return err
	})

	if err := wg.Wait(); err != nil {
		var interrupted xcmd.Interrupted
		if errors.As(err, &interrupted) {
			return nil
		}
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}
	return nil
}
