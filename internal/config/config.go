// Package config loads the daemon's YAML configuration file.
package config

import (
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/penguintutor/vlcbbridge/internal/logging"
	"github.com/penguintutor/vlcbbridge/internal/vlcb"
)

// Config is the top-level daemon configuration, loaded from a single
// YAML file and otherwise defaulted per spec.md §6.
type Config struct {
	Logging logging.Config `yaml:"logging"`

	// SerialDevice is the path to the VLCB/CBUS serial adapter.
	SerialDevice string `yaml:"serial_device"`
	// HTTPAddr is the address the HTTP API listens on.
	HTTPAddr string `yaml:"http_addr"`

	// RingCapacity is the ring log's CAP (spec.md §4.3).
	RingCapacity uint64 `yaml:"ring_capacity"`
	// RingSafeWindow is the ring log's SAFE (spec.md §4.3).
	RingSafeWindow uint64 `yaml:"ring_safe_window"`
	// MaxBatch bounds frames returned by a single read (spec.md §4.7).
	MaxBatch int `yaml:"max_batch"`
	// MaxFrame bounds the number of bytes read from the serial device
	// per C6 iteration (spec.md §4.6); it is independent of
	// vlcb.MaxFrame, the hard per-frame ceiling the reframer enforces.
	MaxFrame int `yaml:"max_frame"`

	// OutboundQueueDepth is the outbound channel's capacity Q
	// (spec.md §4.4).
	OutboundQueueDepth int `yaml:"outbound_queue_depth"`
}

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	const ringCapacity = 1024
	return &Config{
		Logging:            logging.Config{Level: zapcore.InfoLevel},
		SerialDevice:       "/dev/ttyACM0",
		HTTPAddr:           ":8888",
		RingCapacity:       ringCapacity,
		RingSafeWindow:     uint64(0.9 * float64(ringCapacity)),
		MaxBatch:           64,
		MaxFrame:           vlcb.MaxFrame,
		OutboundQueueDepth: 16,
	}
}

// Load reads and parses the YAML file at path, overlaying it onto
// Default() so an omitted field keeps its default.
func Load(path string) (*Config, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config file")
	}

	cfg := Default()
	if err := yaml.Unmarshal(buf, cfg); err != nil {
		return nil, errors.Wrap(err, "parse config file")
	}

	return cfg, nil
}
