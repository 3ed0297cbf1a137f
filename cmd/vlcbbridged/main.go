// Command vlcbbridged is the VLCB/CBUS serial-to-HTTP bridge daemon.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/penguintutor/vlcbbridge/internal/config"
	"github.com/penguintutor/vlcbbridge/internal/lifecycle"
	"github.com/penguintutor/vlcbbridge/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "vlcbbridged",
	Short: "VLCB/CBUS serial-to-HTTP bridge",
}

var serveCmdArgs struct {
	ConfigPath string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bridge daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	serveCmd.Flags().StringVarP(&serveCmdArgs.ConfigPath, "config", "c", "", "Path to the configuration file (optional; built-in defaults are used if omitted)")
	rootCmd.AddCommand(serveCmd)
}

func runServe() error {
	cfg := config.Default()
	if serveCmdArgs.ConfigPath != "" {
		loaded, err := config.Load(serveCmdArgs.ConfigPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	log, err := logging.Init(&cfg.Logging, "vlcbbridged")
	if err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}
	defer log.Sync()

	log.Infow("starting vlcb bridge",
		"serial_device", cfg.SerialDevice,
		"http_addr", cfg.HTTPAddr,
		"ring_capacity", cfg.RingCapacity,
		"ring_safe_window", cfg.RingSafeWindow,
	)

	return lifecycle.Run(context.Background(), cfg, log)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Printf("ERROR: %v\n", err)
		os.Exit(1)
	}
}
