package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/joshuapare/spukit/internal/logger"
	"github.com/joshuapare/spukit/pkg/spu"
)

var (
	// Global flags
	verbose bool
	quiet   bool
	jsonOut bool
	logDir  string

	// Backend flags
	devicePath   string
	deviceOffset int64
	modeName     string
	pollTimeout  time.Duration
	trace        bool
)

var rootCmd = &cobra.Command{
	Use:   "spuctl",
	Short: "Drive and inspect SPU ordered key-value structures",
	Long: `spuctl loads batches of key/value pairs into a Structure Processing Unit
(or its in-memory simulation), compiles multi-field keys, and queries
simulation snapshots.`,
	Version: "0.1.0",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initLogging()
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output and debug logging")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "", "Write JSON logs to this directory")

	rootCmd.PersistentFlags().StringVar(&devicePath, "device", "", "Register window to map (PCI resource or UIO device)")
	rootCmd.PersistentFlags().Int64Var(&deviceOffset, "offset", 0, "Page-aligned offset of the register window")
	rootCmd.PersistentFlags().StringVar(&modeName, "mode", "auto", "Backend: auto, hardware, sim or hybrid")
	rootCmd.PersistentFlags().DurationVar(&pollTimeout, "poll-timeout", time.Second, "Give up on a device command after this long")
	rootCmd.PersistentFlags().BoolVar(&trace, "trace", false, "Log every register access (needs --verbose or --log-dir)")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initLogging() error {
	opts := logger.Options{Enabled: verbose || logDir != "", LogDir: logDir}
	if verbose {
		opts.Level = slog.LevelDebug
	}
	return logger.Init(opts)
}

func parseMode(name string) (spu.Mode, error) {
	switch name {
	case "", "auto":
		return spu.ModeAuto, nil
	case "hardware", "hw":
		return spu.ModeHardware, nil
	case "sim", "simulation":
		return spu.ModeSim, nil
	case "hybrid":
		return spu.ModeHybrid, nil
	default:
		return 0, fmt.Errorf("unknown mode %q (want auto, hardware, sim or hybrid)", name)
	}
}

// clientOptions builds client options from the global flags.
func clientOptions() (spu.Options, error) {
	mode, err := parseMode(modeName)
	if err != nil {
		return spu.Options{}, err
	}
	opts := spu.DefaultOptions()
	opts.Mode = mode
	opts.DevicePath = devicePath
	opts.DeviceOffset = deviceOffset
	opts.Engine.PollTimeout = pollTimeout
	opts.Trace = trace
	opts.Logger = logger.L
	return opts, nil
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
