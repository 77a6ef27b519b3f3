// Command wavescope is a desktop audio player with a zoomable waveform
// position display. Click or drag on the waveform to seek.
package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"wavescope/internal/waveapp"
)

var (
	flagFile     string
	flagLogLevel string
	flagTraceLog bool
)

var rootCmd = &cobra.Command{
	Use:   "wavescope [file]",
	Short: "Audio player with a zoomable waveform position view",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		setupLogging()
		if len(args) == 1 {
			flagFile = args[0]
		}
		waveapp.SetTraceLogEnabled(flagTraceLog)
		a := waveapp.NewApp()
		if flagFile != "" {
			a.OpenOnStart(flagFile)
		}
		a.Run()
		return nil
	},
}

func setupLogging() {
	level, err := zerolog.ParseLevel(flagLogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	if flagTraceLog {
		level = zerolog.TraceLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
}

func main() {
	rootCmd.Flags().StringVarP(&flagFile, "file", "f", "", "audio file to open on startup")
	rootCmd.Flags().StringVar(&flagLogLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")
	rootCmd.Flags().BoolVar(&flagTraceLog, "trace-log", false, "enable verbose playback tracing")
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
