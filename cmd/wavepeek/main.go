// Command wavepeek renders an audio file's waveform to a PNG without opening
// a window. Useful for previews and for checking what wavescope will draw.
package main

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"wavescope/internal/config"
	"wavescope/internal/decode"
	"wavescope/internal/thumbnail"
)

var (
	flagOut    string
	flagWidth  int
	flagHeight int
	flagBG     string
	flagWF     string
)

var rootCmd = &cobra.Command{
	Use:   "wavepeek <file>",
	Short: "Render an audio file's waveform to a PNG",
	Args:  cobra.ExactArgs(1),
	RunE:  run,
}

func run(cmd *cobra.Command, args []string) error {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	path := args[0]
	bg, err := config.ParseHexColor(flagBG)
	if err != nil {
		return fmt.Errorf("invalid --bg: %w", err)
	}
	wf, err := config.ParseHexColor(flagWF)
	if err != nil {
		return fmt.Errorf("invalid --wf: %w", err)
	}

	samples, info, err := decode.ReadMono(path)
	if err != nil {
		return err
	}
	log.Info().
		Str("file", path).
		Float64("sampleRate", info.SampleRate).
		Int("frames", info.Frames).
		Str("length", fmt.Sprintf("%.2fs", info.LengthSeconds)).
		Msg("decoded")

	img := thumbnail.RenderWaveform(samples, flagWidth, flagHeight, bg, wf)

	out := flagOut
	if out == "" {
		out = strings.TrimSuffix(path, filepath.Ext(path)) + ".png"
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return err
	}
	log.Info().Str("out", out).Int("width", flagWidth).Int("height", flagHeight).Msg("written")
	return nil
}

func main() {
	rootCmd.Flags().StringVarP(&flagOut, "out", "o", "", "output PNG path (default: input with .png extension)")
	rootCmd.Flags().IntVarP(&flagWidth, "width", "W", 1024, "image width in pixels")
	rootCmd.Flags().IntVarP(&flagHeight, "height", "H", 256, "image height in pixels")
	rootCmd.Flags().StringVar(&flagBG, "bg", config.DefaultBackgroundColor, "background color (#RRGGBB)")
	rootCmd.Flags().StringVar(&flagWF, "wf", config.DefaultWaveformColor, "waveform color (#RRGGBB)")
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("wavepeek failed")
		os.Exit(1)
	}
}
