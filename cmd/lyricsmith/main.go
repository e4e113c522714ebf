package main

import (
	"context"
	"fmt"
	"image/color"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/keagan/lyricsmith/internal/config"
	"github.com/keagan/lyricsmith/internal/export"
	"github.com/keagan/lyricsmith/internal/logging"
	"github.com/keagan/lyricsmith/internal/media"
	"github.com/keagan/lyricsmith/internal/render"
	"github.com/keagan/lyricsmith/internal/timeline"
	"github.com/keagan/lyricsmith/pkg/util"
)

var (
	cfgFile string
	verbose bool
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "lyricsmith",
	Short: "lyricsmith - audio-synchronized lyric video renderer",
	Long:  "Renders lyric videos from an audio track, cover art and timed lyrics: spectrum-reactive visuals composited frame by frame and encoded to mp4.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Init(verbose)

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		ctx := config.WithConfig(cmd.Context(), cfg)
		cmd.SetContext(ctx)

		return nil
	},
}

var (
	exportAudio   string
	exportImage   string
	exportLyrics  string
	exportStyle   string
	exportAspect  string
	exportFont    string
	exportPalette []string
	exportTitle   string
	exportCreator string
	exportOutput  string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./lyricsmith.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	exportCmd.Flags().StringVar(&exportAudio, "audio", "", "audio file (mp3, wav, ...)")
	exportCmd.Flags().StringVar(&exportImage, "image", "", "background image (png, jpeg)")
	exportCmd.Flags().StringVar(&exportLyrics, "lyrics", "", "lyric file (.lrc or .json), optional")
	exportCmd.Flags().StringVar(&exportStyle, "style", "classic", "visual style (classic, vinyl, waves, big_text)")
	exportCmd.Flags().StringVar(&exportAspect, "aspect", "16:9", "output aspect ratio (16:9 or 9:16)")
	exportCmd.Flags().StringVar(&exportFont, "font", "a", "font choice (a, b, c)")
	exportCmd.Flags().StringSliceVar(&exportPalette, "palette", []string{"#ff4b6e", "#4b8bff"}, "gradient colors as hex values")
	exportCmd.Flags().StringVar(&exportTitle, "title", "", "song title shown on the video")
	exportCmd.Flags().StringVar(&exportCreator, "creator", "", "creator name shown on the video")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "out.mp4", "output mp4 path")
	_ = exportCmd.MarkFlagRequired("audio")
	_ = exportCmd.MarkFlagRequired("image")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(stylesCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Render a lyric video to mp4",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		for _, path := range []string{exportAudio, exportImage} {
			if !util.FileExists(path) {
				return fmt.Errorf("no such file: %s", path)
			}
		}

		style, err := render.ParseStyle(exportStyle)
		if err != nil {
			return err
		}
		aspect, err := render.ParseAspect(exportAspect)
		if err != nil {
			return err
		}
		font, err := render.ParseFontChoice(exportFont)
		if err != nil {
			return err
		}
		palette, err := parsePalette(exportPalette)
		if err != nil {
			return err
		}

		tl := timeline.New(nil)
		if exportLyrics != "" {
			tl, err = timeline.LoadFile(exportLyrics)
			if err != nil {
				return fmt.Errorf("loading lyrics: %w", err)
			}
		}

		pipe, err := export.New(log.Logger, cfg)
		if err != nil {
			return err
		}

		bar := progressbar.Default(100, "exporting")
		res, err := pipe.Export(cmd.Context(), export.Request{
			AudioPath: exportAudio,
			ImagePath: exportImage,
			Timeline:  tl,
			Title:     exportTitle,
			Creator:   exportCreator,
			Style: render.Config{
				Style:   style,
				Aspect:  aspect,
				Font:    font,
				Palette: palette,
			},
			Output: exportOutput,
			OnProgress: func(p float64) {
				_ = bar.Set(int(p * 100))
			},
		})
		if err != nil {
			return err
		}
		_ = bar.Finish()

		log.Info().
			Str("output", res.OutputPath).
			Dur("duration", res.Duration).
			Int("frames", res.Frames).
			Msg("export complete")

		return nil
	},
}

var probeCmd = &cobra.Command{
	Use:   "probe [audio file]",
	Short: "Show audio metadata",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		exec, err := media.New(log.Logger, cfg.FFmpeg.BinaryPath, cfg.FFmpeg.ProbePath, cfg.FFmpeg.Threads)
		if err != nil {
			return err
		}

		info, err := exec.ProbeAudio(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("file:        %s\n", info.FilePath)
		fmt.Printf("duration:    %s\n", util.FormatDuration(info.Duration))
		fmt.Printf("codec:       %s\n", info.Codec)
		fmt.Printf("sample rate: %d Hz\n", info.SampleRate)
		fmt.Printf("channels:    %d\n", info.Channels)
		if info.Bitrate > 0 {
			fmt.Printf("bitrate:     %d b/s\n", info.Bitrate)
		}

		return nil
	},
}

var stylesCmd = &cobra.Command{
	Use:   "styles",
	Short: "List available visual styles",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, s := range render.Styles() {
			fmt.Println(s)
		}
		return nil
	},
}

// parsePalette converts hex color strings ("#ff4b6e" or "ff4b6e") into
// gradient stops.
func parsePalette(hexes []string) ([]color.NRGBA, error) {
	palette := make([]color.NRGBA, 0, len(hexes))
	for _, h := range hexes {
		trimmed := strings.TrimPrefix(strings.TrimSpace(h), "#")
		if len(trimmed) != 6 {
			return nil, fmt.Errorf("invalid palette color %q: want 6 hex digits", h)
		}
		v, err := strconv.ParseUint(trimmed, 16, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid palette color %q: %w", h, err)
		}
		palette = append(palette, color.NRGBA{
			R: uint8(v >> 16),
			G: uint8(v >> 8),
			B: uint8(v),
			A: 255,
		})
	}
	return palette, nil
}
