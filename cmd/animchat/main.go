package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ivlev/animchat/internal/config"
	"github.com/ivlev/animchat/internal/effects"
	"github.com/ivlev/animchat/internal/engine"
	"github.com/ivlev/animchat/internal/logging"
	"github.com/ivlev/animchat/internal/system"
	"github.com/ivlev/animchat/internal/video"
)

var version = "dev"

var (
	// Global flags
	configPath  string
	logLevel    string
	outputDir   string
	preset      string
	placeholder bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "animchat",
	Short: "Turn one still image and an animation idea into a motion preview",
	Long: `animchat asks a text generator for a scene plan (a JSON list of timed
camera motions) and renders it over a single uploaded image as an MP4 preview.

Run "animchat serve" for the chat host, or "plan" / "render" for one-shot use.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load .env: %w", err)
		}

		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if err := applyFlags(cmd); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		cfg.BuildVersion = version

		logger, err = logging.New(cfg.LogLevel)
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&outputDir, "output-dir", "", "directory for the plan file, uploads and the preview video")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "frame preset: 16:9, 9:16 (Shorts/TikTok), 4:5 (Instagram)")
	rootCmd.PersistentFlags().BoolVar(&placeholder, "placeholder", false, "copy the sample video instead of encoding")

	rootCmd.AddCommand(serveCmd, planCmd, renderCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// applyFlags lets explicitly set flags win over file and environment values.
func applyFlags(cmd *cobra.Command) error {
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("output-dir") {
		cfg.OutputDir = outputDir
	}
	if flags.Changed("placeholder") {
		cfg.Placeholder = placeholder
	}
	return cfg.ApplyPreset(preset)
}

// newCompositor wires the encoder chosen by the config into a compositor.
func newCompositor() *engine.Compositor {
	comp := engine.NewCompositor(cfg, newEncoder(), &effects.MotionEffect{}, logger.Named("engine"))
	// the sample video has its own length
	if !cfg.Placeholder {
		comp.Probe = system.ProbeDuration
	}
	return comp
}

func newEncoder() video.VideoEncoder {
	if cfg.Placeholder {
		logger.Info("placeholder mode: renders copy the sample video", zap.String("sample", cfg.SampleVideo))
		return video.NewSampleEncoder(cfg.SampleVideo, logger.Named("sample"))
	}

	if err := system.CheckFFmpeg(); err != nil {
		logger.Warn("renders will fail", zap.Error(err))
	}
	if cfg.VideoEncoder == "" {
		cfg.VideoEncoder = system.GetBestH264Encoder()
		if cfg.VideoEncoder != "libx264" {
			logger.Info("hardware acceleration detected", zap.String("encoder", cfg.VideoEncoder))
		}
	}
	if cfg.Quality == 0 {
		switch cfg.VideoEncoder {
		case "h264_videotoolbox":
			cfg.Quality = 75
		case "h264_nvenc":
			cfg.Quality = 28
		default:
			cfg.Quality = 23
		}
	}
	return &video.FFmpegEncoder{}
}
