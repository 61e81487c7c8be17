package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultFPS         = 24
	DefaultDuration    = 2.0
	DefaultPlanFile    = "animation_plan.json"
	DefaultVideoFile   = "animated_preview.mp4"
	DefaultSampleVideo = "sample_preview.mp4"
	DefaultModel       = "gemini-2.5-flash"
	DefaultAddr        = "127.0.0.1:8501"

	EnvAPIKey       = "GEMINI_API_KEY"
	EnvAPIKeyAlt    = "GOOGLE_API_KEY"
	EnvModel        = "ANIMCHAT_MODEL"
	EnvLogLevel     = "ANIMCHAT_LOG_LEVEL"
	EnvOutputDir    = "ANIMCHAT_OUTPUT_DIR"
	EnvAddr         = "ANIMCHAT_ADDR"
	EnvWorkers      = "ANIMCHAT_WORKERS"
	EnvPlaceholder  = "ANIMCHAT_PLACEHOLDER"
	EnvFallbackPlan = "ANIMCHAT_FALLBACK_PLAN"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	OutputDir   string `yaml:"output_dir"`
	OutputVideo string `yaml:"output_video"`
	PlanFile    string `yaml:"plan_file"`
	SampleVideo string `yaml:"sample_video"`
	Placeholder bool   `yaml:"placeholder"`

	Width        int    `yaml:"width"`
	Height       int    `yaml:"height"`
	FPS          int    `yaml:"fps"`
	Workers      int    `yaml:"workers"`
	DPI          int    `yaml:"dpi"`
	VideoEncoder string `yaml:"video_encoder"`
	Quality      int    `yaml:"quality"`
	ShowStats    bool   `yaml:"show_stats"`
	BuildVersion string `yaml:"-"`

	Motion MotionConfig `yaml:"motion"`
	LLM    LLMConfig    `yaml:"llm"`

	Addr     string `yaml:"addr"`
	LogLevel string `yaml:"log_level"`
}

// MotionConfig holds the rates of the four camera motions.
type MotionConfig struct {
	ZoomRate float64 `yaml:"zoom_rate"` // scale change per second
	PanRate  float64 `yaml:"pan_rate"`  // pixels per second
	MinZoom  float64 `yaml:"min_zoom"`  // floor for zoom-out
}

type LLMConfig struct {
	APIKey       string        `yaml:"-"`
	Model        string        `yaml:"model"`
	Temperature  float64       `yaml:"temperature"`
	Timeout      time.Duration `yaml:"timeout"`
	FallbackPlan bool          `yaml:"fallback_plan"`
}

type SegmentParams struct {
	Width, Height int
	FPS           int
	Duration      float64
	Motion        string
	Motions       MotionConfig
	SceneIndex    int
	Filter        string
}

func Default() *Config {
	return &Config{
		OutputDir:   "output",
		OutputVideo: DefaultVideoFile,
		PlanFile:    DefaultPlanFile,
		SampleVideo: DefaultSampleVideo,
		Width:       1280,
		Height:      720,
		FPS:         DefaultFPS,
		Workers:     runtime.NumCPU(),
		DPI:         150,
		Quality:     23,
		Motion: MotionConfig{
			ZoomRate: 0.05,
			PanRate:  40,
			MinZoom:  0.5,
		},
		LLM: LLMConfig{
			Model:        DefaultModel,
			Temperature:  0.7,
			Timeout:      60 * time.Second,
			FallbackPlan: true,
		},
		Addr:     DefaultAddr,
		LogLevel: "info",
	}
}

// Load builds a config from defaults, an optional YAML file and the environment.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	if key := os.Getenv(EnvAPIKey); key != "" {
		c.LLM.APIKey = key
	} else if key := os.Getenv(EnvAPIKeyAlt); key != "" {
		c.LLM.APIKey = key
	}
	if m := os.Getenv(EnvModel); m != "" {
		c.LLM.Model = m
	}
	if ll := os.Getenv(EnvLogLevel); ll != "" {
		c.LogLevel = ll
	}
	if dir := os.Getenv(EnvOutputDir); dir != "" {
		c.OutputDir = dir
	}
	if addr := os.Getenv(EnvAddr); addr != "" {
		c.Addr = addr
	}
	if w := os.Getenv(EnvWorkers); w != "" {
		n, err := strconv.Atoi(w)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, EnvWorkers, err)
		}
		c.Workers = n
	}
	if p := os.Getenv(EnvPlaceholder); p != "" {
		b, err := strconv.ParseBool(p)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, EnvPlaceholder, err)
		}
		c.Placeholder = b
	}
	if f := os.Getenv(EnvFallbackPlan); f != "" {
		b, err := strconv.ParseBool(f)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, EnvFallbackPlan, err)
		}
		c.LLM.FallbackPlan = b
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: frame size %dx%d", ErrInvalidConfig, c.Width, c.Height)
	}
	// yuv420p needs even dimensions
	if c.Width%2 != 0 {
		c.Width++
	}
	if c.Height%2 != 0 {
		c.Height++
	}
	// previews are always encoded at 24 fps
	if c.FPS != DefaultFPS {
		return fmt.Errorf("%w: fps is fixed at %d, got %d", ErrInvalidConfig, DefaultFPS, c.FPS)
	}
	if c.Workers < 1 {
		c.Workers = 1
	}
	if c.Motion.MinZoom <= 0 || c.Motion.MinZoom > 1 {
		return fmt.Errorf("%w: min_zoom must be in (0, 1], got %v", ErrInvalidConfig, c.Motion.MinZoom)
	}
	if c.Motion.ZoomRate < 0 || c.Motion.PanRate < 0 {
		return fmt.Errorf("%w: motion rates must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Presets maps frame presets to output sizes.
var Presets = map[string][2]int{
	"16:9": {1280, 720},
	"9:16": {720, 1280},  // Shorts/TikTok
	"4:5":  {1080, 1350}, // Instagram
}

// ApplyPreset sets the frame size from a named preset. An empty name is a no-op.
func (c *Config) ApplyPreset(name string) error {
	if name == "" {
		return nil
	}
	size, ok := Presets[name]
	if !ok {
		return fmt.Errorf("%w: unknown preset %q (want 16:9, 9:16 or 4:5)", ErrInvalidConfig, name)
	}
	c.Width, c.Height = size[0], size[1]
	return nil
}

// HasAPIKey reports whether the hosted generator can be used.
func (c *Config) HasAPIKey() bool {
	return c.LLM.APIKey != ""
}

func (c *Config) VideoPath() string {
	return filepath.Join(c.OutputDir, c.OutputVideo)
}

func (c *Config) PlanPath() string {
	return filepath.Join(c.OutputDir, c.PlanFile)
}
