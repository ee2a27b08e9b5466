// Package config loads the YAML configuration shared by the command-line
// tools. Every setting has a default, so a config file only needs the
// values it changes:
//
//	log_level: info
//	extract:
//	  workers: 0
//	  image_extensions: [.png, .jpg, .jpeg, .bmp, .tiff]
//	  markup_suffix: .hocr
//	  line_image_dir: line_images
//	convert:
//	  train_ratio: 0.9
//	  seed: 42
//	  max_text_length: 0
//	documentai:
//	  project_id: "your-gcp-project-id"
//	  location: "us"
//	  processor_id: "your-processor-id"
//	tesseract:
//	  languages: [eng]
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gardar/ocrtrain/pkg/annotate"
	"github.com/gardar/ocrtrain/pkg/labels"
	"github.com/gardar/ocrtrain/pkg/lines"
)

// Config is the top-level configuration file
type Config struct {
	LogLevel   string           `yaml:"log_level"`
	Extract    ExtractConfig    `yaml:"extract"`
	Convert    ConvertConfig    `yaml:"convert"`
	DocumentAI DocumentAIConfig `yaml:"documentai"`
	Tesseract  TesseractConfig  `yaml:"tesseract"`
}

type ExtractConfig struct {
	Workers         int      `yaml:"workers"` // 0 = one per CPU
	ImageExtensions []string `yaml:"image_extensions"`
	MarkupSuffix    string   `yaml:"markup_suffix"`
	LineImageDir    string   `yaml:"line_image_dir"`
}

type ConvertConfig struct {
	TrainRatio    float64 `yaml:"train_ratio"`
	Seed          uint64  `yaml:"seed"`
	MaxTextLength int     `yaml:"max_text_length"` // 0 = no limit
}

type DocumentAIConfig struct {
	ProjectID   string `yaml:"project_id"`
	Location    string `yaml:"location"`
	ProcessorID string `yaml:"processor_id"`
}

type TesseractConfig struct {
	Languages []string `yaml:"languages"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	extract := lines.DefaultConfig()
	convert := labels.DefaultConvertOptions()
	return &Config{
		LogLevel: "info",
		Extract: ExtractConfig{
			Workers:         extract.Workers,
			ImageExtensions: extract.ImageExtensions,
			MarkupSuffix:    extract.MarkupSuffix,
			LineImageDir:    extract.LineImageDir,
		},
		Convert: ConvertConfig{
			TrainRatio:    convert.TrainRatio,
			Seed:          convert.Seed,
			MaxTextLength: convert.MaxTextLength,
		},
		DocumentAI: DocumentAIConfig{Location: "us"},
		Tesseract:  TesseractConfig{Languages: []string{"eng"}},
	}
}

// Load reads a YAML file over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values that would only fail later in a run
func (c *Config) Validate() error {
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Extract.Workers < 0 {
		return fmt.Errorf("extract.workers must not be negative")
	}
	if len(c.Extract.ImageExtensions) == 0 {
		return fmt.Errorf("extract.image_extensions must not be empty")
	}
	if c.Convert.TrainRatio <= 0 || c.Convert.TrainRatio >= 1 {
		return fmt.Errorf("convert.train_ratio must be between 0 and 1")
	}
	if c.Convert.MaxTextLength < 0 {
		return fmt.Errorf("convert.max_text_length must not be negative")
	}
	return nil
}

// Lines returns the line extractor configuration
func (c *Config) Lines(logger *slog.Logger) lines.Config {
	return lines.Config{
		Workers:         c.Extract.Workers,
		ImageExtensions: c.Extract.ImageExtensions,
		MarkupSuffix:    c.Extract.MarkupSuffix,
		LineImageDir:    c.Extract.LineImageDir,
		Logger:          logger,
	}
}

// ConvertOptions returns the label converter options
func (c *Config) ConvertOptions(logger *slog.Logger) labels.ConvertOptions {
	return labels.ConvertOptions{
		TrainRatio:    c.Convert.TrainRatio,
		MaxTextLength: c.Convert.MaxTextLength,
		Seed:          c.Convert.Seed,
		Logger:        logger,
	}
}

// Annotate returns the Document AI processor settings
func (c *Config) Annotate() annotate.Config {
	return annotate.Config{
		ProjectID:   c.DocumentAI.ProjectID,
		Location:    c.DocumentAI.Location,
		ProcessorID: c.DocumentAI.ProcessorID,
	}
}

// ParseLevel maps a level name to a slog level
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", name)
}

// Logger builds the logger for a command. levelOverride wins over the
// configured level when set.
func (c *Config) Logger(w io.Writer, levelOverride string) (*slog.Logger, error) {
	name := c.LogLevel
	if levelOverride != "" {
		name = levelOverride
	}
	level, err := ParseLevel(name)
	if err != nil {
		return nil, err
	}
	return lines.NewLogger(w, level), nil
}
