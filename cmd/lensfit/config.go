package main

import (
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/XiaoConstantine/astrofit-go/pkg/errors"
)

// Config describes one pipeline invocation.
type Config struct {
	Pipeline  PipelineConfig  `yaml:"pipeline" validate:"required"`
	Optimizer OptimizerConfig `yaml:"optimizer"`
	Data      DataConfig      `yaml:"data"`
	Results   ResultsConfig   `yaml:"results"`
	LogLevel  string          `yaml:"log_level" validate:"omitempty,oneof=DEBUG INFO WARN ERROR"`
}

type PipelineConfig struct {
	Name   string        `yaml:"name" validate:"required"`
	Stages []StageConfig `yaml:"stages" validate:"required,min=1,dive"`
}

type StageConfig struct {
	LensModels   []string `yaml:"lens_models" validate:"required,min=1"`
	SourceModels []string `yaml:"source_models" validate:"required,min=1"`
}

type OptimizerConfig struct {
	Samples int   `yaml:"samples" validate:"omitempty,min=1"`
	Seed    int64 `yaml:"seed"`
}

type DataConfig struct {
	ImageSize  int     `yaml:"image_size" validate:"omitempty,min=3"`
	PixelScale float64 `yaml:"pixel_scale" validate:"omitempty,gt=0"`
	MaskRadius float64 `yaml:"mask_radius" validate:"omitempty,gt=0"`
}

type ResultsConfig struct {
	Path string `yaml:"path"`
}

var validate = validator.New()

// LoadConfig reads and validates a YAML pipeline config, applying defaults
// for omitted optimizer and data settings.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ResourceNotFound, "reading pipeline config")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ValidationFailed, "parsing pipeline config")
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, errors.Wrap(err, errors.ValidationFailed, "invalid pipeline config")
	}

	if cfg.Optimizer.Samples == 0 {
		cfg.Optimizer.Samples = 500
	}
	if cfg.Data.ImageSize == 0 {
		cfg.Data.ImageSize = 21
	}
	if cfg.Data.PixelScale == 0 {
		cfg.Data.PixelScale = 0.1
	}
	if cfg.Data.MaskRadius == 0 {
		cfg.Data.MaskRadius = 0.8
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "INFO"
	}
	return &cfg, nil
}
