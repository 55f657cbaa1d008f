// Package config loads and validates precision plugin settings.
package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ClipAlgorithm selects how gradients are clipped.
type ClipAlgorithm string

// Supported clipping algorithms.
const (
	ClipByNorm  ClipAlgorithm = "norm"
	ClipByValue ClipAlgorithm = "value"
)

// DefaultEpsilon guards the clip coefficient against division by zero.
const DefaultEpsilon = 1e-6

// NormType is the p of the p-norm used for clipping. It unmarshals from a
// number or from the strings "inf" / "infinity".
type NormType float64

// UnmarshalYAML implements yaml.Unmarshaler.
func (n *NormType) UnmarshalYAML(value *yaml.Node) error {
	switch strings.ToLower(strings.TrimSpace(value.Value)) {
	case "inf", "+inf", "infinity", ".inf", "+.inf":
		*n = NormType(math.Inf(1))
		return nil
	}
	f, err := strconv.ParseFloat(value.Value, 64)
	if err != nil {
		return fmt.Errorf("norm_type %q: %w", value.Value, err)
	}
	*n = NormType(f)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (n NormType) MarshalYAML() (interface{}, error) {
	if math.IsInf(float64(n), 1) {
		return "inf", nil
	}
	return float64(n), nil
}

// Config holds the precision plugin settings.
type Config struct {
	Precision             int           `yaml:"precision"`
	GradientClipVal       *float64      `yaml:"gradient_clip_val"`
	GradientClipAlgorithm ClipAlgorithm `yaml:"gradient_clip_algorithm"`
	NormType              NormType      `yaml:"norm_type"`
	Epsilon               float64       `yaml:"epsilon"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Default returns a full-precision configuration with clipping disabled.
func Default() Config {
	return Config{
		Precision:             32,
		GradientClipAlgorithm: ClipByNorm,
		NormType:              2,
		Epsilon:               DefaultEpsilon,
		LogLevel:              "info",
		LogFormat:             "console",
	}
}

// Load reads a YAML file, filling unset fields from Default, and validates it.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML bytes on top of Default and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the plugin cannot use.
func (c *Config) Validate() error {
	if c.Precision != 32 && c.Precision != 64 {
		return fmt.Errorf("invalid precision: %d (must be 32 or 64)", c.Precision)
	}
	if c.GradientClipVal != nil && math.IsNaN(*c.GradientClipVal) {
		return fmt.Errorf("invalid gradient_clip_val: NaN")
	}
	switch c.GradientClipAlgorithm {
	case ClipByNorm, ClipByValue:
	default:
		return fmt.Errorf("invalid gradient_clip_algorithm: %q (must be %q or %q)",
			c.GradientClipAlgorithm, ClipByNorm, ClipByValue)
	}
	p := float64(c.NormType)
	if math.IsNaN(p) || p <= 0 {
		return fmt.Errorf("invalid norm_type: %v (must be positive or inf)", p)
	}
	if c.Epsilon <= 0 || math.IsInf(c.Epsilon, 0) || math.IsNaN(c.Epsilon) {
		return fmt.Errorf("invalid epsilon: %v (must be positive and finite)", c.Epsilon)
	}
	return nil
}

// ClipEnabled reports whether the configuration asks for clipping.
func (c *Config) ClipEnabled() bool {
	return c.GradientClipVal != nil && *c.GradientClipVal > 0
}
