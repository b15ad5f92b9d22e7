// Package config defines process configuration and its layered loading.
package config

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/okian/penrisk/internal/domain/model"
	"github.com/okian/penrisk/internal/domain/shape"
	"github.com/okian/penrisk/pkg/logger"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat is text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory assessment queue.
	QueueSize int `koanf:"queue_size"`
	// WorkerCount sets the number of assessment workers.
	WorkerCount int `koanf:"worker_count"`
	// DedupeSize sets how many submitted session ids are remembered.
	DedupeSize int `koanf:"dedupe_size"`
	// StoreCapacity bounds retained outcomes; 0 keeps everything.
	StoreCapacity int `koanf:"store_capacity"`
	// MaxRecentLimit caps GET /assessments?limit.
	MaxRecentLimit int `koanf:"max_recent_limit"`

	// ModelPath points at scaler/importance/mapping tables. Empty uses the
	// embedded tables.
	ModelPath string `koanf:"model_path"`
	// Blend is the model proxy share of the final probability.
	Blend float64 `koanf:"blend"`
	// BiomarkerShare is the biomarker share of the composite score.
	BiomarkerShare float64 `koanf:"biomarker_share"`

	Requirements   shape.Requirements         `koanf:"requirements"`
	ReferenceShape model.ReferenceShapeConfig `koanf:"reference_shape"`
	Capture        Capture                    `koanf:"capture"`
}

// Capture configures how raw input recordings are turned into sessions.
type Capture struct {
	Smoothing           float64 `koanf:"smoothing"`
	PressureSensitivity float64 `koanf:"pressure_sensitivity"`
	PressureMin         float64 `koanf:"pressure_min"`
	PressureMax         float64 `koanf:"pressure_max"`
	// ConflictPolicy is reject or restart.
	ConflictPolicy string `koanf:"conflict_policy"`
}

// Capture conflict policies.
const (
	ConflictReject  = "reject"
	ConflictRestart = "restart"
)

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:       "info",
		LogFormat:      logger.FormatText,
		Addr:           ":9080",
		QueueSize:      1024,
		WorkerCount:    runtime.NumCPU(),
		DedupeSize:     50_000,
		StoreCapacity:  100_000,
		MaxRecentLimit: 100,
		Blend:          0.5,
		BiomarkerShare: 0.6,
		Requirements:   shape.DefaultRequirements(),
		ReferenceShape: model.ReferenceShapeConfig{Type: model.ShapeCircle},
		Capture: Capture{
			Smoothing:           0.1,
			PressureSensitivity: 1,
			PressureMin:         0.1,
			PressureMax:         1,
			ConflictPolicy:      ConflictReject,
		},
	}
}

// Validate reports every invalid field, wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if c.Addr == "" {
		add("addr must not be empty")
	}
	if c.QueueSize < 1 {
		add("queue_size must be positive, got %d", c.QueueSize)
	}
	if c.WorkerCount < 1 {
		add("worker_count must be positive, got %d", c.WorkerCount)
	}
	if c.MaxRecentLimit < 1 {
		add("max_recent_limit must be positive, got %d", c.MaxRecentLimit)
	}
	if c.Blend < 0 || c.Blend > 1 {
		add("blend must be within [0,1], got %g", c.Blend)
	}
	if c.BiomarkerShare < 0 || c.BiomarkerShare > 1 {
		add("biomarker_share must be within [0,1], got %g", c.BiomarkerShare)
	}
	switch strings.ToLower(c.LogFormat) {
	case logger.FormatText, logger.FormatJSON:
	default:
		add("log_format must be text or json, got %q", c.LogFormat)
	}
	switch c.ReferenceShape.Type {
	case model.ShapeCircle, model.ShapeSquare, model.ShapeTriangle, model.ShapePentagon,
		model.ShapeSpiral, model.ShapeLine, model.ShapeDotGrid, model.ShapeFree:
	default:
		add("unknown reference_shape.type %q", c.ReferenceShape.Type)
	}
	if s := c.Capture.Smoothing; s <= 0 || s > 1 {
		add("capture.smoothing must be within (0,1], got %g", s)
	}
	if c.Capture.PressureSensitivity <= 0 {
		add("capture.pressure_sensitivity must be positive, got %g", c.Capture.PressureSensitivity)
	}
	if c.Capture.PressureMin < 0 || c.Capture.PressureMax > 1 || c.Capture.PressureMax < c.Capture.PressureMin {
		add("capture pressure range [%g,%g] must lie within [0,1]", c.Capture.PressureMin, c.Capture.PressureMax)
	}
	switch c.Capture.ConflictPolicy {
	case ConflictReject, ConflictRestart:
	default:
		add("capture.conflict_policy must be reject or restart, got %q", c.Capture.ConflictPolicy)
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}
