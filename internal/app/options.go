package service

import (
	"github.com/okian/penrisk/internal/domain/model"
	"github.com/okian/penrisk/internal/domain/scoring"
	"github.com/okian/penrisk/internal/domain/shape"
	"github.com/okian/penrisk/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of assessment workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of queued sessions.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many submitted session ids are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithStoreCapacity bounds how many outcomes are retained.
func WithStoreCapacity(capacity int) Option {
	return func(s *Service) {
		s.storeCapacity = capacity
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithModel sets the model proxy. Without it the embedded tables are used.
func WithModel(m *scoring.Model) Option {
	return func(s *Service) {
		if m != nil {
			s.model = m
		}
	}
}

// WithRequirements sets the minimums a session must meet.
func WithRequirements(req shape.Requirements) Option {
	return func(s *Service) {
		s.requirements = req
	}
}

// WithReferenceShape sets the shape drawings are validated against.
func WithReferenceShape(cfg model.ReferenceShapeConfig) Option {
	return func(s *Service) {
		if cfg.Type != "" {
			s.reference = cfg
		}
	}
}

// WithBlend sets the share of the model proxy in the final probability.
func WithBlend(blend float64) Option {
	return func(s *Service) {
		s.engineOpts = append(s.engineOpts, scoring.WithBlend(blend))
	}
}

// WithBiomarkerShare sets the biomarker share of the composite score.
func WithBiomarkerShare(share float64) Option {
	return func(s *Service) {
		s.engineOpts = append(s.engineOpts, scoring.WithBiomarkerShare(share))
	}
}
