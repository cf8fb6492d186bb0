package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if err := c.SRS.validate(); err != nil {
		return fmt.Errorf("srs: %w", err)
	}

	if c.Study.BandWidth <= 0 {
		return fmt.Errorf("study: band_width must be > 0 (got %v)", c.Study.BandWidth)
	}
	if c.Study.DefaultQueueSize <= 0 || c.Study.MaxQueueSize <= 0 {
		return fmt.Errorf("study: queue sizes must be > 0 (got %d/%d)", c.Study.DefaultQueueSize, c.Study.MaxQueueSize)
	}
	if c.Study.DefaultQueueSize > c.Study.MaxQueueSize {
		return fmt.Errorf("study: default_queue_size %d exceeds max_queue_size %d", c.Study.DefaultQueueSize, c.Study.MaxQueueSize)
	}

	if c.Placement.MinItems <= 0 || c.Placement.MaxItems < c.Placement.MinItems {
		return fmt.Errorf("placement: invalid item bounds %d..%d", c.Placement.MinItems, c.Placement.MaxItems)
	}
	if c.Placement.TargetSE <= 0 {
		return fmt.Errorf("placement: target_se must be > 0 (got %v)", c.Placement.TargetSE)
	}

	return nil
}

func (s *SRSConfig) validate() error {
	if s.MaxIntervalDays <= 0 {
		return fmt.Errorf("max_interval_days must be > 0 (got %d)", s.MaxIntervalDays)
	}
	if s.HardIntervalFactor < 1 {
		return fmt.Errorf("hard_interval_factor must be >= 1 (got %v)", s.HardIntervalFactor)
	}

	weights, err := ParseWeights(s.WeightsRaw)
	if err != nil {
		return fmt.Errorf("weights: %w", err)
	}
	s.Weights = weights

	steps, err := ParseSteps(s.LearningStepsRaw)
	if err != nil {
		return fmt.Errorf("learning_steps: %w", err)
	}
	if len(steps) == 0 {
		return fmt.Errorf("learning_steps: at least one step required")
	}
	s.LearningSteps = steps

	relearning, err := ParseSteps(s.RelearningStepsRaw)
	if err != nil {
		return fmt.Errorf("relearning_steps: %w", err)
	}
	if len(relearning) == 0 {
		return fmt.Errorf("relearning_steps: at least one step required")
	}
	s.RelearningSteps = relearning

	return nil
}

// ParseWeights parses a comma-separated string of exactly 19 floats.
// An empty string returns nil, meaning the built-in defaults.
func ParseWeights(raw string) (*[19]float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	if len(parts) != 19 {
		return nil, fmt.Errorf("expected 19 weights, got %d", len(parts))
	}

	var weights [19]float64
	for i, p := range parts {
		w, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("weight[%d] %q: %w", i, p, err)
		}
		weights[i] = w
	}

	return &weights, nil
}

// ParseSteps parses a comma-separated string of durations (e.g. "1m,10m")
// into a slice of time.Duration. An empty string returns a nil slice.
func ParseSteps(raw string) ([]time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	steps := make([]time.Duration, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		d, err := time.ParseDuration(p)
		if err != nil {
			return nil, fmt.Errorf("invalid duration %q: %w", p, err)
		}
		steps = append(steps, d)
	}

	return steps, nil
}
