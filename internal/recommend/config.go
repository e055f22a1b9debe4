// Eventrec - Event Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventrec

package recommend

import (
	"fmt"
)

// Config holds the pipeline parameters.
type Config struct {
	// MinUserActions is the minimum number of canonical adds a user needs
	// to be eligible. Inclusive. Valid range: >= 1.
	MinUserActions int `json:"min_user_actions"`

	// VectorSize is the requested latent rank k. Clamped to
	// min(users, events) - 1 at factorization time. Valid range: >= 1.
	VectorSize int `json:"vector_size"`

	// Threshold is the score an event must strictly exceed to be
	// recommended. Valid range: [0, 1].
	Threshold float64 `json:"threshold"`

	// MaxRecentActionDays is how many days before the as-of date a user's
	// latest add may be. Valid range: >= 1.
	MaxRecentActionDays int `json:"max_recent_action_days"`
}

// DefaultConfig returns the defaults used in production.
func DefaultConfig() *Config {
	return &Config{
		MinUserActions:      5,
		VectorSize:          10,
		Threshold:           0.5,
		MaxRecentActionDays: 30,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.MinUserActions < 1 {
		return fmt.Errorf("min_user_actions must be at least 1, got %d", c.MinUserActions)
	}
	if c.VectorSize < 1 {
		return fmt.Errorf("vector_size must be at least 1, got %d", c.VectorSize)
	}
	if c.Threshold < 0 || c.Threshold > 1 {
		return fmt.Errorf("threshold must be in [0, 1], got %f", c.Threshold)
	}
	if c.MaxRecentActionDays < 1 {
		return fmt.Errorf("max_recent_action_days must be at least 1, got %d", c.MaxRecentActionDays)
	}
	return nil
}

// Params returns the configuration as the parameter map recorded in
// simulation reports.
func (c *Config) Params() map[string]interface{} {
	return map[string]interface{}{
		"min_user_actions":       c.MinUserActions,
		"vector_size":            c.VectorSize,
		"threshold":              c.Threshold,
		"max_recent_action_days": c.MaxRecentActionDays,
	}
}
