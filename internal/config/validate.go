package config

import (
	"errors"
	"fmt"
	"path/filepath"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateMatching(); err != nil {
		return err
	}
	if c.Backfill.SampleSize < 0 {
		return errors.New("backfill.sample_size must be >= 0")
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.Database == "" {
		return errors.New("paths.database must be set")
	}
	if c.Paths.ReferenceDir == "" {
		return errors.New("paths.reference_dir must be set")
	}
	if _, err := filepath.Match(c.Paths.ReferenceGlob, "probe.csv"); err != nil {
		return fmt.Errorf("paths.reference_glob: %w", err)
	}
	return nil
}

func (c *Config) validateMatching() error {
	m := c.Matching
	if m.FuzzyCandidateThreshold <= 0 || m.FuzzyCandidateThreshold > 1 {
		return errors.New("matching.fuzzy_candidate_threshold must be within (0, 1]")
	}
	if m.FuzzyAcceptThreshold <= 0 || m.FuzzyAcceptThreshold > 1 {
		return errors.New("matching.fuzzy_accept_threshold must be within (0, 1]")
	}
	if m.FuzzyCandidateThreshold > m.FuzzyAcceptThreshold {
		return errors.New("matching.fuzzy_candidate_threshold must not exceed matching.fuzzy_accept_threshold")
	}
	return nil
}
