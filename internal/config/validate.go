package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateSegmentation(); err != nil {
		return err
	}
	if err := c.validateValidation(); err != nil {
		return err
	}
	if err := c.validateTrainList(); err != nil {
		return err
	}
	if c.Workers < 0 {
		return errors.New("workers must be >= 0")
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.OutDir) == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/labprep/config.toml"
		}
		return fmt.Errorf("out_dir is required. Edit %s (create with 'labprep config init')", defaultPath)
	}
	return nil
}

func (c *Config) validateSegmentation() error {
	if c.Segmentation.MaxPauseDuration <= 0 {
		return errors.New("segmentation.max_pause_duration must be positive (seconds)")
	}
	if c.Segmentation.MaxSegmentLength <= 0 {
		return errors.New("segmentation.max_segment_length must be positive (seconds)")
	}
	if len(c.Segmentation.PauseSymbols) == 0 {
		return errors.New("segmentation.pause_symbols must include at least one symbol")
	}
	return nil
}

func (c *Config) validateValidation() error {
	switch c.Validation.Strictness {
	case "", "strict", "medium", "lenient":
	default:
		return fmt.Errorf("validation.strictness must be strict, medium, or lenient (got %q)", c.Validation.Strictness)
	}
	if len(c.Validation.Vowels) == 0 {
		return errors.New("validation.vowels must include at least one symbol")
	}
	return nil
}

func (c *Config) validateTrainList() error {
	if c.TrainList.Interval < 5 || c.TrainList.Interval > 20 {
		return fmt.Errorf("train_list.interval must be between 5 and 20, got %d", c.TrainList.Interval)
	}
	switch c.TrainList.SelectBy {
	case "segment", "song":
	default:
		return fmt.Errorf("train_list.select_by must be segment or song (got %q)", c.TrainList.SelectBy)
	}
	return nil
}
