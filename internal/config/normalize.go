package config

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeSegmentation()
	c.normalizeValidation()
	c.normalizeTrainList()
	c.normalizeLogging()
	c.deriveTicks()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	c.OutDir = strings.Trim(strings.TrimSpace(c.OutDir), `"`)
	if c.OutDir, err = expandPath(c.OutDir); err != nil {
		return fmt.Errorf("out_dir: %w", err)
	}
	if strings.TrimSpace(c.Ledger.Path) != "" {
		if c.Ledger.Path, err = expandPath(c.Ledger.Path); err != nil {
			return fmt.Errorf("ledger.path: %w", err)
		}
	}
	if strings.TrimSpace(c.Logging.Dir) != "" {
		if c.Logging.Dir, err = expandPath(c.Logging.Dir); err != nil {
			return fmt.Errorf("logging.dir: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeSegmentation() {
	c.Segmentation.PauseSymbols = normalizeSymbols(c.Segmentation.PauseSymbols, defaultSegmentationPauses)
}

func (c *Config) normalizeValidation() {
	c.Validation.Strictness = strings.ToLower(strings.TrimSpace(c.Validation.Strictness))
	c.Validation.Vowels = normalizeSymbols(c.Validation.Vowels, defaultVowels)
	c.Validation.PauseSymbols = normalizeSymbols(c.Validation.PauseSymbols, defaultValidationPauses)
}

func (c *Config) normalizeTrainList() {
	c.TrainList.SelectBy = strings.ToLower(strings.TrimSpace(c.TrainList.SelectBy))
	if c.TrainList.SelectBy == "" {
		c.TrainList.SelectBy = defaultTrainListSelectBy
	}
	if c.TrainList.Interval == 0 {
		c.TrainList.Interval = defaultTrainListInterval
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

// deriveTicks performs the single seconds-to-ticks conversion for the
// segmentation thresholds.
func (c *Config) deriveTicks() {
	c.Segmentation.MaxPauseDurationTicks = SecondsToTicks(c.Segmentation.MaxPauseDuration)
	c.Segmentation.MaxSegmentLengthTicks = SecondsToTicks(c.Segmentation.MaxSegmentLength)
}

// normalizeSymbols trims, NFC-normalizes, and de-duplicates symbols while
// keeping case (the recipe distinguishes devoiced "A" from "a").
func normalizeSymbols(values, fallback []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		symbol := norm.NFC.String(strings.TrimSpace(value))
		if symbol == "" {
			continue
		}
		if _, exists := seen[symbol]; exists {
			continue
		}
		seen[symbol] = struct{}{}
		out = append(out, symbol)
	}
	if len(out) == 0 {
		return cloneStrings(fallback)
	}
	return out
}
