package config

import (
	"gopkg.in/yaml.v3"
)

// recipeConfig is the subset of a training recipe's config.yaml that labprep
// understands. Unknown keys (model and training settings) are ignored.
type recipeConfig struct {
	OutDir           *string  `yaml:"out_dir"`
	MaxPauseDuration *float64 `yaml:"max_pause_duration"`
	MaxSegmentLength *float64 `yaml:"max_segment_length"`
	PauseSymbols     []string `yaml:"pause_symbols"`
	Workers          *int     `yaml:"workers"`
	Stage0           struct {
		VowelDurationCheck string `yaml:"vowel_duration_check"`
	} `yaml:"stage0"`
}

func decodeRecipeYAML(data []byte, cfg *Config) error {
	var recipe recipeConfig
	if err := yaml.Unmarshal(data, &recipe); err != nil {
		return err
	}
	if recipe.OutDir != nil {
		cfg.OutDir = *recipe.OutDir
	}
	if recipe.MaxPauseDuration != nil {
		cfg.Segmentation.MaxPauseDuration = *recipe.MaxPauseDuration
	}
	if recipe.MaxSegmentLength != nil {
		cfg.Segmentation.MaxSegmentLength = *recipe.MaxSegmentLength
	}
	if len(recipe.PauseSymbols) > 0 {
		cfg.Segmentation.PauseSymbols = recipe.PauseSymbols
	}
	if recipe.Workers != nil {
		cfg.Workers = *recipe.Workers
	}
	if recipe.Stage0.VowelDurationCheck != "" {
		cfg.Validation.Strictness = recipe.Stage0.VowelDurationCheck
	}
	return nil
}
