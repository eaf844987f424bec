package config

const (
	defaultOutDir            = "~/labprep"
	defaultMaxPauseDuration  = 1.0
	defaultMaxSegmentLength  = 15.0
	defaultTrainListInterval = 11
	defaultTrainListSelectBy = "segment"
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

var (
	defaultSegmentationPauses = []string{"pau", "sil"}
	defaultValidationPauses   = []string{"pau", "sil"}
	defaultVowels             = []string{"a", "i", "u", "e", "o", "A", "I", "U", "E", "O", "N"}
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	cfg := Config{
		OutDir: defaultOutDir,
		Segmentation: Segmentation{
			MaxPauseDuration: defaultMaxPauseDuration,
			MaxSegmentLength: defaultMaxSegmentLength,
			PauseSymbols:     cloneStrings(defaultSegmentationPauses),
			FailFast:         true,
		},
		Validation: Validation{
			Vowels:       cloneStrings(defaultVowels),
			PauseSymbols: cloneStrings(defaultValidationPauses),
		},
		TrainList: TrainList{
			Interval: defaultTrainListInterval,
			SelectBy: defaultTrainListSelectBy,
		},
		Ledger: Ledger{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
	cfg.deriveTicks()
	return cfg
}

func cloneStrings(values []string) []string {
	out := make([]string, len(values))
	copy(out, values)
	return out
}
