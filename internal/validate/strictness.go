package validate

import "fmt"

// Strictness selects the sigma multiplier k used by the drift checks.
type Strictness string

const (
	// StrictnessDefault lets each check fall back to its own default.
	StrictnessDefault Strictness = ""
	Strict            Strictness = "strict"
	Medium            Strictness = "medium"
	Lenient           Strictness = "lenient"
)

// ParseStrictness validates a configured strictness name.
func ParseStrictness(value string) (Strictness, error) {
	switch s := Strictness(value); s {
	case StrictnessDefault, Strict, Medium, Lenient:
		return s, nil
	}
	return "", fmt.Errorf("unknown strictness %q (want strict, medium, or lenient)", value)
}

// OffsetK is the multiplier for the leading silence check; medium by default.
func (s Strictness) OffsetK() int64 {
	switch s {
	case Strict:
		return 5
	case Lenient:
		return 7
	default:
		return 6
	}
}

// VowelK is the multiplier for the vowel duration check; lenient by default.
func (s Strictness) VowelK() int64 {
	switch s {
	case Strict:
		return 4
	case Medium:
		return 5
	default:
		return 6
	}
}
