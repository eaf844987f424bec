package validate

// Symbols is a set of phoneme symbols.
type Symbols map[string]struct{}

// NewSymbols builds a set from a list.
func NewSymbols(values ...string) Symbols {
	set := make(Symbols, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// Has reports membership.
func (s Symbols) Has(symbol string) bool {
	_, ok := s[symbol]
	return ok
}

// DefaultVowels are the vowel symbols of the Japanese singing phoneme set,
// including devoiced vowels and the moraic nasal.
func DefaultVowels() Symbols {
	return NewSymbols("a", "i", "u", "e", "o", "A", "I", "U", "E", "O", "N")
}

// DefaultPauses are the symbols that exclude a preceding vowel from the
// drift checks. Callers that treat closures as rests add "cl".
func DefaultPauses() Symbols {
	return NewSymbols("pau", "sil")
}
