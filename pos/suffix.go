package pos

const suffixLength = 4

// SuffixWeights weights suffixes of length 1..4 when estimating the emission
// of an unseen word.
var SuffixWeights = [suffixLength]float64{0.05, 0.15, 0.5, 0.3}

// suffix returns the last n runes of lex, or lex itself when it is shorter.
func suffix(lex []rune, n int) string {
	idx := len(lex) - n
	if idx < 0 {
		idx = 0
	}
	return string(lex[idx:])
}

// suffixesOf returns the distinct suffixes of length 1..4 of a word. Words
// shorter than four runes yield one suffix per rune.
func suffixesOf(word string) []string {
	lex := []rune(word)
	n := len(lex)
	if n > suffixLength {
		n = suffixLength
	}
	suffs := make([]string, n)
	for li := 0; li < n; li++ {
		suffs[li] = suffix(lex, li+1)
	}
	return suffs
}

// EstimateEmission scores a word/tag pair from suffix statistics. Suffix
// lengths beyond the word length fall back to the whole word.
func (m *Model) EstimateEmission(word, tag string) float64 {
	lex := []rune(word)
	probability := 0.0
	for li, weight := range SuffixWeights {
		probability += weight * m.Suffixes.Get(suffix(lex, li+1), tag)
	}
	return probability
}
