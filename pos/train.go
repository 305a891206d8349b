package pos

type counts map[string]map[string]int

func (c counts) inc(outer, inner string) {
	row, ok := c[outer]
	if !ok {
		row = map[string]int{}
		c[outer] = row
	}
	row[inner]++
}

func rowTotal(row map[string]int) int {
	total := 0
	for _, n := range row {
		total += n
	}
	return total
}

// Train builds the transition, emission and suffix tables from tagged
// sentences. Malformed records abort training before any table is built.
func Train(sentences []Sentence) (*Model, error) {
	if err := validateSentences(sentences); err != nil {
		return nil, err
	}

	emissions := counts{}
	transitions := counts{}
	suffixes := counts{}
	m := newModel()

	for _, sentence := range sentences {
		augmented := make(Sentence, 0, len(sentence)+2)
		augmented = append(augmented, TaggedWord{Word: StartTag, Tag: StartTag})
		augmented = append(augmented, sentence...)
		augmented = append(augmented, TaggedWord{Word: EndTag, Tag: EndTag})

		for i := 1; i < len(augmented); i++ {
			prev, cur := augmented[i-1], augmented[i]
			emissions.inc(cur.Word, cur.Tag)
			transitions.inc(prev.Tag, cur.Tag)
			m.TagCounts[cur.Tag]++
			for _, suf := range suffixesOf(cur.Word) {
				suffixes.inc(suf, cur.Tag)
			}
		}
	}

	tagSetSize := len(m.TagCounts)
	for tag, row := range transitions {
		total := rowTotal(row)
		probs := make(map[string]float64, len(row))
		for next, n := range row {
			probs[next] = float64(n) / float64(total)
		}
		m.Transitions[tag] = probs
		m.Smoothing[tag] = 1 / float64(tagSetSize+total)
	}

	for word, row := range emissions {
		if rowTotal(row) <= 1 {
			continue
		}
		m.Emissions[word] = m.normalizeByTag(row)
	}

	for suf, row := range suffixes {
		m.Suffixes[suf] = m.normalizeByTag(row)
	}

	return m, nil
}

// normalizeByTag divides by the tag frequency, not by the row total.
func (m *Model) normalizeByTag(row map[string]int) map[string]float64 {
	probs := make(map[string]float64, len(row))
	for tag, n := range row {
		probs[tag] = float64(n) / float64(m.TagCounts[tag])
	}
	return probs
}
