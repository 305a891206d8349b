package pos

// decode keeps the single best path into every tag at each position. Paths
// and candidate tags are visited in ascending tag order and an entry is only
// replaced by a strictly higher score, so ties go to the earliest
// (predecessor, tag) pair in that order.
func (t *Tagger) decode(words []string) (Path, error) {
	sequence := make([]string, 0, len(words)+1)
	sequence = append(sequence, words...)
	sequence = append(sequence, EndTag)

	frontier := []Path{{
		Words: []TaggedWord{{Word: StartTag, Tag: StartTag}},
		Score: 1,
	}}

	for _, word := range sequence {
		candidates := t.candidates(word)
		if len(candidates) == 0 {
			return Path{}, ErrNoTagsAvailable
		}

		next := make(map[string]Path, len(candidates))
		for _, path := range frontier {
			prevTag := path.lastTag()
			bigramBase := t.model.Smoothing[prevTag]

			for _, tag := range candidates {
				wordScore, ok := t.model.Emissions.Lookup(word, tag)
				if !ok {
					wordScore = t.model.EstimateEmission(word, tag)
				}
				bigramScore := bigramBase + t.model.Transitions.Get(prevTag, tag)
				score := path.Score * wordScore * bigramScore

				if best, seen := next[tag]; seen && score <= best.Score {
					continue
				}
				var ns Path
				ns.ExpandFrom(path, TaggedWord{Word: word, Tag: tag}, score)
				next[tag] = ns
			}
		}
		frontier = sortedPaths(next)
	}

	best := frontier[0]
	for _, path := range frontier[1:] {
		if path.Score > best.Score {
			best = path
		}
	}

	// drop $start and $end
	best.Words = best.Words[1 : len(best.Words)-1]
	return best, nil
}

func (t *Tagger) candidates(word string) []string {
	if _, ok := t.model.Emissions[word]; ok {
		return t.model.Emissions.Keys(word)
	}
	return t.tags
}
