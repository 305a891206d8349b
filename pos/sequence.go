package pos

import "sort"

// Path is a tagged prefix of the input together with its cumulative score.
type Path struct {
	Words []TaggedWord
	Score float64
}

func (p *Path) ExpandFrom(src Path, word TaggedWord, score float64) {
	p.Words = make([]TaggedWord, len(src.Words)+1)
	copy(p.Words, src.Words)
	p.Words[len(p.Words)-1] = word
	p.Score = score
}

func (p Path) lastTag() string {
	return p.Words[len(p.Words)-1].Tag
}

// sortedPaths flattens a frontier into ascending order of the ending tag.
func sortedPaths(frontier map[string]Path) []Path {
	tags := make([]string, 0, len(frontier))
	for tag := range frontier {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	paths := make([]Path, len(tags))
	for i, tag := range tags {
		paths[i] = frontier[tag]
	}
	return paths
}
