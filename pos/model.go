package pos

import (
	"encoding/json"
	"io"
	"sort"

	"parts.dev/tagger/utils"
)

const (
	StartTag = "$start"
	EndTag   = "$end"
)

type TaggedWord struct {
	Word string `json:"word"`
	Tag  string `json:"tag"`
}

type Sentence []TaggedWord

func (s Sentence) Words() []string {
	words := make([]string, len(s))
	for i, w := range s {
		words[i] = w.Word
	}
	return words
}

// Table is a sparse two-level probability table. Missing entries read as 0.
type Table map[string]map[string]float64

func (t Table) Get(outer, inner string) float64 {
	row, ok := t[outer]
	if !ok {
		return 0
	}
	return row[inner]
}

func (t Table) Lookup(outer, inner string) (float64, bool) {
	row, ok := t[outer]
	if !ok {
		return 0, false
	}
	p, ok := row[inner]
	return p, ok
}

// Keys returns the inner keys of a row in ascending order.
func (t Table) Keys(outer string) []string {
	row := t[outer]
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Model holds the tables produced by Train. A Model is never modified after
// training, so it can be shared between any number of readers.
type Model struct {
	Transitions Table              `json:"transitions"`
	Smoothing   map[string]float64 `json:"smoothing"`
	Emissions   Table              `json:"emissions"`
	TagCounts   map[string]int     `json:"tagCounts"`
	Suffixes    Table              `json:"suffixes"`
}

func newModel() *Model {
	return &Model{
		Transitions: Table{},
		Smoothing:   map[string]float64{},
		Emissions:   Table{},
		TagCounts:   map[string]int{},
		Suffixes:    Table{},
	}
}

// Tags returns the tag set in ascending order.
func (m *Model) Tags() []string {
	tags := make([]string, 0, len(m.TagCounts))
	for t := range m.TagCounts {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

func (m *Model) Encode(w io.Writer) error {
	return json.NewEncoder(w).Encode(m)
}

func DecodeModel(r io.Reader) (*Model, error) {
	m := newModel()
	if err := json.NewDecoder(r).Decode(m); err != nil {
		return nil, err
	}
	m.fillEmpty()
	return m, nil
}

// Fingerprint identifies a model by the murmur3 hash of its JSON encoding.
// encoding/json sorts map keys, so equal tables give equal fingerprints.
func (m *Model) Fingerprint() (uint64, error) {
	buf, err := json.Marshal(m)
	if err != nil {
		return 0, err
	}
	return utils.HashBytes(buf), nil
}

func (m *Model) fillEmpty() {
	if m.Transitions == nil {
		m.Transitions = Table{}
	}
	if m.Smoothing == nil {
		m.Smoothing = map[string]float64{}
	}
	if m.Emissions == nil {
		m.Emissions = Table{}
	}
	if m.TagCounts == nil {
		m.TagCounts = map[string]int{}
	}
	if m.Suffixes == nil {
		m.Suffixes = Table{}
	}
}
