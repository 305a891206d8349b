package pos

import "errors"

var ErrNoTagsAvailable = errors.New("no tags available: tagger was trained on an empty corpus")

// Tagger assigns the most probable tag sequence to a word sequence. It only
// reads its model and is safe for concurrent use.
type Tagger struct {
	model *Model
	tags  []string
}

func NewTagger(model *Model) *Tagger {
	return &Tagger{
		model: model,
		tags:  model.Tags(),
	}
}

// NewTaggerFromSentences trains a model and wraps it in a Tagger.
func NewTaggerFromSentences(sentences []Sentence) (*Tagger, error) {
	model, err := Train(sentences)
	if err != nil {
		return nil, err
	}
	return NewTagger(model), nil
}

func (t *Tagger) Model() *Model {
	return t.model
}

// Decode returns the best path for words, without sentinels, and its score.
// Scores are plain products and can underflow to 0 on very long inputs.
func (t *Tagger) Decode(words []string) (Path, error) {
	return t.decode(words)
}

func (t *Tagger) Classify(words []string) ([]TaggedWord, error) {
	path, err := t.decode(words)
	if err != nil {
		return nil, err
	}
	return path.Words, nil
}
