package evaluation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parts.dev/tagger/pos"
)

type classifierMock struct {
	tags []string
	err  error
}

func (c classifierMock) Classify(words []string) ([]pos.TaggedWord, error) {
	if c.err != nil {
		return nil, c.err
	}
	tagged := make([]pos.TaggedWord, len(c.tags))
	for i, tag := range c.tags {
		tagged[i] = pos.TaggedWord{Word: words[i%len(words)], Tag: tag}
	}
	return tagged, nil
}

func regularCorpus(n int) []pos.Sentence {
	sentences := make([]pos.Sentence, n)
	for i := range sentences {
		if i%2 == 0 {
			sentences[i] = pos.Sentence{{Word: "the", Tag: "DT"}, {Word: "dog", Tag: "NN"}, {Word: "runs", Tag: "VBZ"}}
		} else {
			sentences[i] = pos.Sentence{{Word: "a", Tag: "DT"}, {Word: "cat", Tag: "NN"}, {Word: "sleeps", Tag: "VBZ"}}
		}
	}
	return sentences
}

func TestSentenceAccuracy(t *testing.T) {
	gold := pos.Sentence{{Word: "the", Tag: "DT"}, {Word: "dog", Tag: "NN"}, {Word: "runs", Tag: "VBZ"}, {Word: "far", Tag: "RB"}}

	acc, err := SentenceAccuracy(classifierMock{tags: []string{"DT", "NN", "VBZ", "RB"}}, gold)
	require.NoError(t, err)
	assert.Equal(t, 1.0, acc)

	acc, err = SentenceAccuracy(classifierMock{tags: []string{"DT", "VB", "VBZ", "JJ"}}, gold)
	require.NoError(t, err)
	assert.Equal(t, 0.5, acc)

	_, err = SentenceAccuracy(classifierMock{tags: []string{"DT"}}, gold)
	assert.ErrorIs(t, err, ErrClassificationCount)

	boom := errors.New("boom")
	_, err = SentenceAccuracy(classifierMock{err: boom}, gold)
	assert.ErrorIs(t, err, boom)

	_, err = SentenceAccuracy(classifierMock{}, nil)
	assert.ErrorIs(t, err, ErrEmptySentence)
}

func TestCrossValidate(t *testing.T) {
	t.Run("Perfectly learnable corpus", testCrossValidatePerfect)
	t.Run("Same seed gives same report", testCrossValidateSeeded)
	t.Run("Invalid folds", testCrossValidateInvalidFolds)
	t.Run("Zero folds uses default", testCrossValidateDefaultFolds)
	t.Run("Not enough sentences", testCrossValidateNotEnoughSentences)
	t.Run("Canceled context", testCrossValidateCanceled)
}

func testCrossValidatePerfect(t *testing.T) {
	corpus := regularCorpus(23)
	report, err := CrossValidate(context.Background(), corpus, Options{Folds: 5, Seed: 7, Parallelism: 2})
	require.NoError(t, err)

	require.Len(t, report.Folds, 5)
	for i, fold := range report.Folds {
		assert.Equal(t, i+1, fold.Fold)
		assert.Equal(t, 4, fold.TestSize)
		assert.Equal(t, 19, fold.TrainSize)
		assert.Equal(t, 1.0, fold.Accuracy)
	}
	assert.Equal(t, 1.0, report.Accuracy)
}

func testCrossValidateSeeded(t *testing.T) {
	corpus := append(regularCorpus(20),
		pos.Sentence{{Word: "the", Tag: "DT"}, {Word: "cat", Tag: "NN"}, {Word: "runs", Tag: "VB"}},
		pos.Sentence{{Word: "dogs", Tag: "NNS"}, {Word: "run", Tag: "VBP"}},
		pos.Sentence{{Word: "runs", Tag: "NNS"}},
	)
	opts := Options{Folds: DefaultFolds, Seed: 42}

	first, err := CrossValidate(context.Background(), corpus, opts)
	require.NoError(t, err)
	second, err := CrossValidate(context.Background(), corpus, opts)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.True(t, first.Accuracy > 0 && first.Accuracy <= 1)
}

func testCrossValidateInvalidFolds(t *testing.T) {
	for _, folds := range []int{-1, 1} {
		_, err := CrossValidate(context.Background(), regularCorpus(10), Options{Folds: folds})
		assert.ErrorIs(t, err, ErrInvalidFolds)
	}
}

func testCrossValidateDefaultFolds(t *testing.T) {
	report, err := CrossValidate(context.Background(), regularCorpus(20), Options{Seed: 1})
	require.NoError(t, err)
	require.Len(t, report.Folds, DefaultFolds)
	for _, fold := range report.Folds {
		assert.Equal(t, 2, fold.TestSize)
		assert.Equal(t, 18, fold.TrainSize)
	}
}

func testCrossValidateNotEnoughSentences(t *testing.T) {
	_, err := CrossValidate(context.Background(), regularCorpus(3), Options{Folds: 4})
	assert.ErrorIs(t, err, ErrNotEnoughSentences)
}

func testCrossValidateCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := CrossValidate(ctx, regularCorpus(10), Options{Folds: 2})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPartition(t *testing.T) {
	corpus := regularCorpus(5)
	test, train := partition(corpus, 1, 3)
	assert.Equal(t, corpus[1:3], test)
	assert.Equal(t, []pos.Sentence{corpus[0], corpus[3], corpus[4]}, train)
}
