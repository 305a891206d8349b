// Package evaluation measures tagging accuracy with k-fold cross validation.
package evaluation

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"runtime"
	"sync"

	"github.com/montanaflynn/stats"

	"parts.dev/tagger/logger"
	"parts.dev/tagger/pos"
)

const DefaultFolds = 10

var (
	ErrInvalidFolds        = errors.New("at least two folds are required")
	ErrNotEnoughSentences  = errors.New("not enough sentences for the requested folds")
	ErrEmptySentence       = errors.New("cannot score an empty sentence")
	ErrClassificationCount = errors.New("classifier returned a different number of words")
)

type Classifier interface {
	Classify(words []string) ([]pos.TaggedWord, error)
}

type Options struct {
	Folds       int
	Seed        int64
	Parallelism int
}

type FoldResult struct {
	Fold      int     `json:"fold"`
	TrainSize int     `json:"train_size"`
	TestSize  int     `json:"test_size"`
	Accuracy  float64 `json:"accuracy"`
}

type Report struct {
	Folds    []FoldResult `json:"folds"`
	Accuracy float64      `json:"accuracy"`
}

// SentenceAccuracy is the share of positions where the classifier agrees with
// the gold tags.
func SentenceAccuracy(classifier Classifier, sentence pos.Sentence) (float64, error) {
	if len(sentence) == 0 {
		return 0, ErrEmptySentence
	}
	tagged, err := classifier.Classify(sentence.Words())
	if err != nil {
		return 0, err
	}
	if len(tagged) != len(sentence) {
		return 0, fmt.Errorf("%w: got %d, want %d", ErrClassificationCount, len(tagged), len(sentence))
	}

	correct := 0
	for i, w := range tagged {
		if w.Tag == sentence[i].Tag {
			correct++
		}
	}
	return float64(correct) / float64(len(sentence)), nil
}

// CrossValidate shuffles the sentences with opts.Seed, splits them into
// opts.Folds (DefaultFolds when zero) test partitions of equal size and trains one tagger per fold on
// everything outside its partition. Sentences left over by the integer
// division are only ever used for training.
func CrossValidate(ctx context.Context, sentences []pos.Sentence, opts Options) (Report, error) {
	evalLogger := logger.NewLogger("Evaluation")

	if opts.Folds == 0 {
		opts.Folds = DefaultFolds
	}
	if opts.Folds < 2 {
		return Report{}, ErrInvalidFolds
	}
	foldSize := len(sentences) / opts.Folds
	if foldSize == 0 {
		return Report{}, fmt.Errorf("%w: %d sentences, %d folds", ErrNotEnoughSentences, len(sentences), opts.Folds)
	}
	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}

	shuffled := make([]pos.Sentence, len(sentences))
	copy(shuffled, sentences)
	rnd := rand.New(rand.NewSource(opts.Seed))
	rnd.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]FoldResult, opts.Folds)
	errs := make([]error, opts.Folds)
	sem := make(chan struct{}, parallelism)
	var wg sync.WaitGroup
	for fold := 0; fold < opts.Folds; fold++ {
		wg.Add(1)
		go func(fold int) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				errs[fold] = ctx.Err()
				return
			}

			test, train := partition(shuffled, fold*foldSize, (fold+1)*foldSize)
			evalLogger.Info().Int("fold", fold+1).Msg("Starting fold")
			res, err := runFold(ctx, train, test)
			if err != nil {
				errs[fold] = fmt.Errorf("fold %d: %w", fold+1, err)
				cancel()
				return
			}
			res.Fold = fold + 1
			results[fold] = res
			evalLogger.Info().
				Int("fold", res.Fold).
				Msgf("Fold %d accuracy: %.2f%%", res.Fold, res.Accuracy*100)
		}(fold)
	}
	wg.Wait()

	if err := firstError(errs); err != nil {
		return Report{}, err
	}

	accuracies := make([]float64, len(results))
	for i, res := range results {
		accuracies[i] = res.Accuracy
	}
	mean, err := stats.Mean(accuracies)
	if err != nil {
		return Report{}, err
	}
	evalLogger.Info().Msgf("Avg. %d-fold accuracy: %.2f%%", opts.Folds, mean*100)

	return Report{Folds: results, Accuracy: mean}, nil
}

func runFold(ctx context.Context, train, test []pos.Sentence) (FoldResult, error) {
	tagger, err := pos.NewTaggerFromSentences(train)
	if err != nil {
		return FoldResult{}, err
	}

	accuracies := make([]float64, 0, len(test))
	for _, sentence := range test {
		if err := ctx.Err(); err != nil {
			return FoldResult{}, err
		}
		if len(sentence) == 0 {
			continue
		}
		acc, err := SentenceAccuracy(tagger, sentence)
		if err != nil {
			return FoldResult{}, err
		}
		accuracies = append(accuracies, acc)
	}

	mean, err := stats.Mean(accuracies)
	if err != nil {
		return FoldResult{}, err
	}
	return FoldResult{
		TrainSize: len(train),
		TestSize:  len(test),
		Accuracy:  mean,
	}, nil
}

// partition returns sentences[from:to] and a fresh slice with everything else.
func partition(sentences []pos.Sentence, from, to int) ([]pos.Sentence, []pos.Sentence) {
	test := sentences[from:to]
	train := make([]pos.Sentence, 0, len(sentences)-len(test))
	train = append(train, sentences[:from]...)
	train = append(train, sentences[to:]...)
	return test, train
}

// firstError prefers a real failure over the cancellations it caused.
func firstError(errs []error) error {
	var canceled error
	for _, err := range errs {
		switch {
		case err == nil:
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			if canceled == nil {
				canceled = err
			}
		default:
			return err
		}
	}
	return canceled
}
