package pipeline

import (
	"sync"

	"parts.dev/tagger/pos"
	"parts.dev/tagger/utils"
)

// NewPOSTagger returns a stage that tags every request read from in. Requests
// are tagged concurrently, so results may arrive out of order; the output is
// closed once in is closed and every request has been answered.
func NewPOSTagger(tagger *pos.Tagger, modelID string) func(in <-chan Request) <-chan Result {
	return func(in <-chan Request) <-chan Result {
		out := make(chan Result, cap(in))
		go func() {
			defer close(out)
			var wg sync.WaitGroup
			for req := range in {
				wg.Add(1)
				go func(req Request) {
					defer wg.Done()
					out <- tag(tagger, modelID, req)
				}(req)
			}

			wg.Wait()
		}()
		return out
	}
}

func tag(tagger *pos.Tagger, modelID string, req Request) (res Result) {
	res = Result{ID: req.ID, Model: modelID}
	defer func() {
		if res.Err != nil {
			res.Error = res.Err.Error()
		}
	}()
	defer utils.RecoverWithError(&res.Err)

	path, err := tagger.Decode(req.Tokens())
	if err != nil {
		res.Err = err
		return res
	}
	res.Score = path.Score
	res.Tagged = path.Words
	return res
}
