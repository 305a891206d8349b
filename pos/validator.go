package pos

import (
	"errors"
	"fmt"
)

var ErrMalformedRecord = errors.New("malformed training record")

func validateSentences(sentences []Sentence) error {
	for si, sentence := range sentences {
		for wi, w := range sentence {
			switch {
			case w.Word == "":
				return fmt.Errorf("%w: sentence %d, position %d: missing word", ErrMalformedRecord, si, wi)
			case w.Tag == "":
				return fmt.Errorf("%w: sentence %d, position %d: missing tag for %q", ErrMalformedRecord, si, wi, w.Word)
			}
		}
	}
	return nil
}
