package pipeline

import (
	"parts.dev/tagger/logger"
	"parts.dev/tagger/pos"
	"parts.dev/tagger/utils"
)

type Pipeline func(request Request) <-chan Result

// NewTagging builds a Pipeline around a trained model. The model is identified
// in every result by its fingerprint.
func NewTagging(model *pos.Model) (Pipeline, error) {
	pplnLogger := logger.NewLogger("Tagging pipeline")

	fingerprint, err := model.Fingerprint()
	if err != nil {
		pplnLogger.Err(err).Msg("Failed to fingerprint model")
		return nil, err
	}
	modelID := utils.FormatHash(fingerprint)
	stage := NewPOSTagger(pos.NewTagger(model), modelID)

	pplnLogger.Info().
		Str("model", modelID).
		Int("tags", len(model.TagCounts)).
		Int("words", len(model.Emissions)).
		Msg("Tagging pipeline ready")

	return func(request Request) <-chan Result {
		reqLogger := pplnLogger.With().Str("id", request.ID).Logger()
		reqLogger.Debug().Msg("Started tagging pipeline")

		in := make(chan Request, 1)
		in <- request
		close(in)
		return stage(in)
	}, nil
}
