package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"parts.dev/tagger/pipeline"
)

const maxBodySize = 1 << 20

type Request struct {
	Pipeline pipeline.Pipeline
}

type errorResponse struct {
	Error string `json:"error"`
}

// ProcessData tags the words of a JSON encoded pipeline.Request.
func (req *Request) ProcessData(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	logger := makeRequestLogger(r)

	if r.Method != http.MethodPost {
		logger.Err(nil).Int("status", http.StatusMethodNotAllowed).Msg("Only 'POST' method is allowed here")
		writeError(w, http.StatusMethodNotAllowed, "only POST is allowed")
		return
	}

	msg, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		logger.Err(err).Int("status", http.StatusBadRequest).Msg("Could not read request body")
		writeError(w, http.StatusBadRequest, "could not read request body")
		return
	}

	var request pipeline.Request
	if err := json.Unmarshal(msg, &request); err != nil {
		logger.Err(err).Int("status", http.StatusBadRequest).Msg("Could not parse request body")
		writeError(w, http.StatusBadRequest, "request body must be a JSON object with 'words' or 'text'")
		return
	}
	if len(request.Tokens()) == 0 {
		logger.Err(errors.New("empty request")).Int("status", http.StatusBadRequest).Msg("Nothing to tag")
		writeError(w, http.StatusBadRequest, "nothing to tag")
		return
	}

	logger.Info().Str("id", request.ID).Msg("Starting pipeline for request from API")
	resp, ok := <-req.Pipeline(request)
	if !ok {
		logger.Error().Int("status", http.StatusInternalServerError).Msg("Pipeline channel was closed before returning anything")
		writeError(w, http.StatusInternalServerError, "no result")
		return
	}
	if resp.Err != nil {
		logger.Err(resp.Err).Int("status", http.StatusInternalServerError).Msg("Pipeline failed")
		writeError(w, http.StatusInternalServerError, resp.Error)
		return
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
	logger.Info().Int("status", http.StatusOK).Msg("Finished processing request")
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: msg})
}
