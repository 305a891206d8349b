package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parts.dev/tagger/pipeline"
	"parts.dev/tagger/pos"
)

func newTestRequest(t *testing.T) *Request {
	s := pos.Sentence{{Word: "the", Tag: "DT"}, {Word: "dog", Tag: "NN"}}
	model, err := pos.Train([]pos.Sentence{s, s})
	require.NoError(t, err)
	ppln, err := pipeline.NewTagging(model)
	require.NoError(t, err)
	return &Request{Pipeline: ppln}
}

func serve(req *Request, method, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req.ProcessData(rec, httptest.NewRequest(method, "/", strings.NewReader(body)))
	return rec
}

func TestProcessData(t *testing.T) {
	req := newTestRequest(t)

	rec := serve(req, http.MethodPost, `{"id": "42", "words": ["The", "dog"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var res pipeline.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "42", res.ID)
	assert.Equal(t, []pos.TaggedWord{{Word: "the", Tag: "DT"}, {Word: "dog", Tag: "NN"}}, res.Tagged)
	assert.NotEmpty(t, res.Model)

	rec = serve(req, http.MethodPost, `{"text": "the dog"}`)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestProcessDataErrors(t *testing.T) {
	req := newTestRequest(t)

	cases := []struct {
		name   string
		method string
		body   string
		status int
	}{
		{"Wrong method", http.MethodGet, "", http.StatusMethodNotAllowed},
		{"Invalid JSON", http.MethodPost, "the dog", http.StatusBadRequest},
		{"Nothing to tag", http.MethodPost, `{"id": "1", "text": "   "}`, http.StatusBadRequest},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rec := serve(req, c.method, c.body)
			assert.Equal(t, c.status, rec.Code)
			var res errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
			assert.NotEmpty(t, res.Error)
		})
	}
}

func TestProcessDataPipelineError(t *testing.T) {
	req := &Request{Pipeline: func(request pipeline.Request) <-chan pipeline.Result {
		out := make(chan pipeline.Result, 1)
		out <- pipeline.Result{ID: request.ID, Err: errors.New("boom"), Error: "boom"}
		close(out)
		return out
	}}
	rec := serve(req, http.MethodPost, `{"words": ["dog"]}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "boom")

	closed := &Request{Pipeline: func(pipeline.Request) <-chan pipeline.Result {
		out := make(chan pipeline.Result)
		close(out)
		return out
	}}
	rec = serve(closed, http.MethodPost, `{"words": ["dog"]}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
