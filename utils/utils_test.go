package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHash(t *testing.T) {
	assert.Equal(t, HashBytes([]byte("tagger")), HashBytes([]byte("tag"), []byte("ger")))
	assert.NotEqual(t, HashBytes([]byte("tagger")), HashBytes([]byte("Tagger")))
	assert.Equal(t, "ff", FormatHash(255))
}

func TestRecoverWithError(t *testing.T) {
	run := func(fn func()) (err error) {
		defer RecoverWithError(&err)
		fn()
		return nil
	}

	assert.NoError(t, run(func() {}))
	err := run(func() { panic(errors.New("boom")) })
	assert.EqualError(t, err, "got panic: boom")
}
