// Package modelstore persists trained tagger models.
package modelstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"

	"parts.dev/tagger/pos"
)

var (
	ErrModelNotFound    = errors.New("model not found")
	ErrInvalidModelName = errors.New("invalid model name")
)

var modelNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

type Store interface {
	Save(ctx context.Context, name string, model *pos.Model) error
	Load(ctx context.Context, name string) (*pos.Model, error)
}

func validateName(name string) error {
	if !modelNamePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidModelName, name)
	}
	return nil
}

func objectName(name string) string {
	return name + ".model.json"
}

func encode(model *pos.Model) ([]byte, error) {
	var buf bytes.Buffer
	if err := model.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decode(name string, b []byte) (*pos.Model, error) {
	model, err := pos.DecodeModel(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("decode model %q: %w", name, err)
	}
	return model, nil
}
