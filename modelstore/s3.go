package modelstore

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go/service/s3/s3manager"

	"parts.dev/tagger/pos"
	"parts.dev/tagger/s3client"
)

const s3Prefix = "models"

type s3Client interface {
	Upload(ctx context.Context, data []byte, key string) (*s3manager.UploadOutput, error)
	Download(ctx context.Context, key string) ([]byte, error)
}

// S3Store keeps models as objects under models/ in the configured bucket.
type S3Store struct {
	client s3Client
}

func NewS3Store(client *s3client.Client) *S3Store {
	return &S3Store{client: client}
}

func s3Key(name string) string {
	return path.Join(s3Prefix, objectName(name))
}

func (s *S3Store) Save(ctx context.Context, name string, model *pos.Model) error {
	if err := validateName(name); err != nil {
		return err
	}
	b, err := encode(model)
	if err != nil {
		return err
	}
	_, err = s.client.Upload(ctx, b, s3Key(name))
	return err
}

func (s *S3Store) Load(ctx context.Context, name string) (*pos.Model, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	b, err := s.client.Download(ctx, s3Key(name))
	if errors.Is(err, s3client.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	return decode(name, b)
}
