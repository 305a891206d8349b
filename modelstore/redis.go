package modelstore

import (
	"context"
	"errors"
	"fmt"

	"parts.dev/tagger/logger"
	"parts.dev/tagger/pos"
	"parts.dev/tagger/redis"
	"parts.dev/tagger/utils"
)

const ModelsDB redis.DB = 0

type redisClient interface {
	Get(ctx context.Context, redisKey string) ([]byte, error)
	SetLocked(ctx context.Context, lockKey string, values map[string][]byte) error
}

// RedisStore keeps models under "model:<name>" next to their fingerprint.
type RedisStore struct {
	client redisClient
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func modelKey(name string) string {
	return fmt.Sprintf("model:%s", name)
}

func fingerprintKey(name string) string {
	return fmt.Sprintf("model:%s:fingerprint", name)
}

func (s *RedisStore) Save(ctx context.Context, name string, model *pos.Model) error {
	if err := validateName(name); err != nil {
		return err
	}
	b, err := encode(model)
	if err != nil {
		return err
	}
	hash, err := model.Fingerprint()
	if err != nil {
		return err
	}
	fingerprint := utils.FormatHash(hash)

	storeLogger := logger.NewLogger("RedisModelStore")
	storeLogger.Info().Str("model", name).Str("fingerprint", fingerprint).Msg("Publishing model")
	return s.client.SetLocked(ctx, modelKey(name), map[string][]byte{
		modelKey(name):       b,
		fingerprintKey(name): []byte(fingerprint),
	})
}

func (s *RedisStore) Load(ctx context.Context, name string) (*pos.Model, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	b, err := s.client.Get(ctx, modelKey(name))
	if errors.Is(err, redis.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	return decode(name, b)
}
