package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/go-redis/redis/v8"
	"github.com/kelseyhightower/envconfig"
)

type DB int
type ReleaseLock func() error

var ErrNotFound = errors.New("redis key not found")

type Client struct {
	client         redis.UniversalClient
	lockExpiration time.Duration
}

type Config struct {
	LockExpirationSeconds   int     `envconfig:"PARTS_REDIS_LOCK_EXPIRATION" default:"3"`
	Host                    string  `envconfig:"PARTS_REDIS_HOST" required:"true"`
	Port                    string  `envconfig:"PARTS_REDIS_PORT" required:"true"`
	HASentinelPort          string  `envconfig:"PARTS_REDIS_HA_SENTINEL_PORT" default:"26379"`
	HASentinelMasterName    string  `envconfig:"PARTS_REDIS_HA_MASTER_NAME" default:"mymaster"`
	Password                string  `envconfig:"PARTS_REDIS_AUTH_PASSWORD" default:"0"`
	AuthRequired            bool    `envconfig:"PARTS_REDIS_AUTH_REQUIRED" default:"false"`
	HAMode                  bool    `envconfig:"PARTS_REDIS_HA_MODE" default:"false"`
	HASentinelSocketTimeout float32 `envconfig:"PARTS_REDIS_SOCKET_TIMEOUT" default:"0.5"`
}

func NewClient(db DB) (Client, error) {
	cfg, err := readEnvironment()
	if err != nil {
		return Client{}, err
	}
	var client redis.UniversalClient
	if cfg.HAMode {
		client = CreateClusterClient(cfg, db)
	} else {
		client = CreateClient(cfg, db)
	}
	return NewFromUniversal(client, time.Duration(cfg.LockExpirationSeconds)*time.Second), nil
}

// NewFromUniversal wraps an existing go-redis client.
func NewFromUniversal(client redis.UniversalClient, lockExpiration time.Duration) Client {
	return Client{
		client:         client,
		lockExpiration: lockExpiration,
	}
}

func CreateClusterClient(cfg *Config, db DB) *redis.ClusterClient {
	addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.HASentinelPort)
	timeout := time.Duration(float64(cfg.HASentinelSocketTimeout) * float64(time.Second))
	options := redis.FailoverOptions{
		SentinelAddrs: []string{addr},
		ReadTimeout:   timeout,
		WriteTimeout:  timeout,
		MaxRetries:    6,
		DB:            int(db),
		MasterName:    cfg.HASentinelMasterName,
	}
	if cfg.AuthRequired {
		options.Password = cfg.Password
	}
	return redis.NewFailoverClusterClient(&options)
}

func CreateClient(cfg *Config, db DB) *redis.Client {
	addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)
	options := redis.Options{
		Addr:       addr,
		MaxRetries: 6,
		DB:         int(db),
	}
	if cfg.AuthRequired {
		options.Password = cfg.Password
	}
	return redis.NewClient(&options)
}

func (client *Client) Get(ctx context.Context, redisKey string) ([]byte, error) {
	b, err := client.client.Get(ctx, redisKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, redisKey)
	}
	return b, err
}

// SetLocked writes all values while holding the lock of lockKey, so readers
// never observe half of a multi-key update made by another writer.
func (client *Client) SetLocked(ctx context.Context, lockKey string, values map[string][]byte) (err error) {
	releaseLock, err := client.Lock(ctx, lockKey)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := releaseLock(); err == nil {
			err = releaseErr
		}
	}()

	pipe := client.client.TxPipeline()
	for key, value := range values {
		pipe.Set(ctx, key, value, 0)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (client *Client) Lock(ctx context.Context, redisKey string) (ReleaseLock, error) {
	lockCl := redislock.New(client.client)
	str := redislock.LimitRetry(redislock.LinearBackoff(time.Second), 20)
	lockKey := fmt.Sprintf("lock:%s", redisKey)
	lock, err := lockCl.Obtain(ctx, lockKey, client.lockExpiration, &redislock.Options{RetryStrategy: str})
	if err != nil {
		return nil, err
	}
	return func() error {
		return lock.Release(ctx)
	}, nil
}

func (client *Client) Close() error {
	return client.client.Close()
}

func readEnvironment() (*Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}
