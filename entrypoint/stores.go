package main

import (
	"bytes"
	"context"
	"fmt"

	"parts.dev/tagger/modelstore"
	"parts.dev/tagger/pos"
	"parts.dev/tagger/redis"
	"parts.dev/tagger/s3client"
	"parts.dev/tagger/treebank"
	"parts.dev/tagger/types"
)

const (
	storeFile  = "file"
	storeRedis = "redis"
	storeS3    = "s3"
)

func newStore(kind, dir string) (modelstore.Store, error) {
	switch kind {
	case storeFile:
		return modelstore.NewFileStore(dir), nil
	case storeRedis:
		client, err := redis.NewClient(modelstore.ModelsDB)
		if err != nil {
			return nil, err
		}
		return modelstore.NewRedisStore(&client), nil
	case storeS3:
		client, err := s3client.New()
		if err != nil {
			return nil, err
		}
		return modelstore.NewS3Store(client), nil
	}
	return nil, fmt.Errorf("unknown model store %q", kind)
}

func loadCorpus(ctx context.Context, corpus types.CorpusConfig) ([]pos.Sentence, error) {
	switch corpus.Source {
	case types.CorpusSourceFile:
		if corpus.Path == "" {
			return nil, fmt.Errorf("corpus path is required")
		}
		return treebank.LoadFile(corpus.Path)
	case types.CorpusSourceS3:
		client, err := s3client.New()
		if err != nil {
			return nil, err
		}
		defer client.Close()
		b, err := client.Download(ctx, corpus.Path)
		if err != nil {
			return nil, fmt.Errorf("download corpus %q: %w", corpus.Path, err)
		}
		return treebank.Parse(bytes.NewReader(b))
	}
	return nil, fmt.Errorf("unknown corpus source %q", corpus.Source)
}
