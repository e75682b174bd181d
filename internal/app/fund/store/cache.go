// Copyright 2024 AlgoChit Network Ltd.
// All rights reserved.
// This material is licensed under the AlgoChit License version 1.0,
// available at https://github.com/algochit/chitfund/blob/master/LICENSE.md.

package store

import (
	"context"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
)

// CachedCallLog memoizes Search results per call kind. Appending a call of a
// kind drops that kind's cached result, so readers never observe a stale log
// through this wrapper.
type CachedCallLog struct {
	backend CallLog
	cache   *lru.Cache
}

func NewCachedCallLog(backend CallLog, size int) (*CachedCallLog, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, errors.Wrap(err, "failed to init cache")
	}
	return &CachedCallLog{
		backend: backend,
		cache:   cache,
	}, nil
}

func (c *CachedCallLog) Append(ctx context.Context, sender string, kind CallKind, args []byte) (uint64, error) {
	ordinal, err := c.backend.Append(ctx, sender, kind, args)
	if err != nil {
		return 0, err
	}
	c.cache.Remove(kind)
	return ordinal, nil
}

func (c *CachedCallLog) Search(ctx context.Context, kind CallKind) ([]CallRecord, error) {
	if cached, ok := c.cache.Get(kind); ok {
		return cached.([]CallRecord), nil
	}
	records, err := c.backend.Search(ctx, kind)
	if err != nil {
		return nil, err
	}
	c.cache.Add(kind, records)
	return records, nil
}
