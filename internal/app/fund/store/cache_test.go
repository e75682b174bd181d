// Copyright 2024 AlgoChit Network Ltd.
// All rights reserved.
// This material is licensed under the AlgoChit License version 1.0,
// available at https://github.com/algochit/chitfund/blob/master/LICENSE.md.

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// countingCallLog counts backend searches so tests can observe cache hits.
type countingCallLog struct {
	*MemoryCallLog
	searches int
}

func (l *countingCallLog) Search(ctx context.Context, kind CallKind) ([]CallRecord, error) {
	l.searches++
	return l.MemoryCallLog.Search(ctx, kind)
}

func TestCachedCallLog_MemoizesSearch(t *testing.T) {
	ctx := context.Background()
	backend := &countingCallLog{MemoryCallLog: NewMemoryCallLog()}
	cached, err := NewCachedCallLog(backend, 16)
	require.NoError(t, err)

	_, err = cached.Append(ctx, "alice", "submitBid", []byte{0x01})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		records, err := cached.Search(ctx, "submitBid")
		require.NoError(t, err)
		require.Len(t, records, 1)
	}
	require.Equal(t, 1, backend.searches)
}

func TestCachedCallLog_AppendInvalidates(t *testing.T) {
	ctx := context.Background()
	backend := &countingCallLog{MemoryCallLog: NewMemoryCallLog()}
	cached, err := NewCachedCallLog(backend, 16)
	require.NoError(t, err)

	_, err = cached.Append(ctx, "alice", "submitBid", []byte{0x01})
	require.NoError(t, err)
	records, err := cached.Search(ctx, "submitBid")
	require.NoError(t, err)
	require.Len(t, records, 1)

	_, err = cached.Append(ctx, "bob", "submitBid", []byte{0x02})
	require.NoError(t, err)
	records, err = cached.Search(ctx, "submitBid")
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, 2, backend.searches)
}
