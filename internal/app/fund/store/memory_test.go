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

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("get missing", func(t *testing.T) {
		s := NewMemoryStore()
		_, err := s.Get(ctx, KindMember, "alice")
		require.Equal(t, ErrNotFound, err)
	})

	t.Run("put get delete", func(t *testing.T) {
		s := NewMemoryStore()
		require.NoError(t, s.Put(ctx, KindMember, "alice", []byte{0x01}))
		value, err := s.Get(ctx, KindMember, "alice")
		require.NoError(t, err)
		require.Equal(t, []byte{0x01}, value)

		require.NoError(t, s.Delete(ctx, KindMember, "alice"))
		_, err = s.Get(ctx, KindMember, "alice")
		require.Equal(t, ErrNotFound, err)
		require.Equal(t, ErrNotFound, s.Delete(ctx, KindMember, "alice"))
	})

	t.Run("kinds are isolated", func(t *testing.T) {
		s := NewMemoryStore()
		require.NoError(t, s.Put(ctx, KindMember, "alice", []byte{0x01}))
		require.NoError(t, s.Put(ctx, KindBid, "alice", []byte{0x02}))
		value, err := s.Get(ctx, KindBid, "alice")
		require.NoError(t, err)
		require.Equal(t, []byte{0x02}, value)
	})

	t.Run("enumerate is sorted by key", func(t *testing.T) {
		s := NewMemoryStore()
		require.NoError(t, s.Put(ctx, KindBid, "carol", []byte{0x03}))
		require.NoError(t, s.Put(ctx, KindBid, "alice", []byte{0x01}))
		require.NoError(t, s.Put(ctx, KindBid, "bob", []byte{0x02}))
		entries, err := s.Enumerate(ctx, KindBid)
		require.NoError(t, err)
		require.Equal(t, []Entry{
			{Key: "alice", Value: []byte{0x01}},
			{Key: "bob", Value: []byte{0x02}},
			{Key: "carol", Value: []byte{0x03}},
		}, entries)
	})

	t.Run("stored bytes are copied", func(t *testing.T) {
		s := NewMemoryStore()
		value := []byte{0x01}
		require.NoError(t, s.Put(ctx, KindBid, "alice", value))
		value[0] = 0xff
		got, err := s.Get(ctx, KindBid, "alice")
		require.NoError(t, err)
		require.Equal(t, []byte{0x01}, got)
	})
}

func TestMemoryTreasury(t *testing.T) {
	ctx := context.Background()
	treasury := NewMemoryTreasury()

	require.NoError(t, treasury.Deposit(ctx, "alice", 100))
	require.NoError(t, treasury.Deposit(ctx, "bob", 100))
	require.Equal(t, uint64(200), treasury.Balance())

	require.NoError(t, treasury.Transfer(ctx, "bob", 150))
	require.Equal(t, uint64(50), treasury.Balance())
	require.Equal(t, uint64(150), treasury.Received("bob"))

	err := treasury.Transfer(ctx, "alice", 51)
	require.Error(t, err)
	require.Equal(t, uint64(50), treasury.Balance())
	require.Equal(t, uint64(0), treasury.Received("alice"))
}

func TestMemoryCallLog(t *testing.T) {
	ctx := context.Background()
	log := NewMemoryCallLog()

	first, err := log.Append(ctx, "alice", "submitBid", []byte{0x01})
	require.NoError(t, err)
	second, err := log.Append(ctx, "bob", "contribute", []byte{0x02})
	require.NoError(t, err)
	third, err := log.Append(ctx, "bob", "submitBid", []byte{0x03})
	require.NoError(t, err)
	require.True(t, first < second && second < third)

	records, err := log.Search(ctx, "submitBid")
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "alice", records[0].Sender)
	require.Equal(t, "bob", records[1].Sender)
	require.True(t, records[0].Ordinal < records[1].Ordinal)
}
