// Copyright 2024 AlgoChit Network Ltd.
// All rights reserved.
// This material is licensed under the AlgoChit License version 1.0,
// available at https://github.com/algochit/chitfund/blob/master/LICENSE.md.

package store

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// MemoryStore keeps records in process memory. It stands in for the chain's
// keyed storage in tests and local runs. All methods are safe for concurrent
// use, though the execution model serializes mutating calls anyway.
type MemoryStore struct {
	mu    sync.RWMutex
	kinds map[RecordKind]map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{kinds: make(map[RecordKind]map[string][]byte)}
}

func (s *MemoryStore) Get(ctx context.Context, kind RecordKind, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.kinds[kind][key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (s *MemoryStore) Put(ctx context.Context, kind RecordKind, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	bucket, ok := s.kinds[kind]
	if !ok {
		bucket = make(map[string][]byte)
		s.kinds[kind] = bucket
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	bucket[key] = stored
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, kind RecordKind, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.kinds[kind][key]; !ok {
		return ErrNotFound
	}
	delete(s.kinds[kind], key)
	return nil
}

func (s *MemoryStore) Enumerate(ctx context.Context, kind RecordKind) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bucket := s.kinds[kind]
	entries := make([]Entry, 0, len(bucket))
	for key, value := range bucket {
		out := make([]byte, len(value))
		copy(out, value)
		entries = append(entries, Entry{Key: key, Value: out})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}

// MemoryTreasury tracks the fund's custodial balance. Transfers that would
// overdraw the account fail, leaving the balance untouched.
type MemoryTreasury struct {
	mu      sync.Mutex
	balance uint64
	out     map[string]uint64
}

func NewMemoryTreasury() *MemoryTreasury {
	return &MemoryTreasury{out: make(map[string]uint64)}
}

func (t *MemoryTreasury) Deposit(ctx context.Context, from string, amount uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.balance += amount
	return nil
}

func (t *MemoryTreasury) Transfer(ctx context.Context, to string, amount uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if amount > t.balance {
		return errors.Errorf("insufficient fund balance: have %d, need %d", t.balance, amount)
	}
	t.balance -= amount
	t.out[to] += amount
	return nil
}

// Balance returns the unspent custodial balance, including truncation
// remainders retained after settlements.
func (t *MemoryTreasury) Balance() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.balance
}

// Received returns the total amount transferred to the given account.
func (t *MemoryTreasury) Received(to string) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.out[to]
}

// MemoryCallLog is an append-only in-memory transaction log.
type MemoryCallLog struct {
	mu      sync.RWMutex
	ordinal uint64
	records []CallRecord
}

func NewMemoryCallLog() *MemoryCallLog {
	return &MemoryCallLog{}
}

func (l *MemoryCallLog) Append(ctx context.Context, sender string, kind CallKind, args []byte) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ordinal++
	stored := make([]byte, len(args))
	copy(stored, args)
	l.records = append(l.records, CallRecord{
		Ordinal: l.ordinal,
		Sender:  sender,
		Kind:    kind,
		Args:    stored,
	})
	return l.ordinal, nil
}

func (l *MemoryCallLog) Search(ctx context.Context, kind CallKind) ([]CallRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []CallRecord
	for _, rec := range l.records {
		if rec.Kind == kind {
			out = append(out, rec)
		}
	}
	return out, nil
}
