// Copyright 2024 AlgoChit Network Ltd.
// All rights reserved.
// This material is licensed under the AlgoChit License version 1.0,
// available at https://github.com/algochit/chitfund/blob/master/LICENSE.md.

package store

import (
	"context"

	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("record not found")

// RecordKind partitions the keyed record store. Singleton records (config,
// state) live under their kind with an empty key.
type RecordKind string

const (
	KindConfig RecordKind = "config"
	KindState  RecordKind = "state"
	KindMember RecordKind = "member"
	KindBid    RecordKind = "bid"
)

type Entry struct {
	Key   string
	Value []byte
}

// RecordStore is the durable key->value store the fund state machine writes
// to. Enumerate returns the full set for a kind in one call; continuation
// tokens are not part of the contract.
type RecordStore interface {
	Get(ctx context.Context, kind RecordKind, key string) ([]byte, error)
	Put(ctx context.Context, kind RecordKind, key string, value []byte) error
	Delete(ctx context.Context, kind RecordKind, key string) error
	Enumerate(ctx context.Context, kind RecordKind) ([]Entry, error)
}

// Treasury moves value in and out of the fund's custodial account. Both
// operations are atomic with the enclosing state transition.
type Treasury interface {
	Deposit(ctx context.Context, from string, amount uint64) error
	Transfer(ctx context.Context, to string, amount uint64) error
}

type CallKind string

// CallRecord is one entry of the historical transaction log. Ordinal grows
// monotonically in consensus order.
type CallRecord struct {
	Ordinal uint64
	Sender  string
	Kind    CallKind
	Args    []byte
}

type CallLog interface {
	Append(ctx context.Context, sender string, kind CallKind, args []byte) (uint64, error)
	Search(ctx context.Context, kind CallKind) ([]CallRecord, error)
}
