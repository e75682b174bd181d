// Copyright 2024 AlgoChit Network Ltd.
// All rights reserved.
// This material is licensed under the AlgoChit License version 1.0,
// available at https://github.com/algochit/chitfund/blob/master/LICENSE.md.

package collecting

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/algochit/chitfund/internal/app/fund"
	"github.com/algochit/chitfund/internal/app/fund/store"
	"github.com/algochit/chitfund/observability"
)

type settlerFixture struct {
	machine  *fund.Machine
	settler  *Settler
	records  *store.MemoryStore
	treasury *store.MemoryTreasury
}

// runningFund wires a settler over a two-member fund in its first cycle:
// contribution 100000, commission 5%, two cycles, both members contributed.
func runningFund(t *testing.T) *settlerFixture {
	ctx := context.Background()
	obs := observability.Make(logrus.New())
	records := store.NewMemoryStore()
	treasury := store.NewMemoryTreasury()
	calls := store.NewMemoryCallLog()
	machine := fund.NewMachine(obs, records, treasury, calls)

	_, err := machine.Configure(ctx, "manager", 100000, 5, 2)
	require.NoError(t, err)
	_, err = machine.AddMember(ctx, "manager", "alice")
	require.NoError(t, err)
	_, err = machine.AddMember(ctx, "manager", "bob")
	require.NoError(t, err)
	_, err = machine.Start(ctx, "manager")
	require.NoError(t, err)
	_, err = machine.Contribute(ctx, "alice", 100000)
	require.NoError(t, err)
	_, err = machine.Contribute(ctx, "bob", 100000)
	require.NoError(t, err)

	collector := NewBidCollector(obs, records, calls)
	return &settlerFixture{
		machine:  machine,
		settler:  NewSettler(obs, machine, collector, 1000, 1000),
		records:  records,
		treasury: treasury,
	}
}

func TestSettler_Budget(t *testing.T) {
	ctx := context.Background()
	f := runningFund(t)
	roster := []string{"alice", "bob"}

	t.Run("commission leg included", func(t *testing.T) {
		budget, err := f.settler.Budget(ctx, "bob", 20, roster)
		require.NoError(t, err)
		require.Equal(t, 3, budget.Transfers)
		require.Equal(t, uint64(4000), budget.Fee)
	})

	t.Run("zero discount drops the commission leg", func(t *testing.T) {
		budget, err := f.settler.Budget(ctx, "bob", 0, roster)
		require.NoError(t, err)
		require.Equal(t, 2, budget.Transfers)
		require.Equal(t, uint64(3000), budget.Fee)
	})

	t.Run("winner is excluded from the fan-out", func(t *testing.T) {
		budget, err := f.settler.Budget(ctx, "bob", 20, []string{"bob"})
		require.NoError(t, err)
		require.Equal(t, 2, budget.Transfers)
	})
}

func TestSettler_SelectAndSettle(t *testing.T) {
	ctx := context.Background()
	roster := []string{"alice", "bob"}

	t.Run("top bid wins", func(t *testing.T) {
		f := runningFund(t)
		_, err := f.machine.SubmitBid(ctx, "alice", 10)
		require.NoError(t, err)
		_, err = f.machine.SubmitBid(ctx, "bob", 20)
		require.NoError(t, err)

		outcome, err := f.settler.SelectAndSettle(ctx, "manager", roster)
		require.NoError(t, err)
		require.Equal(t, SourceStore, outcome.Source)
		require.Equal(t, "bob", outcome.Winner)
		require.Equal(t, uint64(20), outcome.DiscountPercent)
		require.Equal(t, uint64(160000), outcome.Payout.Winner)
		require.Equal(t, uint64(2000), outcome.Payout.Commission)
		require.Equal(t, uint64(38000), outcome.Payout.PerMember)
		require.Equal(t, outcome.Budget.Transfers, outcome.Transfers)
		require.Equal(t, uint64(4000), outcome.Budget.Fee)
		require.Equal(t, uint64(160000), f.treasury.Received("bob"))
	})

	t.Run("no bids", func(t *testing.T) {
		f := runningFund(t)
		_, err := f.settler.SelectAndSettle(ctx, "manager", roster)
		require.True(t, fund.IsKind(err, fund.NoBids))
	})

	t.Run("distribute guards still apply", func(t *testing.T) {
		f := runningFund(t)
		_, err := f.machine.SubmitBid(ctx, "bob", 20)
		require.NoError(t, err)
		_, err = f.settler.SelectAndSettle(ctx, "alice", roster)
		require.True(t, fund.IsKind(err, fund.Unauthorized))
	})

	t.Run("settles from the log when the store is empty", func(t *testing.T) {
		f := runningFund(t)
		_, err := f.machine.SubmitBid(ctx, "bob", 20)
		require.NoError(t, err)
		// Simulate a pruned bid box: the call survives only in the log.
		require.NoError(t, f.records.Delete(ctx, store.KindBid, "bob"))

		outcome, err := f.settler.SelectAndSettle(ctx, "manager", roster)
		require.NoError(t, err)
		require.Equal(t, SourceLog, outcome.Source)
		require.Equal(t, "bob", outcome.Winner)
	})
}
