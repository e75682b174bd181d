// Copyright 2024 AlgoChit Network Ltd.
// All rights reserved.
// This material is licensed under the AlgoChit License version 1.0,
// available at https://github.com/algochit/chitfund/blob/master/LICENSE.md.

package collecting

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/algochit/chitfund/internal/app/fund"
	"github.com/algochit/chitfund/observability"
)

// FeeBudget is the execution fee the distribute call must be provisioned
// with: the base call plus one fee unit per outbound transfer. The budget
// has to be exact or the runtime fails the whole call atomically.
type FeeBudget struct {
	Transfers int
	Fee       uint64
}

// Outcome is one settled cycle.
type Outcome struct {
	*fund.Settlement
	Source Source
	Budget FeeBudget
}

// Settler picks the winning bid and drives the fund's distribute transition.
type Settler struct {
	log            logrus.FieldLogger
	machine        *fund.Machine
	collector      *BidCollector
	baseFee        uint64
	feePerTransfer uint64
}

func NewSettler(
	obs *observability.Observability,
	machine *fund.Machine,
	collector *BidCollector,
	baseFee, feePerTransfer uint64,
) *Settler {
	return &Settler{
		log:            obs.Log(),
		machine:        machine,
		collector:      collector,
		baseFee:        baseFee,
		feePerTransfer: feePerTransfer,
	}
}

// Budget computes the transfer fan-out and fee for settling in favor of the
// given winner with the given roster.
func (s *Settler) Budget(ctx context.Context, winner string, discountPercent uint64, roster []string) (FeeBudget, error) {
	cfg, _, err := s.machine.State(ctx)
	if err != nil {
		return FeeBudget{}, err
	}
	nonWinners := 0
	for _, addr := range roster {
		if addr != winner {
			nonWinners++
		}
	}
	payout, err := fund.CalculatePayout(cfg.FundValue, discountPercent, cfg.CommissionPercent, nonWinners)
	if err != nil {
		return FeeBudget{}, err
	}
	transfers := 1 + nonWinners
	if payout.Commission > 0 {
		transfers++
	}
	return FeeBudget{
		Transfers: transfers,
		Fee:       s.baseFee + s.feePerTransfer*uint64(transfers),
	}, nil
}

// SelectAndSettle collects the ranked bids, takes the top entry as winner
// and distributes the pot to it.
func (s *Settler) SelectAndSettle(ctx context.Context, sender string, roster []string) (*Outcome, error) {
	result, err := s.collector.Collect(ctx)
	if err != nil {
		return nil, err
	}
	if len(result.Bids) == 0 {
		return nil, fund.Errorf(fund.NoBids, "no bids to settle the current cycle")
	}
	top := result.Bids[0]

	budget, err := s.Budget(ctx, top.Bidder, top.DiscountPercent, roster)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"winner":    top.Bidder,
		"discount":  top.DiscountPercent,
		"transfers": budget.Transfers,
		"fee":       budget.Fee,
	}).Info("settling cycle")

	settlement, err := s.machine.Distribute(ctx, sender, top.Bidder, top.DiscountPercent, roster)
	if err != nil {
		return nil, err
	}
	if settlement.Transfers != budget.Transfers {
		return nil, errors.Errorf("transfer fan-out %d does not match budget %d",
			settlement.Transfers, budget.Transfers)
	}
	return &Outcome{
		Settlement: settlement,
		Source:     result.Source,
		Budget:     budget,
	}, nil
}
