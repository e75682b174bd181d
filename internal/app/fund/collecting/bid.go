// Copyright 2024 AlgoChit Network Ltd.
// All rights reserved.
// This material is licensed under the AlgoChit License version 1.0,
// available at https://github.com/algochit/chitfund/blob/master/LICENSE.md.

package collecting

import (
	"context"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/algochit/chitfund/internal/app/fund"
	"github.com/algochit/chitfund/internal/app/fund/store"
	"github.com/algochit/chitfund/observability"
)

// Source tags which path produced a ranked bid list. The two paths are never
// merged: a fallback replay is a fully independent reconstruction.
type Source int

const (
	SourceStore Source = iota
	SourceLog
)

type RankedBid struct {
	Bidder          string
	DiscountPercent uint64
}

type Result struct {
	Source Source
	Bids   []RankedBid
}

// BidCollector reconstructs the current bid set, ranked descending by
// discount with ties broken by ascending bidder identity. The keyed store is
// authoritative; the transaction log replay runs only when the store scan
// yields no bid records at all.
type BidCollector struct {
	log       logrus.FieldLogger
	records   store.RecordStore
	calls     store.CallLog
	fallbacks prometheus.Counter
}

func NewBidCollector(obs *observability.Observability, records store.RecordStore, calls store.CallLog) *BidCollector {
	return &BidCollector{
		log:     obs.Log(),
		records: records,
		calls:   calls,
		fallbacks: obs.Counter(prometheus.CounterOpts{
			Name: "chitfund_bid_collect_fallback_total",
			Help: "Number of bid collections served from the transaction log.",
		}),
	}
}

func (c *BidCollector) Collect(ctx context.Context) (*Result, error) {
	bids, err := c.scanStore(ctx)
	if err != nil {
		return nil, fund.WrapKind(err, fund.AggregationFailed, "bid store scan failed")
	}
	if len(bids) > 0 {
		rank(bids)
		return &Result{Source: SourceStore, Bids: bids}, nil
	}

	c.fallbacks.Inc()
	c.log.Debug("no bid records in store, replaying transaction log")
	bids, err = c.replayLog(ctx)
	if err != nil {
		return nil, fund.WrapKind(err, fund.AggregationFailed, "transaction log replay failed")
	}
	rank(bids)
	return &Result{Source: SourceLog, Bids: bids}, nil
}

func (c *BidCollector) scanStore(ctx context.Context) ([]RankedBid, error) {
	entries, err := c.records.Enumerate(ctx, store.KindBid)
	if err != nil {
		return nil, err
	}
	bids := make([]RankedBid, 0, len(entries))
	for _, entry := range entries {
		record, err := fund.DecodeBidRecord(entry.Value)
		if err != nil {
			// The store is authoritative; a malformed record there is
			// corruption, not noise.
			return nil, err
		}
		bids = append(bids, RankedBid{Bidder: entry.Key, DiscountPercent: record.DiscountPercent})
	}
	return bids, nil
}

func (c *BidCollector) replayLog(ctx context.Context) ([]RankedBid, error) {
	records, err := c.calls.Search(ctx, fund.CallSubmitBid)
	if err != nil {
		return nil, err
	}

	type lastBid struct {
		discount uint64
		ordinal  uint64
	}
	latest := make(map[string]lastBid)
	for _, rec := range records {
		discount, err := fund.DecodeUint64Arg(rec.Args)
		if err != nil {
			c.log.WithField("ordinal", rec.Ordinal).
				Warn("skipping submitBid call with malformed argument")
			continue
		}
		prev, ok := latest[rec.Sender]
		if !ok || rec.Ordinal > prev.ordinal {
			latest[rec.Sender] = lastBid{discount: discount, ordinal: rec.Ordinal}
		}
	}

	bids := make([]RankedBid, 0, len(latest))
	for sender, bid := range latest {
		bids = append(bids, RankedBid{Bidder: sender, DiscountPercent: bid.discount})
	}
	return bids, nil
}

func rank(bids []RankedBid) {
	sort.Slice(bids, func(i, j int) bool {
		if bids[i].DiscountPercent != bids[j].DiscountPercent {
			return bids[i].DiscountPercent > bids[j].DiscountPercent
		}
		return bids[i].Bidder < bids[j].Bidder
	})
}
