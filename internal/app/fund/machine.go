// Copyright 2024 AlgoChit Network Ltd.
// All rights reserved.
// This material is licensed under the AlgoChit License version 1.0,
// available at https://github.com/algochit/chitfund/blob/master/LICENSE.md.

package fund

import (
	"context"
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/algochit/chitfund/internal/app/fund/store"
	"github.com/algochit/chitfund/observability"
)

// Call kinds as they appear in the transaction log. The fallback bid
// aggregation path replays CallSubmitBid entries, so these names are part of
// the log format.
const (
	CallConfigure    store.CallKind = "configure"
	CallAddMember    store.CallKind = "addMember"
	CallRemoveMember store.CallKind = "removeMember"
	CallStart        store.CallKind = "startChit"
	CallPause        store.CallKind = "pauseChit"
	CallResume       store.CallKind = "resumeChit"
	CallContribute   store.CallKind = "contribute"
	CallSubmitBid    store.CallKind = "submitBid"
	CallDistribute   store.CallKind = "distributePot"
)

// Singleton records live under their kind with an empty key.
const singletonKey = ""

// MaxDiscountPercent is the business cap on submitted bids.
const MaxDiscountPercent = 30

// Receipt identifies the applied transaction.
type Receipt struct {
	TxID uint64
}

// Settlement describes one applied distribute call.
type Settlement struct {
	Receipt
	Winner          string
	DiscountPercent uint64
	Payout          Payout
	Transfers       int
}

// Machine owns all writes to the fund's records. Every operation validates
// its guards against the current records before touching the store or the
// treasury, so a failed call leaves every persisted record untouched.
type Machine struct {
	log      logrus.FieldLogger
	records  store.RecordStore
	treasury store.Treasury
	calls    store.CallLog
	applied  prometheus.Counter
	rejected prometheus.Counter
}

func NewMachine(
	obs *observability.Observability,
	records store.RecordStore,
	treasury store.Treasury,
	calls store.CallLog,
) *Machine {
	return &Machine{
		log:      obs.Log(),
		records:  records,
		treasury: treasury,
		calls:    calls,
		applied: obs.Counter(prometheus.CounterOpts{
			Name: "chitfund_calls_applied_total",
			Help: "Number of fund calls applied.",
		}),
		rejected: obs.Counter(prometheus.CounterOpts{
			Name: "chitfund_calls_rejected_total",
			Help: "Number of fund calls rejected by admission guards.",
		}),
	}
}

// Configure creates the fund's configuration and cycle state. Callable once.
func (m *Machine) Configure(
	ctx context.Context,
	sender string,
	contributionAmount, commissionPercent, totalCycles uint64,
) (*Receipt, error) {
	if _, err := m.records.Get(ctx, store.KindConfig, singletonKey); err == nil {
		return nil, m.reject(Errorf(AlreadyConfigured, "fund is already configured"))
	} else if err != store.ErrNotFound {
		return nil, errors.Wrap(err, "failed to read config record")
	}
	if contributionAmount == 0 {
		return nil, m.reject(Errorf(InvalidArgument, "contribution amount must be positive"))
	}
	if commissionPercent > 100 {
		return nil, m.reject(Errorf(InvalidArgument, "commission percent %d exceeds 100", commissionPercent))
	}
	if totalCycles == 0 {
		return nil, m.reject(Errorf(InvalidArgument, "total cycles must be positive"))
	}
	if contributionAmount > math.MaxUint64/totalCycles {
		return nil, m.reject(Errorf(InvalidArgument,
			"fund value overflows: contribution %d over %d cycles", contributionAmount, totalCycles))
	}

	cfg := &FundConfig{
		Manager:            sender,
		ContributionAmount: contributionAmount,
		CommissionPercent:  commissionPercent,
		TotalCycles:        totalCycles,
		FundValue:          contributionAmount * totalCycles,
	}
	if err := m.records.Put(ctx, store.KindConfig, singletonKey, cfg.Encode()); err != nil {
		return nil, errors.Wrap(err, "failed to store config record")
	}
	state := &CycleState{CurrentCycle: 0, Active: false}
	if err := m.records.Put(ctx, store.KindState, singletonKey, state.Encode()); err != nil {
		return nil, errors.Wrap(err, "failed to store state record")
	}
	return m.commit(ctx, sender, CallConfigure, EncodeUint64Arg(contributionAmount))
}

// SetTotalCycles changes the cycle count before the fund starts and
// recomputes the derived fund value.
func (m *Machine) SetTotalCycles(ctx context.Context, sender string, totalCycles uint64) (*Receipt, error) {
	cfg, state, err := m.load(ctx)
	if err != nil {
		return nil, err
	}
	if sender != cfg.Manager {
		return nil, m.reject(Errorf(Unauthorized, "only the manager can change total cycles"))
	}
	if state.Active || state.CurrentCycle != 0 {
		return nil, m.reject(Errorf(InvalidState, "cannot change total cycles after the fund has started"))
	}
	if totalCycles == 0 {
		return nil, m.reject(Errorf(InvalidArgument, "total cycles must be positive"))
	}
	if cfg.ContributionAmount > math.MaxUint64/totalCycles {
		return nil, m.reject(Errorf(InvalidArgument,
			"fund value overflows: contribution %d over %d cycles", cfg.ContributionAmount, totalCycles))
	}

	cfg.TotalCycles = totalCycles
	cfg.FundValue = cfg.ContributionAmount * totalCycles
	if err := m.records.Put(ctx, store.KindConfig, singletonKey, cfg.Encode()); err != nil {
		return nil, errors.Wrap(err, "failed to store config record")
	}
	return m.commit(ctx, sender, CallConfigure, EncodeUint64Arg(totalCycles))
}

// AddMember registers a member. Allowed only while the fund is not running.
func (m *Machine) AddMember(ctx context.Context, sender, member string) (*Receipt, error) {
	cfg, state, err := m.load(ctx)
	if err != nil {
		return nil, err
	}
	if sender != cfg.Manager {
		return nil, m.reject(Errorf(Unauthorized, "only the manager can add members"))
	}
	if state.Active {
		return nil, m.reject(Errorf(InvalidState, "cannot add members while the fund is running"))
	}
	if member == "" {
		return nil, m.reject(Errorf(InvalidArgument, "member identity is empty"))
	}
	// A fresh record would wipe the member's contribution history and hasWon
	// flag; re-registration goes through removeMember first.
	if _, err := m.member(ctx, member); err == nil {
		return nil, m.reject(Errorf(InvalidState, "member %s is already registered", member))
	} else if !IsKind(err, NotFound) {
		return nil, err
	}

	record := &MemberRecord{}
	if err := m.records.Put(ctx, store.KindMember, member, record.Encode()); err != nil {
		return nil, errors.Wrap(err, "failed to store member record")
	}
	return m.commit(ctx, sender, CallAddMember, []byte(member))
}

// RemoveMember deletes a member and any residual bid record. Allowed only
// while the fund is not running.
func (m *Machine) RemoveMember(ctx context.Context, sender, member string) (*Receipt, error) {
	cfg, state, err := m.load(ctx)
	if err != nil {
		return nil, err
	}
	if sender != cfg.Manager {
		return nil, m.reject(Errorf(Unauthorized, "only the manager can remove members"))
	}
	if state.Active {
		return nil, m.reject(Errorf(InvalidState, "cannot remove members while the fund is running"))
	}
	if _, err := m.member(ctx, member); err != nil {
		return nil, m.reject(err)
	}

	if err := m.records.Delete(ctx, store.KindMember, member); err != nil {
		return nil, errors.Wrap(err, "failed to delete member record")
	}
	if err := m.records.Delete(ctx, store.KindBid, member); err != nil && err != store.ErrNotFound {
		return nil, errors.Wrap(err, "failed to delete residual bid record")
	}
	return m.commit(ctx, sender, CallRemoveMember, []byte(member))
}

// Start activates the fund and opens cycle one.
func (m *Machine) Start(ctx context.Context, sender string) (*Receipt, error) {
	cfg, state, err := m.load(ctx)
	if err != nil {
		return nil, err
	}
	if sender != cfg.Manager {
		return nil, m.reject(Errorf(Unauthorized, "only the manager can start the fund"))
	}
	if state.Active || state.CurrentCycle != 0 {
		return nil, m.reject(Errorf(InvalidState, "fund has already started"))
	}

	state.Active = true
	state.CurrentCycle = 1
	if err := m.records.Put(ctx, store.KindState, singletonKey, state.Encode()); err != nil {
		return nil, errors.Wrap(err, "failed to store state record")
	}
	return m.commit(ctx, sender, CallStart, nil)
}

// Pause suspends contribution and bid admission. It is an emergency control
// and does not touch the cycle counter.
func (m *Machine) Pause(ctx context.Context, sender string) (*Receipt, error) {
	return m.toggle(ctx, sender, false, CallPause)
}

// Resume reopens contribution and bid admission.
func (m *Machine) Resume(ctx context.Context, sender string) (*Receipt, error) {
	return m.toggle(ctx, sender, true, CallResume)
}

func (m *Machine) toggle(ctx context.Context, sender string, active bool, kind store.CallKind) (*Receipt, error) {
	cfg, state, err := m.load(ctx)
	if err != nil {
		return nil, err
	}
	if sender != cfg.Manager {
		return nil, m.reject(Errorf(Unauthorized, "only the manager can pause or resume the fund"))
	}

	state.Active = active
	if err := m.records.Put(ctx, store.KindState, singletonKey, state.Encode()); err != nil {
		return nil, errors.Wrap(err, "failed to store state record")
	}
	return m.commit(ctx, sender, kind, nil)
}

// Contribute records the sender's contribution for the current cycle. The
// payment accompanies the call and must match the configured amount exactly.
func (m *Machine) Contribute(ctx context.Context, sender string, amount uint64) (*Receipt, error) {
	cfg, state, err := m.load(ctx)
	if err != nil {
		return nil, err
	}
	if !state.Active {
		return nil, m.reject(Errorf(InvalidState, "fund is not active"))
	}
	member, err := m.member(ctx, sender)
	if err != nil {
		return nil, m.reject(err)
	}
	if amount != cfg.ContributionAmount {
		return nil, m.reject(Errorf(PaymentMismatch,
			"payment of %d does not match contribution amount %d", amount, cfg.ContributionAmount))
	}
	if member.LastContributionCycle >= state.CurrentCycle {
		return nil, m.reject(Errorf(InvalidState, "already contributed in cycle %d", state.CurrentCycle))
	}

	if err := m.treasury.Deposit(ctx, sender, amount); err != nil {
		return nil, errors.Wrap(err, "failed to deposit contribution")
	}
	member.ContributedTotal += amount
	member.LastContributionCycle = state.CurrentCycle
	if err := m.records.Put(ctx, store.KindMember, sender, member.Encode()); err != nil {
		return nil, errors.Wrap(err, "failed to store member record")
	}
	return m.commit(ctx, sender, CallContribute, EncodeUint64Arg(amount))
}

// SubmitBid records the sender's sealed discount bid for the current cycle,
// overwriting any previous bid. Bidding does not require a contribution in
// the current cycle.
func (m *Machine) SubmitBid(ctx context.Context, sender string, discountPercent uint64) (*Receipt, error) {
	_, state, err := m.load(ctx)
	if err != nil {
		return nil, err
	}
	if !state.Active {
		return nil, m.reject(Errorf(InvalidState, "fund is not active"))
	}
	if discountPercent > MaxDiscountPercent {
		return nil, m.reject(Errorf(InvalidArgument,
			"discount percent %d exceeds the cap of %d", discountPercent, MaxDiscountPercent))
	}
	member, err := m.member(ctx, sender)
	if err != nil {
		return nil, m.reject(err)
	}
	if member.HasWon {
		return nil, m.reject(Errorf(AlreadyWon, "member has already received a payout"))
	}

	bid := &BidRecord{DiscountPercent: discountPercent}
	if err := m.records.Put(ctx, store.KindBid, sender, bid.Encode()); err != nil {
		return nil, errors.Wrap(err, "failed to store bid record")
	}
	return m.commit(ctx, sender, CallSubmitBid, EncodeUint64Arg(discountPercent))
}

// Distribute pays out the pot for the current cycle and advances the fund.
// The discount and the roster come from the caller and are not re-derived
// from stored records; the roster is used only to fan the remaining discount
// out to non-winners.
func (m *Machine) Distribute(
	ctx context.Context,
	sender, winner string,
	discountPercent uint64,
	roster []string,
) (*Settlement, error) {
	cfg, state, err := m.load(ctx)
	if err != nil {
		return nil, err
	}
	if sender != cfg.Manager {
		return nil, m.reject(Errorf(Unauthorized, "only the manager can distribute the pot"))
	}
	if !state.Active {
		return nil, m.reject(Errorf(InvalidState, "fund is not active"))
	}
	member, err := m.member(ctx, winner)
	if err != nil {
		return nil, m.reject(err)
	}
	if member.HasWon {
		return nil, m.reject(Errorf(AlreadyWon, "winner has already received a payout"))
	}

	nonWinners := make([]string, 0, len(roster))
	for _, addr := range roster {
		if addr != winner {
			nonWinners = append(nonWinners, addr)
		}
	}
	payout, err := CalculatePayout(cfg.FundValue, discountPercent, cfg.CommissionPercent, len(nonWinners))
	if err != nil {
		return nil, m.reject(err)
	}

	transfers := 0
	if err := m.treasury.Transfer(ctx, winner, payout.Winner); err != nil {
		return nil, errors.Wrap(err, "failed to pay winner")
	}
	transfers++
	if payout.Commission > 0 {
		if err := m.treasury.Transfer(ctx, cfg.Manager, payout.Commission); err != nil {
			return nil, errors.Wrap(err, "failed to pay commission")
		}
		transfers++
	}
	for _, addr := range nonWinners {
		if err := m.treasury.Transfer(ctx, addr, payout.PerMember); err != nil {
			return nil, errors.Wrapf(err, "failed to pay member %s", addr)
		}
		transfers++
	}

	member.HasWon = true
	if err := m.records.Put(ctx, store.KindMember, winner, member.Encode()); err != nil {
		return nil, errors.Wrap(err, "failed to store member record")
	}
	state.CurrentCycle++
	if state.CurrentCycle > cfg.TotalCycles {
		state.Active = false
	}
	if err := m.records.Put(ctx, store.KindState, singletonKey, state.Encode()); err != nil {
		return nil, errors.Wrap(err, "failed to store state record")
	}

	receipt, err := m.commit(ctx, sender, CallDistribute, []byte(winner))
	if err != nil {
		return nil, err
	}
	m.log.WithFields(logrus.Fields{
		"winner":   winner,
		"discount": discountPercent,
		"cycle":    state.CurrentCycle,
	}).Info("pot distributed")
	return &Settlement{
		Receipt:         *receipt,
		Winner:          winner,
		DiscountPercent: discountPercent,
		Payout:          payout,
		Transfers:       transfers,
	}, nil
}

// State returns the fund configuration and cycle state.
func (m *Machine) State(ctx context.Context) (*FundConfig, *CycleState, error) {
	return m.load(ctx)
}

// Member returns the stored record for the given identity.
func (m *Machine) Member(ctx context.Context, identity string) (*MemberRecord, error) {
	return m.member(ctx, identity)
}

func (m *Machine) load(ctx context.Context) (*FundConfig, *CycleState, error) {
	raw, err := m.records.Get(ctx, store.KindConfig, singletonKey)
	if err == store.ErrNotFound {
		return nil, nil, m.reject(Errorf(InvalidState, "fund is not configured"))
	}
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to read config record")
	}
	cfg, err := DecodeFundConfig(raw)
	if err != nil {
		return nil, nil, err
	}
	raw, err = m.records.Get(ctx, store.KindState, singletonKey)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to read state record")
	}
	state, err := DecodeCycleState(raw)
	if err != nil {
		return nil, nil, err
	}
	return cfg, state, nil
}

func (m *Machine) member(ctx context.Context, identity string) (*MemberRecord, error) {
	raw, err := m.records.Get(ctx, store.KindMember, identity)
	if err == store.ErrNotFound {
		return nil, Errorf(NotFound, "member %s is not registered", identity)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read member record")
	}
	return DecodeMemberRecord(raw)
}

func (m *Machine) commit(ctx context.Context, sender string, kind store.CallKind, args []byte) (*Receipt, error) {
	ordinal, err := m.calls.Append(ctx, sender, kind, args)
	if err != nil {
		return nil, errors.Wrap(err, "failed to append call record")
	}
	m.applied.Inc()
	return &Receipt{TxID: ordinal}, nil
}

func (m *Machine) reject(err error) error {
	m.rejected.Inc()
	return err
}

// EncodeUint64Arg encodes a call argument the way it appears in the
// transaction log: eight big-endian bytes.
func EncodeUint64Arg(v uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	return buf[:]
}

// DecodeUint64Arg decodes an eight-byte call argument.
func DecodeUint64Arg(b []byte) (uint64, error) {
	if len(b) != 8 {
		return 0, errors.Errorf("malformed call argument: length %d", len(b))
	}
	return binary.BigEndian.Uint64(b), nil
}
