// Copyright 2024 AlgoChit Network Ltd.
// All rights reserved.
// This material is licensed under the AlgoChit License version 1.0,
// available at https://github.com/algochit/chitfund/blob/master/LICENSE.md.

package api

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/algochit/chitfund/internal/app/fund"
	"github.com/algochit/chitfund/internal/app/fund/collecting"
)

// FundServer exposes the fund operations over HTTP. It is a thin adapter:
// all validation and state transitions happen in the fund state machine.
type FundServer struct {
	log       *logrus.Logger
	machine   *fund.Machine
	collector *collecting.BidCollector
	settler   *collecting.Settler
}

func NewFundServer(
	log *logrus.Logger,
	machine *fund.Machine,
	collector *collecting.BidCollector,
	settler *collecting.Settler,
) *FundServer {
	return &FundServer{
		log:       log,
		machine:   machine,
		collector: collector,
		settler:   settler,
	}
}

func RegisterHandlers(e *echo.Echo, s *FundServer) {
	e.GET("/api/health", s.Health)
	e.GET("/api/state", s.GetState)
	e.GET("/api/members/:address", s.GetMember)
	e.GET("/api/bids", s.GetBids)

	e.POST("/api/configure", s.Configure)
	e.POST("/api/cycles", s.SetTotalCycles)
	e.POST("/api/members/add", s.AddMember)
	e.POST("/api/members/remove", s.RemoveMember)
	e.POST("/api/start", s.Start)
	e.POST("/api/pause", s.Pause)
	e.POST("/api/resume", s.Resume)
	e.POST("/api/contribute", s.Contribute)
	e.POST("/api/bid", s.SubmitBid)
	e.POST("/api/distribute", s.Distribute)
	e.POST("/api/settle", s.Settle)
}

func (s *FundServer) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok", "service": "chitfund"})
}

func (s *FundServer) GetState(ctx echo.Context) error {
	cfg, state, err := s.machine.State(ctx.Request().Context())
	if err != nil {
		return s.fail(ctx, err)
	}
	return ok(ctx, StateResult{
		Manager:            cfg.Manager,
		ContributionAmount: cfg.ContributionAmount,
		CommissionPercent:  cfg.CommissionPercent,
		TotalCycles:        cfg.TotalCycles,
		FundValue:          cfg.FundValue,
		CurrentCycle:       state.CurrentCycle,
		Active:             state.Active,
	})
}

func (s *FundServer) GetMember(ctx echo.Context) error {
	address := ctx.Param("address")
	member, err := s.machine.Member(ctx.Request().Context(), address)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ok(ctx, MemberResult{
		Address:               address,
		ContributedTotal:      member.ContributedTotal,
		HasWon:                member.HasWon,
		LastContributionCycle: member.LastContributionCycle,
	})
}

func (s *FundServer) GetBids(ctx echo.Context) error {
	result, err := s.collector.Collect(ctx.Request().Context())
	if err != nil {
		return s.fail(ctx, err)
	}
	bids := make([]BidResult, 0, len(result.Bids))
	for _, bid := range result.Bids {
		bids = append(bids, BidResult{Bidder: bid.Bidder, DiscountPercent: bid.DiscountPercent})
	}
	return ok(ctx, BidsResult{Source: sourceName(result.Source), Bids: bids})
}

func (s *FundServer) Configure(ctx echo.Context) error {
	req := ConfigureRequest{}
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, err)
	}
	receipt, err := s.machine.Configure(ctx.Request().Context(),
		req.Sender, req.ContributionAmount, req.CommissionPercent, req.TotalCycles)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ok(ctx, TxResult{TxID: receipt.TxID, Args: req})
}

func (s *FundServer) SetTotalCycles(ctx echo.Context) error {
	req := TotalCyclesRequest{}
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, err)
	}
	receipt, err := s.machine.SetTotalCycles(ctx.Request().Context(), req.Sender, req.TotalCycles)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ok(ctx, TxResult{TxID: receipt.TxID, Args: req})
}

func (s *FundServer) AddMember(ctx echo.Context) error {
	req := MemberRequest{}
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, err)
	}
	receipt, err := s.machine.AddMember(ctx.Request().Context(), req.Sender, req.MemberAddress)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ok(ctx, TxResult{TxID: receipt.TxID, Args: req})
}

func (s *FundServer) RemoveMember(ctx echo.Context) error {
	req := MemberRequest{}
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, err)
	}
	receipt, err := s.machine.RemoveMember(ctx.Request().Context(), req.Sender, req.MemberAddress)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ok(ctx, TxResult{TxID: receipt.TxID, Args: req})
}

func (s *FundServer) Start(ctx echo.Context) error {
	return s.managerCall(ctx, s.machine.Start)
}

func (s *FundServer) Pause(ctx echo.Context) error {
	return s.managerCall(ctx, s.machine.Pause)
}

func (s *FundServer) Resume(ctx echo.Context) error {
	return s.managerCall(ctx, s.machine.Resume)
}

func (s *FundServer) Contribute(ctx echo.Context) error {
	req := ContributeRequest{}
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, err)
	}
	receipt, err := s.machine.Contribute(ctx.Request().Context(), req.Sender, req.Amount)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ok(ctx, TxResult{TxID: receipt.TxID, Args: req})
}

func (s *FundServer) SubmitBid(ctx echo.Context) error {
	req := BidRequest{}
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, err)
	}
	receipt, err := s.machine.SubmitBid(ctx.Request().Context(), req.Sender, req.DiscountPercent)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ok(ctx, TxResult{TxID: receipt.TxID, Args: req})
}

func (s *FundServer) Distribute(ctx echo.Context) error {
	req := DistributeRequest{}
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, err)
	}
	settlement, err := s.machine.Distribute(ctx.Request().Context(),
		req.Sender, req.Winner, req.DiscountPercent, req.Members)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ok(ctx, SettleResult{
		TxID:             settlement.TxID,
		Winner:           settlement.Winner,
		DiscountPercent:  settlement.DiscountPercent,
		WinnerAmount:     settlement.Payout.Winner,
		CommissionAmount: settlement.Payout.Commission,
		PerMemberAmount:  settlement.Payout.PerMember,
		Transfers:        settlement.Transfers,
	})
}

func (s *FundServer) Settle(ctx echo.Context) error {
	req := SettleRequest{}
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, err)
	}
	outcome, err := s.settler.SelectAndSettle(ctx.Request().Context(), req.Sender, req.Members)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ok(ctx, SettleResult{
		TxID:             outcome.TxID,
		Winner:           outcome.Winner,
		DiscountPercent:  outcome.DiscountPercent,
		WinnerAmount:     outcome.Payout.Winner,
		CommissionAmount: outcome.Payout.Commission,
		PerMemberAmount:  outcome.Payout.PerMember,
		Transfers:        outcome.Transfers,
		Fee:              outcome.Budget.Fee,
		Source:           sourceName(outcome.Source),
	})
}

func (s *FundServer) managerCall(ctx echo.Context, op func(context.Context, string) (*fund.Receipt, error)) error {
	req := ManagerRequest{}
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, err)
	}
	receipt, err := op(ctx.Request().Context(), req.Sender)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ok(ctx, TxResult{TxID: receipt.TxID, Args: req})
}

func (s *FundServer) fail(ctx echo.Context, err error) error {
	kind := fund.KindOf(err)
	status := statusOf(kind)
	if status == http.StatusInternalServerError {
		s.log.Error(err)
	}
	return ctx.JSON(status, Envelope{
		Success: false,
		Error:   &ErrorPayload{Kind: string(kind), Message: err.Error()},
	})
}

func ok(ctx echo.Context, result interface{}) error {
	return ctx.JSON(http.StatusOK, Envelope{Success: true, Result: result})
}

func badRequest(ctx echo.Context, err error) error {
	return ctx.JSON(http.StatusBadRequest, Envelope{
		Success: false,
		Error:   &ErrorPayload{Kind: string(fund.InvalidArgument), Message: err.Error()},
	})
}

func statusOf(kind fund.Kind) int {
	switch kind {
	case fund.Unauthorized:
		return http.StatusForbidden
	case fund.NotFound:
		return http.StatusNotFound
	case fund.InvalidArgument:
		return http.StatusBadRequest
	case fund.InvalidState, fund.AlreadyConfigured, fund.PaymentMismatch, fund.AlreadyWon, fund.NoBids:
		return http.StatusConflict
	case fund.AggregationFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func sourceName(source collecting.Source) string {
	if source == collecting.SourceLog {
		return "log"
	}
	return "store"
}
