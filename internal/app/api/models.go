// Copyright 2024 AlgoChit Network Ltd.
// All rights reserved.
// This material is licensed under the AlgoChit License version 1.0,
// available at https://github.com/algochit/chitfund/blob/master/LICENSE.md.

package api

// Request payloads. Sender carries the caller identity; signing and key
// management live outside this service.

type ConfigureRequest struct {
	Sender             string `json:"sender"`
	ContributionAmount uint64 `json:"contributionAmount"`
	CommissionPercent  uint64 `json:"commissionPercent"`
	TotalCycles        uint64 `json:"totalCycles"`
}

type MemberRequest struct {
	Sender        string `json:"sender"`
	MemberAddress string `json:"memberAddress"`
}

type ManagerRequest struct {
	Sender string `json:"sender"`
}

type TotalCyclesRequest struct {
	Sender      string `json:"sender"`
	TotalCycles uint64 `json:"totalCycles"`
}

type ContributeRequest struct {
	Sender string `json:"sender"`
	Amount uint64 `json:"amount"`
}

type BidRequest struct {
	Sender          string `json:"sender"`
	DiscountPercent uint64 `json:"discountPercent"`
}

type DistributeRequest struct {
	Sender          string   `json:"sender"`
	Winner          string   `json:"winner"`
	DiscountPercent uint64   `json:"discountPercent"`
	Members         []string `json:"members"`
}

type SettleRequest struct {
	Sender  string   `json:"sender"`
	Members []string `json:"members"`
}

// Response payloads.

type ErrorPayload struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type Envelope struct {
	Success bool          `json:"success"`
	Result  interface{}   `json:"result,omitempty"`
	Error   *ErrorPayload `json:"error,omitempty"`
}

type TxResult struct {
	TxID uint64      `json:"txId"`
	Args interface{} `json:"args,omitempty"`
}

type StateResult struct {
	Manager            string `json:"manager"`
	ContributionAmount uint64 `json:"contributionAmount"`
	CommissionPercent  uint64 `json:"commissionPercent"`
	TotalCycles        uint64 `json:"totalCycles"`
	FundValue          uint64 `json:"fundValue"`
	CurrentCycle       uint64 `json:"currentCycle"`
	Active             bool   `json:"active"`
}

type MemberResult struct {
	Address               string `json:"address"`
	ContributedTotal      uint64 `json:"contributedTotal"`
	HasWon                bool   `json:"hasWon"`
	LastContributionCycle uint64 `json:"lastContributionCycle"`
}

type BidResult struct {
	Bidder          string `json:"bidder"`
	DiscountPercent uint64 `json:"discountPercent"`
}

type BidsResult struct {
	Source string      `json:"source"`
	Bids   []BidResult `json:"bids"`
}

type SettleResult struct {
	TxID             uint64 `json:"txId"`
	Winner           string `json:"winner"`
	DiscountPercent  uint64 `json:"discountPercent"`
	WinnerAmount     uint64 `json:"winnerAmount"`
	CommissionAmount uint64 `json:"commissionAmount"`
	PerMemberAmount  uint64 `json:"perMemberAmount"`
	Transfers        int    `json:"transfers"`
	Fee              uint64 `json:"fee"`
	Source           string `json:"source,omitempty"`
}
