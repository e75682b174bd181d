// Copyright 2024 AlgoChit Network Ltd.
// All rights reserved.
// This material is licensed under the AlgoChit License version 1.0,
// available at https://github.com/algochit/chitfund/blob/master/LICENSE.md.

package fund

import "math"

// Payout is the settlement split for one cycle. All divisions truncate
// toward zero and the truncation remainder stays on the fund's custodial
// account, so
//
//	Winner + Commission + PerMember*nonWinnerCount <= fundValue
//
// with equality only when both divisions are exact.
type Payout struct {
	Winner     uint64
	Commission uint64
	PerMember  uint64
}

// CalculatePayout computes the winner, commission and per-member amounts
// from the fund value and the winning discount. The [0,30] business cap on
// discounts is enforced at bid submission; here only the arithmetic domain
// [0,100] is checked so the function stays safe if called directly.
func CalculatePayout(fundValue, discountPercent, commissionPercent uint64, nonWinnerCount int) (Payout, error) {
	if discountPercent > 100 {
		return Payout{}, Errorf(InvalidArgument, "discount percent %d exceeds 100", discountPercent)
	}
	if commissionPercent > 100 {
		return Payout{}, Errorf(InvalidArgument, "commission percent %d exceeds 100", commissionPercent)
	}

	// The runtime aborts on wrapped arithmetic; fail closed the same way.
	if discountPercent > 0 && fundValue > math.MaxUint64/discountPercent {
		return Payout{}, Errorf(InvalidArgument, "fund value %d overflows the discount computation", fundValue)
	}
	// The bound also covers the commission multiplication: the discount
	// amount never exceeds MaxUint64/100 once this check passes.
	discountAmount := fundValue * discountPercent / 100
	winnerAmount := fundValue - discountAmount
	commissionAmount := discountAmount * commissionPercent / 100
	remainingDiscount := discountAmount - commissionAmount

	var perMember uint64
	if nonWinnerCount > 0 {
		perMember = remainingDiscount / uint64(nonWinnerCount)
	}

	return Payout{
		Winner:     winnerAmount,
		Commission: commissionAmount,
		PerMember:  perMember,
	}, nil
}
