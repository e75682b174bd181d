// Copyright 2024 AlgoChit Network Ltd.
// All rights reserved.
// This material is licensed under the AlgoChit License version 1.0,
// available at https://github.com/algochit/chitfund/blob/master/LICENSE.md.

package fund

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCalculatePayout(t *testing.T) {
	t.Run("no discount", func(t *testing.T) {
		payout, err := CalculatePayout(200000, 0, 5, 1)
		require.NoError(t, err)
		require.Equal(t, uint64(200000), payout.Winner)
		require.Equal(t, uint64(0), payout.Commission)
		require.Equal(t, uint64(0), payout.PerMember)
	})

	t.Run("discount split", func(t *testing.T) {
		payout, err := CalculatePayout(200000, 20, 5, 1)
		require.NoError(t, err)
		require.Equal(t, uint64(160000), payout.Winner)
		require.Equal(t, uint64(2000), payout.Commission)
		require.Equal(t, uint64(38000), payout.PerMember)
	})

	t.Run("truncation retains remainder", func(t *testing.T) {
		payout, err := CalculatePayout(1000000, 10, 5, 3)
		require.NoError(t, err)
		require.Equal(t, uint64(900000), payout.Winner)
		require.Equal(t, uint64(5000), payout.Commission)
		// (100000 - 5000) / 3 truncates.
		require.Equal(t, uint64(31666), payout.PerMember)
		total := payout.Winner + payout.Commission + payout.PerMember*3
		require.True(t, total <= 1000000)
	})

	t.Run("no non winners", func(t *testing.T) {
		payout, err := CalculatePayout(100000, 10, 0, 0)
		require.NoError(t, err)
		require.Equal(t, uint64(90000), payout.Winner)
		require.Equal(t, uint64(0), payout.PerMember)
	})

	t.Run("discount over hundred rejected", func(t *testing.T) {
		_, err := CalculatePayout(100000, 101, 5, 1)
		require.Error(t, err)
		require.True(t, IsKind(err, InvalidArgument))
	})

	t.Run("commission over hundred rejected", func(t *testing.T) {
		_, err := CalculatePayout(100000, 10, 101, 1)
		require.Error(t, err)
		require.True(t, IsKind(err, InvalidArgument))
	})

	t.Run("discount multiplication overflow rejected", func(t *testing.T) {
		_, err := CalculatePayout(math.MaxUint64, 50, 5, 1)
		require.True(t, IsKind(err, InvalidArgument))

		// Largest value the discount computation admits at 100%.
		payout, err := CalculatePayout(math.MaxUint64/100, 100, 100, 1)
		require.NoError(t, err)
		require.Equal(t, uint64(0), payout.Winner)
	})
}

func TestCalculatePayout_Conservation(t *testing.T) {
	for _, fundValue := range []uint64{1, 100, 777777, 1000000} {
		for discount := uint64(0); discount <= 30; discount += 3 {
			for commission := uint64(0); commission <= 20; commission += 4 {
				for nonWinners := 0; nonWinners < 7; nonWinners++ {
					payout, err := CalculatePayout(fundValue, discount, commission, nonWinners)
					require.NoError(t, err)
					total := payout.Winner + payout.Commission + payout.PerMember*uint64(nonWinners)
					require.True(t, total <= fundValue,
						"paid %d out of %d at discount=%d commission=%d n=%d",
						total, fundValue, discount, commission, nonWinners)

					// The winner keeps the discount division's remainder, so
					// only the undistributed remainder pool breaks equality:
					// the commission division's leavings plus the per-member
					// division's leavings.
					remaining := fundValue*discount/100 - payout.Commission
					exact := remaining == 0 ||
						(nonWinners > 0 && remaining%uint64(nonWinners) == 0)
					if exact {
						require.Equal(t, fundValue, total,
							"retained %d at discount=%d commission=%d n=%d",
							fundValue-total, discount, commission, nonWinners)
					} else {
						require.True(t, total < fundValue,
							"exact payout with a nonzero remainder pool at discount=%d commission=%d n=%d",
							discount, commission, nonWinners)
					}
				}
			}
		}
	}
}
