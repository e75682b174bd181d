// Copyright 2024 AlgoChit Network Ltd.
// All rights reserved.
// This material is licensed under the AlgoChit License version 1.0,
// available at https://github.com/algochit/chitfund/blob/master/LICENSE.md.

package fund

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFundConfig_Codec(t *testing.T) {
	in := &FundConfig{
		Manager:            "manager-address",
		ContributionAmount: 100000,
		CommissionPercent:  5,
		TotalCycles:        12,
		FundValue:          1200000,
	}
	out, err := DecodeFundConfig(in.Encode())
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestCycleState_Codec(t *testing.T) {
	for _, in := range []*CycleState{
		{CurrentCycle: 0, Active: false},
		{CurrentCycle: 7, Active: true},
	} {
		out, err := DecodeCycleState(in.Encode())
		require.NoError(t, err)
		require.Equal(t, in, out)
	}
}

func TestMemberRecord_Codec(t *testing.T) {
	in := &MemberRecord{
		ContributedTotal:      300000,
		HasWon:                true,
		LastContributionCycle: 3,
	}
	out, err := DecodeMemberRecord(in.Encode())
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestBidRecord_Codec(t *testing.T) {
	in := &BidRecord{DiscountPercent: 25}
	out, err := DecodeBidRecord(in.Encode())
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestDecode_RejectsMalformed(t *testing.T) {
	bid := (&BidRecord{DiscountPercent: 10}).Encode()

	t.Run("empty", func(t *testing.T) {
		_, err := DecodeBidRecord(nil)
		require.Error(t, err)
	})
	t.Run("wrong tag", func(t *testing.T) {
		_, err := DecodeMemberRecord(bid)
		require.Error(t, err)
	})
	t.Run("wrong version", func(t *testing.T) {
		corrupted := append([]byte{}, bid...)
		corrupted[1] = 0x7f
		_, err := DecodeBidRecord(corrupted)
		require.Error(t, err)
	})
	t.Run("truncated payload", func(t *testing.T) {
		_, err := DecodeBidRecord(bid[:len(bid)-1])
		require.Error(t, err)
	})
	t.Run("trailing bytes", func(t *testing.T) {
		_, err := DecodeBidRecord(append(append([]byte{}, bid...), 0x00))
		require.Error(t, err)
	})
	t.Run("bad boolean byte", func(t *testing.T) {
		state := (&CycleState{CurrentCycle: 1, Active: true}).Encode()
		state[len(state)-1] = 0x02
		_, err := DecodeCycleState(state)
		require.Error(t, err)
	})
	t.Run("truncated manager string", func(t *testing.T) {
		cfg := (&FundConfig{Manager: "manager", ContributionAmount: 1, TotalCycles: 1, FundValue: 1}).Encode()
		_, err := DecodeFundConfig(cfg[:4])
		require.Error(t, err)
	})
}

func TestUint64Arg_Codec(t *testing.T) {
	v, err := DecodeUint64Arg(EncodeUint64Arg(20))
	require.NoError(t, err)
	require.Equal(t, uint64(20), v)

	_, err = DecodeUint64Arg([]byte{0x01})
	require.Error(t, err)
}
