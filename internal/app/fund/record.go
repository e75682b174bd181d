// Copyright 2024 AlgoChit Network Ltd.
// All rights reserved.
// This material is licensed under the AlgoChit License version 1.0,
// available at https://github.com/algochit/chitfund/blob/master/LICENSE.md.

package fund

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// Stored records are tagged and versioned. Decoders check the tag, the
// version and the exact payload length and refuse anything else.
const (
	tagConfig byte = 0x01
	tagState  byte = 0x02
	tagMember byte = 0x03
	tagBid    byte = 0x04

	codecVersion byte = 0x01
)

// FundConfig is the fund's singleton configuration. FundValue is derived
// from ContributionAmount and TotalCycles and is recomputed whenever
// TotalCycles changes.
type FundConfig struct {
	Manager            string
	ContributionAmount uint64
	CommissionPercent  uint64
	TotalCycles        uint64
	FundValue          uint64
}

// CycleState is the fund's singleton cycle counter and admission gate.
type CycleState struct {
	CurrentCycle uint64
	Active       bool
}

// MemberRecord is stored per member identity.
type MemberRecord struct {
	ContributedTotal      uint64
	HasWon                bool
	LastContributionCycle uint64
}

// BidRecord is stored per member identity, not per cycle. A bid left over
// from a prior cycle stays readable until overwritten or deleted.
type BidRecord struct {
	DiscountPercent uint64
}

func (c *FundConfig) Encode() []byte {
	buf := make([]byte, 0, 2+2+len(c.Manager)+4*8)
	buf = append(buf, tagConfig, codecVersion)
	buf = appendString(buf, c.Manager)
	buf = appendUint64(buf, c.ContributionAmount)
	buf = appendUint64(buf, c.CommissionPercent)
	buf = appendUint64(buf, c.TotalCycles)
	buf = appendUint64(buf, c.FundValue)
	return buf
}

func DecodeFundConfig(b []byte) (*FundConfig, error) {
	body, err := checkHeader(b, tagConfig)
	if err != nil {
		return nil, err
	}
	manager, rest, err := readString(body)
	if err != nil {
		return nil, err
	}
	if len(rest) != 4*8 {
		return nil, errors.Errorf("malformed config record: %d trailing bytes", len(rest))
	}
	return &FundConfig{
		Manager:            manager,
		ContributionAmount: binary.BigEndian.Uint64(rest[0:8]),
		CommissionPercent:  binary.BigEndian.Uint64(rest[8:16]),
		TotalCycles:        binary.BigEndian.Uint64(rest[16:24]),
		FundValue:          binary.BigEndian.Uint64(rest[24:32]),
	}, nil
}

func (s *CycleState) Encode() []byte {
	buf := make([]byte, 0, 2+8+1)
	buf = append(buf, tagState, codecVersion)
	buf = appendUint64(buf, s.CurrentCycle)
	buf = appendBool(buf, s.Active)
	return buf
}

func DecodeCycleState(b []byte) (*CycleState, error) {
	body, err := checkHeader(b, tagState)
	if err != nil {
		return nil, err
	}
	if len(body) != 8+1 {
		return nil, errors.Errorf("malformed state record: length %d", len(b))
	}
	active, err := readBool(body[8])
	if err != nil {
		return nil, err
	}
	return &CycleState{
		CurrentCycle: binary.BigEndian.Uint64(body[0:8]),
		Active:       active,
	}, nil
}

func (m *MemberRecord) Encode() []byte {
	buf := make([]byte, 0, 2+8+1+8)
	buf = append(buf, tagMember, codecVersion)
	buf = appendUint64(buf, m.ContributedTotal)
	buf = appendBool(buf, m.HasWon)
	buf = appendUint64(buf, m.LastContributionCycle)
	return buf
}

func DecodeMemberRecord(b []byte) (*MemberRecord, error) {
	body, err := checkHeader(b, tagMember)
	if err != nil {
		return nil, err
	}
	if len(body) != 8+1+8 {
		return nil, errors.Errorf("malformed member record: length %d", len(b))
	}
	hasWon, err := readBool(body[8])
	if err != nil {
		return nil, err
	}
	return &MemberRecord{
		ContributedTotal:      binary.BigEndian.Uint64(body[0:8]),
		HasWon:                hasWon,
		LastContributionCycle: binary.BigEndian.Uint64(body[9:17]),
	}, nil
}

func (b *BidRecord) Encode() []byte {
	buf := make([]byte, 0, 2+8)
	buf = append(buf, tagBid, codecVersion)
	buf = appendUint64(buf, b.DiscountPercent)
	return buf
}

func DecodeBidRecord(b []byte) (*BidRecord, error) {
	body, err := checkHeader(b, tagBid)
	if err != nil {
		return nil, err
	}
	if len(body) != 8 {
		return nil, errors.Errorf("malformed bid record: length %d", len(b))
	}
	return &BidRecord{DiscountPercent: binary.BigEndian.Uint64(body)}, nil
}

func checkHeader(b []byte, tag byte) ([]byte, error) {
	if len(b) < 2 {
		return nil, errors.Errorf("malformed record: length %d", len(b))
	}
	if b[0] != tag {
		return nil, errors.Errorf("unexpected record tag 0x%02x, want 0x%02x", b[0], tag)
	}
	if b[1] != codecVersion {
		return nil, errors.Errorf("unsupported record version %d", b[1])
	}
	return b[2:], nil
}

func appendUint64(buf []byte, v uint64) []byte {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], v)
	return append(buf, tmp[:]...)
}

func appendBool(buf []byte, v bool) []byte {
	if v {
		return append(buf, 1)
	}
	return append(buf, 0)
}

func appendString(buf []byte, s string) []byte {
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], uint16(len(s)))
	buf = append(buf, tmp[:]...)
	return append(buf, s...)
}

func readString(b []byte) (string, []byte, error) {
	if len(b) < 2 {
		return "", nil, errors.New("malformed record: truncated string length")
	}
	n := int(binary.BigEndian.Uint16(b))
	if len(b) < 2+n {
		return "", nil, errors.New("malformed record: truncated string")
	}
	return string(b[2 : 2+n]), b[2+n:], nil
}

func readBool(b byte) (bool, error) {
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, errors.Errorf("malformed record: boolean byte 0x%02x", b)
	}
}
