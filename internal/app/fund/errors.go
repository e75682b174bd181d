// Copyright 2024 AlgoChit Network Ltd.
// All rights reserved.
// This material is licensed under the AlgoChit License version 1.0,
// available at https://github.com/algochit/chitfund/blob/master/LICENSE.md.

package fund

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a failed fund operation. Every validation failure maps to
// exactly one kind so callers can react without parsing messages.
type Kind string

const (
	Unauthorized      Kind = "unauthorized"
	InvalidState      Kind = "invalid_state"
	NotFound          Kind = "not_found"
	InvalidArgument   Kind = "invalid_argument"
	AlreadyConfigured Kind = "already_configured"
	NoBids            Kind = "no_bids"
	PaymentMismatch   Kind = "payment_mismatch"
	AlreadyWon        Kind = "already_won"
	AggregationFailed Kind = "aggregation_failed"
)

type Error struct {
	kind Kind
	msg  string
}

func (e *Error) Error() string {
	return e.msg
}

func (e *Error) Kind() Kind {
	return e.kind
}

func Errorf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// WrapKind attaches a kind to an underlying error, keeping its message chain.
func WrapKind(err error, kind Kind, msg string) error {
	return &Error{kind: kind, msg: fmt.Sprintf("%s: %v", msg, err)}
}

// KindOf returns the kind of err or "" if err carries none.
func KindOf(err error) Kind {
	type kinder interface {
		Kind() Kind
	}
	if e, ok := errors.Cause(err).(kinder); ok {
		return e.Kind()
	}
	return ""
}

// IsKind reports whether err (or its cause) is a fund error of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
