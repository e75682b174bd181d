// Copyright 2024 AlgoChit Network Ltd.
// All rights reserved.
// This material is licensed under the AlgoChit License version 1.0,
// available at https://github.com/algochit/chitfund/blob/master/LICENSE.md.

package postgres

import (
	"context"

	"github.com/go-pg/pg/orm"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/algochit/chitfund/internal/app/fund/store"
	"github.com/algochit/chitfund/internal/models"
	"github.com/algochit/chitfund/observability"
)

// CallStorage implements store.CallLog on Postgres. The ordinal comes from
// the table's sequence, preserving consensus order for replays.
type CallStorage struct {
	log          logrus.FieldLogger
	errorCounter prometheus.Counter
	db           orm.DB
}

func NewCallStorage(obs *observability.Observability, db orm.DB) *CallStorage {
	errorCounter := obs.Counter(prometheus.CounterOpts{
		Name: "chitfund_call_storage_error_counter",
		Help: "",
	})
	return &CallStorage{
		log:          obs.Log(),
		errorCounter: errorCounter,
		db:           db,
	}
}

func (s *CallStorage) Append(ctx context.Context, sender string, kind store.CallKind, args []byte) (uint64, error) {
	row := &models.CallRecord{
		Sender: sender,
		Kind:   string(kind),
		Args:   args,
	}
	_, err := s.db.Model(row).
		Returning("ordinal").
		Insert()
	if err != nil {
		s.errorCounter.Inc()
		return 0, errors.Wrapf(err, "failed to insert %s call record", kind)
	}
	return uint64(row.Ordinal), nil
}

func (s *CallStorage) Search(ctx context.Context, kind store.CallKind) ([]store.CallRecord, error) {
	var rows []models.CallRecord
	err := s.db.Model(&rows).
		Where("kind = ?", string(kind)).
		Order("ordinal").
		Select()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to search %s call records", kind)
	}
	records := make([]store.CallRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, store.CallRecord{
			Ordinal: uint64(row.Ordinal),
			Sender:  row.Sender,
			Kind:    store.CallKind(row.Kind),
			Args:    row.Args,
		})
	}
	return records, nil
}
