// Copyright 2024 AlgoChit Network Ltd.
// All rights reserved.
// This material is licensed under the AlgoChit License version 1.0,
// available at https://github.com/algochit/chitfund/blob/master/LICENSE.md.

package postgres

import (
	"context"

	"github.com/go-pg/pg"
	"github.com/go-pg/pg/orm"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/algochit/chitfund/internal/app/fund/store"
	"github.com/algochit/chitfund/internal/models"
	"github.com/algochit/chitfund/observability"
)

// RecordStorage implements store.RecordStore on Postgres. It holds the
// read-side mirror of the ledger's keyed records.
type RecordStorage struct {
	log          logrus.FieldLogger
	errorCounter prometheus.Counter
	db           orm.DB
}

func NewRecordStorage(obs *observability.Observability, db orm.DB) *RecordStorage {
	errorCounter := obs.Counter(prometheus.CounterOpts{
		Name: "chitfund_record_storage_error_counter",
		Help: "",
	})
	return &RecordStorage{
		log:          obs.Log(),
		errorCounter: errorCounter,
		db:           db,
	}
}

func (s *RecordStorage) Get(ctx context.Context, kind store.RecordKind, key string) ([]byte, error) {
	row := &models.Record{}
	err := s.db.Model(row).
		Where("kind = ?", string(kind)).
		Where("key = ?", key).
		Select()
	if err == pg.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to select %s record", kind)
	}
	return row.Value, nil
}

func (s *RecordStorage) Put(ctx context.Context, kind store.RecordKind, key string, value []byte) error {
	row := &models.Record{
		Kind:  string(kind),
		Key:   key,
		Value: value,
	}
	_, err := s.db.Model(row).
		OnConflict("(kind, key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Insert()
	if err != nil {
		s.errorCounter.Inc()
		return errors.Wrapf(err, "failed to upsert %s record %v", kind, key)
	}
	return nil
}

func (s *RecordStorage) Delete(ctx context.Context, kind store.RecordKind, key string) error {
	res, err := s.db.Model(&models.Record{}).
		Where("kind = ?", string(kind)).
		Where("key = ?", key).
		Delete()
	if err != nil {
		s.errorCounter.Inc()
		return errors.Wrapf(err, "failed to delete %s record %v", kind, key)
	}
	if res.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *RecordStorage) Enumerate(ctx context.Context, kind store.RecordKind) ([]store.Entry, error) {
	var rows []models.Record
	err := s.db.Model(&rows).
		Where("kind = ?", string(kind)).
		Order("key").
		Select()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to enumerate %s records", kind)
	}
	entries := make([]store.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, store.Entry{Key: row.Key, Value: row.Value})
	}
	return entries, nil
}
