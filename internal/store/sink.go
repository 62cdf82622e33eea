// Package store persists canonical records into PostgreSQL. Each record is
// upserted in its own transaction so one bad row never takes down the rest
// of the batch.
package store

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"main/internal/errors"
	"main/internal/model"
	"main/internal/schema"
	"main/pkg/conn"
	"main/pkg/exception"
)

// Sink is the durable upsert-capable store keyed by record identifier.
type Sink struct {
	client *conn.Client
}

// NewSink wraps a PostgreSQL client.
func NewSink(client *conn.Client) *Sink {
	return &Sink{client: client}
}

// Migrate creates or updates the snapshot and run-log tables.
func (s *Sink) Migrate() error {
	return s.client.DB().AutoMigrate(&model.CanonicalRecord{}, &model.RunLog{})
}

// Ping probes sink availability before a persistence pass starts.
func (s *Sink) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx); err != nil {
		return errors.Wrap(exception.ErrSinkUnavailable, err.Error())
	}
	return nil
}

// Upsert writes one record inside its own transaction: committed on
// success, rolled back on any error. On conflict with an existing
// identifier only the mutable market columns are overwritten; identity
// fields stay untouched.
func (s *Sink) Upsert(ctx context.Context, rec model.CanonicalRecord) error {
	if rec.ID == "" {
		return exception.ErrMissingIdentifier
	}
	return s.client.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: schema.FieldID}},
			DoUpdates: clause.AssignmentColumns(schema.MutableColumns()),
		}).Create(&rec).Error
	})
}

// RecordRun appends one run-log row.
func (s *Sink) RecordRun(ctx context.Context, entry model.RunLog) error {
	return s.client.DB().WithContext(ctx).Create(&entry).Error
}
