package model

import (
	"time"

	"main/internal/model/enum"
)

// RunLog is the durable record of one pipeline run.
type RunLog struct {
	ID            string             `gorm:"column:id;primaryKey"`
	StartedAt     time.Time          `gorm:"column:started_at"`
	FinishedAt    time.Time          `gorm:"column:finished_at"`
	Outcome       string             `gorm:"column:outcome"`
	QualityStatus enum.QualityStatus `gorm:"column:quality_status"`
	RowsFetched   int                `gorm:"column:rows_fetched"`
	RowsDropped   int                `gorm:"column:rows_dropped"`
	RowsWritten   int                `gorm:"column:rows_written"`
	RowsFailed    int                `gorm:"column:rows_failed"`
	Error         string             `gorm:"column:error"`
}

// TableName places run history next to the snapshot table.
func (RunLog) TableName() string { return "pipeline_runs" }
