package models

import (
	"time"

	"gorm.io/datatypes"
)

// PlanRecord is the persisted row for a plan. The document itself is
// stored as JSON; the row carries the concurrency and lifecycle fields.
type PlanRecord struct {
	ID        string `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	UserID     string `gorm:"index;not null"`
	Current    bool   `gorm:"default:false"`
	Revision   int64  `gorm:"not null;default:1"`
	PlanType   string
	Document   datatypes.JSON `gorm:"not null"`
	ArchivedAt *time.Time
}

// SnapshotRecord is the persisted row for a plan-cycle snapshot.
type SnapshotRecord struct {
	ID        string `gorm:"primarykey"`
	CreatedAt time.Time

	UserID   string    `gorm:"index;not null"`
	Date     time.Time `gorm:"not null"`
	PlanType string
	Document datatypes.JSON `gorm:"not null"`
}

// HistoryMetaRecord keeps per-user history bookkeeping that survives the
// rolling snapshot window, notably the lifetime plans counter.
type HistoryMetaRecord struct {
	UserID            string `gorm:"primarykey"`
	TotalPlansTracked int
	LastSnapshotDate  *time.Time
}
