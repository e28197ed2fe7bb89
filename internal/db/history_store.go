package db

import (
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/balkashynov/stride/internal/models"
)

// LoadHistory returns the rolling snapshot window (most-recent-last)
// plus the lifetime bookkeeping. An empty history is a valid result,
// not an error.
func (s *Store) LoadHistory(userID string) (*models.ProgressHistory, error) {
	var records []models.SnapshotRecord
	err := s.db.Where("user_id = ?", userID).Order("date ASC").Find(&records).Error
	if err != nil {
		return nil, err
	}

	history := &models.ProgressHistory{}
	for _, record := range records {
		var snap models.PlanCycleSnapshot
		if err := json.Unmarshal(record.Document, &snap); err != nil {
			return nil, fmt.Errorf("failed to decode snapshot %s: %w", record.ID, err)
		}
		history.Snapshots = append(history.Snapshots, snap)
	}

	var meta models.HistoryMetaRecord
	err = s.db.Where("user_id = ?", userID).First(&meta).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			history.TotalPlansTracked = len(history.Snapshots)
			return history, nil
		}
		return nil, err
	}
	history.TotalPlansTracked = meta.TotalPlansTracked
	history.LastSnapshotDate = meta.LastSnapshotDate
	return history, nil
}
