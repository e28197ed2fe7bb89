package db

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/balkashynov/stride/internal/models"
)

// Sentinel errors surfaced to the mutation layer.
var (
	// ErrStaleWrite means the stored revision moved underneath the
	// caller (another device or tab saved first). The caller's local
	// state must be rolled back and the action re-issued from a fresh
	// load.
	ErrStaleWrite = errors.New("plan was modified elsewhere, reload and try again")

	// ErrNoCurrentPlan means the user has no active plan.
	ErrNoCurrentPlan = errors.New("no current plan; create one with 'stride plan new'")

	// ErrPlanExists means a current plan already exists and must be
	// archived before a new one is created.
	ErrPlanExists = errors.New("a current plan already exists; archive it first")
)

// Store is the gorm-backed persistence layer for plans and history.
type Store struct {
	db           *gorm.DB
	historyLimit int
}

// NewStore wraps the initialized database connection. historyLimit caps
// the rolling snapshot window (10 by default).
func NewStore(historyLimit int) *Store {
	if historyLimit <= 0 {
		historyLimit = 10
	}
	return &Store{db: DB, historyLimit: historyLimit}
}

// CreatePlan creates the user's current plan with the given number of
// empty weeks. Exactly one plan is current per user at a time.
func (s *Store) CreatePlan(userID, planType string, numWeeks int) (*models.Plan, error) {
	if numWeeks < 1 {
		return nil, fmt.Errorf("a plan needs at least one week")
	}

	var existing models.PlanRecord
	err := s.db.Where("user_id = ? AND current = ?", userID, true).First(&existing).Error
	if err == nil {
		return nil, ErrPlanExists
	}

	plan := &models.Plan{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: time.Now(),
		PlanType:  planType,
		Weeks:     make([]models.Week, numWeeks),
	}
	for i := range plan.Weeks {
		plan.Weeks[i].Number = i + 1
	}

	doc, err := json.Marshal(plan)
	if err != nil {
		return nil, fmt.Errorf("failed to encode plan: %w", err)
	}

	record := models.PlanRecord{
		ID:       plan.ID,
		UserID:   userID,
		Current:  true,
		Revision: 1,
		PlanType: planType,
		Document: doc,
	}
	if err := s.db.Create(&record).Error; err != nil {
		return nil, err
	}
	return plan, nil
}

// LoadPlan returns the user's current plan document and the revision it
// was read at, for the compare-and-swap on save.
func (s *Store) LoadPlan(userID string) (*models.Plan, int64, error) {
	var record models.PlanRecord
	err := s.db.Where("user_id = ? AND current = ?", userID, true).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrNoCurrentPlan
		}
		return nil, 0, err
	}

	var plan models.Plan
	if err := json.Unmarshal(record.Document, &plan); err != nil {
		return nil, 0, fmt.Errorf("failed to decode plan document: %w", err)
	}
	return &plan, record.Revision, nil
}

// SavePlan writes the document back with a compare-and-swap on the
// revision the caller loaded. A concurrent writer makes this fail with
// ErrStaleWrite instead of silently losing their write.
func (s *Store) SavePlan(planID string, doc *models.Plan, revision int64) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}

	result := s.db.Model(&models.PlanRecord{}).
		Where("id = ? AND revision = ?", planID, revision).
		Updates(map[string]interface{}{
			"document": data,
			"revision": revision + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		s.db.Model(&models.PlanRecord{}).Where("id = ?", planID).Count(&count)
		if count == 0 {
			return fmt.Errorf("plan %s not found", planID)
		}
		return ErrStaleWrite
	}
	return nil
}

// ArchivePlan retires the current plan and appends its cycle snapshot
// to history in one transaction: the plan stops being current, the
// snapshot joins the rolling window (oldest beyond the cap are
// dropped), and the lifetime counter advances.
func (s *Store) ArchivePlan(userID string, doc *models.Plan, snapshot *models.PlanCycleSnapshot) error {
	planData, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}
	snapData, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		result := tx.Model(&models.PlanRecord{}).
			Where("id = ? AND current = ?", doc.ID, true).
			Updates(map[string]interface{}{
				"document":    planData,
				"current":     false,
				"archived_at": now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNoCurrentPlan
		}

		record := models.SnapshotRecord{
			ID:       snapshot.ID,
			UserID:   userID,
			Date:     snapshot.Date,
			PlanType: snapshot.PlanType,
			Document: snapData,
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		if err := s.trimSnapshots(tx, userID); err != nil {
			return err
		}

		var meta models.HistoryMetaRecord
		err := tx.Where("user_id = ?", userID).First(&meta).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			meta = models.HistoryMetaRecord{UserID: userID}
			if err := tx.Create(&meta).Error; err != nil {
				return err
			}
		}
		date := snapshot.Date
		return tx.Model(&models.HistoryMetaRecord{}).
			Where("user_id = ?", userID).
			Updates(map[string]interface{}{
				"total_plans_tracked": meta.TotalPlansTracked + 1,
				"last_snapshot_date":  date,
			}).Error
	})
}

// trimSnapshots keeps only the most recent historyLimit snapshots.
func (s *Store) trimSnapshots(tx *gorm.DB, userID string) error {
	var records []models.SnapshotRecord
	if err := tx.Where("user_id = ?", userID).Order("date DESC").Find(&records).Error; err != nil {
		return err
	}
	if len(records) <= s.historyLimit {
		return nil
	}
	for _, old := range records[s.historyLimit:] {
		if err := tx.Delete(&models.SnapshotRecord{}, "id = ?", old.ID).Error; err != nil {
			return err
		}
	}
	return nil
}
