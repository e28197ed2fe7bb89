package mutation

import (
	"time"

	"github.com/balkashynov/stride/internal/models"
)

// Store is the persistence interface the mutation layer writes through.
// SavePlan carries the revision the caller loaded; implementations must
// reject the write when the stored revision differs.
type Store interface {
	LoadPlan(userID string) (*models.Plan, int64, error)
	SavePlan(planID string, doc *models.Plan, revision int64) error
	ArchivePlan(userID string, doc *models.Plan, snapshot *models.PlanCycleSnapshot) error
	LoadHistory(userID string) (*models.ProgressHistory, error)
}

// Result is the outcome of a mutation. Exactly one of the three cases
// holds: OK, a precondition denial (Reason set), or a persistence
// failure (Err set, local state rolled back).
type Result struct {
	OK     bool
	Reason string
	Err    error
}

func denied(reason string) Result {
	return Result{Reason: reason}
}

func failed(err error) Result {
	return Result{Err: err}
}

// Mutator owns the in-memory plan and applies every edit through the
// validate / clone / transform / persist / rollback protocol. It is the
// only writer of the plan document.
type Mutator struct {
	store    Store
	userID   string
	plan     *models.Plan
	revision int64
	now      func() time.Time
}

// NewMutator loads the user's current plan and wraps it for editing.
func NewMutator(store Store, userID string) (*Mutator, error) {
	plan, revision, err := store.LoadPlan(userID)
	if err != nil {
		return nil, err
	}
	plan.Normalize()
	return &Mutator{
		store:    store,
		userID:   userID,
		plan:     plan,
		revision: revision,
		now:      time.Now,
	}, nil
}

// Plan exposes the current document as a read-only projection. Callers
// must not modify it; all writes go through mutation operations.
func (m *Mutator) Plan() *models.Plan {
	return m.plan
}

// apply runs one mutation end to end. Validation failures abort with a
// reason and zero state change. The transform runs on a deep copy which
// is applied optimistically; a persistence failure restores the exact
// pre-mutation document.
func (m *Mutator) apply(validate func(p *models.Plan) error, transform func(p *models.Plan) error) Result {
	if validate != nil {
		if err := validate(m.plan); err != nil {
			return denied(err.Error())
		}
	}

	backup := m.plan
	next := m.plan.Clone()
	if err := transform(next); err != nil {
		// Transforms re-check guards against the copy; a failure here
		// is still a precondition denial with no state change.
		return denied(err.Error())
	}

	m.plan = next
	if err := m.store.SavePlan(next.ID, next, m.revision); err != nil {
		m.plan = backup
		return failed(err)
	}
	m.revision++
	return Result{OK: true}
}

// noteLateAdjustment bumps the late-stage counter when a structural edit
// lands after most of the plan is already done.
func noteLateAdjustment(p *models.Plan) {
	if p.Progress() >= 0.6 {
		p.LateStageAdjustments++
	}
}
