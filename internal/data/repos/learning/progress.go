package learning

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/agilecoach-backend/internal/domain"
	"github.com/yungbote/agilecoach-backend/internal/platform/dbctx"
	"github.com/yungbote/agilecoach-backend/internal/platform/logger"
)

type ProgressRepo interface {
	Create(dbc dbctx.Context, p *types.Progress) error
	GetByUserAndScenario(dbc dbctx.Context, userID, scenarioID uuid.UUID) (*types.Progress, error)
	// GetForUpdate reads the record with a row lock held until the
	// transaction ends (no-op lock on SQLite).
	GetForUpdate(dbc dbctx.Context, userID, scenarioID uuid.UUID) (*types.Progress, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Progress, error)
	Save(dbc dbctx.Context, p *types.Progress) error
}

type progressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProgressRepo(db *gorm.DB, baseLog *logger.Logger) ProgressRepo {
	return &progressRepo{db: db, log: baseLog.With("repo", "ProgressRepo")}
}

func (r *progressRepo) tx(dbc dbctx.Context) *gorm.DB {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx)
}

func (r *progressRepo) Create(dbc dbctx.Context, p *types.Progress) error {
	if p == nil {
		return nil
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return r.tx(dbc).Create(p).Error
}

func (r *progressRepo) GetByUserAndScenario(dbc dbctx.Context, userID, scenarioID uuid.UUID) (*types.Progress, error) {
	return r.get(r.tx(dbc), userID, scenarioID)
}

func (r *progressRepo) GetForUpdate(dbc dbctx.Context, userID, scenarioID uuid.UUID) (*types.Progress, error) {
	return r.get(r.tx(dbc).Clauses(clause.Locking{Strength: "UPDATE"}), userID, scenarioID)
}

func (r *progressRepo) get(q *gorm.DB, userID, scenarioID uuid.UUID) (*types.Progress, error) {
	if userID == uuid.Nil || scenarioID == uuid.Nil {
		return nil, nil
	}
	var p types.Progress
	err := q.Where("user_id = ? AND scenario_id = ?", userID, scenarioID).Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListByUser returns the caller's records, most recently touched first.
func (r *progressRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Progress, error) {
	var out []*types.Progress
	if userID == uuid.Nil {
		return out, nil
	}
	err := r.tx(dbc).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Save writes the mutable fields of an existing record.
func (r *progressRepo) Save(dbc dbctx.Context, p *types.Progress) error {
	if p == nil || p.ID == uuid.Nil {
		return nil
	}
	res := r.tx(dbc).Model(&types.Progress{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
		"current_step": p.CurrentStep,
		"decisions":    p.Decisions,
		"completed":    p.Completed,
		"score":        p.Score,
		"time_spent":   p.TimeSpent,
		"completed_at": p.CompletedAt,
		"updated_at":   p.UpdatedAt,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
