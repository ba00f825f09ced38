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

type LearningPathRepo interface {
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.LearningPath, error)
	List(dbc dbctx.Context) ([]*types.LearningPath, error)
	UpsertBySlug(dbc dbctx.Context, rows []*types.LearningPath) error
}

type learningPathRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLearningPathRepo(db *gorm.DB, baseLog *logger.Logger) LearningPathRepo {
	return &learningPathRepo{db: db, log: baseLog.With("repo", "LearningPathRepo")}
}

func (r *learningPathRepo) tx(dbc dbctx.Context) *gorm.DB {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx)
}

func (r *learningPathRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.LearningPath, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var lp types.LearningPath
	err := r.tx(dbc).Where("id = ?", id).Take(&lp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &lp, nil
}

// List returns every path ordered by its curriculum position.
func (r *learningPathRepo) List(dbc dbctx.Context) ([]*types.LearningPath, error) {
	var out []*types.LearningPath
	err := r.tx(dbc).Order("sort_order ASC").Order("slug ASC").Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *learningPathRepo) UpsertBySlug(dbc dbctx.Context, rows []*types.LearningPath) error {
	if len(rows) == 0 {
		return nil
	}
	return r.tx(dbc).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "description", "framework", "scenario_ids", "sort_order"}),
	}).Create(&rows).Error
}
