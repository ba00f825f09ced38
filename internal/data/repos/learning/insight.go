package learning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/agilecoach-backend/internal/domain"
	"github.com/yungbote/agilecoach-backend/internal/platform/dbctx"
	"github.com/yungbote/agilecoach-backend/internal/platform/logger"
)

type InsightRepo interface {
	Create(dbc dbctx.Context, rows []*types.Insight) ([]*types.Insight, error)
	// ListByUser returns insights newest first. limit <= 0 means no limit.
	ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.Insight, error)
	CountByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error)
}

type insightRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewInsightRepo(db *gorm.DB, baseLog *logger.Logger) InsightRepo {
	return &insightRepo{db: db, log: baseLog.With("repo", "InsightRepo")}
}

func (r *insightRepo) tx(dbc dbctx.Context) *gorm.DB {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx)
}

func (r *insightRepo) Create(dbc dbctx.Context, rows []*types.Insight) ([]*types.Insight, error) {
	if len(rows) == 0 {
		return []*types.Insight{}, nil
	}
	for _, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
	}
	if err := r.tx(dbc).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *insightRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.Insight, error) {
	var out []*types.Insight
	if userID == uuid.Nil {
		return out, nil
	}
	q := r.tx(dbc).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *insightRepo) CountByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := r.tx(dbc).Model(&types.Insight{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}
