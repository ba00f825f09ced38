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

type ScenarioRepo interface {
	Create(dbc dbctx.Context, rows []*types.Scenario) ([]*types.Scenario, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Scenario, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Scenario, error)
	// List returns every scenario, or only those whose framework equals
	// framework exactly when it is non-empty.
	List(dbc dbctx.Context, framework string) ([]*types.Scenario, error)
	UpsertBySlug(dbc dbctx.Context, rows []*types.Scenario) error
}

type scenarioRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewScenarioRepo(db *gorm.DB, baseLog *logger.Logger) ScenarioRepo {
	return &scenarioRepo{db: db, log: baseLog.With("repo", "ScenarioRepo")}
}

func (r *scenarioRepo) tx(dbc dbctx.Context) *gorm.DB {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx)
}

func (r *scenarioRepo) Create(dbc dbctx.Context, rows []*types.Scenario) ([]*types.Scenario, error) {
	if len(rows) == 0 {
		return []*types.Scenario{}, nil
	}
	if err := r.tx(dbc).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetByID returns (nil, nil) when the scenario does not exist.
func (r *scenarioRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Scenario, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var sc types.Scenario
	err := r.tx(dbc).Where("id = ?", id).Take(&sc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sc, nil
}

func (r *scenarioRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Scenario, error) {
	var out []*types.Scenario
	if len(ids) == 0 {
		return out, nil
	}
	if err := r.tx(dbc).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *scenarioRepo) List(dbc dbctx.Context, framework string) ([]*types.Scenario, error) {
	q := r.tx(dbc).Order("created_at ASC").Order("slug ASC")
	if framework != "" {
		q = q.Where("framework = ?", framework)
	}
	var out []*types.Scenario
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// UpsertBySlug inserts catalog scenarios, replacing the stored copy of any
// scenario with the same slug.
func (r *scenarioRepo) UpsertBySlug(dbc dbctx.Context, rows []*types.Scenario) error {
	if len(rows) == 0 {
		return nil
	}
	return r.tx(dbc).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "slug"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title", "description", "framework", "difficulty", "duration",
			"rating", "image_url", "learning_objectives", "content",
		}),
	}).Create(&rows).Error
}
