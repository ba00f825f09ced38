package user

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/agilecoach-backend/internal/domain"
	"github.com/yungbote/agilecoach-backend/internal/platform/dbctx"
	"github.com/yungbote/agilecoach-backend/internal/platform/logger"
)

type UserRepo interface {
	Create(dbc dbctx.Context, users []*types.User) ([]*types.User, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.User, error)
	GetByUsername(dbc dbctx.Context, username string) (*types.User, error)
	// GetByIDForUpdate locks the row for the rest of the transaction where
	// the dialect supports it.
	GetByIDForUpdate(dbc dbctx.Context, id uuid.UUID) (*types.User, error)
	UpdateStats(dbc dbctx.Context, u *types.User) error
	UpsertByUsername(dbc dbctx.Context, u *types.User) error
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return &userRepo{db: db, log: baseLog.With("repo", "UserRepo")}
}

func (r *userRepo) tx(dbc dbctx.Context) *gorm.DB {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx)
}

func (r *userRepo) Create(dbc dbctx.Context, users []*types.User) ([]*types.User, error) {
	if len(users) == 0 {
		return []*types.User{}, nil
	}
	if err := r.tx(dbc).Create(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// GetByID returns (nil, nil) when no user exists.
func (r *userRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.User, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var u types.User
	err := r.tx(dbc).Where("id = ?", id).Take(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) GetByIDForUpdate(dbc dbctx.Context, id uuid.UUID) (*types.User, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var u types.User
	err := r.tx(dbc).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		Take(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) GetByUsername(dbc dbctx.Context, username string) (*types.User, error) {
	if username == "" {
		return nil, nil
	}
	var u types.User
	err := r.tx(dbc).Where("username = ?", username).Take(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateStats writes the profile counters in a single statement.
func (r *userRepo) UpdateStats(dbc dbctx.Context, u *types.User) error {
	if u == nil || u.ID == uuid.Nil {
		return nil
	}
	res := r.tx(dbc).Model(&types.User{}).Where("id = ?", u.ID).Updates(map[string]interface{}{
		"current_streak":      u.CurrentStreak,
		"completed_scenarios": u.CompletedScenarios,
		"success_rate":        u.SuccessRate,
		"ai_insights":         u.AIInsights,
		"time_invested":       u.TimeInvested,
		"last_completed_at":   u.LastCompletedAt,
		"updated_at":          u.UpdatedAt,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpsertByUsername inserts u or refreshes the identity fields of an existing
// user with the same username. Counters of existing users are left alone.
func (r *userRepo) UpsertByUsername(dbc dbctx.Context, u *types.User) error {
	return r.tx(dbc).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		DoUpdates: clause.AssignmentColumns([]string{"first_name", "last_name", "email", "updated_at"}),
	}).Create(u).Error
}
