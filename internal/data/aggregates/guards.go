package aggregates

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/agilecoach-backend/internal/platform/dbctx"
)

// Expect lists the column values a row must still hold for a guarded
// update to apply.
type Expect map[string]any

// CASGuard applies compare-and-set updates so a transition only lands on
// the row state it was computed from.
type CASGuard struct {
	db *gorm.DB
}

func NewCASGuard(db *gorm.DB) CASGuard {
	return CASGuard{db: db}
}

func (g CASGuard) conn(dbc dbctx.Context) (*gorm.DB, error) {
	if dbc.Tx != nil {
		return dbc.Tx.WithContext(dbc.Ctx), nil
	}
	if g.db != nil {
		return g.db.WithContext(dbc.Ctx), nil
	}
	return nil, ValidationError("missing db transaction context")
}

// Update writes updates to the row with id when every expect column still
// matches. It reports whether a row changed.
func (g CASGuard) Update(dbc dbctx.Context, table string, id uuid.UUID, expect Expect, updates map[string]any) (bool, error) {
	db, err := g.conn(dbc)
	if err != nil {
		return false, err
	}
	table = strings.TrimSpace(table)
	if table == "" || id == uuid.Nil {
		return false, ValidationError("table and id are required for a guarded update")
	}
	if len(expect) == 0 {
		return false, ValidationError("a guarded update needs at least one expected column")
	}
	if len(updates) == 0 {
		return false, ValidationError("updates must not be empty")
	}

	q := db.Table(table).Where("id = ?", id)
	cols := make([]string, 0, len(expect))
	for col := range expect {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	for _, col := range cols {
		q = q.Where(strings.TrimSpace(col)+" = ?", expect[col])
	}
	res := q.Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// RequireCASSuccess converts a failed compare-and-set into a conflict.
func RequireCASSuccess(ok bool, message string) error {
	if ok {
		return nil
	}
	return ConflictError(strings.TrimSpace(message))
}
