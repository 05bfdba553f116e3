package items

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/mysql"
	"github.com/jmoiron/sqlx"

	"BIHIN-backend/internal/platform/apierr"
	"BIHIN-backend/internal/platform/db"
)

const (
	tableItems   = "inventory_items"
	defaultLimit = 50
	maxLimit     = 500
)

var (
	dialect     = goqu.Dialect("mysql")
	itemColumns = []any{"id", "name", "category", "quantity", "location", "description", "is_available", "added_by", "created_at", "updated_at"}
)

type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store { return &Store{db: db} }

// likeEscaper は LIKE のワイルドカードをエスケープする
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (f Filter) where() []goqu.Expression {
	var ex []goqu.Expression
	if kw := strings.TrimSpace(f.Keyword); kw != "" {
		pat := "%" + likeEscaper.Replace(kw) + "%"
		// mysql dialect の ILike は照合順序依存の LIKE になる
		ex = append(ex, goqu.Or(
			goqu.C("name").ILike(pat),
			goqu.C("description").ILike(pat),
		))
	}
	if f.Category != "" {
		ex = append(ex, goqu.C("category").Eq(f.Category))
	}
	switch f.Stock {
	case StockInStock:
		ex = append(ex, goqu.C("quantity").Gt(0))
	case StockOutOfStock:
		ex = append(ex, goqu.C("quantity").Lte(0))
	}
	return ex
}

func normalizePage(p Page) Page {
	if p.Limit <= 0 {
		p.Limit = defaultLimit
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

func (s *Store) List(ctx context.Context, f Filter, p Page) ([]Item, int64, error) {
	p = normalizePage(p)
	base := dialect.From(tableItems).Prepared(true).Where(f.where()...)

	order := goqu.C("id").Desc()
	if strings.ToLower(p.Order) == "asc" {
		order = goqu.C("id").Asc()
	}
	q, args, err := base.Select(itemColumns...).
		Order(order).
		Limit(uint(p.Limit)).
		Offset(uint(p.Offset)).
		ToSQL()
	if err != nil {
		return nil, 0, err
	}

	var out []Item
	if err := sqlx.SelectContext(ctx, s.db, &out, q, args...); err != nil {
		return nil, 0, err
	}

	cq, cargs, err := base.Select(goqu.COUNT(goqu.Star())).ToSQL()
	if err != nil {
		return nil, 0, err
	}
	var total int64
	if err := sqlx.GetContext(ctx, s.db, &total, cq, cargs...); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *Store) GetByID(ctx context.Context, id int64) (*Item, error) {
	const q = `
SELECT id, name, category, quantity, location, description, is_available, added_by, created_at, updated_at
FROM inventory_items
WHERE id = ?
`
	var it Item
	if err := sqlx.GetContext(ctx, s.db, &it, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apierr.ErrNotFound("item not found")
		}
		return nil, err
	}
	return &it, nil
}

func (s *Store) Categories(ctx context.Context) ([]string, error) {
	const q = `SELECT DISTINCT category FROM inventory_items ORDER BY category`
	var out []string
	if err := sqlx.SelectContext(ctx, s.db, &out, q); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Summary(ctx context.Context) (Summary, error) {
	const q = `
SELECT
  COUNT(*) AS item_count,
  COALESCE(SUM(quantity), 0) AS total_quantity,
  COALESCE(SUM(CASE WHEN quantity = 0 THEN 1 ELSE 0 END), 0) AS out_of_stock
FROM inventory_items
`
	var sum Summary
	if err := sqlx.GetContext(ctx, s.db, &sum, q); err != nil {
		return Summary{}, err
	}
	return sum, nil
}

func (s *Store) Insert(ctx context.Context, it *Item) error {
	q, args, err := dialect.Insert(tableItems).Prepared(true).Rows(goqu.Record{
		"name":         it.Name,
		"category":     it.Category,
		"quantity":     it.Quantity,
		"location":     it.Location,
		"description":  it.Description,
		"is_available": it.IsAvailable,
		"added_by":     it.AddedBy,
		"created_at":   it.CreatedAt,
		"updated_at":   it.UpdatedAt,
	}).ToSQL()
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return apierr.FromMySQL(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	it.ID = id
	return nil
}

// Update は変更のあるカラムだけ SET する
func (s *Store) Update(ctx context.Context, id int64, rec goqu.Record) error {
	if len(rec) == 0 {
		return nil
	}
	q, args, err := dialect.Update(tableItems).Prepared(true).
		Set(rec).
		Where(goqu.C("id").Eq(id)).
		ToSQL()
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return apierr.FromMySQL(err)
	}
	return nil
}

// Delete は貸出の記録が1件でもあれば拒否する（rentals は削除しないため）
func (s *Store) Delete(ctx context.Context, id int64) error {
	return db.RunInTx(ctx, s.db.DB, nil, func(ctx context.Context, tx db.DBTX) error {
		var locked int64
		err := tx.QueryRowContext(ctx, `SELECT id FROM inventory_items WHERE id = ? FOR UPDATE`, id).Scan(&locked)
		if errors.Is(err, sql.ErrNoRows) {
			return apierr.ErrNotFound("item not found")
		}
		if err != nil {
			return err
		}

		var total, open int64
		const cq = `
SELECT COUNT(*), COALESCE(SUM(CASE WHEN status = 'borrowed' THEN 1 ELSE 0 END), 0)
FROM rentals
WHERE item_id = ?
`
		if err := tx.QueryRowContext(ctx, cq, id).Scan(&total, &open); err != nil {
			return err
		}
		if open > 0 {
			return apierr.ErrConflict("item has open rentals")
		}
		if total > 0 {
			return apierr.ErrConflict("item has rental history")
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM inventory_items WHERE id = ?`, id); err != nil {
			return apierr.FromMySQL(err)
		}
		return nil
	})
}
