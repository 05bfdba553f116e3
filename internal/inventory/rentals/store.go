package rentals

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/mysql"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jmoiron/sqlx"

	"BIHIN-backend/internal/platform/apierr"
	"BIHIN-backend/internal/platform/db"
)

const (
	defaultLimit = 50
	maxLimit     = 500
	// MaxExportRows はエクスポート1回あたりの上限
	MaxExportRows = 10000
)

var (
	dialect = goqu.Dialect("mysql")

	viewColumns = []any{
		goqu.I("r.id"), goqu.I("r.rental_ulid"), goqu.I("r.item_id"), goqu.I("r.user_id"), goqu.I("r.quantity"),
		goqu.I("r.rental_date"), goqu.I("r.expected_return_date"), goqu.I("r.return_date"), goqu.I("r.status"),
		goqu.I("i.name").As("item_name"),
	}
)

type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store { return &Store{db: db} }

func (s *Store) rentalsWithItems() *goqu.SelectDataset {
	return dialect.From(goqu.T("rentals").As("r")).Prepared(true).
		Join(goqu.T("inventory_items").As("i"), goqu.On(goqu.I("i.id").Eq(goqu.I("r.item_id"))))
}

func (f HistoryFilter) where() []goqu.Expression {
	var ex []goqu.Expression
	if f.UserID != "" {
		ex = append(ex, goqu.I("r.user_id").Eq(f.UserID))
	}
	if f.ItemID != nil {
		ex = append(ex, goqu.I("r.item_id").Eq(*f.ItemID))
	}
	if f.Status != "" {
		ex = append(ex, goqu.I("r.status").Eq(string(f.Status)))
	}
	if f.StartDate != nil {
		ex = append(ex, goqu.I("r.rental_date").Gte(f.StartDate.Format(DateLayout)))
	}
	if f.EndDate != nil {
		// 終了日を含めるため翌日未満
		ex = append(ex, goqu.I("r.rental_date").Lt(f.EndDate.AddDate(0, 0, 1).Format(DateLayout)))
	}
	return ex
}

func normalizePage(p Page, max int) Page {
	if p.Limit <= 0 {
		p.Limit = defaultLimit
	}
	if p.Limit > max {
		p.Limit = max
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// List は備品名付きの貸出一覧と総件数を返す
func (s *Store) List(ctx context.Context, f HistoryFilter, p Page) ([]RentalView, int64, error) {
	return s.list(ctx, f, normalizePage(p, maxLimit))
}

// ListForExport は上限を MaxExportRows まで広げる
func (s *Store) ListForExport(ctx context.Context, f HistoryFilter) ([]RentalView, error) {
	rows, _, err := s.list(ctx, f, Page{Limit: MaxExportRows, Order: "asc"})
	return rows, err
}

func (s *Store) list(ctx context.Context, f HistoryFilter, p Page) ([]RentalView, int64, error) {
	base := s.rentalsWithItems().Where(f.where()...)

	orders := []exp.OrderedExpression{goqu.I("r.rental_date").Desc(), goqu.I("r.id").Desc()}
	if strings.ToLower(p.Order) == "asc" {
		orders = []exp.OrderedExpression{goqu.I("r.rental_date").Asc(), goqu.I("r.id").Asc()}
	}
	q, args, err := base.Select(viewColumns...).
		Order(orders...).
		Limit(uint(p.Limit)).
		Offset(uint(p.Offset)).
		ToSQL()
	if err != nil {
		return nil, 0, err
	}
	var out []RentalView
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

// GetByID / GetByULID: ロックなし、備品名付き
func (s *Store) GetByID(ctx context.Context, id int64) (*RentalView, error) {
	return s.getView(ctx, goqu.I("r.id").Eq(id))
}

func (s *Store) GetByULID(ctx context.Context, ulid string) (*RentalView, error) {
	return s.getView(ctx, goqu.I("r.rental_ulid").Eq(ulid))
}

func (s *Store) getView(ctx context.Context, cond goqu.Expression) (*RentalView, error) {
	q, args, err := s.rentalsWithItems().Select(viewColumns...).Where(cond).Limit(1).ToSQL()
	if err != nil {
		return nil, err
	}
	var v RentalView
	if err := sqlx.GetContext(ctx, s.db, &v, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apierr.ErrNotFound("rental not found")
		}
		return nil, err
	}
	return &v, nil
}

func (s *Store) ListReturns(ctx context.Context, rentalID int64) ([]ReturnLog, error) {
	const q = `
SELECT id, log_ulid, rental_id, returned_quantity, returned_at, returned_by
FROM return_logs
WHERE rental_id = ?
ORDER BY returned_at ASC, id ASC
`
	var out []ReturnLog
	if err := sqlx.SelectContext(ctx, s.db, &out, q, rentalID); err != nil {
		return nil, err
	}
	return out, nil
}

// MonthlyTotals は rental_date の月 × 備品名で quantity を合計する。userID が空なら全件
func (s *Store) MonthlyTotals(ctx context.Context, userID string) ([]MonthlyRow, error) {
	month := goqu.L("DATE_FORMAT(`r`.`rental_date`, '%Y-%m')")
	ds := s.rentalsWithItems().
		Select(month.As("month"), goqu.I("i.name").As("item_name"), goqu.SUM(goqu.I("r.quantity")).As("quantity")).
		GroupBy(goqu.C("month"), goqu.I("i.name")).
		Order(goqu.C("month").Asc(), goqu.I("i.name").Asc())
	if userID != "" {
		ds = ds.Where(goqu.I("r.user_id").Eq(userID))
	}
	q, args, err := ds.ToSQL()
	if err != nil {
		return nil, err
	}
	var out []MonthlyRow
	if err := sqlx.SelectContext(ctx, s.db, &out, q, args...); err != nil {
		return nil, err
	}
	return out, nil
}

// Stats: userID が空なら全体
func (s *Store) Stats(ctx context.Context, userID string, today time.Time) (Stats, error) {
	ds := dialect.From(goqu.T("rentals").As("r")).Prepared(true).Select(
		goqu.L("COALESCE(SUM(CASE WHEN `r`.`status` = 'borrowed' THEN 1 ELSE 0 END), 0)").As("open_rentals"),
		goqu.L("COALESCE(SUM(CASE WHEN `r`.`status` = 'borrowed' THEN `r`.`quantity` ELSE 0 END), 0)").As("outstanding_qty"),
		goqu.L("COALESCE(SUM(CASE WHEN `r`.`status` = 'borrowed' AND `r`.`expected_return_date` < ? THEN 1 ELSE 0 END), 0)", today.Format(DateLayout)).As("overdue_rentals"),
		goqu.L("COALESCE(SUM(CASE WHEN `r`.`status` = 'returned' THEN 1 ELSE 0 END), 0)").As("returned_rentals"),
	)
	if userID != "" {
		ds = ds.Where(goqu.I("r.user_id").Eq(userID))
	}
	q, args, err := ds.ToSQL()
	if err != nil {
		return Stats{}, err
	}
	var st Stats
	if err := sqlx.GetContext(ctx, s.db, &st, q, args...); err != nil {
		return Stats{}, err
	}
	return st, nil
}

// ---- Tx 内で使うもの ----

// lockItemStock は inventory_items の行をロックして在庫数を返す
func lockItemStock(ctx context.Context, tx db.DBTX, itemID int64) (int, error) {
	const q = `SELECT quantity FROM inventory_items WHERE id = ? FOR UPDATE`
	var qty int
	if err := tx.QueryRowContext(ctx, q, itemID).Scan(&qty); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, apierr.ErrNotFound("item not found")
		}
		return 0, err
	}
	return qty, nil
}

// decrementStock: 在庫が足りなければ更新されない
func decrementStock(ctx context.Context, tx db.DBTX, itemID int64, n int) error {
	const q = `UPDATE inventory_items SET quantity = quantity - ? WHERE id = ? AND quantity >= ?`
	res, err := tx.ExecContext(ctx, q, n, itemID, n)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff != 1 {
		return apierr.ErrInvalid("requested quantity exceeds available stock")
	}
	return nil
}

func incrementStock(ctx context.Context, tx db.DBTX, itemID int64, n int) error {
	const q = `UPDATE inventory_items SET quantity = quantity + ? WHERE id = ?`
	res, err := tx.ExecContext(ctx, q, n, itemID)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff != 1 {
		return apierr.ErrInternal("failed to update inventory_items.quantity")
	}
	return nil
}

func insertRental(ctx context.Context, tx db.DBTX, r *Rental) error {
	const q = `
INSERT INTO rentals (rental_ulid, item_id, user_id, quantity, rental_date, expected_return_date, return_date, status)
VALUES (?, ?, ?, ?, ?, ?, NULL, ?)
`
	res, err := tx.ExecContext(ctx, q,
		r.ULID, r.ItemID, r.UserID, r.Quantity,
		r.RentalDate.Format(DateLayout), r.ExpectedReturnDate.Format(DateLayout), string(r.Status),
	)
	if err != nil {
		return apierr.FromMySQL(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	r.ID = id
	return nil
}

// lockRental は id または rental_ulid で貸出行をロックする
func lockRental(ctx context.Context, tx db.DBTX, id int64, ulid string) (*Rental, error) {
	q := `
SELECT id, rental_ulid, item_id, user_id, quantity, rental_date, expected_return_date, return_date, status
FROM rentals
WHERE `
	var arg any
	if id > 0 {
		q += `id = ?`
		arg = id
	} else {
		q += `rental_ulid = ?`
		arg = ulid
	}
	q += ` FOR UPDATE`

	var r Rental
	var status string
	err := tx.QueryRowContext(ctx, q, arg).Scan(
		&r.ID, &r.ULID, &r.ItemID, &r.UserID, &r.Quantity,
		&r.RentalDate, &r.ExpectedReturnDate, &r.ReturnDate, &status,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apierr.ErrNotFound("rental not found")
	}
	if err != nil {
		return nil, err
	}
	r.Status = Status(status)
	return &r, nil
}

func updateRentalReturn(ctx context.Context, tx db.DBTX, r *Rental) error {
	const q = `UPDATE rentals SET quantity = ?, status = ?, return_date = ? WHERE id = ?`
	var rd any
	if r.ReturnDate.Valid {
		rd = r.ReturnDate.Time.Format(DateLayout)
	}
	res, err := tx.ExecContext(ctx, q, r.Quantity, string(r.Status), rd, r.ID)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff != 1 {
		return apierr.ErrInternal("failed to update rentals")
	}
	return nil
}

func insertReturnLog(ctx context.Context, tx db.DBTX, l *ReturnLog) error {
	const q = `
INSERT INTO return_logs (log_ulid, rental_id, returned_quantity, returned_at, returned_by)
VALUES (?, ?, ?, ?, ?)
`
	res, err := tx.ExecContext(ctx, q, l.ULID, l.RentalID, l.ReturnedQuantity, l.ReturnedAt, l.ReturnedBy)
	if err != nil {
		return apierr.FromMySQL(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	l.ID = id
	return nil
}
