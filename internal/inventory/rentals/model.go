package rentals

import (
	"database/sql"
	"time"
)

type Status string

const (
	StatusBorrowed Status = "borrowed"
	StatusReturned Status = "returned"
)

func ParseStatus(s string) (Status, bool) {
	switch st := Status(s); st {
	case StatusBorrowed, StatusReturned:
		return st, true
	}
	return "", false
}

const DateLayout = "2006-01-02"

// Rental は rentals テーブルの1行を表す。
// Quantity はこの貸出でまだ借りている数
type Rental struct {
	ID                 int64        `db:"id"`
	ULID               string       `db:"rental_ulid"`
	ItemID             int64        `db:"item_id"`
	UserID             string       `db:"user_id"`
	Quantity           int          `db:"quantity"`
	RentalDate         time.Time    `db:"rental_date"`
	ExpectedReturnDate time.Time    `db:"expected_return_date"`
	ReturnDate         sql.NullTime `db:"return_date"`
	Status             Status       `db:"status"`
}

// ReturnOne は1回の返却操作で1個だけ返す。
// borrowed 以外なら何もせず false
func (r *Rental) ReturnOne(today time.Time) bool {
	if r.Status != StatusBorrowed || r.Quantity <= 0 {
		return false
	}
	r.Quantity--
	if r.Quantity == 0 {
		r.Status = StatusReturned
		r.ReturnDate = sql.NullTime{Time: today, Valid: true}
	}
	return true
}

func (r *Rental) Overdue(today time.Time) bool {
	return r.Status == StatusBorrowed && r.ExpectedReturnDate.Before(today)
}

// RentalView は一覧・エクスポート用に備品名を付けたもの
type RentalView struct {
	Rental
	ItemName string `db:"item_name"`
}

// ReturnLog は return_logs テーブルの1行。追記のみ
type ReturnLog struct {
	ID               int64     `db:"id"`
	ULID             string    `db:"log_ulid"`
	RentalID         int64     `db:"rental_id"`
	ReturnedQuantity int       `db:"returned_quantity"`
	ReturnedAt       time.Time `db:"returned_at"`
	ReturnedBy       string    `db:"returned_by"`
}

// 貸出履歴の検索条件。全て任意で AND 結合
type HistoryFilter struct {
	UserID    string
	ItemID    *int64
	Status    Status
	StartDate *time.Time // rental_date >= StartDate
	EndDate   *time.Time // 終了日は丸1日含む
}

type Page struct {
	Limit  int
	Offset int
	Order  string // rental_date 順 asc / desc
}

// Stats はダッシュボード用の件数
type Stats struct {
	OpenRentals     int64 `db:"open_rentals" json:"open_rentals"`
	OutstandingQty  int64 `db:"outstanding_qty" json:"outstanding_quantity"`
	OverdueRentals  int64 `db:"overdue_rentals" json:"overdue_rentals"`
	ReturnedRentals int64 `db:"returned_rentals" json:"returned_rentals"`
}

// DateOf は t を loc での日付（UTC 0時）に落とす。DATE カラムとの比較用
func DateOf(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
