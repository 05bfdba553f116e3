package items

import "time"

// Item は inventory_items テーブルの1行を表す
type Item struct {
	ID          int64     `db:"id"`
	Name        string    `db:"name"`
	Category    string    `db:"category"`
	Quantity    int       `db:"quantity"` // 現在の貸出可能数
	Location    string    `db:"location"`
	Description string    `db:"description"`
	IsAvailable bool      `db:"is_available"`
	AddedBy     string    `db:"added_by"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type StockFilter string

const (
	StockAll        StockFilter = ""
	StockInStock    StockFilter = "in_stock"     // quantity > 0
	StockOutOfStock StockFilter = "out_of_stock" // quantity <= 0
)

func ParseStockFilter(s string) (StockFilter, bool) {
	switch f := StockFilter(s); f {
	case StockAll, StockInStock, StockOutOfStock:
		return f, true
	}
	return "", false
}

// 備品一覧取得用の検索条件
type Filter struct {
	Keyword  string // name / description の部分一致（大文字小文字無視）
	Category string
	Stock    StockFilter
}

type Page struct {
	Limit  int
	Offset int
	Order  string // asc / desc (id順)
}

// Summary はダッシュボード用の在庫集計
type Summary struct {
	ItemCount     int64 `db:"item_count" json:"item_count"`
	TotalQuantity int64 `db:"total_quantity" json:"total_quantity"`
	OutOfStock    int64 `db:"out_of_stock" json:"out_of_stock"`
}
