package exports

import (
	"strconv"

	"BIHIN-backend/internal/inventory/rentals"
)

// Record は全フォーマット共通の1行
type Record struct {
	ItemName           string
	Quantity           int
	RentalDate         string
	ExpectedReturnDate string
	ReturnDate         string // 未返却なら Labels.NotReturned()
	Status             string
}

func (r Record) Cells() []string {
	return []string{
		r.ItemName,
		strconv.Itoa(r.Quantity),
		r.RentalDate,
		r.ExpectedReturnDate,
		r.ReturnDate,
		r.Status,
	}
}

func ToRecords(rows []rentals.RentalView, l Labels) []Record {
	out := make([]Record, 0, len(rows))
	for _, v := range rows {
		rec := Record{
			ItemName:           v.ItemName,
			Quantity:           v.Quantity,
			RentalDate:         v.RentalDate.Format(rentals.DateLayout),
			ExpectedReturnDate: v.ExpectedReturnDate.Format(rentals.DateLayout),
			ReturnDate:         l.NotReturned(),
			Status:             l.Status(v.Status),
		}
		if v.ReturnDate.Valid {
			rec.ReturnDate = v.ReturnDate.Time.Format(rentals.DateLayout)
		}
		out = append(out, rec)
	}
	return out
}
