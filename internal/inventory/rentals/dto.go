package rentals

import "time"

// 貸出リクエスト。フォーム送信と JSON の両方を受ける
type BorrowRequest struct {
	Quantity int `json:"quantity" form:"quantity"`
	// "2006-01-02" 形式
	ExpectedReturnDate string `json:"expected_return_date" form:"expected_return_date"`
}

type RentalResponse struct {
	ID                 int64   `json:"id"`
	ULID               string  `json:"rental_ulid"`
	ItemID             int64   `json:"item_id"`
	ItemName           string  `json:"item_name,omitempty"`
	UserID             string  `json:"user_id"`
	Quantity           int     `json:"quantity"`
	RentalDate         string  `json:"rental_date"`
	ExpectedReturnDate string  `json:"expected_return_date"`
	ReturnDate         *string `json:"return_date"`
	Status             Status  `json:"status"`
	Overdue            bool    `json:"overdue"`
}

type ListRentalsResponse struct {
	Rentals []RentalResponse `json:"rentals"`
	Total   int64            `json:"total"`
}

type ReturnResult struct {
	Rental           RentalResponse `json:"rental"`
	ReturnedQuantity int            `json:"returned_quantity"` // 0 なら何もしていない
}

type ReturnLogResponse struct {
	ID               int64     `json:"id"`
	ULID             string    `json:"log_ulid"`
	RentalID         int64     `json:"rental_id"`
	ReturnedQuantity int       `json:"returned_quantity"`
	ReturnedAt       time.Time `json:"returned_at"`
	ReturnedBy       string    `json:"returned_by"`
}

func buildRentalResponse(r *Rental, itemName string, today time.Time) RentalResponse {
	resp := RentalResponse{
		ID:                 r.ID,
		ULID:               r.ULID,
		ItemID:             r.ItemID,
		ItemName:           itemName,
		UserID:             r.UserID,
		Quantity:           r.Quantity,
		RentalDate:         r.RentalDate.Format(DateLayout),
		ExpectedReturnDate: r.ExpectedReturnDate.Format(DateLayout),
		Status:             r.Status,
		Overdue:            r.Overdue(today),
	}
	if r.ReturnDate.Valid {
		v := r.ReturnDate.Time.Format(DateLayout)
		resp.ReturnDate = &v
	}
	return resp
}

func buildReturnLogResponse(l *ReturnLog) ReturnLogResponse {
	return ReturnLogResponse{
		ID:               l.ID,
		ULID:             l.ULID,
		RentalID:         l.RentalID,
		ReturnedQuantity: l.ReturnedQuantity,
		ReturnedAt:       l.ReturnedAt,
		ReturnedBy:       l.ReturnedBy,
	}
}
