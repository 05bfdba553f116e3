package exports

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"BIHIN-backend/internal/inventory/rentals"
)

const (
	keyItemName     = "col.item_name"
	keyQuantity     = "col.quantity"
	keyRentalDate   = "col.rental_date"
	keyExpectedDate = "col.expected_return_date"
	keyReturnDate   = "col.return_date"
	keyStatus       = "col.status"
	keyNotReturned  = "not_returned"
	keyBorrowed     = "status.borrowed"
	keyReturned     = "status.returned"
	keyTitle        = "title"
)

func init() {
	for _, e := range []struct {
		key, ja, en string
	}{
		{keyItemName, "備品名", "Item"},
		{keyQuantity, "数量", "Quantity"},
		{keyRentalDate, "貸出日", "Rental date"},
		{keyExpectedDate, "返却予定日", "Expected return"},
		{keyReturnDate, "返却日", "Return date"},
		{keyStatus, "ステータス", "Status"},
		{keyNotReturned, "未返却", "Not returned"},
		{keyBorrowed, "貸出中", "Borrowed"},
		{keyReturned, "返却済み", "Returned"},
		{keyTitle, "貸出履歴", "Rental history"},
	} {
		_ = message.SetString(language.Japanese, e.key, e.ja)
		_ = message.SetString(language.English, e.key, e.en)
	}
}

// Labels はエクスポートの見出し・ステータス表記
type Labels struct {
	p *message.Printer
}

func NewLabels(tag language.Tag) Labels {
	return Labels{p: message.NewPrinter(tag)}
}

func (l Labels) text(key string) string { return l.p.Sprintf(key) }

func (l Labels) Header() []string {
	return []string{
		l.text(keyItemName),
		l.text(keyQuantity),
		l.text(keyRentalDate),
		l.text(keyExpectedDate),
		l.text(keyReturnDate),
		l.text(keyStatus),
	}
}

func (l Labels) Title() string { return l.text(keyTitle) }

func (l Labels) Status(s rentals.Status) string {
	switch s {
	case rentals.StatusBorrowed:
		return l.text(keyBorrowed)
	case rentals.StatusReturned:
		return l.text(keyReturned)
	}
	return string(s)
}

func (l Labels) NotReturned() string { return l.text(keyNotReturned) }
