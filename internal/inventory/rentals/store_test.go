package rentals

import (
	"testing"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryFilterWhere(t *testing.T) {
	item := int64(3)
	start := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		f    HistoryFilter
		want string
	}{
		{"none", HistoryFilter{}, "SELECT * FROM `rentals` AS `r`"},
		{"user", HistoryFilter{UserID: "taro"}, "SELECT * FROM `rentals` AS `r` WHERE (`r`.`user_id` = 'taro')"},
		{
			"all combined",
			HistoryFilter{UserID: "taro", ItemID: &item, Status: StatusBorrowed, StartDate: &start, EndDate: &end},
			"SELECT * FROM `rentals` AS `r` WHERE ((`r`.`user_id` = 'taro') AND (`r`.`item_id` = 3) AND (`r`.`status` = 'borrowed')" +
				" AND (`r`.`rental_date` >= '2024-04-01') AND (`r`.`rental_date` < '2024-05-01'))",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q, _, err := dialect.From(goqu.T("rentals").As("r")).Where(tc.f.where()...).ToSQL()
			require.NoError(t, err)
			assert.Equal(t, tc.want, q)
		})
	}
}

func TestNormalizePage(t *testing.T) {
	assert.Equal(t, Page{Limit: defaultLimit}, normalizePage(Page{}, maxLimit))
	assert.Equal(t, Page{Limit: maxLimit}, normalizePage(Page{Limit: 10_000, Offset: -1}, maxLimit))
	assert.Equal(t, Page{Limit: MaxExportRows}, normalizePage(Page{Limit: MaxExportRows}, MaxExportRows))
}
