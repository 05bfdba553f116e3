package items

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BIHIN-backend/internal/platform/apierr"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return sqlx.NewDb(mockDB, "mysql"), mock
}

var cols = []string{"id", "name", "category", "quantity", "location", "description", "is_available", "added_by", "created_at", "updated_at"}

func itemRow(rows *sqlmock.Rows, id int64, name string, qty int) *sqlmock.Rows {
	ts := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	return rows.AddRow(id, name, "pc", qty, "棚A", "", true, "staff1", ts, ts)
}

func TestFilterWhere(t *testing.T) {
	cases := []struct {
		name string
		f    Filter
		want string
	}{
		{"none", Filter{}, "SELECT * FROM `inventory_items`"},
		{"keyword", Filter{Keyword: " Lap "}, "SELECT * FROM `inventory_items` WHERE ((`name` LIKE '%Lap%') OR (`description` LIKE '%Lap%'))"},
		{"in stock", Filter{Stock: StockInStock}, "SELECT * FROM `inventory_items` WHERE (`quantity` > 0)"},
		{"out of stock + category", Filter{Category: "pc", Stock: StockOutOfStock}, "SELECT * FROM `inventory_items` WHERE ((`category` = 'pc') AND (`quantity` <= 0))"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q, _, err := dialect.From(tableItems).Where(tc.f.where()...).ToSQL()
			require.NoError(t, err)
			assert.Equal(t, tc.want, q)
		})
	}
}

func TestFilterWhere_EscapesWildcards(t *testing.T) {
	_, args, err := dialect.From(tableItems).Prepared(true).Where(Filter{Keyword: "50%_off"}.where()...).ToSQL()
	require.NoError(t, err)
	require.Len(t, args, 2)
	assert.Equal(t, `%50\%\_off%`, args[0])
}

func TestStore_List(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery("SELECT `id`, `name`.* FROM `inventory_items` WHERE .*`name` LIKE \\?.*ORDER BY `id` DESC").
		WillReturnRows(itemRow(sqlmock.NewRows(cols), 2, "Laptop", 3))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM `inventory_items`")).
		WithArgs("%lap%", "%lap%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	got, total, err := NewStore(db).List(context.Background(), Filter{Keyword: "lap"}, Page{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, got, 1)
	assert.Equal(t, "Laptop", got[0].Name)
	assert.Equal(t, 3, got[0].Quantity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_GetByID_NotFound(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery("FROM inventory_items").WithArgs(int64(9)).WillReturnRows(sqlmock.NewRows(cols))

	_, err := NewStore(db).GetByID(context.Background(), 9)
	assert.True(t, apierr.Is(err, apierr.CodeNotFound))
}

func TestStore_InsertAndUpdate(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec("INSERT INTO `inventory_items`").WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectExec("UPDATE `inventory_items` SET .*`quantity`=\\?.* WHERE \\(`id` = \\?\\)").
		WillReturnResult(sqlmock.NewResult(0, 1))

	st := NewStore(db)
	it := &Item{Name: "Projector", Category: "av", Quantity: 2, AddedBy: "staff1"}
	require.NoError(t, st.Insert(context.Background(), it))
	assert.Equal(t, int64(42), it.ID)

	require.NoError(t, st.Update(context.Background(), 42, goqu.Record{"quantity": 5}))
	// 空の更新は SQL を発行しない
	require.NoError(t, st.Update(context.Background(), 42, goqu.Record{}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Delete(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery("FOR UPDATE").WithArgs(int64(1)).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
		mock.ExpectQuery("FROM rentals").WithArgs(int64(1)).WillReturnRows(sqlmock.NewRows([]string{"total", "open"}).AddRow(0, 0))
		mock.ExpectExec("DELETE FROM inventory_items").WithArgs(int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, NewStore(db).Delete(context.Background(), 1))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("open rentals", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery("FOR UPDATE").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
		mock.ExpectQuery("FROM rentals").WillReturnRows(sqlmock.NewRows([]string{"total", "open"}).AddRow(3, 1))
		mock.ExpectRollback()

		err := NewStore(db).Delete(context.Background(), 1)
		assert.True(t, apierr.Is(err, apierr.CodeConflict))
		assert.ErrorContains(t, err, "open rentals")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery("FOR UPDATE").WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectRollback()

		err := NewStore(db).Delete(context.Background(), 1)
		assert.True(t, apierr.Is(err, apierr.CodeNotFound))
	})
}
