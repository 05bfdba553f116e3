package dashboard

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BIHIN-backend/internal/inventory/items"
	"BIHIN-backend/internal/inventory/rentals"
	"BIHIN-backend/internal/platform/apierr"
	"BIHIN-backend/internal/platform/auth"
)

type fakeItems struct{ sum items.Summary }

func (f fakeItems) Summary(context.Context) (items.Summary, error) { return f.sum, nil }

type fakeRentals struct {
	mineFilter   rentals.HistoryFilter
	monthlyActor auth.Actor
	statsUser    string
}

func (f *fakeRentals) History(_ context.Context, _ auth.Actor, _ rentals.HistoryFilter, p rentals.Page) (*rentals.ListRentalsResponse, error) {
	return &rentals.ListRentalsResponse{Rentals: []rentals.RentalResponse{{ID: 1}}, Total: 1}, nil
}

func (f *fakeRentals) Mine(_ context.Context, _ auth.Actor, hf rentals.HistoryFilter, _ rentals.Page) (*rentals.ListRentalsResponse, error) {
	f.mineFilter = hf
	return &rentals.ListRentalsResponse{Rentals: []rentals.RentalResponse{{ID: 2, Overdue: true}}, Total: 1}, nil
}

func (f *fakeRentals) Monthly(_ context.Context, actor auth.Actor) (rentals.MonthlySeries, error) {
	f.monthlyActor = actor
	return rentals.BuildMonthlySeries(nil), nil
}

func (f *fakeRentals) Stats(_ context.Context, userID string) (rentals.Stats, error) {
	f.statsUser = userID
	return rentals.Stats{OpenRentals: 1, OverdueRentals: 1}, nil
}

var (
	user  = auth.Actor{UserID: "taro", Role: auth.RoleUser}
	staff = auth.Actor{UserID: "staff1", Role: auth.RoleStaff}
)

func TestAdmin(t *testing.T) {
	fr := &fakeRentals{}
	svc := NewService(fakeItems{items.Summary{ItemCount: 3, TotalQuantity: 12}}, fr)

	_, err := svc.Admin(context.Background(), user)
	assert.True(t, apierr.Is(err, apierr.CodePermissionDenied))

	d, err := svc.Admin(context.Background(), staff)
	require.NoError(t, err)
	assert.Equal(t, int64(3), d.Items.ItemCount)
	assert.Len(t, d.RecentRentals, 1)
	assert.Equal(t, "", fr.statsUser)
}

func TestUser(t *testing.T) {
	fr := &fakeRentals{}
	svc := NewService(fakeItems{}, fr)

	_, err := svc.User(context.Background(), auth.Actor{})
	assert.True(t, apierr.Is(err, apierr.CodeUnauthenticated))

	// staff が user ダッシュボードを見ても本人分だけ
	d, err := svc.User(context.Background(), staff)
	require.NoError(t, err)
	assert.Equal(t, "staff1", fr.statsUser)
	assert.Equal(t, rentals.StatusBorrowed, fr.mineFilter.Status)
	assert.False(t, fr.monthlyActor.Privileged())
	require.Len(t, d.OpenRentals, 1)
	assert.True(t, d.OpenRentals[0].Overdue)
}

func TestHandler_Flash(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	g := r.Group("", func(c *gin.Context) { auth.SetActor(c, user) })
	RegisterRoutes(g, NewService(fakeItems{}, &fakeRentals{}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/dashboard/user?notice=%E8%B2%B8%E5%87%BA", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"notice":"貸出"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/dashboard/admin", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
}
