package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"BIHIN-backend/internal/platform/apierr"
)

func TestAuthorize(t *testing.T) {
	user := Actor{UserID: "u1", Role: RoleUser}
	other := Actor{UserID: "u2", Role: RoleUser}
	staff := Actor{UserID: "s1", Role: RoleStaff}
	admin := Actor{UserID: "a1", Role: RoleAdmin}

	cases := []struct {
		name  string
		actor Actor
		act   Action
		res   Resource
		allow bool
	}{
		{"user views items", user, ActionItemView, Resource{}, true},
		{"user borrows", user, ActionRentalBorrow, Resource{}, true},
		{"user cannot create item", user, ActionItemCreate, Resource{}, false},
		{"staff creates item", staff, ActionItemCreate, Resource{}, true},
		{"staff updates own item", staff, ActionItemUpdate, Resource{OwnerID: "s1"}, true},
		{"staff cannot update foreign item", staff, ActionItemUpdate, Resource{OwnerID: "s9"}, false},
		{"admin updates foreign item", admin, ActionItemDelete, Resource{OwnerID: "s9"}, true},
		{"user cannot update own-looking item", user, ActionItemUpdate, Resource{OwnerID: "u1"}, false},
		{"borrower returns", user, ActionRentalReturn, Resource{OwnerID: "u1"}, true},
		{"other user cannot return", other, ActionRentalReturn, Resource{OwnerID: "u1"}, false},
		{"staff cannot return for borrower", staff, ActionRentalReturn, Resource{OwnerID: "u1"}, false},
		{"borrower views rental", user, ActionRentalView, Resource{OwnerID: "u1"}, true},
		{"staff views any rental", staff, ActionRentalView, Resource{OwnerID: "u1"}, true},
		{"other cannot view rental", other, ActionRentalView, Resource{OwnerID: "u1"}, false},
		{"user denied history", user, ActionRentalHistory, Resource{}, false},
		{"staff history", staff, ActionRentalHistory, Resource{}, true},
		{"user denied admin export", user, ActionExportAll, Resource{}, false},
		{"user own export", user, ActionExportOwn, Resource{}, true},
		{"user denied admin dashboard", user, ActionDashboardAdmin, Resource{}, false},
		{"admin dashboard", admin, ActionDashboardAdmin, Resource{}, true},
		{"staff cannot create accounts", staff, ActionAccountCreate, Resource{}, false},
		{"admin creates accounts", admin, ActionAccountCreate, Resource{}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Authorize(tc.actor, tc.act, tc.res)
			if tc.allow {
				assert.NoError(t, err)
			} else {
				assert.True(t, apierr.Is(err, apierr.CodePermissionDenied), "got %v", err)
			}
		})
	}
}

func TestAuthorize_Unauthenticated(t *testing.T) {
	err := Authorize(Actor{}, ActionItemView, Resource{})
	assert.True(t, apierr.Is(err, apierr.CodeUnauthenticated))
}

func TestAuthorize_UnknownRole(t *testing.T) {
	err := Authorize(Actor{UserID: "x", Role: "root"}, ActionItemView, Resource{})
	assert.True(t, apierr.Is(err, apierr.CodePermissionDenied))
}

func TestDashboardPath(t *testing.T) {
	assert.Equal(t, AdminDashboardPath, DashboardPath(RoleStaff))
	assert.Equal(t, AdminDashboardPath, DashboardPath(RoleAdmin))
	assert.Equal(t, UserDashboardPath, DashboardPath(RoleUser))
}
