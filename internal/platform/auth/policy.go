package auth

import "BIHIN-backend/internal/platform/apierr"

type Role string

const (
	RoleUser  Role = "user"
	RoleStaff Role = "staff"
	RoleAdmin Role = "admin"
)

func ParseRole(s string) (Role, bool) {
	switch r := Role(s); r {
	case RoleUser, RoleStaff, RoleAdmin:
		return r, true
	}
	return "", false
}

// Actor は操作主体。全ての Service 操作は明示的にこれを受け取る
type Actor struct {
	UserID string
	Role   Role
}

func (a Actor) Authenticated() bool { return a.UserID != "" }

// Privileged: 旧システムの is_staff / is_superuser 相当
func (a Actor) Privileged() bool { return a.Role == RoleStaff || a.Role == RoleAdmin }

type Action string

const (
	ActionItemView       Action = "item:view"
	ActionItemCreate     Action = "item:create"
	ActionItemUpdate     Action = "item:update"
	ActionItemDelete     Action = "item:delete"
	ActionRentalBorrow   Action = "rental:borrow"
	ActionRentalReturn   Action = "rental:return"
	ActionRentalView     Action = "rental:view"
	ActionRentalListOwn  Action = "rental:list_own"
	ActionRentalHistory  Action = "rental:history"
	ActionExportOwn      Action = "export:own"
	ActionExportAll      Action = "export:all"
	ActionDashboardUser  Action = "dashboard:user"
	ActionDashboardAdmin Action = "dashboard:admin"
	ActionAccountCreate  Action = "account:create"
)

// Resource はポリシー判定に必要な対象側の情報。
// OwnerID は備品なら登録者、貸出なら借り手
type Resource struct {
	OwnerID string
}

// Authorize is the single authorization policy: (actor, action, resource) -> allow / deny.
// nil が許可、それ以外は apierr (UNAUTHENTICATED / PERMISSION_DENIED)。
func Authorize(a Actor, act Action, res Resource) error {
	if !a.Authenticated() {
		return apierr.ErrUnauthenticated("login required")
	}
	if _, ok := ParseRole(string(a.Role)); !ok {
		return apierr.ErrForbidden("unknown role")
	}

	switch act {
	case ActionItemView, ActionRentalBorrow, ActionRentalListOwn, ActionExportOwn, ActionDashboardUser:
		return nil

	case ActionItemCreate, ActionRentalHistory, ActionExportAll, ActionDashboardAdmin:
		if a.Privileged() {
			return nil
		}

	case ActionAccountCreate:
		if a.Role == RoleAdmin {
			return nil
		}

	case ActionItemUpdate, ActionItemDelete:
		// 他人が登録した備品は admin のみ
		if a.Role == RoleAdmin || (a.Privileged() && res.OwnerID == a.UserID) {
			return nil
		}

	case ActionRentalReturn:
		// 返却は借り手本人のみ
		if res.OwnerID == a.UserID {
			return nil
		}

	case ActionRentalView:
		if a.Privileged() || res.OwnerID == a.UserID {
			return nil
		}
	}
	return apierr.ErrForbidden("permission denied")
}

const (
	AdminDashboardPath = "/api/v1/dashboard/admin"
	UserDashboardPath  = "/api/v1/dashboard/user"
)

// DashboardPath はロール別のリダイレクト先
func DashboardPath(r Role) string {
	if r == RoleStaff || r == RoleAdmin {
		return AdminDashboardPath
	}
	return UserDashboardPath
}
