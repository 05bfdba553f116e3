package dashboard

import (
	"context"

	"BIHIN-backend/internal/inventory/items"
	"BIHIN-backend/internal/inventory/rentals"
	"BIHIN-backend/internal/platform/auth"
)

const recentLimit = 10

type ItemSource interface {
	Summary(ctx context.Context) (items.Summary, error)
}

type RentalSource interface {
	History(ctx context.Context, actor auth.Actor, f rentals.HistoryFilter, p rentals.Page) (*rentals.ListRentalsResponse, error)
	Mine(ctx context.Context, actor auth.Actor, f rentals.HistoryFilter, p rentals.Page) (*rentals.ListRentalsResponse, error)
	Monthly(ctx context.Context, actor auth.Actor) (rentals.MonthlySeries, error)
	Stats(ctx context.Context, userID string) (rentals.Stats, error)
}

type Service struct {
	items   ItemSource
	rentals RentalSource
}

func NewService(is ItemSource, rs RentalSource) *Service {
	return &Service{items: is, rentals: rs}
}

type AdminDashboard struct {
	Items         items.Summary            `json:"items"`
	Rentals       rentals.Stats            `json:"rentals"`
	RecentRentals []rentals.RentalResponse `json:"recent_rentals"`
	Monthly       rentals.MonthlySeries    `json:"monthly"`
}

type UserDashboard struct {
	UserID      string                   `json:"user_id"`
	Rentals     rentals.Stats            `json:"rentals"`
	OpenRentals []rentals.RentalResponse `json:"open_rentals"`
	Monthly     rentals.MonthlySeries    `json:"monthly"`
}

// 管理者ダッシュボード（staff / admin）
func (s *Service) Admin(ctx context.Context, actor auth.Actor) (*AdminDashboard, error) {
	if err := auth.Authorize(actor, auth.ActionDashboardAdmin, auth.Resource{}); err != nil {
		return nil, err
	}
	sum, err := s.items.Summary(ctx)
	if err != nil {
		return nil, err
	}
	st, err := s.rentals.Stats(ctx, "")
	if err != nil {
		return nil, err
	}
	recent, err := s.rentals.History(ctx, actor, rentals.HistoryFilter{}, rentals.Page{Limit: recentLimit})
	if err != nil {
		return nil, err
	}
	monthly, err := s.rentals.Monthly(ctx, actor)
	if err != nil {
		return nil, err
	}
	return &AdminDashboard{
		Items:         sum,
		Rentals:       st,
		RecentRentals: recent.Rentals,
		Monthly:       monthly,
	}, nil
}

// 利用者ダッシュボード。借りている物と期限切れ
func (s *Service) User(ctx context.Context, actor auth.Actor) (*UserDashboard, error) {
	if err := auth.Authorize(actor, auth.ActionDashboardUser, auth.Resource{}); err != nil {
		return nil, err
	}
	st, err := s.rentals.Stats(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	open, err := s.rentals.Mine(ctx, actor,
		rentals.HistoryFilter{Status: rentals.StatusBorrowed},
		rentals.Page{Limit: 100, Order: "asc"})
	if err != nil {
		return nil, err
	}
	// グラフは常に本人分
	monthly, err := s.rentals.Monthly(ctx, auth.Actor{UserID: actor.UserID, Role: auth.RoleUser})
	if err != nil {
		return nil, err
	}
	return &UserDashboard{
		UserID:      actor.UserID,
		Rentals:     st,
		OpenRentals: open.Rentals,
		Monthly:     monthly,
	}, nil
}
