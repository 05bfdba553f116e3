package items

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	"BIHIN-backend/internal/platform/apierr"
	"BIHIN-backend/internal/platform/auth"
	"BIHIN-backend/internal/platform/logger"
)

type Clock interface{ Now() time.Time }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

type Service struct {
	store *Store
	clock Clock
}

func NewService(db *sqlx.DB) *Service {
	return &Service{store: NewStore(db), clock: realClock{}}
}

func (s *Service) List(ctx context.Context, actor auth.Actor, f Filter, p Page) (*ListItemsResponse, error) {
	if err := auth.Authorize(actor, auth.ActionItemView, auth.Resource{}); err != nil {
		return nil, err
	}
	rows, total, err := s.store.List(ctx, f, p)
	if err != nil {
		return nil, err
	}
	out := &ListItemsResponse{Items: make([]ItemResponse, 0, len(rows)), Total: total}
	for i := range rows {
		out.Items = append(out.Items, toResponse(&rows[i]))
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, actor auth.Actor, id int64) (*ItemResponse, error) {
	if err := auth.Authorize(actor, auth.ActionItemView, auth.Resource{}); err != nil {
		return nil, err
	}
	it, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	res := toResponse(it)
	return &res, nil
}

func (s *Service) Categories(ctx context.Context, actor auth.Actor) ([]string, error) {
	if err := auth.Authorize(actor, auth.ActionItemView, auth.Resource{}); err != nil {
		return nil, err
	}
	return s.store.Categories(ctx)
}

// Summary: ダッシュボード用。呼び出し側で権限チェック済みであること
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	return s.store.Summary(ctx)
}

// 備品登録
func (s *Service) Create(ctx context.Context, actor auth.Actor, req CreateItemRequest) (*ItemResponse, error) {
	if err := auth.Authorize(actor, auth.ActionItemCreate, auth.Resource{}); err != nil {
		return nil, err
	}

	it := &Item{
		Name:        strings.TrimSpace(req.Name),
		Category:    strings.TrimSpace(req.Category),
		Location:    strings.TrimSpace(req.Location),
		Description: req.Description,
		IsAvailable: true,
		AddedBy:     actor.UserID,
	}
	if req.Quantity != nil {
		it.Quantity = *req.Quantity
	}
	if req.IsAvailable != nil {
		it.IsAvailable = *req.IsAvailable
	}
	if err := validate(it); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	it.CreatedAt, it.UpdatedAt = now, now
	if err := s.store.Insert(ctx, it); err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "item created", "item_id", it.ID, "added_by", it.AddedBy, "quantity", it.Quantity)
	res := toResponse(it)
	return &res, nil
}

// 備品更新（登録者 or admin）
func (s *Service) Update(ctx context.Context, actor auth.Actor, id int64, req UpdateItemRequest) (*ItemResponse, error) {
	it, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.Authorize(actor, auth.ActionItemUpdate, auth.Resource{OwnerID: it.AddedBy}); err != nil {
		return nil, err
	}

	rec := goqu.Record{}
	if req.Name != nil {
		it.Name = strings.TrimSpace(*req.Name)
		rec["name"] = it.Name
	}
	if req.Category != nil {
		it.Category = strings.TrimSpace(*req.Category)
		rec["category"] = it.Category
	}
	if req.Quantity != nil {
		it.Quantity = *req.Quantity
		rec["quantity"] = it.Quantity
	}
	if req.Location != nil {
		it.Location = strings.TrimSpace(*req.Location)
		rec["location"] = it.Location
	}
	if req.Description != nil {
		it.Description = *req.Description
		rec["description"] = it.Description
	}
	if req.IsAvailable != nil {
		it.IsAvailable = *req.IsAvailable
		rec["is_available"] = it.IsAvailable
	}
	if err := validate(it); err != nil {
		return nil, err
	}
	if len(rec) > 0 {
		it.UpdatedAt = s.clock.Now()
		rec["updated_at"] = it.UpdatedAt
	}

	if err := s.store.Update(ctx, id, rec); err != nil {
		return nil, err
	}
	res := toResponse(it)
	return &res, nil
}

// 備品削除（登録者 or admin）
func (s *Service) Delete(ctx context.Context, actor auth.Actor, id int64) error {
	it, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := auth.Authorize(actor, auth.ActionItemDelete, auth.Resource{OwnerID: it.AddedBy}); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	logger.InfoContext(ctx, "item deleted", "item_id", id, "by", actor.UserID)
	return nil
}

func validate(it *Item) error {
	switch {
	case it.Name == "":
		return apierr.ErrInvalid("name is required")
	case utf8.RuneCountInString(it.Name) > 100:
		return apierr.ErrInvalid("name must be at most 100 characters")
	case it.Category == "":
		return apierr.ErrInvalid("category is required")
	case utf8.RuneCountInString(it.Category) > 50:
		return apierr.ErrInvalid("category must be at most 50 characters")
	case utf8.RuneCountInString(it.Location) > 100:
		return apierr.ErrInvalid("location must be at most 100 characters")
	case it.Quantity < 0:
		return apierr.ErrInvalid("quantity must be >= 0")
	}
	return nil
}
