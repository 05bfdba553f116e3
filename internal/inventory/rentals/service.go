package rentals

import (
	"context"
	"crypto/rand"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/oklog/ulid/v2"

	"BIHIN-backend/internal/platform/apierr"
	"BIHIN-backend/internal/platform/auth"
	"BIHIN-backend/internal/platform/db"
	"BIHIN-backend/internal/platform/logger"
)

// ===== インターフェース群 =====

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

type IDGen interface {
	New() (string, error)
}

type ulidGen struct{}

func (ulidGen) New() (string, error) {
	t := time.Now().UTC()
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(t), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// ===== Service本体 =====

type Service struct {
	db    *sqlx.DB
	store *Store
	clock Clock
	id    IDGen
	loc   *time.Location // 「今日」を決めるタイムゾーン
}

func NewService(db *sqlx.DB, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		db:    db,
		store: NewStore(db),
		clock: realClock{},
		id:    ulidGen{},
		loc:   loc,
	}
}

func (s *Service) today() time.Time { return DateOf(s.clock.Now(), s.loc) }

// Today は期限切れ判定に使う日付
func (s *Service) Today() time.Time { return s.today() }

// 貸出登録
func (s *Service) Borrow(ctx context.Context, actor auth.Actor, itemID int64, req BorrowRequest) (*RentalResponse, error) {
	if err := auth.Authorize(actor, auth.ActionRentalBorrow, auth.Resource{}); err != nil {
		return nil, err
	}
	if req.Quantity <= 0 {
		return nil, apierr.ErrInvalid("quantity must be > 0")
	}
	if strings.TrimSpace(req.ExpectedReturnDate) == "" {
		return nil, apierr.ErrInvalid("expected_return_date is required")
	}
	due, err := time.Parse(DateLayout, strings.TrimSpace(req.ExpectedReturnDate))
	if err != nil {
		return nil, apierr.ErrInvalid("invalid expected_return_date format, expected YYYY-MM-DD")
	}
	today := s.today()
	if due.Before(today) {
		return nil, apierr.ErrInvalid("expected_return_date must be today or later")
	}

	idStr, err := s.id.New()
	if err != nil {
		return nil, err
	}

	r := &Rental{
		ULID:               idStr,
		ItemID:             itemID,
		UserID:             actor.UserID,
		Quantity:           req.Quantity,
		RentalDate:         today,
		ExpectedReturnDate: due,
		Status:             StatusBorrowed,
	}

	err = db.RunInTx(ctx, s.db.DB, nil, func(ctx context.Context, tx db.DBTX) error {
		// 1. 在庫行をロック
		stock, err := lockItemStock(ctx, tx, itemID)
		if err != nil {
			return err
		}
		// 2. 在庫チェック
		if req.Quantity > stock {
			return apierr.ErrInvalid("requested quantity exceeds available stock")
		}
		// 3. 在庫を減らす（quantity >= n 条件付き）
		if err := decrementStock(ctx, tx, itemID, req.Quantity); err != nil {
			return err
		}
		// 4. 貸出レコード
		return insertRental(ctx, tx, r)
	})
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "rental created",
		"rental_ulid", r.ULID, "item_id", itemID, "user_id", actor.UserID, "quantity", r.Quantity)
	resp := buildRentalResponse(r, "", today)
	return &resp, nil
}

// 返却（1回で1個）。borrowed 以外なら何もしない
func (s *Service) Return(ctx context.Context, actor auth.Actor, key string) (*ReturnResult, error) {
	if !actor.Authenticated() {
		return nil, apierr.ErrUnauthenticated("login required")
	}
	id, ulidStr, err := parseKey(key)
	if err != nil {
		return nil, err
	}
	logID, err := s.id.New()
	if err != nil {
		return nil, err
	}

	today := s.today()
	var (
		r        *Rental
		returned int
	)
	err = db.RunInTx(ctx, s.db.DB, nil, func(ctx context.Context, tx db.DBTX) error {
		var err error
		r, err = lockRental(ctx, tx, id, ulidStr)
		if err != nil {
			return err
		}
		if err := auth.Authorize(actor, auth.ActionRentalReturn, auth.Resource{OwnerID: r.UserID}); err != nil {
			return err
		}
		if !r.ReturnOne(today) {
			return nil
		}
		returned = 1

		if err := updateRentalReturn(ctx, tx, r); err != nil {
			return err
		}
		if err := insertReturnLog(ctx, tx, &ReturnLog{
			ULID:             logID,
			RentalID:         r.ID,
			ReturnedQuantity: returned,
			ReturnedAt:       s.clock.Now().UTC(),
			ReturnedBy:       actor.UserID,
		}); err != nil {
			return err
		}
		// 返却分を在庫に戻す
		return incrementStock(ctx, tx, r.ItemID, returned)
	})
	if err != nil {
		return nil, err
	}

	if returned > 0 {
		logger.InfoContext(ctx, "rental returned",
			"rental_ulid", r.ULID, "remaining", r.Quantity, "status", string(r.Status), "by", actor.UserID)
	}
	return &ReturnResult{
		Rental:           buildRentalResponse(r, "", today),
		ReturnedQuantity: returned,
	}, nil
}

// 貸出単一取得（ID or ULID）。借り手本人か staff
func (s *Service) Get(ctx context.Context, actor auth.Actor, key string) (*RentalResponse, error) {
	v, err := s.getView(ctx, actor, key)
	if err != nil {
		return nil, err
	}
	resp := buildRentalResponse(&v.Rental, v.ItemName, s.today())
	return &resp, nil
}

func (s *Service) getView(ctx context.Context, actor auth.Actor, key string) (*RentalView, error) {
	if !actor.Authenticated() {
		return nil, apierr.ErrUnauthenticated("login required")
	}
	id, ulidStr, err := parseKey(key)
	if err != nil {
		return nil, err
	}
	var v *RentalView
	if id > 0 {
		v, err = s.store.GetByID(ctx, id)
	} else {
		v, err = s.store.GetByULID(ctx, ulidStr)
	}
	if err != nil {
		return nil, err
	}
	if err := auth.Authorize(actor, auth.ActionRentalView, auth.Resource{OwnerID: v.UserID}); err != nil {
		return nil, err
	}
	return v, nil
}

// 返却ログ一覧
func (s *Service) ListReturns(ctx context.Context, actor auth.Actor, key string) ([]ReturnLogResponse, error) {
	v, err := s.getView(ctx, actor, key)
	if err != nil {
		return nil, err
	}
	logs, err := s.store.ListReturns(ctx, v.ID)
	if err != nil {
		return nil, err
	}
	out := make([]ReturnLogResponse, 0, len(logs))
	for i := range logs {
		out = append(out, buildReturnLogResponse(&logs[i]))
	}
	return out, nil
}

// 貸出履歴（staff 向け、全利用者）
func (s *Service) History(ctx context.Context, actor auth.Actor, f HistoryFilter, p Page) (*ListRentalsResponse, error) {
	if err := auth.Authorize(actor, auth.ActionRentalHistory, auth.Resource{}); err != nil {
		return nil, err
	}
	return s.list(ctx, f, p)
}

// 自分の貸出一覧。UserID は常に actor で上書き
func (s *Service) Mine(ctx context.Context, actor auth.Actor, f HistoryFilter, p Page) (*ListRentalsResponse, error) {
	if err := auth.Authorize(actor, auth.ActionRentalListOwn, auth.Resource{}); err != nil {
		return nil, err
	}
	f.UserID = actor.UserID
	return s.list(ctx, f, p)
}

func (s *Service) list(ctx context.Context, f HistoryFilter, p Page) (*ListRentalsResponse, error) {
	rows, total, err := s.store.List(ctx, f, p)
	if err != nil {
		return nil, err
	}
	today := s.today()
	out := &ListRentalsResponse{Rentals: make([]RentalResponse, 0, len(rows)), Total: total}
	for i := range rows {
		out.Rentals = append(out.Rentals, buildRentalResponse(&rows[i].Rental, rows[i].ItemName, today))
	}
	return out, nil
}

// ExportRows: all=true なら全件（staff のみ、f の条件付き）、false なら自分の分のみ
func (s *Service) ExportRows(ctx context.Context, actor auth.Actor, all bool, f HistoryFilter) ([]RentalView, error) {
	act := auth.ActionExportOwn
	if all {
		act = auth.ActionExportAll
	}
	if err := auth.Authorize(actor, act, auth.Resource{}); err != nil {
		return nil, err
	}
	if !all {
		f = HistoryFilter{UserID: actor.UserID}
	}
	return s.store.ListForExport(ctx, f)
}

// Monthly: staff は全体、それ以外は自分の貸出のみ
func (s *Service) Monthly(ctx context.Context, actor auth.Actor) (MonthlySeries, error) {
	if err := auth.Authorize(actor, auth.ActionRentalListOwn, auth.Resource{}); err != nil {
		return MonthlySeries{}, err
	}
	scope := actor.UserID
	if actor.Privileged() {
		scope = ""
	}
	rows, err := s.store.MonthlyTotals(ctx, scope)
	if err != nil {
		return MonthlySeries{}, err
	}
	return BuildMonthlySeries(rows), nil
}

// Stats: userID が空なら全体。権限チェックは呼び出し側
func (s *Service) Stats(ctx context.Context, userID string) (Stats, error) {
	return s.store.Stats(ctx, userID, s.today())
}

// parseKey: 数値なら id、それ以外は rental_ulid
func parseKey(key string) (int64, string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return 0, "", apierr.ErrInvalid("id or ulid is required")
	}
	if id, err := strconv.ParseInt(key, 10, 64); err == nil {
		if id <= 0 {
			return 0, "", apierr.ErrInvalid("id must be > 0")
		}
		return id, "", nil
	}
	if _, err := ulid.ParseStrict(key); err != nil {
		return 0, "", apierr.ErrInvalid("invalid rental key")
	}
	return 0, strings.ToUpper(key), nil
}
