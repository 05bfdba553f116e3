package rentals

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"BIHIN-backend/internal/inventory/items"
	"BIHIN-backend/internal/platform/apierr"
	"BIHIN-backend/internal/platform/auth"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	// 1. 備品起点の貸出
	// POST /items/:item_id/rentals
	r.POST("/items/:item_id/rentals", h.Borrow)

	// 2. 貸出リソース
	r.GET("/rentals/history", h.History) // staff
	r.GET("/rentals/mine", h.Mine)
	r.GET("/rentals/monthly", h.Monthly)
	r.GET("/rentals/:rental_key", h.Get)
	r.GET("/rentals/:rental_key/returns", h.ListReturns)

	// 3. 返却（1回1個）
	r.POST("/rentals/:rental_key/return", h.Return)
}

// ---------- handlers ----------

// Borrow godoc
// @Summary  備品を借りる
// @Tags     rentals
// @Accept   json,x-www-form-urlencoded
// @Produce  json
// @Param    item_id path int true "備品ID"
// @Param    body body BorrowRequest true "数量と返却予定日"
// @Success  201 {object} RentalResponse
// @Success  303 "フォーム送信時はダッシュボードへ"
// @Failure  400 {object} map[string]any
// @Router   /items/{item_id}/rentals [post]
func (h *Handler) Borrow(c *gin.Context) {
	actor := auth.ActorFrom(c)
	itemID, ok := items.ItemIDParam(c)
	if !ok {
		return
	}

	var req BorrowRequest
	if err := c.ShouldBind(&req); err != nil {
		h.fail(c, actor, apierr.ErrInvalid("invalid body"))
		return
	}

	res, err := h.svc.Borrow(c.Request.Context(), actor, itemID, req)
	if err != nil {
		h.fail(c, actor, err)
		return
	}

	if wantsRedirect(c) {
		redirectDashboard(c, actor, "notice", "貸出が完了しました")
		return
	}
	c.Header("Location", "/api/v1/rentals/"+res.ULID)
	c.JSON(http.StatusCreated, res)
}

// Return godoc
// @Summary  1個返却する（借り手本人のみ）
// @Tags     rentals
// @Produce  json
// @Param    rental_key path string true "貸出ID または ULID"
// @Success  200 {object} ReturnResult
// @Success  303 "フォーム送信時はダッシュボードへ"
// @Router   /rentals/{rental_key}/return [post]
func (h *Handler) Return(c *gin.Context) {
	actor := auth.ActorFrom(c)
	res, err := h.svc.Return(c.Request.Context(), actor, c.Param("rental_key"))
	if err != nil {
		h.fail(c, actor, err)
		return
	}

	if wantsRedirect(c) {
		msg := "返却しました"
		if res.ReturnedQuantity == 0 {
			msg = "この貸出は返却済みです"
		}
		redirectDashboard(c, actor, "notice", msg)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Get(c *gin.Context) {
	res, err := h.svc.Get(c.Request.Context(), auth.ActorFrom(c), c.Param("rental_key"))
	if err != nil {
		apierr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) ListReturns(c *gin.Context) {
	res, err := h.svc.ListReturns(c.Request.Context(), auth.ActorFrom(c), c.Param("rental_key"))
	if err != nil {
		apierr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"returns": res})
}

// History godoc
// @Summary  貸出履歴（staff）
// @Tags     rentals
// @Produce  json
// @Param    user_id    query string false "借り手"
// @Param    item_id    query int    false "備品ID"
// @Param    status     query string false "borrowed / returned"
// @Param    start_date query string false "YYYY-MM-DD（含む）"
// @Param    end_date   query string false "YYYY-MM-DD（その日を丸ごと含む）"
// @Success  200 {object} ListRentalsResponse
// @Router   /rentals/history [get]
func (h *Handler) History(c *gin.Context) {
	f, err := ParseHistoryFilter(c)
	if err != nil {
		apierr.Abort(c, err)
		return
	}
	res, err := h.svc.History(c.Request.Context(), auth.ActorFrom(c), f, pageFrom(c))
	if err != nil {
		apierr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Mine(c *gin.Context) {
	f, err := ParseHistoryFilter(c)
	if err != nil {
		apierr.Abort(c, err)
		return
	}
	res, err := h.svc.Mine(c.Request.Context(), auth.ActorFrom(c), f, pageFrom(c))
	if err != nil {
		apierr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Monthly(c *gin.Context) {
	res, err := h.svc.Monthly(c.Request.Context(), auth.ActorFrom(c))
	if err != nil {
		apierr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ---------- helpers ----------

// ParseHistoryFilter はクエリ文字列から検索条件を組み立てる（エクスポートでも使う）
func ParseHistoryFilter(c *gin.Context) (HistoryFilter, error) {
	var f HistoryFilter
	f.UserID = strings.TrimSpace(c.Query("user_id"))

	if v := c.Query("item_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return f, apierr.ErrInvalid("item_id must be a positive integer")
		}
		f.ItemID = &id
	}
	if v := c.Query("status"); v != "" {
		st, ok := ParseStatus(v)
		if !ok {
			return f, apierr.ErrInvalid("status must be borrowed or returned")
		}
		f.Status = st
	}
	if v := c.Query("start_date"); v != "" {
		t, err := time.Parse(DateLayout, v)
		if err != nil {
			return f, apierr.ErrInvalid("invalid start_date, expected YYYY-MM-DD")
		}
		f.StartDate = &t
	}
	if v := c.Query("end_date"); v != "" {
		t, err := time.Parse(DateLayout, v)
		if err != nil {
			return f, apierr.ErrInvalid("invalid end_date, expected YYYY-MM-DD")
		}
		f.EndDate = &t
	}
	if f.StartDate != nil && f.EndDate != nil && f.EndDate.Before(*f.StartDate) {
		return f, apierr.ErrInvalid("end_date must not be before start_date")
	}
	return f, nil
}

func pageFrom(c *gin.Context) Page {
	return Page{
		Limit:  parseIntDefault(c.Query("limit"), defaultLimit),
		Offset: parseIntDefault(c.Query("offset"), 0),
		Order:  c.DefaultQuery("order", "desc"),
	}
}

// fail: フォーム送信なら検証・権限エラーはダッシュボードへ戻す。それ以外は JSON
func (h *Handler) fail(c *gin.Context, actor auth.Actor, err error) {
	if wantsRedirect(c) && actor.Authenticated() &&
		(apierr.Is(err, apierr.CodeInvalidArgument) || apierr.Is(err, apierr.CodePermissionDenied)) {
		redirectDashboard(c, actor, "error", apierr.BodyFrom(err).Error.Message)
		return
	}
	apierr.Abort(c, err)
}

func wantsRedirect(c *gin.Context) bool {
	switch c.ContentType() {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		return true
	}
	return false
}

func redirectDashboard(c *gin.Context, actor auth.Actor, key, msg string) {
	c.Redirect(http.StatusSeeOther, auth.DashboardPath(actor.Role)+"?"+key+"="+url.QueryEscape(msg))
}

func parseIntDefault(s string, d int) int {
	if s == "" {
		return d
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return v
}
