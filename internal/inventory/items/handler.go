package items

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"BIHIN-backend/internal/platform/apierr"
	"BIHIN-backend/internal/platform/auth"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	r.GET("/items", h.List)
	r.GET("/items/categories", h.Categories)
	r.GET("/items/:item_id", h.Get)
	r.POST("/items", h.Create)
	r.PATCH("/items/:item_id", h.Update)
	r.DELETE("/items/:item_id", h.Delete)
}

// List godoc
// @Summary  備品一覧・検索
// @Tags     items
// @Produce  json
// @Param    keyword  query string false "name / description の部分一致"
// @Param    category query string false "カテゴリ"
// @Param    stock    query string false "in_stock / out_of_stock"
// @Param    limit    query int    false "件数 (default 50)"
// @Param    offset   query int    false "オフセット"
// @Success  200 {object} ListItemsResponse
// @Router   /items [get]
func (h *Handler) List(c *gin.Context) {
	stock, ok := ParseStockFilter(c.Query("stock"))
	if !ok {
		apierr.Abort(c, apierr.ErrInvalid("stock must be in_stock or out_of_stock"))
		return
	}
	f := Filter{
		Keyword:  c.Query("keyword"),
		Category: c.Query("category"),
		Stock:    stock,
	}
	p := Page{
		Limit:  parseIntDefault(c.Query("limit"), defaultLimit),
		Offset: parseIntDefault(c.Query("offset"), 0),
		Order:  c.DefaultQuery("order", "desc"),
	}
	res, err := h.svc.List(c.Request.Context(), auth.ActorFrom(c), f, p)
	if err != nil {
		apierr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Categories(c *gin.Context) {
	res, err := h.svc.Categories(c.Request.Context(), auth.ActorFrom(c))
	if err != nil {
		apierr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": res})
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := ItemIDParam(c)
	if !ok {
		return
	}
	res, err := h.svc.Get(c.Request.Context(), auth.ActorFrom(c), id)
	if err != nil {
		apierr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateItemRequest
	if err := c.ShouldBind(&req); err != nil {
		apierr.Abort(c, apierr.ErrInvalid("invalid body or missing required fields"))
		return
	}
	res, err := h.svc.Create(c.Request.Context(), auth.ActorFrom(c), req)
	if err != nil {
		apierr.Abort(c, err)
		return
	}
	c.Header("Location", "/api/v1/items/"+strconv.FormatInt(res.ID, 10))
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := ItemIDParam(c)
	if !ok {
		return
	}
	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Abort(c, apierr.ErrInvalid("invalid json"))
		return
	}
	res, err := h.svc.Update(c.Request.Context(), auth.ActorFrom(c), id, req)
	if err != nil {
		apierr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := ItemIDParam(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), auth.ActorFrom(c), id); err != nil {
		apierr.Abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ItemIDParam は :item_id を解釈する。失敗時はレスポンスを書いて false
func ItemIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("item_id"), 10, 64)
	if err != nil || id <= 0 {
		apierr.Abort(c, apierr.ErrInvalid("item_id must be a positive integer"))
		return 0, false
	}
	return id, true
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
