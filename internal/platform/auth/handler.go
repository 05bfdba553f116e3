package auth

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"BIHIN-backend/internal/platform/apierr"
)

type Handler struct{ svc *Service }

// RegisterRoutes は認証不要なルート
func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.POST("/auth/login", h.Login)
	r.POST("/auth/register", h.SignUp)
	r.POST("/auth/logout", h.Logout)
}

// RegisterProtectedRoutes は RequireAuth 配下に置く
func RegisterProtectedRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.GET("/auth/me", h.Me)
	r.POST("/accounts", h.CreateAccount)
}

type LoginRequest struct {
	ID       string `json:"id" form:"id" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

// Login godoc
// @Summary  ログイン
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body body LoginRequest true "credentials"
// @Success  200 {object} LoginResult
// @Failure  401 {object} map[string]any
// @Router   /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		apierr.Abort(c, apierr.ErrInvalid("id and password are required"))
		return
	}

	res, err := h.svc.Login(c.Request.Context(), req.ID, req.Password)
	if err != nil {
		if isForm(c) && apierr.Is(err, apierr.CodeUnauthenticated) {
			c.Redirect(http.StatusSeeOther, "/login?error="+url.QueryEscape("IDまたはパスワードが間違っています"))
			return
		}
		apierr.Abort(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, res.Token, int(h.svc.ttl.Seconds()), "/", "", c.Request.TLS != nil, true)

	// フォーム送信ならロール別ダッシュボードへ
	if isForm(c) {
		c.Redirect(http.StatusSeeOther, res.Dashboard)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", "", c.Request.TLS != nil, true)
	c.Status(http.StatusNoContent)
}

// SignUp godoc
// @Summary  利用者の新規登録（role は常に user）
// @Tags     auth
// @Accept   json
// @Param    body body RegisterRequest true "account"
// @Success  201
// @Failure  409 {object} map[string]any
// @Router   /auth/register [post]
func (h *Handler) SignUp(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		apierr.Abort(c, apierr.ErrInvalid("id, password and email are required"))
		return
	}
	if err := h.svc.SignUp(c.Request.Context(), req); err != nil {
		apierr.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "registered"})
}

func (h *Handler) CreateAccount(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Abort(c, apierr.ErrInvalid("id, password and email are required"))
		return
	}
	if err := h.svc.Register(c.Request.Context(), ActorFrom(c), req); err != nil {
		apierr.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": req.ID})
}

func (h *Handler) Me(c *gin.Context) {
	a := ActorFrom(c)
	c.JSON(http.StatusOK, gin.H{
		"user_id":   a.UserID,
		"role":      a.Role,
		"dashboard": DashboardPath(a.Role),
	})
}

func isForm(c *gin.Context) bool {
	switch c.ContentType() {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		return true
	}
	return false
}
