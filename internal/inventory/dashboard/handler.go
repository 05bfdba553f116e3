package dashboard

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"BIHIN-backend/internal/platform/apierr"
	"BIHIN-backend/internal/platform/auth"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.GET("/dashboard/admin", h.Admin)
	r.GET("/dashboard/user", h.User)
}

// notice / error は貸出・返却のリダイレクトで付くメッセージ
func flash(c *gin.Context) gin.H {
	return gin.H{"notice": c.Query("notice"), "error": c.Query("error")}
}

func (h *Handler) Admin(c *gin.Context) {
	res, err := h.svc.Admin(c.Request.Context(), auth.ActorFrom(c))
	if err != nil {
		apierr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"dashboard": res, "flash": flash(c)})
}

func (h *Handler) User(c *gin.Context) {
	res, err := h.svc.User(c.Request.Context(), auth.ActorFrom(c))
	if err != nil {
		apierr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"dashboard": res, "flash": flash(c)})
}
