package auth

import (
	"strings"

	"github.com/gin-gonic/gin"

	"BIHIN-backend/internal/platform/apierr"
)

const (
	CookieName  = "access_token"
	ctxActorKey = "auth.actor"
)

type TokenParser interface {
	ParseToken(token string) (Actor, error)
}

// RequireAuth: Authorization: Bearer <token>、無ければ access_token cookie を検証して Actor を詰める
func RequireAuth(p TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, err := tokenFromRequest(c)
		if err != nil {
			apierr.Abort(c, err)
			return
		}

		actor, err := p.ParseToken(tokenStr)
		if err != nil {
			apierr.Abort(c, err)
			return
		}

		c.Set(ctxActorKey, actor)
		c.Next()
	}
}

func tokenFromRequest(c *gin.Context) (string, error) {
	if h := c.GetHeader("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return "", apierr.ErrUnauthenticated("invalid Authorization header")
		}
		tok := strings.TrimSpace(parts[1])
		if tok == "" {
			return "", apierr.ErrUnauthenticated("empty token")
		}
		return tok, nil
	}
	if tok, err := c.Cookie(CookieName); err == nil && tok != "" {
		return tok, nil
	}
	return "", apierr.ErrUnauthenticated("missing credentials")
}

// ActorFrom は RequireAuth 配下でなければゼロ値（未認証）を返す
func ActorFrom(c *gin.Context) Actor {
	if v, ok := c.Get(ctxActorKey); ok {
		if a, ok := v.(Actor); ok {
			return a
		}
	}
	return Actor{}
}

// SetActor is for tests and internal callers that already resolved the actor.
func SetActor(c *gin.Context, a Actor) {
	c.Set(ctxActorKey, a)
}
