package auth

import (
	"context"
	"database/sql"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"BIHIN-backend/internal/platform/apierr"
)

const minPasswordLen = 8

type Clock interface{ Now() time.Time }
type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

type Service struct {
	store  AccountStore
	secret []byte
	ttl    time.Duration
	clock  Clock
}

func NewService(db *sql.DB, secret []byte, ttl time.Duration) *Service {
	return NewServiceWithStore(NewStore(db), secret, ttl, realClock{})
}

func NewServiceWithStore(store AccountStore, secret []byte, ttl time.Duration, clock Clock) *Service {
	return &Service{store: store, secret: secret, ttl: ttl, clock: clock}
}

type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	UserID    string    `json:"user_id"`
	Role      Role      `json:"role"`
	Dashboard string    `json:"dashboard"`
}

func (s *Service) Login(ctx context.Context, id, password string) (*LoginResult, error) {
	acct, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// ID不存在とパスワード不一致は区別しない
	if acct == nil || acct.IsDisabled {
		return nil, apierr.ErrUnauthenticated("invalid id or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		return nil, apierr.ErrUnauthenticated("invalid id or password")
	}

	now := s.clock.Now()
	exp := now.Add(s.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  acct.ID,
		"role": string(acct.Role),
		"iat":  now.Unix(),
		"exp":  exp.Unix(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, err
	}
	return &LoginResult{
		Token:     signed,
		ExpiresAt: exp,
		UserID:    acct.ID,
		Role:      acct.Role,
		Dashboard: DashboardPath(acct.Role),
	}, nil
}

type RegisterRequest struct {
	ID       string `json:"id" form:"id" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
	Email    string `json:"email" form:"email" binding:"required"`
	Role     string `json:"role,omitempty" form:"role"` // 未指定なら user
}

// SignUp はセルフ登録。ロールは常に user
func (s *Service) SignUp(ctx context.Context, in RegisterRequest) error {
	in.Role = string(RoleUser)
	return s.create(ctx, in)
}

// Register は管理者によるアカウント作成（staff / admin を含む）
func (s *Service) Register(ctx context.Context, actor Actor, in RegisterRequest) error {
	if err := Authorize(actor, ActionAccountCreate, Resource{}); err != nil {
		return err
	}
	if in.Role == "" {
		in.Role = string(RoleUser)
	}
	return s.create(ctx, in)
}

func (s *Service) create(ctx context.Context, in RegisterRequest) error {
	id := strings.TrimSpace(in.ID)
	if id == "" || len(id) > 64 {
		return apierr.ErrInvalid("id must be 1-64 characters")
	}
	if len(in.Password) < minPasswordLen {
		return apierr.ErrInvalid("password must be at least 8 characters")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return apierr.ErrInvalid("invalid email")
	}
	role, ok := ParseRole(in.Role)
	if !ok {
		return apierr.ErrInvalid("role must be user, staff or admin")
	}

	exists, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if exists != nil {
		return apierr.ErrConflict("id already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.store.Create(ctx, &Account{
		ID:           id,
		PasswordHash: string(hash),
		Email:        in.Email,
		Role:         role,
		CreatedAt:    s.clock.Now(),
	})
}

// ParseToken は HS256 固定で検証し Actor を返す
func (s *Service) ParseToken(tokenStr string) (Actor, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.clock.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || token == nil || !token.Valid {
		return Actor{}, apierr.ErrUnauthenticated("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Actor{}, apierr.ErrUnauthenticated("invalid claims")
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return Actor{}, apierr.ErrUnauthenticated("missing sub")
	}
	roleStr, _ := claims["role"].(string)
	role, ok := ParseRole(roleStr)
	if !ok {
		return Actor{}, apierr.ErrUnauthenticated("invalid role")
	}
	return Actor{UserID: sub, Role: role}, nil
}
