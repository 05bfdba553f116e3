package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BIHIN-backend/internal/platform/apierr"
)

type fixedClock struct{ t time.Time }

func (f fixedClock) Now() time.Time { return f.t }

type memStore struct{ m map[string]*Account }

func newMemStore() *memStore { return &memStore{m: map[string]*Account{}} }

func (s *memStore) GetByID(_ context.Context, id string) (*Account, error) {
	if a, ok := s.m[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (s *memStore) Create(_ context.Context, a *Account) error {
	if _, ok := s.m[a.ID]; ok {
		return apierr.ErrConflict("id already exists")
	}
	cp := *a
	s.m[a.ID] = &cp
	return nil
}

var testSecret = []byte("test-secret-test-secret-test-secret")

func newTestService(now time.Time) (*Service, *memStore) {
	st := newMemStore()
	return NewServiceWithStore(st, testSecret, time.Hour, fixedClock{now}), st
}

func TestSignUp_AlwaysUserRole(t *testing.T) {
	svc, st := newTestService(time.Now())
	err := svc.SignUp(context.Background(), RegisterRequest{
		ID: "taro", Password: "password1", Email: "taro@example.com", Role: "admin",
	})
	require.NoError(t, err)
	assert.Equal(t, RoleUser, st.m["taro"].Role)
	assert.NotEqual(t, "password1", st.m["taro"].PasswordHash)
}

func TestSignUp_Validation(t *testing.T) {
	svc, _ := newTestService(time.Now())
	ctx := context.Background()

	cases := []struct {
		name string
		in   RegisterRequest
	}{
		{"short password", RegisterRequest{ID: "a", Password: "short", Email: "a@example.com"}},
		{"bad email", RegisterRequest{ID: "a", Password: "password1", Email: "nope"}},
		{"blank id", RegisterRequest{ID: "  ", Password: "password1", Email: "a@example.com"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.SignUp(ctx, tc.in)
			assert.True(t, apierr.Is(err, apierr.CodeInvalidArgument), "got %v", err)
		})
	}
}

func TestSignUp_Duplicate(t *testing.T) {
	svc, _ := newTestService(time.Now())
	in := RegisterRequest{ID: "taro", Password: "password1", Email: "taro@example.com"}
	require.NoError(t, svc.SignUp(context.Background(), in))
	err := svc.SignUp(context.Background(), in)
	assert.True(t, apierr.Is(err, apierr.CodeConflict))
}

func TestRegister_RequiresAdmin(t *testing.T) {
	svc, st := newTestService(time.Now())
	in := RegisterRequest{ID: "hanako", Password: "password1", Email: "h@example.com", Role: "staff"}

	err := svc.Register(context.Background(), Actor{UserID: "s", Role: RoleStaff}, in)
	assert.True(t, apierr.Is(err, apierr.CodePermissionDenied))

	require.NoError(t, svc.Register(context.Background(), Actor{UserID: "root", Role: RoleAdmin}, in))
	assert.Equal(t, RoleStaff, st.m["hanako"].Role)

	in.ID, in.Role = "x", "owner"
	err = svc.Register(context.Background(), Actor{UserID: "root", Role: RoleAdmin}, in)
	assert.True(t, apierr.Is(err, apierr.CodeInvalidArgument))
}

func TestLogin_AndParseToken(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	svc, _ := newTestService(now)
	ctx := context.Background()
	require.NoError(t, svc.Register(ctx, Actor{UserID: "root", Role: RoleAdmin},
		RegisterRequest{ID: "staff1", Password: "password1", Email: "s@example.com", Role: "staff"}))

	res, err := svc.Login(ctx, "staff1", "password1")
	require.NoError(t, err)
	assert.Equal(t, RoleStaff, res.Role)
	assert.Equal(t, AdminDashboardPath, res.Dashboard)
	assert.Equal(t, now.Add(time.Hour), res.ExpiresAt)

	actor, err := svc.ParseToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, Actor{UserID: "staff1", Role: RoleStaff}, actor)

	_, err = svc.Login(ctx, "staff1", "wrong-pass")
	assert.True(t, apierr.Is(err, apierr.CodeUnauthenticated))
	_, err = svc.Login(ctx, "nobody", "password1")
	assert.True(t, apierr.Is(err, apierr.CodeUnauthenticated))
}

func TestLogin_Disabled(t *testing.T) {
	svc, st := newTestService(time.Now())
	require.NoError(t, svc.SignUp(context.Background(),
		RegisterRequest{ID: "taro", Password: "password1", Email: "t@example.com"}))
	st.m["taro"].IsDisabled = true

	_, err := svc.Login(context.Background(), "taro", "password1")
	assert.True(t, apierr.Is(err, apierr.CodeUnauthenticated))
}

func TestParseToken_Rejects(t *testing.T) {
	now := time.Now()
	svc, _ := newTestService(now)

	sign := func(method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}
	valid := jwt.MapClaims{"sub": "u", "role": "user", "exp": now.Add(time.Hour).Unix()}

	cases := map[string]string{
		"expired":      sign(jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"sub": "u", "role": "user", "exp": now.Add(-time.Minute).Unix()}),
		"wrong secret": sign(jwt.SigningMethodHS256, []byte("other"), valid),
		"wrong alg":    sign(jwt.SigningMethodHS512, testSecret, valid),
		"no exp":       sign(jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"sub": "u", "role": "user"}),
		"bad role":     sign(jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"sub": "u", "role": "root", "exp": now.Add(time.Hour).Unix()}),
		"no sub":       sign(jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"role": "user", "exp": now.Add(time.Hour).Unix()}),
		"garbage":      "not-a-token",
	}
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ParseToken(tok)
			assert.True(t, apierr.Is(err, apierr.CodeUnauthenticated))
		})
	}
}
