package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/markb/sareeone/internal/db"
	"github.com/markb/sareeone/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret-0123456789"

func setupService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	database, err := db.New(t.TempDir() + "/auth.db")
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations())
	t.Cleanup(func() { database.Close() })
	s := store.New(database)
	return NewService(s, testSecret), s
}

func createAccount(t *testing.T, s *store.Store, acc store.NewAccount, password string) *store.Account {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	acc.Password = string(hash)
	created, err := s.CreateAccount(context.Background(), acc)
	require.NoError(t, err)
	return created
}

func TestLoginAdmin(t *testing.T) {
	svc, s := setupService(t)
	ctx := context.Background()
	createAccount(t, s, store.NewAccount{Name: "Admin", Email: "admin@saree.one", UserType: store.UserTypeAdmin, IsActive: true}, "secret-pass")

	acc, err := svc.LoginAdmin(ctx, "ADMIN@saree.one", "secret-pass")
	require.NoError(t, err)
	assert.Equal(t, "Admin", acc.Name)

	_, err = svc.LoginAdmin(ctx, "admin@saree.one", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.LoginAdmin(ctx, "nobody@saree.one", "secret-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginDriver(t *testing.T) {
	svc, s := setupService(t)
	ctx := context.Background()
	createAccount(t, s, store.NewAccount{Name: "Driver", Phone: "+967700000001", UserType: store.UserTypeDriver, IsActive: true}, "password123")
	createAccount(t, s, store.NewAccount{Name: "Off", Phone: "+967700000002", UserType: store.UserTypeDriver}, "password123")

	acc, err := svc.LoginDriver(ctx, " +967700000001 ", "password123")
	require.NoError(t, err)
	assert.Equal(t, store.UserTypeDriver, acc.UserType)

	_, err = svc.LoginDriver(ctx, "+967700000002", "password123")
	assert.ErrorIs(t, err, ErrAccountDisabled)
}

func TestLoginWrongAccountType(t *testing.T) {
	svc, s := setupService(t)
	createAccount(t, s, store.NewAccount{Name: "Driver", Email: "d@saree.one", Phone: "+967700000003", UserType: store.UserTypeDriver, IsActive: true}, "password123")

	_, err := svc.LoginAdmin(context.Background(), "d@saree.one", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestCreateAdmin(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.CreateAdmin(ctx, "Ops", "ops@saree.one", "short")
	assert.ErrorIs(t, err, ErrWeakPassword)

	acc, err := svc.CreateAdmin(ctx, "Ops", "ops@saree.one", "long-enough")
	require.NoError(t, err)
	assert.Equal(t, store.UserTypeAdmin, acc.UserType)

	_, err = svc.LoginAdmin(ctx, "ops@saree.one", "long-enough")
	assert.NoError(t, err)
}

func TestSessionRoundTrip(t *testing.T) {
	svc, _ := setupService(t)
	acc := &store.Account{ID: "acc-1", Name: "Admin", UserType: store.UserTypeAdmin}

	token, expires, err := svc.IssueSession(acc)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(SessionTTL), expires, time.Minute)

	claims, err := svc.ParseSession(token)
	require.NoError(t, err)
	assert.Equal(t, "acc-1", claims.Subject)
	assert.Equal(t, store.UserTypeAdmin, claims.Role)
	assert.Equal(t, "Admin", claims.Name)
}

func TestParseSessionRejects(t *testing.T) {
	svc, _ := setupService(t)
	acc := &store.Account{ID: "acc-1", UserType: store.UserTypeDriver}

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ParseSession("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("other secret", func(t *testing.T) {
		other := NewService(nil, "another-secret-value")
		token, _, err := other.IssueSession(acc)
		require.NoError(t, err)
		_, err = svc.ParseSession(token)
		assert.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("expired", func(t *testing.T) {
		past := NewService(nil, testSecret)
		past.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
		token, _, err := past.IssueSession(acc)
		require.NoError(t, err)
		_, err = svc.ParseSession(token)
		assert.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("wrong algorithm", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "acc-1",
				Issuer:    issuer,
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
			Role: store.UserTypeAdmin,
		}).SignedString([]byte(testSecret))
		require.NoError(t, err)
		_, err = svc.ParseSession(token)
		assert.ErrorIs(t, err, ErrInvalidSession)
	})
}

func TestTokenFromRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, TokenFromRequest(r))

	r.Header.Set("Authorization", "Bearer abc")
	assert.Equal(t, "abc", TokenFromRequest(r))

	r.AddCookie(&http.Cookie{Name: SessionCookie, Value: "from-cookie"})
	assert.Equal(t, "from-cookie", TokenFromRequest(r))
}

func TestCookie(t *testing.T) {
	svc, _ := setupService(t)
	c := svc.Cookie("tok", time.Now().Add(time.Hour), true)
	assert.Equal(t, SessionCookie, c.Name)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.InDelta(t, 3600, c.MaxAge, 5)

	assert.Equal(t, -1, ClearCookie(false).MaxAge)
}

func TestRequireRole(t *testing.T) {
	svc, _ := setupService(t)
	var status int
	onError := func(w http.ResponseWriter, code int, _ string) {
		status = code
		w.WriteHeader(code)
	}
	handler := svc.RequireRole(onError, store.UserTypeAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFromContext(r.Context())
		require.NotNil(t, claims)
		w.Write([]byte(claims.Subject))
	}))

	serve := func(token string) *httptest.ResponseRecorder {
		status = 0
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if token != "" {
			r.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, r)
		return rec
	}

	serve("")
	assert.Equal(t, http.StatusUnauthorized, status)

	driverToken, _, _ := svc.IssueSession(&store.Account{ID: "d", UserType: store.UserTypeDriver})
	serve(driverToken)
	assert.Equal(t, http.StatusForbidden, status)

	adminToken, _, _ := svc.IssueSession(&store.Account{ID: "a", UserType: store.UserTypeAdmin})
	rec := serve(adminToken)
	assert.Equal(t, 0, status)
	assert.Equal(t, "a", rec.Body.String())
}

func TestCookieFollowsServiceClock(t *testing.T) {
	svc, s := setupService(t)
	issued := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }
	acc := createAccount(t, s, store.NewAccount{Name: "Admin", Email: "clock@saree.one", UserType: store.UserTypeAdmin, IsActive: true}, "secret-pass")

	token, expires, err := svc.IssueSession(acc)
	require.NoError(t, err)

	c := svc.Cookie(token, expires, false)
	assert.Equal(t, int(SessionTTL.Seconds()), c.MaxAge)
	assert.Equal(t, expires, c.Expires)
}
