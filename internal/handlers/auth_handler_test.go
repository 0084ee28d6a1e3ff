package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/denverparsonswork-debug/dockside-helper/internal/middleware"
	"github.com/denverparsonswork-debug/dockside-helper/internal/models"
	"github.com/denverparsonswork-debug/dockside-helper/internal/repositories"
	"github.com/denverparsonswork-debug/dockside-helper/internal/services"
)

type stubDriverRepo struct {
	repositories.DriverRepository
	mu     sync.Mutex
	driver *models.Driver
}

func (r *stubDriverRepo) GetByEmail(email string) (*models.Driver, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.driver != nil && r.driver.Email == email {
		return r.driver, nil
	}
	return nil, nil
}

func (r *stubDriverRepo) UpdateRefresh(driverID int, token string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.driver.RefreshToken = &token
	r.driver.RefreshExpiresAt = &expiresAt
	return nil
}

type stubCodeRepo struct {
	mu   sync.Mutex
	next int64
	rows []*models.LoginCode
}

func (r *stubCodeRepo) InvalidateActive(driverID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.rows[:0]
	for _, c := range r.rows {
		if c.DriverID == driverID && !c.Used {
			continue
		}
		kept = append(kept, c)
	}
	r.rows = kept
	return nil
}

func (r *stubCodeRepo) Create(driverID int, code string, expiresAt time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	r.rows = append(r.rows, &models.LoginCode{ID: r.next, DriverID: driverID, Code: code, ExpiresAt: expiresAt, CreatedAt: time.Now()})
	return r.next, nil
}

func (r *stubCodeRepo) GetActive(driverID int) (*models.LoginCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.rows) - 1; i >= 0; i-- {
		c := r.rows[i]
		if c.DriverID == driverID && !c.Used && c.ExpiresAt.After(time.Now()) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *stubCodeRepo) MarkUsed(id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.rows {
		if c.ID == id && !c.Used {
			c.Used = true
			return true, nil
		}
	}
	return false, nil
}

func (r *stubCodeRepo) DeleteExpired(time.Duration) error { return nil }

type stubAttemptRepo struct {
	mu   sync.Mutex
	rows []models.LoginAttempt
}

func (r *stubAttemptRepo) Create(identifier string) (*models.LoginAttempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a := models.LoginAttempt{Identifier: identifier, AttemptTime: time.Now()}
	r.rows = append(r.rows, a)
	return &a, nil
}

func (r *stubAttemptRepo) CountSince(identifier string, since time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, a := range r.rows {
		if a.Identifier == identifier && !a.AttemptTime.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r *stubAttemptRepo) DeleteOlderThan(time.Duration) error { return nil }

type stubEmail struct {
	mu   sync.Mutex
	sent []string
	fail bool
}

func (f *stubEmail) SendLoginCodeEmail(_, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("smtp down")
	}
	f.sent = append(f.sent, code)
	return nil
}

func (f *stubEmail) SendWelcomeEmail(_, _ string) error { return nil }

func setupAuthRouter(t *testing.T) (*gin.Engine, *stubCodeRepo, *stubEmail) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	middleware.JWTKey = []byte("test-secret")

	auth := services.NewAuthService()
	hash, err := auth.HashPassword("hunter22")
	require.NoError(t, err)

	repo := &stubDriverRepo{driver: &models.Driver{
		ID: 3, FullName: "Denny Parsons", Email: "denny@dockside.test",
		PasswordHash: hash, RoleID: 10,
	}}
	codes := &stubCodeRepo{}
	attempts := &stubAttemptRepo{}
	emails := &stubEmail{}

	driverSvc := services.NewDriverService(repo, emails, auth, nil)
	twoFactor := services.NewTwoFactorService(repo, codes, attempts, emails, nil)
	h := NewAuthHandler(driverSvc, auth, twoFactor)

	r := gin.New()
	r.POST("/login", h.Login)
	r.POST("/login/verify", h.VerifyLogin)
	r.POST("/login/resend", h.ResendCode)
	return r, codes, emails
}

func postJSON(t *testing.T, r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLoginFlow(t *testing.T) {
	r, codes, emails := setupAuthRouter(t)

	// неверный пароль
	w := postJSON(t, r, "/login", gin.H{"email": "denny@dockside.test", "password": "nope"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Empty(t, emails.sent)

	// верный пароль — уходит код
	w = postJSON(t, r, "/login", gin.H{"email": "denny@dockside.test", "password": "hunter22"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, emails.sent, 1)

	active, err := codes.GetActive(3)
	require.NoError(t, err)
	require.NotNil(t, active)

	// подтверждение кода — токены
	w = postJSON(t, r, "/login/verify", gin.H{"email": "denny@dockside.test", "code": active.Code})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Tokens struct {
			AccessToken  string `json:"access_token"`
			RefreshToken string `json:"refresh_token"`
		} `json:"tokens"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Tokens.AccessToken)
	require.NotEmpty(t, resp.Tokens.RefreshToken)

	// тот же код второй раз не принимается
	w = postJSON(t, r, "/login/verify", gin.H{"email": "denny@dockside.test", "code": active.Code})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestResendUnknownEmailLooksLikeSuccess(t *testing.T) {
	r, codes, emails := setupAuthRouter(t)

	w := postJSON(t, r, "/login/resend", gin.H{"email": "stranger@dockside.test"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, emails.sent)
	require.Empty(t, codes.rows)
}

func TestVerifyInvalidCodeGenericError(t *testing.T) {
	r, _, _ := setupAuthRouter(t)

	w := postJSON(t, r, "/login/verify", gin.H{"email": "denny@dockside.test", "code": "000000"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), "invalid or expired code")
}
