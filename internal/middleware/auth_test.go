package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billed/api/internal/config"
	"billed/api/internal/models"
	"billed/api/internal/repository"
	"billed/api/internal/routes"
	"billed/api/internal/security"
)

type fakeUsers struct {
	users map[string]models.User
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return user, nil
}

type fakeSessions struct {
	sessions map[string]models.Session
}

func (f *fakeSessions) Get(_ context.Context, id string) (models.Session, error) {
	session, ok := f.sessions[id]
	if !ok {
		return models.Session{}, repository.ErrSessionNotFound
	}
	return session, nil
}

func (f *fakeSessions) Touch(context.Context, string, string, string) error { return nil }

func testConfig() *config.AppConfig {
	return &config.AppConfig{
		Security: config.SecurityConfig{
			JWTAccessSecret: "test-secret",
			JWTAccessTTL:    time.Hour,
		},
	}
}

func openTestSession(t *testing.T, cfg *config.AppConfig, role models.UserRole, email string) (string, *fakeUsers, *fakeSessions) {
	t.Helper()

	record, err := json.Marshal(models.UserRecord{Type: role, Email: email})
	require.NoError(t, err)

	user := models.User{ID: "u1", Email: email, Role: role, Status: models.UserStatusActive}
	session := models.Session{
		ID:         "s1",
		UserID:     user.ID,
		UserRecord: string(record),
		ExpiresAt:  time.Now().Add(time.Hour),
	}

	token, err := security.GenerateAccessToken(cfg.Security.JWTAccessSecret, user.ID, session.ID, email, string(role), cfg.Security.JWTAccessTTL)
	require.NoError(t, err)

	return token,
		&fakeUsers{users: map[string]models.User{user.ID: user}},
		&fakeSessions{sessions: map[string]models.Session{session.ID: session}}
}

func gatedRouter(cfg *config.AppConfig, users UserSource, sessions SessionSource, view routes.View) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth(cfg, users, sessions))
	router.GET("/probe", RequireView(view), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"email": RecordFromContext(c).Email})
	})
	return router
}

func TestAuthResolvesSessionRecord(t *testing.T) {
	cfg := testConfig()
	token, users, sessions := openTestSession(t, cfg, models.UserRoleEmployee, "employee@billed.fr")
	router := gatedRouter(cfg, users, sessions, routes.ViewBills)

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "employee@billed.fr")
}

func TestAuthTreatsBadTokenAsAnonymous(t *testing.T) {
	cfg := testConfig()
	_, users, sessions := openTestSession(t, cfg, models.UserRoleEmployee, "employee@billed.fr")
	router := gatedRouter(cfg, users, sessions, routes.ViewBills)

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthTreatsMalformedRecordAsAnonymous(t *testing.T) {
	cfg := testConfig()
	token, users, sessions := openTestSession(t, cfg, models.UserRoleEmployee, "employee@billed.fr")
	session := sessions.sessions["s1"]
	session.UserRecord = `{"type":`
	sessions.sessions["s1"] = session
	router := gatedRouter(cfg, users, sessions, routes.ViewBills)

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthTreatsExpiredSessionAsAnonymous(t *testing.T) {
	cfg := testConfig()
	token, users, sessions := openTestSession(t, cfg, models.UserRoleEmployee, "employee@billed.fr")
	session := sessions.sessions["s1"]
	session.ExpiresAt = time.Now().Add(-time.Minute)
	sessions.sessions["s1"] = session
	router := gatedRouter(cfg, users, sessions, routes.ViewBills)

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireViewRedirectsBrowsersToLogin(t *testing.T) {
	cfg := testConfig()
	router := gatedRouter(cfg, &fakeUsers{}, &fakeSessions{}, routes.ViewBills)

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, routes.LoginPath, w.Header().Get("Location"))
}

func TestRequireViewRejectsWrongRole(t *testing.T) {
	cfg := testConfig()
	token, users, sessions := openTestSession(t, cfg, models.UserRoleAdmin, "admin@billed.fr")
	router := gatedRouter(cfg, users, sessions, routes.ViewNewBill)

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireViewUnknownViewRendersNothing(t *testing.T) {
	cfg := testConfig()
	token, users, sessions := openTestSession(t, cfg, models.UserRoleEmployee, "employee@billed.fr")
	router := gatedRouter(cfg, users, sessions, routes.View("Settings"))

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
