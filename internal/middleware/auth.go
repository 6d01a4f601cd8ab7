package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"billed/api/internal/config"
	"billed/api/internal/models"
	"billed/api/internal/routes"
	"billed/api/internal/security"
)

// Context keys the auth middleware populates for downstream handlers.
const (
	CtxUser       = "current_user"
	CtxUserRecord = "user_record"
	CtxSessionID  = "session_id"
)

// UserSource and SessionSource are the repository slices session
// resolution needs.
type UserSource interface {
	GetByID(ctx context.Context, id string) (models.User, error)
}

type SessionSource interface {
	Get(ctx context.Context, id string) (models.Session, error)
	Touch(ctx context.Context, id string, ip string, userAgent string) error
}

// Auth resolves the bearer token into a session-backed user record and
// injects it into the request context. Any failure along the way — missing
// header, bad token, missing or expired session, unparseable user record —
// is treated identically: the request proceeds anonymous and the gate
// decides. Absence of a session is a valid state, not an error.
func Auth(cfg *config.AppConfig, users UserSource, sessions SessionSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		record, user, sessionID, ok := resolveSession(c, cfg, users, sessions)
		if ok {
			_ = sessions.Touch(c.Request.Context(), sessionID, c.ClientIP(), c.GetHeader("User-Agent"))
			c.Set(CtxUser, user)
			c.Set(CtxUserRecord, record)
			c.Set(CtxSessionID, sessionID)
		}
		c.Next()
	}
}

func resolveSession(c *gin.Context, cfg *config.AppConfig, users UserSource, sessions SessionSource) (models.UserRecord, models.User, string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return models.UserRecord{}, models.User{}, "", false
	}
	tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

	claims, err := security.ParseAccessToken(tokenStr, cfg.Security.JWTAccessSecret)
	if err != nil {
		return models.UserRecord{}, models.User{}, "", false
	}

	session, err := sessions.Get(c.Request.Context(), claims.SessionID)
	if err != nil {
		return models.UserRecord{}, models.User{}, "", false
	}
	if session.UserID != claims.UserID || session.ExpiresAt.Before(time.Now()) {
		return models.UserRecord{}, models.User{}, "", false
	}

	var record models.UserRecord
	if err := json.Unmarshal([]byte(session.UserRecord), &record); err != nil || record.Type == "" {
		// A record that fails to parse is the same as no session.
		return models.UserRecord{}, models.User{}, "", false
	}

	user, err := users.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		return models.UserRecord{}, models.User{}, "", false
	}
	if user.Status != models.UserStatusActive {
		return models.UserRecord{}, models.User{}, "", false
	}

	return record, user, session.ID, true
}

// RequireView gates a handler group behind a view descriptor's role table.
// It fails closed: an anonymous or unauthorized browser navigation is
// redirected to the login view, API callers get 401/403. There is no
// partial "view with fields disabled" state.
func RequireView(view routes.View) gin.HandlerFunc {
	descriptor, ok := routes.Lookup(view)

	return func(c *gin.Context) {
		if !ok {
			// Unregistered target: nothing renders.
			c.AbortWithStatus(http.StatusNotFound)
			return
		}

		record := RecordFromContext(c)
		if descriptor.Allows(record) {
			c.Next()
			return
		}

		if acceptsHTML(c) {
			c.Redirect(http.StatusSeeOther, routes.LoginPath)
			c.Abort()
			return
		}
		if record.Type == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	}
}

// RecordFromContext returns the session's user record; the zero value
// means anonymous.
func RecordFromContext(c *gin.Context) models.UserRecord {
	val, ok := c.Get(CtxUserRecord)
	if !ok {
		return models.UserRecord{}
	}
	record, ok := val.(models.UserRecord)
	if !ok {
		return models.UserRecord{}
	}
	return record
}

func acceptsHTML(c *gin.Context) bool {
	accept := c.GetHeader("Accept")
	return strings.Contains(accept, "text/html")
}
