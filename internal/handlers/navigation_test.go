package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billed/api/internal/middleware"
	"billed/api/internal/models"
)

type navigationBody struct {
	Views []navigationEntry `json:"views"`
	Home  string            `json:"home"`
}

func navigationFor(t *testing.T, record *models.UserRecord) navigationBody {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := HandlerSet{log: zerolog.Nop()}
	router := gin.New()
	router.GET("/navigation", func(c *gin.Context) {
		if record != nil {
			c.Set(middleware.CtxUserRecord, *record)
		}
		h.Navigation(c)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/navigation", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body navigationBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func allowed(body navigationBody) map[string]bool {
	out := map[string]bool{}
	for _, entry := range body.Views {
		out[entry.View] = entry.Allowed
	}
	return out
}

func TestNavigationAnonymousLandsOnLogin(t *testing.T) {
	body := navigationFor(t, nil)

	assert.Equal(t, "/login", body.Home)
	views := allowed(body)
	assert.True(t, views["Login"])
	assert.False(t, views["Bills"])
	assert.False(t, views["NewBill"])
	assert.False(t, views["Dashboard"])
}

func TestNavigationEmployee(t *testing.T) {
	body := navigationFor(t, &models.UserRecord{Type: models.UserRoleEmployee, Email: "employee@billed.fr"})

	assert.Equal(t, "/bills", body.Home)
	views := allowed(body)
	assert.True(t, views["Bills"])
	assert.True(t, views["NewBill"])
	assert.False(t, views["Dashboard"])
}

func TestNavigationAdmin(t *testing.T) {
	body := navigationFor(t, &models.UserRecord{Type: models.UserRoleAdmin, Email: "admin@billed.fr"})

	assert.Equal(t, "/bills", body.Home)
	views := allowed(body)
	assert.True(t, views["Bills"])
	assert.False(t, views["NewBill"])
	assert.True(t, views["Dashboard"])
}
