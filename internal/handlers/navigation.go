package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"billed/api/internal/middleware"
	"billed/api/internal/routes"
)

type navigationEntry struct {
	View    string `json:"view"`
	Path    string `json:"path"`
	Icon    string `json:"icon,omitempty"`
	Allowed bool   `json:"allowed"`
}

// Navigation exposes the route table resolved against the caller's
// session: which views exist, which ones this record may open, and where
// it should land. Anonymous callers land on the login view.
func (h HandlerSet) Navigation(c *gin.Context) {
	record := middleware.RecordFromContext(c)

	entries := make([]navigationEntry, 0, len(routes.Table))
	for _, d := range routes.Table {
		entries = append(entries, navigationEntry{
			View:    string(d.View),
			Path:    d.Path,
			Icon:    d.Icon,
			Allowed: d.Allows(record),
		})
	}

	home := routes.LoginPath
	if record.Type != "" {
		if d, ok := routes.Lookup(routes.Home(record.Type)); ok {
			home = d.Path
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"views": entries,
		"home":  home,
	})
}
