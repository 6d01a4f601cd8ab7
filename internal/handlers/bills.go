package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"billed/api/internal/middleware"
	"billed/api/internal/routes"
	"billed/api/internal/service"
)

// ListBills renders the Bills view payload: the viewer's bills, formatted
// and ordered most recent first, plus the nav icon the view marks active.
// A store failure keeps the view shell and carries the categorized error
// message instead of the rows.
func (h HandlerSet) ListBills(c *gin.Context) {
	record := middleware.RecordFromContext(c)

	bills, err := h.bills.List(c.Request.Context(), record)
	if err != nil {
		h.log.Error().Err(err).Str("email", record.Email).Msg("list bills failed")
		c.JSON(categoryStatus(err), gin.H{
			"error":      err.Error(),
			"activeIcon": routes.ActiveIcon(routes.ViewBills),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"activeIcon": routes.ActiveIcon(routes.ViewBills),
		"bills":      bills,
	})
}

// ReceiptPreview resolves a bill's receipt URL for the list row's eye
// icon. The resolution mutates nothing, so repeated clicks are safe.
func (h HandlerSet) ReceiptPreview(c *gin.Context) {
	record := middleware.RecordFromContext(c)

	url, err := h.bills.ReceiptURL(c.Request.Context(), c.Param("id"), record)
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		h.log.Error().Err(err).Str("bill_id", c.Param("id")).Msg("receipt preview failed")
		c.JSON(categoryStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

// categoryStatus maps a categorized error message onto its HTTP status.
// The message substring is the contract with the services layer; anything
// uncategorized surfaces as a 500 with its raw message.
func categoryStatus(err error) int {
	msg := err.Error()
	if strings.Contains(msg, "Erreur 404") {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
