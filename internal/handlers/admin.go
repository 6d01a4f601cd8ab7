package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"billed/api/internal/middleware"
	"billed/api/internal/models"
)

// AdminListBills feeds the Dashboard: every user's bills, formatted the
// same way the Bills view formats them.
func (h HandlerSet) AdminListBills(c *gin.Context) {
	record := middleware.RecordFromContext(c)

	bills, err := h.bills.List(c.Request.Context(), record)
	if err != nil {
		h.log.Error().Err(err).Msg("admin list bills failed")
		c.JSON(categoryStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"bills": bills})
}

type reviewRequest struct {
	Status       string `json:"status" binding:"required"`
	CommentAdmin string `json:"commentAdmin"`
}

// ReviewBill records the administrator's decision on a submitted bill.
func (h HandlerSet) ReviewBill(c *gin.Context) {
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.bills.Review(c.Request.Context(), c.Param("id"), models.BillStatus(req.Status), req.CommentAdmin); err != nil {
		h.log.Error().Err(err).Str("bill_id", c.Param("id")).Msg("bill review failed")
		c.JSON(categoryStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
