package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"billed/api/internal/middleware"
	"billed/api/internal/models"
	"billed/api/internal/receipts"
	"billed/api/internal/routes"
	"billed/api/internal/service"
)

const maxReceiptSize = 10 << 20

// NewBillForm returns the form descriptor for the NewBill view: the
// selectable expense types and the nav icon the view marks active.
func (h HandlerSet) NewBillForm(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"activeIcon":   routes.ActiveIcon(routes.ViewNewBill),
		"expenseTypes": models.ExpenseTypes,
	})
}

// UploadReceipt is the first persist phase: the selected file is validated
// by name, sniffed, stored, and a draft bill row is opened around it. A
// refused extension is a 400 the form surfaces inline; the caller may pick
// another file and retry.
func (h HandlerSet) UploadReceipt(c *gin.Context) {
	record := middleware.RecordFromContext(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	if fileHeader.Size > maxReceiptSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file unreadable"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxReceiptSize+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file unreadable"})
		return
	}

	result, err := h.newBills.CreateDraft(c.Request.Context(), record.Email, fileHeader.Filename, data)
	if err != nil {
		var extErr receipts.ErrExtension
		if errors.As(err, &extErr) || errors.Is(err, receipts.ErrUnknownType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.log.Error().Err(err).Str("email", record.Email).Msg("receipt upload failed")
		c.JSON(categoryStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"key":      result.Key,
		"fileUrl":  result.FileURL,
		"fileName": result.FileName,
	})
}

type submitRequest struct {
	Type       string `json:"type"`
	Name       string `json:"name"`
	Amount     string `json:"amount"`
	Date       string `json:"date"`
	VAT        string `json:"vat"`
	Pct        string `json:"pct"`
	Commentary string `json:"commentary"`
}

// SubmitBill is the second persist phase: it fills the draft opened by the
// upload with the form fields. On success the client is pointed back at
// the Bills view.
func (h HandlerSet) SubmitBill(c *gin.Context) {
	record := middleware.RecordFromContext(c)

	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bill, err := h.newBills.Submit(c.Request.Context(), c.Param("id"), record.Email, service.SubmitInput{
		Type:       req.Type,
		Name:       req.Name,
		Amount:     req.Amount,
		Date:       req.Date,
		VAT:        req.VAT,
		Pct:        req.Pct,
		Commentary: req.Commentary,
	})
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		h.log.Error().Err(err).Str("bill_id", c.Param("id")).Msg("bill submit failed")
		c.JSON(categoryStatus(err), gin.H{"error": err.Error()})
		return
	}

	billsView, _ := routes.Lookup(routes.ViewBills)
	c.JSON(http.StatusOK, gin.H{
		"bill":     bill,
		"redirect": billsView.Path,
	})
}

type postBillRequest struct {
	Type       string `json:"type"`
	Name       string `json:"name"`
	Amount     string `json:"amount"`
	Date       string `json:"date"`
	VAT        string `json:"vat"`
	Pct        int    `json:"pct"`
	Commentary string `json:"commentary"`
	FileURL    string `json:"fileUrl"`
	FileName   string `json:"fileName"`
}

// PostBill is the single-call creation path: file already placed, fields
// and reference arrive together.
func (h HandlerSet) PostBill(c *gin.Context) {
	record := middleware.RecordFromContext(c)

	var req postBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bill, err := h.newBills.Post(c.Request.Context(), models.Bill{
		Email:      record.Email,
		Type:       req.Type,
		Name:       req.Name,
		Amount:     req.Amount,
		Date:       req.Date,
		VAT:        req.VAT,
		Pct:        req.Pct,
		Commentary: req.Commentary,
		FileURL:    req.FileURL,
		FileName:   req.FileName,
	})
	if err != nil {
		h.log.Error().Err(err).Str("email", record.Email).Msg("bill post failed")
		c.JSON(categoryStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"bill": bill})
}
