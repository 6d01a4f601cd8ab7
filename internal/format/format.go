package format

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"billed/api/internal/models"
)

// French abbreviated month names, indexed by time.Month.
var frenchMonths = [...]string{
	"", "janv.", "févr.", "mars", "avr.", "mai", "juin",
	"juil.", "août", "sept.", "oct.", "nov.", "déc.",
}

const isoDate = "2006-01-02"

// Date renders an ISO date as the short French form used by the bill list,
// e.g. "2004-04-04" -> "4 Avr. 04". A value that does not parse is
// returned unchanged.
func Date(raw string) (string, error) {
	t, err := time.Parse(isoDate, raw)
	if err != nil {
		return raw, fmt.Errorf("parse date %q: %w", raw, err)
	}
	month := frenchMonths[t.Month()]
	month = strings.ToUpper(month[:1]) + month[1:]
	return fmt.Sprintf("%d %s %02d", t.Day(), month, t.Year()%100), nil
}

// Status maps a stored bill status to its presentation label. Unknown
// statuses pass through unchanged.
func Status(status models.BillStatus) string {
	switch status {
	case models.BillStatusPending:
		return "En attente"
	case models.BillStatusAccepted:
		return "Accepté"
	case models.BillStatusRefused:
		return "Refusé"
	default:
		return string(status)
	}
}

// Amount formats a raw amount as whole currency units. Non-numeric input
// falls back to the raw value so a malformed record is shown, not lost.
func Amount(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return raw, fmt.Errorf("parse amount %q: %w", raw, err)
	}
	return fmt.Sprintf("%d €", n), nil
}

// Pct returns pct, or the default 20 when the stored value is zero.
func Pct(pct int) int {
	if pct == 0 {
		return 20
	}
	return pct
}

// Bill maps a Bill to its DisplayBill. Each transformation is guarded
// independently: a field that fails to format keeps its raw value and the
// fault is logged, never raised. The raw ISO date is always preserved for
// ordering.
func Bill(log zerolog.Logger, bill models.Bill) models.DisplayBill {
	date, err := Date(bill.Date)
	if err != nil {
		log.Warn().Err(err).Str("bill_id", bill.ID).Msg("date formatting fell back to raw value")
	}
	amount, err := Amount(bill.Amount)
	if err != nil {
		log.Warn().Err(err).Str("bill_id", bill.ID).Msg("amount formatting fell back to raw value")
	}

	return models.DisplayBill{
		ID:           bill.ID,
		Email:        bill.Email,
		Type:         bill.Type,
		Name:         bill.Name,
		Amount:       amount,
		Date:         date,
		RawDate:      bill.Date,
		VAT:          bill.VAT,
		Pct:          Pct(bill.Pct),
		Commentary:   bill.Commentary,
		FileURL:      bill.FileURL,
		FileName:     bill.FileName,
		Status:       Status(bill.Status),
		CommentAdmin: bill.CommentAdmin,
	}
}
