package models

import "time"

type BillStatus string

const (
	BillStatusPending  BillStatus = "pending"
	BillStatusAccepted BillStatus = "accepted"
	BillStatusRefused  BillStatus = "refused"
)

// Expense types as presented by the form, French labels included.
const (
	ExpenseTransports  = "Transports"
	ExpenseRestaurants = "Restaurants et bars"
	ExpenseHotel       = "Hôtel et logement"
	ExpenseOnline      = "Services en ligne"
	ExpenseIT          = "IT et électronique"
	ExpenseEquipment   = "Equipement et matériel"
	ExpenseSupplies    = "Fournitures de bureau"
)

// ExpenseTypes lists every selectable expense type, in form order.
var ExpenseTypes = []string{
	ExpenseTransports,
	ExpenseRestaurants,
	ExpenseHotel,
	ExpenseOnline,
	ExpenseIT,
	ExpenseEquipment,
	ExpenseSupplies,
}

// Bill is a persisted expense-report entry. Amount is kept as the raw
// submitted string: a non-numeric value is stored as-is and only the
// display layer attempts to format it.
type Bill struct {
	ID           string
	Email        string
	Type         string
	Name         string
	Amount       string
	Date         string
	VAT          string
	Pct          int
	Commentary   string
	FileURL      string
	FileName     string
	ObjectKey    string
	Status       BillStatus
	CommentAdmin string
	Signature    []byte
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DisplayBill is a Bill shaped for presentation. RawDate keeps the ISO
// value used for ordering even when Date was formatted.
type DisplayBill struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Type         string `json:"type"`
	Name         string `json:"name"`
	Amount       string `json:"amount"`
	Date         string `json:"date"`
	RawDate      string `json:"rawDate"`
	VAT          string `json:"vat"`
	Pct          int    `json:"pct"`
	Commentary   string `json:"commentary"`
	FileURL      string `json:"fileUrl"`
	FileName     string `json:"fileName"`
	Status       string `json:"status"`
	CommentAdmin string `json:"commentAdmin"`
}
