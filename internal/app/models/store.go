package models

import (
	"time"

	"github.com/google/uuid"
)

type Product struct {
	ID        uuid.UUID
	Name      string
	Category  string
	SKU       string
	Price     float64
	Stock     float64
	ExpiresAt *time.Time
	BranchID  *uuid.UUID
}

type Branch struct {
	ID      uuid.UUID
	Name    string
	Address string
}

type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
)

// CardPayment is the state of a card payment at the processor.
type CardPayment struct {
	ID           string
	Status       string
	Amount       int64
	Currency     string
	ClientSecret string
}

const (
	CardPaymentSucceeded = "succeeded"
	CardPaymentCanceled  = "canceled"
)

type SaleItem struct {
	ProductID uuid.UUID
	Quantity  int
	UnitPrice float64
}

type Sale struct {
	ID              uuid.UUID
	CashierID       uuid.UUID
	Items           []SaleItem
	Total           float64
	Method          PaymentMethod
	PaymentIntentID *string
	CreatedAt       time.Time
}
