package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentRecordStatus string

const (
	PaymentRecordPending PaymentRecordStatus = "Pending"
	PaymentRecordSuccess PaymentRecordStatus = "Success"
	PaymentRecordFailed  PaymentRecordStatus = "Failed"
)

// Payment is one checkout attempt. OrderNumber is set once the gateway
// accepts the charge.
type Payment struct {
	ID            uuid.UUID           `json:"id"`
	UserID        int                 `json:"userId"`
	Amount        decimal.Decimal     `json:"amount"`
	PaymentMethod string              `json:"paymentMethod"`
	Status        PaymentRecordStatus `json:"status"`
	OrderNumber   string              `json:"orderNumber,omitempty"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}
