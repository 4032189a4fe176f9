package models

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

const (
	PaymentMethodCreditCard = "credit_card"
	PaymentMethodPayPal     = "paypal"
	PaymentMethodApplePay   = "apple_pay"
)

type Order struct {
	ID            uuid.UUID   `json:"id"`
	OrderNumber   string      `json:"orderNumber"`
	UserID        int         `json:"userId"`
	StoreID       string      `json:"storeId"`
	StoreName     string      `json:"storeName"`
	Items         []LineItem  `json:"items"`
	Totals        OrderTotals `json:"totals"`
	PaymentMethod string      `json:"paymentMethod"`
	Status        OrderStatus `json:"status"`
	CreatedAt     time.Time   `json:"createdAt"`
}

type PaymentStatus string

const (
	PaymentSuccess PaymentStatus = "success"
	PaymentFailure PaymentStatus = "failure"
)

// PaymentOutcome is the terminal result of one payment attempt.
// OrderNumber is only set on success.
type PaymentOutcome struct {
	Status      PaymentStatus `json:"status"`
	OrderNumber string        `json:"orderNumber,omitempty"`
}

func (p PaymentOutcome) Succeeded() bool {
	return p.Status == PaymentSuccess
}
