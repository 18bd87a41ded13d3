package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	ORDER_STATUS_PENDING   = "pending"
	ORDER_STATUS_PAID      = "paid"
	ORDER_STATUS_SHIPPED   = "shipped"
	ORDER_STATUS_CANCELLED = "cancelled"
)

// Order is owned by the checkout flow; the reconciliation engine only ever
// writes PaymentReference-adjacent fields (PaymentProviderID and
// PaymentVerified). Guest contact fields are a snapshot taken at checkout for
// orders placed without a customer account.
type Order struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	OrderNumber       string          `gorm:"type:varchar(50);uniqueIndex" json:"order_number"`
	CustomerID        *uint           `gorm:"index" json:"customer_id,omitempty"`
	Customer          *Customer       `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	GuestEmail        string          `gorm:"type:varchar(200)" json:"-"`
	GuestName         string          `gorm:"type:varchar(150)" json:"-"`
	Total             decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	Currency          string          `gorm:"type:varchar(10);not null;default:'EUR'" json:"currency"`
	Status            string          `gorm:"type:varchar(30);default:'pending';index" json:"status" validate:"oneof=pending paid shipped cancelled"`
	PaymentReference  string          `gorm:"type:varchar(191);index" json:"payment_reference"`
	PaymentProviderID string          `gorm:"type:varchar(191)" json:"payment_provider_id"`
	PaymentVerified   bool            `gorm:"default:false;index" json:"payment_verified"`
	CreatedAt         time.Time       `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt         gorm.DeletedAt  `gorm:"index" json:"-"`
}
