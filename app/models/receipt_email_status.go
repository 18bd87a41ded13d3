package models

import "time"

// ReceiptEmailStatus tracks durable delivery of the transactional receipt
// email for one order. Created alongside the order by the checkout flow;
// mutated only by the notifier.
type ReceiptEmailStatus struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	OrderID     uint       `gorm:"not null;uniqueIndex" json:"order_id"`
	Order       Order      `gorm:"foreignKey:OrderID" json:"order,omitempty"`
	Sent        bool       `gorm:"default:false;index" json:"sent"`
	Attempts    int        `gorm:"default:0" json:"attempts"`
	LastError   string     `gorm:"type:varchar(500)" json:"last_error"`
	NextRetryAt *time.Time `gorm:"type:timestamp;default:null;index" json:"next_retry_at,omitempty"`
	SentAt      *time.Time `gorm:"type:timestamp;default:null" json:"sent_at,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
