package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Resolution states for an orphan payment. Reconciled and AutoRefunded are
// final: no automated path ever touches them again. ManuallyFlagged orphans
// can still be closed when their order turns up late; AmountMismatch only
// ever clears through human action.
const (
	ResolutionUnresolved      = "unresolved"
	ResolutionReconciled      = "reconciled"
	ResolutionAmountMismatch  = "amount_mismatch"
	ResolutionAutoRefunded    = "auto_refunded"
	ResolutionManuallyFlagged = "manually_flagged"
)

// OrphanPayment is a captured provider payment that had no matching local
// order at the time of last check. The resolution column is the canonical
// lifecycle field; ResolutionNote is a human-readable audit comment and is
// never used for control flow.
type OrphanPayment struct {
	ID                    uint            `gorm:"primaryKey" json:"id"`
	Reference             string          `gorm:"type:varchar(191);not null;uniqueIndex" json:"reference"`
	ProviderTransactionID string          `gorm:"type:varchar(191)" json:"provider_transaction_id"`
	Amount                decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Currency              string          `gorm:"type:varchar(10);not null" json:"currency"`
	PayloadJSON           string          `gorm:"type:longtext" json:"payload_json"`
	Resolution            string          `gorm:"type:varchar(30);not null;default:'unresolved';index" json:"resolution"`
	Reconciled            bool            `gorm:"default:false;index" json:"reconciled"`
	ResolutionNote        string          `gorm:"type:text" json:"resolution_note"`
	RefundID              string          `gorm:"type:varchar(191)" json:"refund_id"`
	LastError             string          `gorm:"type:text" json:"last_error"`
	ReconciledAt          *time.Time      `gorm:"type:timestamp;default:null" json:"reconciled_at,omitempty"`
	FirstSeenAt           time.Time       `gorm:"type:timestamp;not null;index" json:"first_seen_at"`
	CreatedAt             time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsReconciled reports whether the payment is settled from the money side,
// either matched to an order or given back.
func (o *OrphanPayment) IsReconciled() bool {
	return o.Resolution == ResolutionReconciled || o.Resolution == ResolutionAutoRefunded
}

// IsValidResolution reports whether s is one of the known lifecycle states.
func IsValidResolution(s string) bool {
	switch s {
	case ResolutionUnresolved, ResolutionReconciled, ResolutionAmountMismatch,
		ResolutionAutoRefunded, ResolutionManuallyFlagged:
		return true
	default:
		return false
	}
}
