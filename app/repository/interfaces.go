package repository

import (
	"time"

	"github.com/LukasBrandt/PaySweep/app/models"
	"gorm.io/gorm"
)

// WebhookEventRepository defines the interface for webhook audit log operations
type WebhookEventRepository interface {
	CreateIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error)
	MarkProcessed(id uint, processingError string) error
	ListProcessedUnarchived(olderThan time.Time, limit int) ([]models.WebhookEvent, error)
	MarkArchived(id uint) error
}

// OrphanPaymentRepository defines the interface for orphan payment lifecycle operations
type OrphanPaymentRepository interface {
	GetByReference(reference string) (*models.OrphanPayment, error)
	Upsert(orphan *models.OrphanPayment) error
	ListUnreconciledOlderThan(cutoff time.Time) ([]models.OrphanPayment, error)
	MarkReconciled(reference, note string) (bool, error)
	MarkAmountMismatch(reference, note string) (bool, error)
	MarkManuallyFlagged(reference, note string) (bool, error)
	ClaimAutoRefund(reference string) (bool, error)
	SetRefundResult(reference, refundID, note string) error
	ReleaseRefundClaim(reference, message string) error
	RecordError(reference, message string) error
	List(offset, limit int) ([]models.OrphanPayment, error)
	CountByResolution() (map[string]int64, error)
}

// OrderRepository defines the interface for the order fields this service consumes
type OrderRepository interface {
	GetByID(id uint) (*models.Order, error)
	GetByPaymentReference(reference string) (*models.Order, error)
	UpdatePaymentVerification(id uint, providerID string, verified bool) error
}

// CustomerRepository defines the interface for customer lookups
type CustomerRepository interface {
	GetByID(id uint) (*models.Customer, error)
}

// ReceiptEmailRepository defines the interface for receipt delivery state
type ReceiptEmailRepository interface {
	ListDue(now time.Time, limit int) ([]models.ReceiptEmailStatus, error)
	MarkSent(id uint, sentAt time.Time) error
	RecordFailure(id uint, attempts int, lastError string, nextRetryAt time.Time) error
}

// Repositories holds all repository instances
type Repositories struct {
	WebhookEvent  WebhookEventRepository
	OrphanPayment OrphanPaymentRepository
	Order         OrderRepository
	Customer      CustomerRepository
	ReceiptEmail  ReceiptEmailRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		WebhookEvent:  NewWebhookEventRepository(db),
		OrphanPayment: NewOrphanPaymentRepository(db),
		Order:         NewOrderRepository(db),
		Customer:      NewCustomerRepository(db),
		ReceiptEmail:  NewReceiptEmailRepository(db),
	}
}
