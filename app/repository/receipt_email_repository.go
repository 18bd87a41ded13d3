package repository

import (
	"time"

	"github.com/LukasBrandt/PaySweep/app/models"
	"gorm.io/gorm"
)

// receiptEmailRepository implements the ReceiptEmailRepository interface
type receiptEmailRepository struct {
	db *gorm.DB
}

// NewReceiptEmailRepository creates a new receipt email repository instance
func NewReceiptEmailRepository(db *gorm.DB) ReceiptEmailRepository {
	return &receiptEmailRepository{db: db}
}

// ListDue returns unsent rows whose retry time has arrived. Rows that never
// failed have no next_retry_at and are always due. The order is preloaded so
// recipient resolution does not need a second query per row.
func (r *receiptEmailRepository) ListDue(now time.Time, limit int) ([]models.ReceiptEmailStatus, error) {
	var due []models.ReceiptEmailStatus
	err := r.db.
		Preload("Order").
		Where("sent = ? AND (next_retry_at IS NULL OR next_retry_at <= ?)", false, now).
		Order("created_at ASC").
		Limit(limit).
		Find(&due).Error
	return due, err
}

func (r *receiptEmailRepository) MarkSent(id uint, sentAt time.Time) error {
	return r.db.Model(&models.ReceiptEmailStatus{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"sent":          true,
			"sent_at":       &sentAt,
			"last_error":    "",
			"next_retry_at": nil,
		}).Error
}

func (r *receiptEmailRepository) RecordFailure(id uint, attempts int, lastError string, nextRetryAt time.Time) error {
	return r.db.Model(&models.ReceiptEmailStatus{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"attempts":      attempts,
			"last_error":    lastError,
			"next_retry_at": &nextRetryAt,
		}).Error
}
