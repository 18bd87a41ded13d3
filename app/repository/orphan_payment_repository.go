package repository

import (
	"time"

	"github.com/LukasBrandt/PaySweep/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// orphanPaymentRepository implements the OrphanPaymentRepository interface
type orphanPaymentRepository struct {
	db *gorm.DB
}

// NewOrphanPaymentRepository creates a new orphan payment repository instance
func NewOrphanPaymentRepository(db *gorm.DB) OrphanPaymentRepository {
	return &orphanPaymentRepository{db: db}
}

func (r *orphanPaymentRepository) GetByReference(reference string) (*models.OrphanPayment, error) {
	var orphan models.OrphanPayment
	err := r.db.Where("reference = ?", reference).First(&orphan).Error
	if err != nil {
		return nil, err
	}
	return &orphan, nil
}

// Upsert creates the orphan or refreshes the verified snapshot fields on an
// existing row. Resolution fields are never touched here; lifecycle
// transitions go through the Mark*/Claim* methods below.
func (r *orphanPaymentRepository) Upsert(orphan *models.OrphanPayment) error {
	if err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "reference"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"provider_transaction_id",
			"amount",
			"currency",
			"payload_json",
			"updated_at",
		}),
	}).Create(orphan).Error; err != nil {
		return err
	}

	// Ensure ID and lifecycle fields reflect the stored row after upsert.
	return r.db.Where("reference = ?", orphan.Reference).First(orphan).Error
}

func (r *orphanPaymentRepository) ListUnreconciledOlderThan(cutoff time.Time) ([]models.OrphanPayment, error) {
	var orphans []models.OrphanPayment
	err := r.db.
		Where("reconciled = ? AND first_seen_at < ?", false, cutoff).
		Order("first_seen_at ASC").
		Find(&orphans).Error
	return orphans, err
}

// MarkReconciled closes an orphan because a matching order turned up. Flagged
// orphans can still be reconciled this way; mismatched ones cannot, their
// correction is a human decision.
func (r *orphanPaymentRepository) MarkReconciled(reference, note string) (bool, error) {
	now := time.Now()
	tx := r.db.Model(&models.OrphanPayment{}).
		Where("reference = ? AND reconciled = ? AND resolution <> ?",
			reference, false, models.ResolutionAmountMismatch).
		Updates(map[string]interface{}{
			"resolution":      models.ResolutionReconciled,
			"reconciled":      true,
			"resolution_note": note,
			"reconciled_at":   &now,
			"last_error":      "",
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// MarkAmountMismatch records drift between the recorded snapshot and the
// provider's verified transaction. The row stays unreconciled so the drift
// keeps showing up in sweeps until someone deals with it.
func (r *orphanPaymentRepository) MarkAmountMismatch(reference, note string) (bool, error) {
	tx := r.db.Model(&models.OrphanPayment{}).
		Where("reference = ? AND reconciled = ?", reference, false).
		Updates(map[string]interface{}{
			"resolution":      models.ResolutionAmountMismatch,
			"resolution_note": note,
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// MarkManuallyFlagged is a no-op on anything already past unresolved.
func (r *orphanPaymentRepository) MarkManuallyFlagged(reference, note string) (bool, error) {
	tx := r.db.Model(&models.OrphanPayment{}).
		Where("reference = ? AND resolution = ?", reference, models.ResolutionUnresolved).
		Updates(map[string]interface{}{
			"resolution":      models.ResolutionManuallyFlagged,
			"resolution_note": note,
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// ClaimAutoRefund performs the conditional transition that makes refund
// issuance at-most-once. The WHERE clause on the current resolution is the
// atomic guard: of any number of concurrent callers for the same reference,
// exactly one sees RowsAffected == 1 and may proceed to the provider refund
// call. Losers must treat the orphan as already resolved.
func (r *orphanPaymentRepository) ClaimAutoRefund(reference string) (bool, error) {
	now := time.Now()
	tx := r.db.Model(&models.OrphanPayment{}).
		Where("reference = ? AND resolution = ?", reference, models.ResolutionUnresolved).
		Updates(map[string]interface{}{
			"resolution":      models.ResolutionAutoRefunded,
			"reconciled":      true,
			"resolution_note": "auto refund pending",
			"reconciled_at":   &now,
			"last_error":      "",
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// ReleaseRefundClaim undoes a refund claim whose provider call failed, so the
// orphan becomes retryable on the next sweep. Only rows still carrying an
// empty refund id can be released; once a refund id is recorded the claim is
// permanent.
func (r *orphanPaymentRepository) ReleaseRefundClaim(reference, message string) error {
	return r.db.Model(&models.OrphanPayment{}).
		Where("reference = ? AND resolution = ? AND refund_id = ''", reference, models.ResolutionAutoRefunded).
		Updates(map[string]interface{}{
			"resolution":    models.ResolutionUnresolved,
			"reconciled":    false,
			"reconciled_at": nil,
			"last_error":    message,
		}).Error
}

// SetRefundResult stores the provider refund id and audit note on an already
// claimed row.
func (r *orphanPaymentRepository) SetRefundResult(reference, refundID, note string) error {
	return r.db.Model(&models.OrphanPayment{}).
		Where("reference = ?", reference).
		Updates(map[string]interface{}{
			"refund_id":       refundID,
			"resolution_note": note,
		}).Error
}

func (r *orphanPaymentRepository) RecordError(reference, message string) error {
	return r.db.Model(&models.OrphanPayment{}).
		Where("reference = ?", reference).
		Update("last_error", message).Error
}

func (r *orphanPaymentRepository) List(offset, limit int) ([]models.OrphanPayment, error) {
	var orphans []models.OrphanPayment
	err := r.db.Order("first_seen_at DESC").Offset(offset).Limit(limit).Find(&orphans).Error
	return orphans, err
}

func (r *orphanPaymentRepository) CountByResolution() (map[string]int64, error) {
	type row struct {
		Resolution string
		Total      int64
	}
	var rows []row
	err := r.db.Model(&models.OrphanPayment{}).
		Select("resolution, COUNT(*) as total").
		Group("resolution").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, rr := range rows {
		counts[rr.Resolution] = rr.Total
	}
	return counts, nil
}
