package payments

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/LukasBrandt/PaySweep/app/models"
	"github.com/LukasBrandt/PaySweep/app/repository"
	"github.com/LukasBrandt/PaySweep/internal/pkg/provider"
	"gorm.io/gorm"
)

// EventTypeChargeSuccess is the only webhook event type that triggers
// reconciliation; everything else is audit-logged and acknowledged.
const EventTypeChargeSuccess = "charge.success"

// Service reconciles provider payments against local orders. Webhook, manual
// and sweep paths all go through the same Reconcile primitive so they can
// never diverge in logic.
type Service struct {
	events   repository.WebhookEventRepository
	orders   repository.OrderRepository
	orphans  repository.OrphanPaymentRepository
	provider provider.Client
	policy   Policy
}

// NewService creates a reconciliation service from injected repositories.
func NewService(repos *repository.Repositories, pc provider.Client, policy Policy) *Service {
	return &Service{
		events:   repos.WebhookEvent,
		orders:   repos.Order,
		orphans:  repos.OrphanPayment,
		provider: pc,
		policy:   policy,
	}
}

// NewServiceFromDB creates a reconciliation service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB, pc provider.Client, policy Policy) *Service {
	return NewService(repository.NewRepositories(db), pc, policy)
}

// RecordWebhookEvent persists webhook payloads idempotently. When the
// provider sends no event id, one is synthesized from the event type and
// reference so replayed deliveries of the same logical event still collide
// on the unique index.
func (s *Service) RecordWebhookEvent(ctx context.Context, in WebhookEventInput) (bool, *models.WebhookEvent, error) {
	_ = ctx
	providerName := strings.ToLower(strings.TrimSpace(in.Provider))
	if providerName == "" {
		return false, nil, errors.New("provider is required")
	}
	eventID := strings.TrimSpace(in.ProviderEventID)
	if eventID == "" && in.EventType != "" && in.Reference != "" {
		eventID = fmt.Sprintf("%s:%s", strings.TrimSpace(in.EventType), strings.TrimSpace(in.Reference))
	}
	if eventID == "" {
		sum := sha256.Sum256([]byte(in.PayloadJSON))
		eventID = "hash:" + hex.EncodeToString(sum[:])
	}

	event := &models.WebhookEvent{
		Provider:        providerName,
		ProviderEventID: eventID,
		EventType:       strings.TrimSpace(in.EventType),
		PayloadJSON:     in.PayloadJSON,
		SignatureValid:  in.SignatureValid,
	}
	return s.events.CreateIfNotExists(event)
}

// MarkWebhookProcessed marks an event as processed and stores an optional error.
func (s *Service) MarkWebhookProcessed(ctx context.Context, webhookEventID uint, processingErr error) error {
	_ = ctx
	if webhookEventID == 0 {
		return errors.New("webhook_event_id is required")
	}
	errMsg := ""
	if processingErr != nil {
		errMsg = processingErr.Error()
	}
	return s.events.MarkProcessed(webhookEventID, errMsg)
}

// Reconcile matches a provider payment reference to a local order, or
// formally records its absence. The provider verify call is authoritative;
// if it fails nothing is mutated and the caller decides retry policy.
func (s *Service) Reconcile(ctx context.Context, reference string) (Result, error) {
	ref := strings.TrimSpace(reference)
	if ref == "" {
		return Result{}, errors.New("reference is required")
	}

	tx, err := s.provider.VerifyTransaction(ctx, ref)
	if err != nil {
		return Result{}, fmt.Errorf("verify transaction %s: %w", ref, err)
	}

	order, err := s.orders.GetByPaymentReference(ref)
	if err == nil {
		return s.resolveMatched(order, tx)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return Result{}, fmt.Errorf("order lookup for %s: %w", ref, err)
	}

	return s.resolveUnmatched(ctx, tx)
}

// resolveMatched handles the order-found branch: flip the verification flag,
// sync the provider transaction id, and close out any orphan recorded while
// the order had not committed yet.
func (s *Service) resolveMatched(order *models.Order, tx *provider.Transaction) (Result, error) {
	if !order.PaymentVerified || order.PaymentProviderID != tx.ID {
		if err := s.orders.UpdatePaymentVerification(order.ID, tx.ID, true); err != nil {
			return Result{}, fmt.Errorf("update order %d payment verification: %w", order.ID, err)
		}
	}

	if _, err := s.orphans.MarkReconciled(tx.Reference, "order already existed"); err != nil {
		return Result{}, fmt.Errorf("reconcile orphan %s: %w", tx.Reference, err)
	}
	return Result{Outcome: OutcomeMatched, Resolution: models.ResolutionReconciled}, nil
}

// resolveUnmatched handles the no-order branch: guard against replays of
// already-settled orphans, surface amount drift, and apply the configured
// unmatched-payment policy.
func (s *Service) resolveUnmatched(ctx context.Context, tx *provider.Transaction) (Result, error) {
	existing, err := s.orphans.GetByReference(tx.Reference)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return Result{}, fmt.Errorf("orphan lookup for %s: %w", tx.Reference, err)
	}

	if existing != nil && existing.IsReconciled() {
		return Result{Outcome: OutcomeAlreadyResolved, Resolution: existing.Resolution}, nil
	}

	// Mismatches only clear through human action.
	if existing != nil && existing.Resolution == models.ResolutionAmountMismatch {
		return Result{Outcome: OutcomeOrphaned, Resolution: models.ResolutionAmountMismatch}, nil
	}

	if existing != nil && (!existing.Amount.Equal(tx.Amount) || !strings.EqualFold(existing.Currency, tx.Currency)) {
		note := fmt.Sprintf("verified %s %s does not match recorded %s %s",
			tx.Amount.StringFixed(2), strings.ToUpper(tx.Currency),
			existing.Amount.StringFixed(2), strings.ToUpper(existing.Currency))
		if _, err := s.orphans.MarkAmountMismatch(tx.Reference, note); err != nil {
			return Result{}, fmt.Errorf("flag amount mismatch for %s: %w", tx.Reference, err)
		}
		return Result{Outcome: OutcomeOrphaned, Resolution: models.ResolutionAmountMismatch}, nil
	}

	orphan := &models.OrphanPayment{
		Reference:             tx.Reference,
		ProviderTransactionID: tx.ID,
		Amount:                tx.Amount,
		Currency:              strings.ToUpper(tx.Currency),
		PayloadJSON:           transactionSnapshot(tx),
		Resolution:            models.ResolutionUnresolved,
		FirstSeenAt:           time.Now(),
	}
	if err := s.orphans.Upsert(orphan); err != nil {
		return Result{}, fmt.Errorf("upsert orphan %s: %w", tx.Reference, err)
	}

	// An already flagged orphan just gets its snapshot refreshed; someone is
	// expected to be looking at it.
	if existing != nil && existing.Resolution == models.ResolutionManuallyFlagged {
		return Result{Outcome: OutcomeOrphaned, Resolution: models.ResolutionManuallyFlagged}, nil
	}

	switch s.policy {
	case PolicyAutoRefund:
		return s.autoRefund(ctx, tx)
	default:
		if _, err := s.orphans.MarkManuallyFlagged(tx.Reference, "flagged for manual review"); err != nil {
			return Result{}, fmt.Errorf("flag orphan %s: %w", tx.Reference, err)
		}
		return Result{Outcome: OutcomeOrphaned, Resolution: models.ResolutionManuallyFlagged}, nil
	}
}

// autoRefund claims the orphan before calling the provider. The conditional
// update is the at-most-once guard: a concurrent sweep or webhook replay
// that loses the claim never reaches the refund call. A refund failure
// releases the claim so the next sweep can retry.
func (s *Service) autoRefund(ctx context.Context, tx *provider.Transaction) (Result, error) {
	claimed, err := s.orphans.ClaimAutoRefund(tx.Reference)
	if err != nil {
		return Result{}, fmt.Errorf("claim refund for %s: %w", tx.Reference, err)
	}
	if !claimed {
		return Result{Outcome: OutcomeAlreadyResolved, Resolution: models.ResolutionAutoRefunded}, nil
	}

	refund, err := s.provider.RefundTransaction(ctx, provider.RefundRequest{
		TransactionID: tx.ID,
		Reason:        "orphan payment auto-refund",
	})
	if err != nil {
		msg := fmt.Sprintf("refund failed: %v", err)
		if releaseErr := s.orphans.ReleaseRefundClaim(tx.Reference, msg); releaseErr != nil {
			return Result{}, fmt.Errorf("release refund claim for %s: %v (refund error: %w)", tx.Reference, releaseErr, err)
		}
		return Result{Outcome: OutcomeOrphaned, Resolution: models.ResolutionUnresolved}, fmt.Errorf("refund %s: %w", tx.Reference, err)
	}

	note := fmt.Sprintf("auto-refunded, refund id %s", refund.ID)
	if err := s.orphans.SetRefundResult(tx.Reference, refund.ID, note); err != nil {
		return Result{}, fmt.Errorf("record refund %s for %s: %w", refund.ID, tx.Reference, err)
	}
	return Result{Outcome: OutcomeOrphaned, Resolution: models.ResolutionAutoRefunded}, nil
}

func transactionSnapshot(tx *provider.Transaction) string {
	return fmt.Sprintf(`{"id":%q,"reference":%q,"status":%q,"amount":%q,"currency":%q}`,
		tx.ID, tx.Reference, tx.Status, tx.Amount.StringFixed(2), strings.ToUpper(tx.Currency))
}
