package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/LukasBrandt/PaySweep/app/models"
	"github.com/LukasBrandt/PaySweep/app/repository"
	"github.com/LukasBrandt/PaySweep/internal/pkg/provider"
	"gorm.io/gorm"
)

// In-memory repository fakes. They mirror the SQL conditions of the real
// implementations closely enough that the lifecycle guards behave the same.

type fakeOrphanRepo struct {
	rows   map[string]*models.OrphanPayment
	nextID uint
}

func newFakeOrphanRepo() *fakeOrphanRepo {
	return &fakeOrphanRepo{rows: make(map[string]*models.OrphanPayment)}
}

func (f *fakeOrphanRepo) GetByReference(reference string) (*models.OrphanPayment, error) {
	row, ok := f.rows[reference]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *row
	return &copied, nil
}

func (f *fakeOrphanRepo) Upsert(orphan *models.OrphanPayment) error {
	if existing, ok := f.rows[orphan.Reference]; ok {
		existing.ProviderTransactionID = orphan.ProviderTransactionID
		existing.Amount = orphan.Amount
		existing.Currency = orphan.Currency
		existing.PayloadJSON = orphan.PayloadJSON
		*orphan = *existing
		return nil
	}
	f.nextID++
	orphan.ID = f.nextID
	copied := *orphan
	f.rows[orphan.Reference] = &copied
	return nil
}

func (f *fakeOrphanRepo) ListUnreconciledOlderThan(cutoff time.Time) ([]models.OrphanPayment, error) {
	var out []models.OrphanPayment
	for _, row := range f.rows {
		if !row.Reconciled && row.FirstSeenAt.Before(cutoff) {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (f *fakeOrphanRepo) MarkReconciled(reference, note string) (bool, error) {
	row, ok := f.rows[reference]
	if !ok || row.Reconciled || row.Resolution == models.ResolutionAmountMismatch {
		return false, nil
	}
	now := time.Now()
	row.Resolution = models.ResolutionReconciled
	row.Reconciled = true
	row.ResolutionNote = note
	row.ReconciledAt = &now
	row.LastError = ""
	return true, nil
}

func (f *fakeOrphanRepo) MarkAmountMismatch(reference, note string) (bool, error) {
	row, ok := f.rows[reference]
	if !ok || row.Reconciled {
		return false, nil
	}
	row.Resolution = models.ResolutionAmountMismatch
	row.ResolutionNote = note
	return true, nil
}

func (f *fakeOrphanRepo) MarkManuallyFlagged(reference, note string) (bool, error) {
	row, ok := f.rows[reference]
	if !ok || row.Resolution != models.ResolutionUnresolved {
		return false, nil
	}
	row.Resolution = models.ResolutionManuallyFlagged
	row.ResolutionNote = note
	return true, nil
}

func (f *fakeOrphanRepo) ClaimAutoRefund(reference string) (bool, error) {
	row, ok := f.rows[reference]
	if !ok || row.Resolution != models.ResolutionUnresolved {
		return false, nil
	}
	now := time.Now()
	row.Resolution = models.ResolutionAutoRefunded
	row.Reconciled = true
	row.ResolutionNote = "auto refund pending"
	row.ReconciledAt = &now
	row.LastError = ""
	return true, nil
}

func (f *fakeOrphanRepo) SetRefundResult(reference, refundID, note string) error {
	if row, ok := f.rows[reference]; ok {
		row.RefundID = refundID
		row.ResolutionNote = note
	}
	return nil
}

func (f *fakeOrphanRepo) ReleaseRefundClaim(reference, message string) error {
	row, ok := f.rows[reference]
	if !ok || row.Resolution != models.ResolutionAutoRefunded || row.RefundID != "" {
		return nil
	}
	row.Resolution = models.ResolutionUnresolved
	row.Reconciled = false
	row.ReconciledAt = nil
	row.LastError = message
	return nil
}

func (f *fakeOrphanRepo) RecordError(reference, message string) error {
	if row, ok := f.rows[reference]; ok {
		row.LastError = message
	}
	return nil
}

func (f *fakeOrphanRepo) List(offset, limit int) ([]models.OrphanPayment, error) {
	var out []models.OrphanPayment
	for _, row := range f.rows {
		out = append(out, *row)
	}
	return out, nil
}

func (f *fakeOrphanRepo) CountByResolution() (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, row := range f.rows {
		counts[row.Resolution]++
	}
	return counts, nil
}

type fakeOrderRepo struct {
	rows map[string]*models.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{rows: make(map[string]*models.Order)}
}

func (f *fakeOrderRepo) add(order *models.Order) {
	f.rows[order.PaymentReference] = order
}

func (f *fakeOrderRepo) GetByID(id uint) (*models.Order, error) {
	for _, row := range f.rows {
		if row.ID == id {
			return row, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeOrderRepo) GetByPaymentReference(reference string) (*models.Order, error) {
	row, ok := f.rows[reference]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return row, nil
}

func (f *fakeOrderRepo) UpdatePaymentVerification(id uint, providerID string, verified bool) error {
	for _, row := range f.rows {
		if row.ID == id {
			row.PaymentProviderID = providerID
			row.PaymentVerified = verified
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type fakeEventRepo struct {
	byKey  map[string]*models.WebhookEvent
	byID   map[uint]*models.WebhookEvent
	nextID uint
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{
		byKey: make(map[string]*models.WebhookEvent),
		byID:  make(map[uint]*models.WebhookEvent),
	}
}

func eventKey(provider, eventID string) string {
	return provider + "|" + eventID
}

func (f *fakeEventRepo) CreateIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error) {
	key := eventKey(event.Provider, event.ProviderEventID)
	if stored, ok := f.byKey[key]; ok {
		copied := *stored
		return false, &copied, nil
	}
	f.nextID++
	event.ID = f.nextID
	copied := *event
	f.byKey[key] = &copied
	f.byID[event.ID] = &copied
	stored := *event
	return true, &stored, nil
}

// GetStored exposes the stored row for assertions.
func (f *fakeEventRepo) GetStored(provider, providerEventID string) (*models.WebhookEvent, error) {
	if stored, ok := f.byKey[eventKey(provider, providerEventID)]; ok {
		copied := *stored
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeEventRepo) MarkProcessed(id uint, processingError string) error {
	row, ok := f.byID[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	now := time.Now()
	row.ProcessedAt = &now
	row.ProcessingError = processingError
	return nil
}

func (f *fakeEventRepo) ListProcessedUnarchived(olderThan time.Time, limit int) ([]models.WebhookEvent, error) {
	return nil, nil
}

func (f *fakeEventRepo) MarkArchived(id uint) error { return nil }

type fakeProvider struct {
	transactions map[string]*provider.Transaction
	verifyErrs   map[string]error

	refundCalls int
	refundErr   error
	refundID    string
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		transactions: make(map[string]*provider.Transaction),
		verifyErrs:   make(map[string]error),
		refundID:     "rf_1",
	}
}

func (f *fakeProvider) VerifyTransaction(_ context.Context, reference string) (*provider.Transaction, error) {
	if err, ok := f.verifyErrs[reference]; ok {
		return nil, err
	}
	tx, ok := f.transactions[reference]
	if !ok {
		return nil, fmt.Errorf("transaction %s not found", reference)
	}
	copied := *tx
	return &copied, nil
}

func (f *fakeProvider) RefundTransaction(_ context.Context, _ provider.RefundRequest) (*provider.Refund, error) {
	f.refundCalls++
	if f.refundErr != nil {
		return nil, f.refundErr
	}
	return &provider.Refund{ID: f.refundID, Status: "processed"}, nil
}

type fixture struct {
	events  *fakeEventRepo
	orders  *fakeOrderRepo
	orphans *fakeOrphanRepo
	prov    *fakeProvider
	svc     *Service
}

func newFixture(policy Policy) *fixture {
	f := &fixture{
		events:  newFakeEventRepo(),
		orders:  newFakeOrderRepo(),
		orphans: newFakeOrphanRepo(),
		prov:    newFakeProvider(),
	}
	repos := &repository.Repositories{
		WebhookEvent:  f.events,
		Order:         f.orders,
		OrphanPayment: f.orphans,
	}
	f.svc = NewService(repos, f.prov, policy)
	return f
}
