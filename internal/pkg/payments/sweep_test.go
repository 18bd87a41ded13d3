package payments

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/LukasBrandt/PaySweep/app/models"
	"github.com/shopspring/decimal"
)

func seedOrphan(f *fixture, reference, amount string, firstSeen time.Time) {
	orphan := &models.OrphanPayment{
		Reference:   reference,
		Amount:      decimal.RequireFromString(amount),
		Currency:    "EUR",
		Resolution:  models.ResolutionUnresolved,
		FirstSeenAt: firstSeen,
	}
	_ = f.orphans.Upsert(orphan)
}

func TestSweepGraceWindow(t *testing.T) {
	f := newFixture(PolicyManualOnly)
	seen := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	seedOrphan(f, "ref_g", "10.00", seen)
	f.prov.transactions["ref_g"] = chargeTx("ref_g", "10.00")

	summary, err := f.svc.SweepUnreconciled(context.Background(), seen.Add(5*time.Minute))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Scanned != 0 {
		t.Fatalf("orphan inside the grace window must not be swept, scanned %d", summary.Scanned)
	}

	summary, err = f.svc.SweepUnreconciled(context.Background(), seen.Add(11*time.Minute))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Scanned != 1 {
		t.Fatalf("orphan past the grace window must be swept, scanned %d", summary.Scanned)
	}
	if summary.Flagged != 1 {
		t.Fatalf("expected the orphan to be flagged, got %+v", summary)
	}
}

func TestSweepIsolatedFailures(t *testing.T) {
	f := newFixture(PolicyManualOnly)
	seen := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for _, ref := range []string{"ref_a", "ref_b", "ref_c"} {
		seedOrphan(f, ref, "10.00", seen)
	}
	f.prov.transactions["ref_a"] = chargeTx("ref_a", "10.00")
	f.prov.transactions["ref_c"] = chargeTx("ref_c", "10.00")
	f.prov.verifyErrs["ref_b"] = errors.New("provider timeout")

	summary, err := f.svc.SweepUnreconciled(context.Background(), seen.Add(time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.Scanned != 3 {
		t.Fatalf("expected all three orphans scanned, got %d", summary.Scanned)
	}
	if len(summary.Errors) != 1 || !strings.Contains(summary.Errors[0], "ref_b") {
		t.Fatalf("expected exactly one error entry for ref_b, got %v", summary.Errors)
	}
	if summary.Flagged != 2 {
		t.Fatalf("expected ref_a and ref_c to reach their state despite ref_b failing, got %+v", summary)
	}

	failed, _ := f.orphans.GetByReference("ref_b")
	if failed.LastError == "" {
		t.Fatalf("expected verification error to be recorded on ref_b")
	}
	if failed.Resolution != models.ResolutionUnresolved {
		t.Fatalf("failed orphan must stay unresolved for the next sweep, got %q", failed.Resolution)
	}
}

func TestSweepCountsBuckets(t *testing.T) {
	f := newFixture(PolicyManualOnly)
	seen := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// ref_match: its order committed since the orphan was recorded.
	seedOrphan(f, "ref_match", "20.00", seen)
	f.prov.transactions["ref_match"] = chargeTx("ref_match", "20.00")
	f.orders.add(&models.Order{ID: 1, PaymentReference: "ref_match", Total: decimal.RequireFromString("20.00"), Currency: "EUR"})

	// ref_drift: the provider now reports a different amount.
	seedOrphan(f, "ref_drift", "30.00", seen)
	f.prov.transactions["ref_drift"] = chargeTx("ref_drift", "35.00")

	// ref_new: still unmatched, gets flagged.
	seedOrphan(f, "ref_new", "40.00", seen)
	f.prov.transactions["ref_new"] = chargeTx("ref_new", "40.00")

	summary, err := f.svc.SweepUnreconciled(context.Background(), seen.Add(time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.Scanned != 3 {
		t.Fatalf("expected 3 scanned, got %d", summary.Scanned)
	}
	if summary.Reconciled != 1 || summary.AmountMismatch != 1 || summary.Flagged != 1 {
		t.Fatalf("unexpected bucket counts: %+v", summary)
	}
	if len(summary.Errors) != 0 {
		t.Fatalf("expected no errors, got %v", summary.Errors)
	}
}
