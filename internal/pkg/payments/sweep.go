package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/LukasBrandt/PaySweep/app/models"
	"github.com/gofiber/fiber/v2/log"
)

const (
	// GraceWindow keeps freshly seen orphans out of the sweep so a checkout
	// transaction committing moments after the webhook fired is not raced.
	GraceWindow = 10 * time.Minute

	// maxSweepErrors bounds the error list in the sweep summary.
	maxSweepErrors = 20
)

// SweepUnreconciled re-runs the reconciliation decision for every orphan that
// is still unreconciled and older than the grace window. Each orphan is an
// isolated unit of work: one verification or refund failure is recorded and
// the batch moves on.
func (s *Service) SweepUnreconciled(ctx context.Context, now time.Time) (*SweepSummary, error) {
	cutoff := now.Add(-GraceWindow)
	orphans, err := s.orphans.ListUnreconciledOlderThan(cutoff)
	if err != nil {
		return nil, fmt.Errorf("list unreconciled orphans: %w", err)
	}

	summary := &SweepSummary{Errors: []string{}}
	for _, orphan := range orphans {
		summary.Scanned++

		result, err := s.Reconcile(ctx, orphan.Reference)
		if err != nil {
			log.Warnf("[Sweep] reconcile %s failed: %v", orphan.Reference, err)
			if recErr := s.orphans.RecordError(orphan.Reference, err.Error()); recErr != nil {
				log.Errorf("[Sweep] record error for %s failed: %v", orphan.Reference, recErr)
			}
			if len(summary.Errors) < maxSweepErrors {
				summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", orphan.Reference, err))
			}
			continue
		}

		switch {
		case result.Outcome == OutcomeAlreadyResolved:
			summary.AlreadyResolved++
		case result.Outcome == OutcomeMatched:
			summary.Reconciled++
		case result.Resolution == models.ResolutionAutoRefunded:
			summary.AutoRefunded++
		case result.Resolution == models.ResolutionManuallyFlagged:
			summary.Flagged++
		case result.Resolution == models.ResolutionAmountMismatch:
			summary.AmountMismatch++
		}
	}

	log.Infof("[Sweep] scanned=%d reconciled=%d refunded=%d flagged=%d mismatched=%d already=%d errors=%d",
		summary.Scanned, summary.Reconciled, summary.AutoRefunded, summary.Flagged,
		summary.AmountMismatch, summary.AlreadyResolved, len(summary.Errors))
	return summary, nil
}
