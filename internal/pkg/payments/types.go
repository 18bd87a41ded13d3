package payments

// Outcome is the caller-visible result of one reconciliation pass.
type Outcome string

const (
	OutcomeMatched         Outcome = "matched"
	OutcomeOrphaned        Outcome = "orphaned"
	OutcomeAlreadyResolved Outcome = "already-resolved"
)

// Result carries the outcome plus the orphan resolution it left behind, so
// batch callers can count terminal states without re-reading the row.
type Result struct {
	Outcome    Outcome
	Resolution string
}

// WebhookEventInput is the normalized input for webhook event persistence.
type WebhookEventInput struct {
	Provider        string
	ProviderEventID string
	EventType       string
	Reference       string
	PayloadJSON     string
	SignatureValid  bool
}

// SweepSummary reports the aggregate outcome of one sweep over aged,
// still-unresolved orphans.
type SweepSummary struct {
	Scanned         int      `json:"scanned"`
	AlreadyResolved int      `json:"already_resolved"`
	Reconciled      int      `json:"reconciled"`
	AutoRefunded    int      `json:"auto_refunded"`
	Flagged         int      `json:"flagged"`
	AmountMismatch  int      `json:"amount_mismatch"`
	Errors          []string `json:"errors"`
}
