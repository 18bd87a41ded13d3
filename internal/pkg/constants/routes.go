package constants

// Static route constants
const (
	APIRoute = "/api"

	WebhookRoute         = "/payments/webhook"
	ManualReconcileRoute = "/payments/reconcile"
	OrphanSweepRoute     = "/payments/sweep"
	OrphanListRoute      = "/payments/orphans"
	NotifierRunRoute     = "/notifier/run"
	ArchiveRunRoute      = "/admin/archive"
)
