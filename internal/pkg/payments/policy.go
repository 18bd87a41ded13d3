package payments

import (
	"strings"

	"github.com/LukasBrandt/PaySweep/internal/pkg/env"
)

// Policy decides what happens to a payment that has no matching order.
type Policy string

const (
	PolicyAutoRefund Policy = "AUTO_REFUND"
	PolicyManualOnly Policy = "MANUAL_ONLY"
)

// NormalizePolicy maps free-form configuration to a known policy. Anything
// unrecognized falls back to MANUAL_ONLY: refunding money on a typo is the
// wrong default.
func NormalizePolicy(raw string) Policy {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case string(PolicyAutoRefund):
		return PolicyAutoRefund
	default:
		return PolicyManualOnly
	}
}

// PolicyFromEnv reads UNMATCHED_PAYMENT_POLICY.
func PolicyFromEnv() Policy {
	return NormalizePolicy(env.GetEnv("UNMATCHED_PAYMENT_POLICY", string(PolicyManualOnly)))
}
