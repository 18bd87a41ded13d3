package payments

import "testing"

func TestNormalizePolicy(t *testing.T) {
	tests := []struct {
		in   string
		want Policy
	}{
		{in: "AUTO_REFUND", want: PolicyAutoRefund},
		{in: "auto_refund", want: PolicyAutoRefund},
		{in: "  Auto_Refund  ", want: PolicyAutoRefund},
		{in: "MANUAL_ONLY", want: PolicyManualOnly},
		{in: "", want: PolicyManualOnly},
		{in: "refund-everything", want: PolicyManualOnly},
	}

	for _, tt := range tests {
		if got := NormalizePolicy(tt.in); got != tt.want {
			t.Fatalf("NormalizePolicy(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
