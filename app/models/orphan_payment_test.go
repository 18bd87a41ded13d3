package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrphanPaymentIsReconciled(t *testing.T) {
	tests := []struct {
		resolution string
		want       bool
	}{
		{ResolutionUnresolved, false},
		{ResolutionReconciled, true},
		{ResolutionAutoRefunded, true},
		{ResolutionAmountMismatch, false},
		{ResolutionManuallyFlagged, false},
	}

	for _, tt := range tests {
		orphan := OrphanPayment{Resolution: tt.resolution}
		assert.Equal(t, tt.want, orphan.IsReconciled(), "resolution=%s", tt.resolution)
	}
}

func TestIsValidResolution(t *testing.T) {
	for _, valid := range []string{
		ResolutionUnresolved, ResolutionReconciled, ResolutionAmountMismatch,
		ResolutionAutoRefunded, ResolutionManuallyFlagged,
	} {
		assert.True(t, IsValidResolution(valid), valid)
	}

	assert.False(t, IsValidResolution(""))
	assert.False(t, IsValidResolution("refunded"))
	assert.False(t, IsValidResolution("RECONCILED"))
}
