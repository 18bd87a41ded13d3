package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWebhookEventNeedsProcessing(t *testing.T) {
	now := time.Now()

	fresh := WebhookEvent{}
	assert.True(t, fresh.NeedsProcessing(), "unprocessed event must be eligible for another pass")

	failed := WebhookEvent{ProcessedAt: &now, ProcessingError: "verify transaction ref_1: provider timeout"}
	assert.True(t, failed.NeedsProcessing(), "event whose processing failed must be eligible for another pass")

	done := WebhookEvent{ProcessedAt: &now}
	assert.False(t, done.NeedsProcessing(), "cleanly processed event is a plain duplicate on redelivery")
}
