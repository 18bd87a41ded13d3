package controllers

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/LukasBrandt/PaySweep/internal/pkg/database"
	"github.com/LukasBrandt/PaySweep/internal/pkg/env"
	"github.com/LukasBrandt/PaySweep/internal/pkg/payments"
	"github.com/LukasBrandt/PaySweep/internal/pkg/provider"
	"github.com/gofiber/fiber/v2"
)

// webhookPayload is the provider's push notification envelope.
type webhookPayload struct {
	Event string `json:"event"`
	ID    string `json:"id"`
	Data  struct {
		Reference string `json:"reference"`
		Amount    string `json:"amount"`
		Currency  string `json:"currency"`
	} `json:"data"`
}

// HandlePaymentWebhook receives asynchronous payment notifications. The
// signature gates everything; after that the audit insert is the idempotency
// barrier, and only successful charges reach the reconciliation engine.
func HandlePaymentWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)
	signature := strings.TrimSpace(c.Get("X-Payment-Signature"))
	secret := env.GetEnv("PROVIDER_WEBHOOK_SECRET", "")
	providerName := env.GetEnv("PROVIDER_NAME", "paywave")

	if !payments.VerifyWebhookSignature(rawBody, signature, secret) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid_signature"})
	}

	var payload webhookPayload
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload"})
	}

	svc := payments.NewServiceFromDB(database.GetDB(), provider.NewClientFromEnv(), payments.PolicyFromEnv())
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	created, stored, err := svc.RecordWebhookEvent(ctx, payments.WebhookEventInput{
		Provider:        providerName,
		ProviderEventID: payload.ID,
		EventType:       payload.Event,
		Reference:       payload.Data.Reference,
		PayloadJSON:     string(rawBody),
		SignatureValid:  true,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "webhook_persist_failed"})
	}
	// A redelivery is only a duplicate when the first delivery actually got
	// processed. If reconciliation failed back then (say a transient verify
	// error before any orphan row existed), the provider's retry is the only
	// path that re-runs it, so let it through.
	if !created && !stored.NeedsProcessing() {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "duplicate": true})
	}

	if payload.Event != payments.EventTypeChargeSuccess {
		_ = svc.MarkWebhookProcessed(ctx, stored.ID, nil)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "ignored": true})
	}

	reference := strings.TrimSpace(payload.Data.Reference)
	if reference == "" {
		_ = svc.MarkWebhookProcessed(ctx, stored.ID, errMissingReference)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing_reference"})
	}

	result, err := svc.Reconcile(ctx, reference)
	if err != nil {
		_ = svc.MarkWebhookProcessed(ctx, stored.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "reconciliation_failed"})
	}

	_ = svc.MarkWebhookProcessed(ctx, stored.ID, nil)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "outcome": result.Outcome})
}
