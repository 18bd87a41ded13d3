package controllers

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/LukasBrandt/PaySweep/app/models"
	"github.com/LukasBrandt/PaySweep/app/repository"
	"github.com/LukasBrandt/PaySweep/internal/pkg/database"
	"github.com/LukasBrandt/PaySweep/internal/pkg/env"
	"github.com/LukasBrandt/PaySweep/internal/pkg/payments"
	"github.com/LukasBrandt/PaySweep/internal/pkg/provider"
	"github.com/LukasBrandt/PaySweep/internal/pkg/rates"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type manualReconcileRequest struct {
	Reference string `json:"reference"`
}

// HandleManualReconcile lets an operator re-run reconciliation for one
// reference. It calls the same primitive as the webhook path, so the two can
// never diverge in logic.
func HandleManualReconcile(c *fiber.Ctx) error {
	var req manualReconcileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload"})
	}
	reference := strings.TrimSpace(req.Reference)
	if reference == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing_reference"})
	}

	svc := payments.NewServiceFromDB(database.GetDB(), provider.NewClientFromEnv(), payments.PolicyFromEnv())
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := svc.Reconcile(ctx, reference)
	if err != nil {
		log.Printf("manual reconcile for %s failed: %v", reference, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "reconciliation_failed"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"outcome":    result.Outcome,
		"resolution": result.Resolution,
	})
}

// HandleOrphanSweep runs one batch pass over aged, unreconciled orphans.
func HandleOrphanSweep(c *fiber.Ctx) error {
	svc := payments.NewServiceFromDB(database.GetDB(), provider.NewClientFromEnv(), payments.PolicyFromEnv())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	summary, err := svc.SweepUnreconciled(ctx, time.Now())
	if err != nil {
		log.Printf("orphan sweep failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "sweep_failed"})
	}

	return c.Status(fiber.StatusOK).JSON(summary)
}

// HandleListOrphans returns a paged orphan listing with per-resolution
// counts and, when the rates cache can serve it, the unresolved total
// converted into the base currency.
func HandleListOrphans(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", 50)
	if limit < 1 || limit > 200 {
		limit = 50
	}

	repos := repository.GetGlobalRepositories()
	orphans, err := repos.OrphanPayment.List((page-1)*limit, limit)
	if err != nil {
		log.Printf("orphan listing failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "listing_failed"})
	}
	counts, err := repos.OrphanPayment.CountByResolution()
	if err != nil {
		log.Printf("orphan counts failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "listing_failed"})
	}

	response := fiber.Map{
		"orphans": orphans,
		"counts":  counts,
		"page":    page,
		"limit":   limit,
	}

	baseCurrency := strings.ToUpper(env.GetEnv("BASE_CURRENCY", "EUR"))
	if total, ok := unresolvedTotal(c.Context(), orphans, baseCurrency); ok {
		response["unresolved_total"] = fiber.Map{"amount": total, "currency": baseCurrency}
	}

	return c.Status(fiber.StatusOK).JSON(response)
}

// unresolvedTotal sums unresolved orphan amounts in the base currency. The
// total is informational; a rate lookup failure just omits it.
func unresolvedTotal(ctx context.Context, orphans []models.OrphanPayment, baseCurrency string) (decimal.Decimal, bool) {
	ratesSvc := rates.NewServiceFromEnv()
	total := decimal.Zero
	for _, orphan := range orphans {
		if orphan.Resolution != models.ResolutionUnresolved {
			continue
		}
		converted, err := ratesSvc.Convert(ctx, orphan.Amount, orphan.Currency, baseCurrency)
		if err != nil {
			log.Printf("rate conversion %s -> %s failed: %v", orphan.Currency, baseCurrency, err)
			return decimal.Zero, false
		}
		total = total.Add(converted)
	}
	return total, true
}
