package controllers

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/LukasBrandt/PaySweep/app/repository"
	"github.com/LukasBrandt/PaySweep/internal/pkg/archive"
	"github.com/LukasBrandt/PaySweep/internal/pkg/env"
	"github.com/gofiber/fiber/v2"
)

// HandleArchiveRun moves processed webhook payloads older than the
// configured age into the S3 archive.
func HandleArchiveRun(c *fiber.Ctx) error {
	archiver, err := archive.NewArchiver(repository.GetGlobalRepositories().WebhookEvent)
	if err != nil {
		log.Printf("archive unavailable: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "archive_unavailable"})
	}

	minAgeHours, convErr := strconv.Atoi(env.GetEnv("ARCHIVE_MIN_AGE_HOURS", "24"))
	if convErr != nil || minAgeHours < 1 {
		minAgeHours = 24
	}
	olderThan := time.Now().Add(-time.Duration(minAgeHours) * time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	archived, err := archiver.ArchiveProcessedEvents(ctx, olderThan)
	if err != nil {
		log.Printf("archive run failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "archive_failed"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"archived": archived})
}
