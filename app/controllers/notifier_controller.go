package controllers

import (
	"context"
	"log"
	"time"

	"github.com/LukasBrandt/PaySweep/internal/pkg/database"
	"github.com/LukasBrandt/PaySweep/internal/pkg/mail"
	"github.com/LukasBrandt/PaySweep/internal/pkg/notifier"
	"github.com/gofiber/fiber/v2"
)

// HandleNotifierRun executes one delivery pass over due receipt emails.
// Retry scheduling lives in the table, so running this from several
// instances at once is safe.
func HandleNotifierRun(c *fiber.Ctx) error {
	n := notifier.NewFromDB(database.GetDB(), notifier.SenderFunc(mail.SendMail))
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	processed, err := n.ProcessDue(ctx, time.Now())
	if err != nil {
		log.Printf("notifier pass failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "notifier_failed"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"processed": processed})
}
