package router

import (
	"strconv"
	"time"

	"github.com/LukasBrandt/PaySweep/app/controllers"
	"github.com/LukasBrandt/PaySweep/internal/pkg/constants"
	"github.com/LukasBrandt/PaySweep/internal/pkg/env"
	"github.com/LukasBrandt/PaySweep/internal/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/storage/redis"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group(constants.APIRoute, limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		Storage:    limiterStorage(),
	}))
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	// API v1 routes
	v1 := api.Group("/v1")

	v1.Post(constants.WebhookRoute, controllers.HandlePaymentWebhook)
	v1.Post(constants.NotifierRunRoute, controllers.HandleNotifierRun)

	// Internal operations share one deployment secret (fail-closed).
	internalSecret := middleware.SharedSecretMiddleware("RECONCILE_SHARED_SECRET")
	v1.Post(constants.ManualReconcileRoute, internalSecret, controllers.HandleManualReconcile)
	v1.Post(constants.OrphanSweepRoute, internalSecret, controllers.HandleOrphanSweep)
	v1.Get(constants.OrphanListRoute, internalSecret, controllers.HandleListOrphans)
	v1.Post(constants.ArchiveRunRoute, internalSecret, controllers.HandleArchiveRun)
}

// limiterStorage backs the rate limiter with redis so limits hold across
// instances instead of per-process.
func limiterStorage() *redis.Storage {
	port, err := strconv.Atoi(env.GetEnv("CACHE_PORT", "6379"))
	if err != nil {
		port = 6379
	}
	return redis.New(redis.Config{
		Host:     env.GetEnv("CACHE_HOST", "localhost"),
		Port:     port,
		Password: env.GetEnv("CACHE_PASSWORD", ""),
		Database: 1,
	})
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
