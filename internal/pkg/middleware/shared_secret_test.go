package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func newGatedApp() *fiber.App {
	app := fiber.New()
	app.Post("/internal", SharedSecretMiddleware("TEST_SHARED_SECRET"), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestSharedSecretMiddleware_FailsClosedWhenUnconfigured(t *testing.T) {
	app := newGatedApp()

	req := httptest.NewRequest(fiber.MethodPost, "/internal", nil)
	req.Header.Set("X-Internal-Secret", "anything")

	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestSharedSecretMiddleware_RejectsMissingAndWrongSecret(t *testing.T) {
	t.Setenv("TEST_SHARED_SECRET", "s3cret")
	app := newGatedApp()

	resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/internal", nil))
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest(fiber.MethodPost, "/internal", nil)
	req.Header.Set("X-Internal-Secret", "wrong")
	resp, err = app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestSharedSecretMiddleware_AcceptsHeaderAndBearer(t *testing.T) {
	t.Setenv("TEST_SHARED_SECRET", "s3cret")
	app := newGatedApp()

	req := httptest.NewRequest(fiber.MethodPost, "/internal", nil)
	req.Header.Set("X-Internal-Secret", "s3cret")
	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	req = httptest.NewRequest(fiber.MethodPost, "/internal", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	resp, err = app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
