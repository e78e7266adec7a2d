package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/investrack/backend/internal/auth"
)

func newProtectedApp(t *testing.T, wantUserID uuid.UUID, wantUsername string) *fiber.App {
	t.Helper()
	app := fiber.New()
	app.Use(Protected())
	app.Get("/secure", func(c *fiber.Ctx) error {
		assert.Equal(t, wantUserID, c.Locals("userID"))
		assert.Equal(t, wantUsername, c.Locals("username"))
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestProtectedAllowsValidToken(t *testing.T) {
	auth.Init("middleware-test-secret", time.Hour)

	userID := uuid.New()
	token, err := auth.GenerateJWT(userID, "bob")
	require.NoError(t, err)

	app := newProtectedApp(t, userID, "bob")
	req := httptest.NewRequest("GET", "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestProtectedRejectsBadRequests(t *testing.T) {
	auth.Init("middleware-test-secret", time.Hour)

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc123"},
		{"no token", "Bearer"},
		{"garbage token", "Bearer not.a.jwt"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			app.Use(Protected())
			app.Get("/secure", func(c *fiber.Ctx) error {
				t.Fatal("handler must not run")
				return nil
			})

			req := httptest.NewRequest("GET", "/secure", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		})
	}
}

func TestProtectedRejectsTokenSignedWithOtherSecret(t *testing.T) {
	auth.Init("secret-a", time.Hour)
	token, err := auth.GenerateJWT(uuid.New(), "mallory")
	require.NoError(t, err)

	auth.Init("secret-b", time.Hour)
	app := fiber.New()
	app.Use(Protected())
	app.Get("/secure", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	req := httptest.NewRequest("GET", "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
