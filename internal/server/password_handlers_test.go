package server

import (
	"net/http"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetTokenFromMail pulls the raw token out of the reset link in the mail body.
func resetTokenFromMail(t *testing.T, body string) string {
	t.Helper()
	const marker = "/password/reset/"
	idx := strings.Index(body, marker)
	require.GreaterOrEqual(t, idx, 0, "mail body must contain a reset link")
	rest := body[idx+len(marker):]
	if end := strings.IndexAny(rest, " \r\n"); end >= 0 {
		rest = rest[:end]
	}
	return rest
}

func TestPasswordResetFlow(t *testing.T) {
	s, _, _, mailer := newTestServer(t)
	app := fiber.New()
	app.Post("/api/auth/signup", s.Signup)
	app.Post("/api/auth/login", s.Login)
	app.Post("/api/password/forgot", s.ForgotPassword)
	app.Put("/api/password/reset/:token", s.ResetPassword)

	resp, err := app.Test(newRequest(t, "POST", "/api/auth/signup", fiber.Map{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "Original-pass1!",
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	resp, err = app.Test(newRequest(t, "POST", "/api/password/forgot", fiber.Map{
		"email": "alice@example.com",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()
	require.Equal(t, "alice@example.com", mailer.to)
	token := resetTokenFromMail(t, mailer.body)

	t.Run("reset with mailed token", func(t *testing.T) {
		resp, err := app.Test(newRequest(t, "PUT", "/api/password/reset/"+token, fiber.Map{
			"password": "BrandNew-pass1!",
		}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.NotEmpty(t, body["token"], "reset should log the user in")
	})

	t.Run("old password no longer works", func(t *testing.T) {
		resp, err := app.Test(newRequest(t, "POST", "/api/auth/login", fiber.Map{
			"email":    "alice@example.com",
			"password": "Original-pass1!",
		}))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("new password works", func(t *testing.T) {
		resp, err := app.Test(newRequest(t, "POST", "/api/auth/login", fiber.Map{
			"email":    "alice@example.com",
			"password": "BrandNew-pass1!",
		}))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("token is single use", func(t *testing.T) {
		resp, err := app.Test(newRequest(t, "PUT", "/api/password/reset/"+token, fiber.Map{
			"password": "Another-pass1!",
		}))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestForgotPasswordDoesNotLeakAccounts(t *testing.T) {
	s, _, _, mailer := newTestServer(t)
	app := fiber.New()
	app.Post("/api/password/forgot", s.ForgotPassword)

	resp, err := app.Test(newRequest(t, "POST", "/api/password/forgot", fiber.Map{
		"email": "nobody@example.com",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "If that account exists, a reset email has been sent", body["message"])
	assert.Empty(t, mailer.to, "no mail for unknown addresses")
}

func TestUpdatePasswordHandler(t *testing.T) {
	s, _, _, _ := newTestServer(t)
	app := fiber.New()
	app.Post("/api/auth/signup", s.Signup)

	resp, err := app.Test(newRequest(t, "POST", "/api/auth/signup", fiber.Map{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "Original-pass1!",
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	app.Use(asUser(1))
	app.Put("/api/password/update", s.UpdatePassword)

	t.Run("wrong current password", func(t *testing.T) {
		resp, err := app.Test(newRequest(t, "PUT", "/api/password/update", fiber.Map{
			"currentPassword": "wrong",
			"newPassword":     "Changed-pass1!",
		}))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("correct current password", func(t *testing.T) {
		resp, err := app.Test(newRequest(t, "PUT", "/api/password/update", fiber.Map{
			"currentPassword": "Original-pass1!",
			"newPassword":     "Changed-pass1!",
		}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, "Password updated", body["message"])
	})
}
