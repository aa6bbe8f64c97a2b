package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const AdminCookieName = "admin_session"

// AdminTokenTTL matches the cookie lifetime the dashboard expects.
const AdminTokenTTL = 24 * time.Hour

// SignAdminToken issues the short-lived admin session token carried in the
// httpOnly dashboard cookie.
func SignAdminToken(secret string, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   "admin",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(AdminTokenTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// VerifyAdminToken checks signature, expiry and the admin subject.
func VerifyAdminToken(secret, tokenString string) error {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return err
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject != "admin" {
		return fmt.Errorf("token does not assert the admin role")
	}
	return nil
}

// AdminAuth guards the admin routes. Everything under the group requires a
// valid session cookie; the login route is registered outside the group.
func AdminAuth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(AdminCookieName)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Admin session required",
			})
		}
		if err := VerifyAdminToken(secret, token); err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Invalid or expired admin session",
			})
		}
		return c.Next()
	}
}

// UserAuth resolves the caller's identity from the X-User-ID header injected
// by the auth gateway in front of this service.
func UserAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Get("X-User-ID")
		if userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Sign in required",
			})
		}
		c.Locals("userID", userID)
		return c.Next()
	}
}
