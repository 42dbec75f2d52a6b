package middleware

import (
	"errors"
	"strings"

	"membership-portal/internal/config"
	"membership-portal/internal/pkg/jwt"
	"membership-portal/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by AuthMiddleware
const (
	LocalMemberID = "memberID"
	LocalRole     = "role"
)

// bearerToken reads the access token from the cookie, then the Authorization header
func bearerToken(c *fiber.Ctx) string {
	if token := c.Cookies("access_token"); token != "" {
		return token
	}
	authHeader := c.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

func setClaims(c *fiber.Ctx, claims *jwt.Claims) {
	c.Locals(LocalMemberID, claims.MemberID)
	c.Locals(LocalRole, claims.Role)
}

// AuthMiddleware rejects requests without a valid access token. Capability
// and region checks happen in the services against the stored role, so a
// role change takes effect before the token expires.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accessToken := bearerToken(c)
		if accessToken == "" {
			return response.Unauthorized(c, "Access token required")
		}

		claims, err := jwt.ValidateAccessToken(accessToken, cfg.JWT.Secret)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return response.Unauthorized(c, "Access token expired")
			}
			return response.Unauthorized(c, "Invalid access token")
		}

		setClaims(c, claims)
		return c.Next()
	}
}

// AdminOnly short-circuits members whose token carries the plain user role.
// It is a coarse gate only; the services still check capabilities.
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals(LocalRole).(string)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}
		if role == "" || role == "user" {
			return response.Forbidden(c, "You don't have permission to access this resource")
		}
		return c.Next()
	}
}

// MemberID returns the authenticated member id
func MemberID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals(LocalMemberID).(uint)
	return id, ok && id != 0
}
