package helper

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

/* ===============================
   Locals keys (set by AuthJWT)
=================================*/

const (
	LocUserID    = "user_id"
	LocStudentID = "student_id"
	LocRole      = "role"
	LocClaims    = "jwt_claims"
)

// GetUserIDFromToken reads the authenticated user id hydrated by AuthJWT.
func GetUserIDFromToken(c *fiber.Ctx) (uuid.UUID, error) {
	return localUUID(c, LocUserID, "unauthorized: user_id missing")
}

// GetStudentIDFromToken reads the student id claim (empty for staff tokens).
func GetStudentIDFromToken(c *fiber.Ctx) (uuid.UUID, error) {
	return localUUID(c, LocStudentID, "unauthorized: student_id missing")
}

func GetRoleFromToken(c *fiber.Ctx) string {
	if v, ok := c.Locals(LocRole).(string); ok {
		return strings.ToLower(strings.TrimSpace(v))
	}
	return ""
}

func localUUID(c *fiber.Ctx, key, msg string) (uuid.UUID, error) {
	v := c.Locals(key)
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, msg)
	}
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, msg)
	}
	return id, nil
}
