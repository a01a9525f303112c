package middlewares

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

// AccessCodeMiddleware: proteksi halaman admin pakai ?code=.
// expected boleh plain text atau hash bcrypt ("$2a$...").
func AccessCodeMiddleware(expected string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !CheckAccessCode(expected, c.Query("code")) {
			return c.Status(fiber.StatusUnauthorized).
				Type("html", "utf-8").
				SendString("<!doctype html><meta charset=\"utf-8\"><p>访问码错误</p>")
		}
		return c.Next()
	}
}

func CheckAccessCode(expected, given string) bool {
	if expected == "" || given == "" {
		return false
	}
	if strings.HasPrefix(expected, "$2a$") || strings.HasPrefix(expected, "$2b$") || strings.HasPrefix(expected, "$2y$") {
		return bcrypt.CompareHashAndPassword([]byte(expected), []byte(given)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(given)) == 1
}
