package middlewares

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

func TestCheckAccessCode(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("rahasia"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}

	cases := []struct {
		expected, given string
		want            bool
	}{
		{"secret", "secret", true},
		{"secret", "Secret", false},
		{"secret", "", false},
		{"", "", false},
		{string(hash), "rahasia", true},
		{string(hash), "salah", false},
	}
	for _, tc := range cases {
		if got := CheckAccessCode(tc.expected, tc.given); got != tc.want {
			t.Errorf("CheckAccessCode(%q, %q) = %v, want %v", tc.expected, tc.given, got, tc.want)
		}
	}
}

func TestAccessCodeMiddleware(t *testing.T) {
	app := fiber.New()
	app.Get("/view", AccessCodeMiddleware("secret"), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/view?code=wrong", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("wrong code status = %d", resp.StatusCode)
	}

	resp, err = app.Test(httptest.NewRequest("GET", "/view?code=secret", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("right code status = %d", resp.StatusCode)
	}
}
