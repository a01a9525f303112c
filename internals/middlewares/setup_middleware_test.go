package middlewares

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	helper "jingjuan_backend/internals/helpers"

	"github.com/gofiber/fiber/v2"
)

func TestPanicBecomesJSON500(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: helper.FiberErrorHandler})
	SetupMiddlewares(app)
	app.Get("/boom", func(c *fiber.Ctx) error { panic("boom") })

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	raw, _ := io.ReadAll(resp.Body)
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("not json: %s", raw)
	}
	if body["success"] != false || body["error_code"] != "INTERNAL_ERROR" {
		t.Fatalf("body = %v", body)
	}
}

func TestNotFoundMessage(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: helper.FiberErrorHandler})
	SetupMiddlewares(app)

	resp, err := app.Test(httptest.NewRequest("GET", "/missing", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	raw, _ := io.ReadAll(resp.Body)
	var body map[string]any
	_ = json.Unmarshal(raw, &body)
	if resp.StatusCode != fiber.StatusNotFound || body["message"] != "接口不存在" {
		t.Fatalf("status=%d body=%s", resp.StatusCode, raw)
	}
}

func TestClaimRateLimiter(t *testing.T) {
	app := fiber.New()
	app.Post("/claim", ClaimRateLimiter(), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	for i := 0; i < 5; i++ {
		resp, err := app.Test(httptest.NewRequest("POST", "/claim", nil), -1)
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("request %d status = %d", i+1, resp.StatusCode)
		}
	}
	resp, err := app.Test(httptest.NewRequest("POST", "/claim", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusTooManyRequests {
		t.Fatalf("6th request status = %d", resp.StatusCode)
	}
}
