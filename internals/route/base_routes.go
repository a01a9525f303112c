package routes

import (
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
)

func BaseRoutes(app *fiber.App, deps Deps) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("经卷认领服务运行中 🚀")
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		storeStatus := "not configured"
		serverStatus := "OK"
		httpStatus := fiber.StatusOK

		if deps.StoreProbe != nil {
			if err := deps.StoreProbe(); err != nil {
				// store remote down: baca tetap jalan dari cache lokal
				storeStatus = "unreachable"
				serverStatus = "DEGRADED"
				httpStatus = fiber.StatusServiceUnavailable
			} else {
				storeStatus = "connected"
			}
		}

		uptime := time.Since(startTime).Seconds()

		return c.Status(httpStatus).JSON(fiber.Map{
			"status":         serverStatus,
			"store":          storeStatus,
			"claims_enabled": deps.Volumes.HasStore(),
			"volumes":        len(deps.Volumes.Catalog()),
			"book_id":        deps.Scripture.BookID(),
			"server_time":    time.Now().Format(time.RFC3339),
			"uptime_seconds": int(uptime),
			"environment":    os.Getenv("RAILWAY_ENVIRONMENT"),
		})
	})
}
