// file: internals/route/index.go
package routes

import (
	"log"
	"time"

	scriptureRoute "jingjuan_backend/internals/features/scripture/route"
	scriptureService "jingjuan_backend/internals/features/scripture/service"
	volumeRoute "jingjuan_backend/internals/features/volumes/route"
	volumeService "jingjuan_backend/internals/features/volumes/service"

	"github.com/gofiber/fiber/v2"
)

var startTime time.Time

// Deps: service yang sudah dirakit di main
type Deps struct {
	Volumes    *volumeService.VolumeService
	Scripture  *scriptureService.ScriptureService
	AdminCode  string
	PDFFont    string
	StoreProbe func() error // nil = tidak ada store yang bisa di-ping
}

func SetupRoutes(app *fiber.App, deps Deps) {
	startTime = time.Now()

	log.Println("[INFO] Setting up BaseRoutes...")
	BaseRoutes(app, deps)

	// ===================== PUBLIC API =====================
	api := app.Group("/api")

	log.Println("[INFO] Mounting Volume routes...")
	volumeRoute.VolumePublicRoutes(api, deps.Volumes)

	log.Println("[INFO] Mounting Scripture routes...")
	scriptureRoute.ScripturePublicRoutes(api, deps.Scripture, deps.PDFFont)

	// ===================== ADMIN (?code=) =====================
	log.Println("[INFO] Mounting Admin view routes...")
	volumeRoute.VolumeAdminRoutes(app, deps.Volumes, deps.AdminCode)
}
