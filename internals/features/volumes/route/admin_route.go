package route

import (
	volCtrl "jingjuan_backend/internals/features/volumes/controller"
	"jingjuan_backend/internals/features/volumes/service"
	"jingjuan_backend/internals/middlewares"

	"github.com/gofiber/fiber/v2"
)

// VolumeAdminRoutes: dashboard + export CSV, dijaga ?code=
func VolumeAdminRoutes(app *fiber.App, svc *service.VolumeService, accessCode string) {
	ctrl := volCtrl.NewAdminController(svc)
	guard := middlewares.AccessCodeMiddleware(accessCode)

	app.Get("/view", guard, ctrl.Dashboard)
	app.Get("/view.csv", guard, ctrl.ExportCSV)
}
