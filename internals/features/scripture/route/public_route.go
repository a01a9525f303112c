package route

import (
	scrCtrl "jingjuan_backend/internals/features/scripture/controller"
	"jingjuan_backend/internals/features/scripture/service"

	"github.com/gofiber/fiber/v2"
)

// ScripturePublicRoutes: teks juan (/api/scripture)
func ScripturePublicRoutes(r fiber.Router, svc *service.ScriptureService, fontPath string) {
	ctrl := scrCtrl.NewScriptureController(svc, fontPath)

	g := r.Group("/scripture")
	g.Get("/:scroll", ctrl.GetHTML)
	g.Get("/:scroll/txt", ctrl.GetText)
	g.Get("/:scroll/pdf", ctrl.GetPDF)
}
