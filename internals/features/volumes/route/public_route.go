package route

import (
	volCtrl "jingjuan_backend/internals/features/volumes/controller"
	"jingjuan_backend/internals/features/volumes/service"
	"jingjuan_backend/internals/middlewares"

	"github.com/gofiber/fiber/v2"
)

// VolumePublicRoutes: daftar volume + submit klaim (/api)
func VolumePublicRoutes(r fiber.Router, svc *service.VolumeService) {
	ctrl := volCtrl.NewClaimController(svc)

	r.Get("/volumes", ctrl.ListVolumes)
	r.Post("/claim", middlewares.ClaimRateLimiter(), ctrl.CreateClaim)
	r.Get("/claims", ctrl.ListClaims)
}
