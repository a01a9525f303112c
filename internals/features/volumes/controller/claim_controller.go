package controller

import (
	"errors"
	"log"
	"strings"

	"jingjuan_backend/internals/features/volumes/dto"
	"jingjuan_backend/internals/features/volumes/service"
	helper "jingjuan_backend/internals/helpers"

	"github.com/gofiber/fiber/v2"
)

type ClaimController struct {
	Svc *service.VolumeService
}

func NewClaimController(svc *service.VolumeService) *ClaimController {
	return &ClaimController{Svc: svc}
}

// ======================
// GET /api/volumes
// ======================
func (ctrl *ClaimController) ListVolumes(c *fiber.Ctx) error {
	res := ctrl.Svc.ListVolumes(c.UserContext())
	c.Set("Cache-Control", "no-store")
	return helper.JsonOKEx(c, "ok", res.Volumes, fiber.Map{
		"source":   res.Source,
		"modified": res.Modified,
	})
}

// ======================
// POST /api/claim
// ======================
func (ctrl *ClaimController) CreateClaim(c *fiber.Ctx) error {
	var body dto.CreateClaimRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "提交内容格式错误")
	}

	claim, err := ctrl.Svc.ClaimVolume(c.UserContext(), body, service.ClientMeta{
		IP:        c.IP(),
		UserAgent: string(c.Request().Header.UserAgent()),
	})
	if err != nil {
		return writeServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"claim":   dto.ToClaimDTO(*claim),
	})
}

// ======================
// GET /api/claims
// ======================
func (ctrl *ClaimController) ListClaims(c *fiber.Ctx) error {
	res, err := ctrl.Svc.ListClaims(c.UserContext(), wantsFresh(c))
	if err != nil {
		log.Printf("[ERROR] list claims: %v", err)
		var data any
		if res.Claims != nil {
			data = dto.ToClaimDTOs(res.Claims)
		}
		return helper.JsonErrorWithData(c, fiber.StatusInternalServerError, "认领数据暂时无法获取", data)
	}

	return helper.JsonOKEx(c, "ok", dto.ToClaimDTOs(res.Claims), fiber.Map{
		"cached": res.Cached,
	})
}

// wantsFresh: ?fresh=1 / ?fresh=true atau header Cache-Control: no-cache
func wantsFresh(c *fiber.Ctx) bool {
	switch strings.ToLower(strings.TrimSpace(c.Query("fresh"))) {
	case "1", "true", "yes":
		return true
	}
	return strings.Contains(strings.ToLower(c.Get(fiber.HeaderCacheControl)), "no-cache")
}

// writeServiceError: taksonomi error service → status HTTP + pesan pendek.
func writeServiceError(c *fiber.Ctx, err error) error {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		fields := make(map[string][]string, len(ve.Fields))
		for k, v := range ve.Fields {
			fields[k] = []string{v}
		}
		return helper.JsonValidationError(c, ve.FirstMessage(), fields)
	case errors.Is(err, service.ErrInvalidArgument):
		return helper.JsonError(c, fiber.StatusBadRequest, "提交内容无效")
	case errors.Is(err, service.ErrNotFound):
		return helper.JsonError(c, fiber.StatusBadRequest, "该卷不存在，请刷新页面")
	case errors.Is(err, service.ErrConflict):
		return helper.JsonError(c, fiber.StatusConflict, "该卷已被认领，请选择其他卷")
	default:
		log.Printf("[ERROR] claim: %v", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "服务暂时不可用，请稍后再试")
	}
}
