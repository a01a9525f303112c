package helper

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
)

// FiberErrorHandler: ErrorHandler global app. *fiber.Error (404, 405, body kebesaran)
// → JSON standar; error lain (termasuk panic dari recover) → 500 tanpa detail internal.
func FiberErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return JsonError(c, fe.Code, fiberMessage(fe))
	}
	log.Printf("[ERROR] id=%v %s %s: %v", c.Locals("reqid"), c.Method(), c.OriginalURL(), err)
	return JsonError(c, fiber.StatusInternalServerError, "服务器内部错误，请稍后再试")
}

func fiberMessage(fe *fiber.Error) string {
	switch fe.Code {
	case fiber.StatusNotFound:
		return "接口不存在"
	case fiber.StatusMethodNotAllowed:
		return "请求方法不支持"
	case fiber.StatusRequestEntityTooLarge:
		return "提交内容过大"
	case fiber.StatusRequestTimeout:
		return "请求超时"
	}
	return fe.Message
}
