package controller

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"net/url"

	"jingjuan_backend/internals/features/scripture/pdf"
	"jingjuan_backend/internals/features/scripture/service"
	helper "jingjuan_backend/internals/helpers"

	"github.com/gofiber/fiber/v2"
)

type ScriptureController struct {
	Svc      *service.ScriptureService
	FontPath string
}

func NewScriptureController(svc *service.ScriptureService, fontPath string) *ScriptureController {
	return &ScriptureController{Svc: svc, FontPath: fontPath}
}

// ======================
// GET /api/scripture/:scroll
// ======================
func (ctrl *ScriptureController) GetHTML(c *fiber.Ctx) error {
	doc, err := ctrl.load(c)
	if err != nil {
		return ctrl.writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"html":   doc.HTML(),
		"scroll": doc.Scroll,
		"bookId": doc.BookID,
		"title":  doc.Title,
		"cached": doc.Cached,
	})
}

// ======================
// GET /api/scripture/:scroll/txt
// ======================
func (ctrl *ScriptureController) GetText(c *fiber.Ctx) error {
	doc, err := ctrl.load(c)
	if err != nil {
		return ctrl.writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "text/plain; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, attachment(doc, "txt"))
	return c.SendString(doc.Title + "\n\n" + doc.Text() + "\n")
}

// ======================
// GET /api/scripture/:scroll/pdf
// ======================
func (ctrl *ScriptureController) GetPDF(c *fiber.Ctx) error {
	doc, err := ctrl.load(c)
	if err != nil {
		return ctrl.writeError(c, err)
	}
	var buf bytes.Buffer
	if err := pdf.Render(&buf, doc.Title, doc.Units(), ctrl.FontPath); err != nil {
		return ctrl.writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, attachment(doc, "pdf"))
	return c.Send(buf.Bytes())
}

func (ctrl *ScriptureController) load(c *fiber.Ctx) (service.Document, error) {
	scroll, err := ctrl.Svc.ParseScroll(c.Params("scroll"))
	if err != nil {
		return service.Document{}, err
	}
	return ctrl.Svc.Get(c.UserContext(), scroll)
}

func (ctrl *ScriptureController) writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidScroll):
		return helper.JsonError(c, fiber.StatusBadRequest, "卷号无效")
	case errors.Is(err, pdf.ErrFontUnavailable):
		log.Printf("[ERROR] scripture pdf: %v", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "PDF 字体未配置，暂时无法下载")
	default:
		log.Printf("[ERROR] scripture: %v", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "经文加载失败，请稍后再试")
	}
}

// attachment: nama file ASCII + filename* UTF-8 (judul Mandarin)
func attachment(doc service.Document, ext string) string {
	ascii := fmt.Sprintf("%s-%03d.%s", doc.BookID, doc.Scroll, ext)
	utf8Name := url.PathEscape(doc.Title + "." + ext)
	return fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`, ascii, utf8Name)
}
