package controller

import (
	"bytes"
	"html/template"
	"log"
	"time"

	"jingjuan_backend/internals/features/volumes/dto"
	"jingjuan_backend/internals/features/volumes/model"
	"jingjuan_backend/internals/features/volumes/service"
	"jingjuan_backend/internals/helpers/dbtime"

	"github.com/gofiber/fiber/v2"
)

type AdminController struct {
	Svc *service.VolumeService
	Now func() time.Time
}

func NewAdminController(svc *service.VolumeService) *AdminController {
	return &AdminController{Svc: svc, Now: time.Now}
}

type dashboardRow struct {
	dto.VolumeView
	StatusText   string
	ClaimedText  string
	ExpectedText string
}

type dashboardData struct {
	GeneratedAt string
	Source      string
	Total       int
	Unclaimed   int
	Claimed     int
	Completed   int
	Rows        []dashboardRow
	CSVLink     string
}

var dashboardTmpl = template.Must(template.New("dashboard").Parse(`<!doctype html>
<html lang="zh-CN">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>认领管理</title>
<style>
body{font-family:-apple-system,"PingFang SC","Microsoft YaHei",sans-serif;margin:16px;color:#333}
table{border-collapse:collapse;width:100%;font-size:14px}
th,td{border:1px solid #ddd;padding:6px 8px;text-align:left}
th{background:#f5f0e6}
.unclaimed{color:#999}.claimed{color:#b8860b}.completed{color:#2e7d32}
.summary span{margin-right:16px}
</style>
</head>
<body>
<h2>经卷认领情况</h2>
<p class="summary">
<span>共 {{.Total}} 卷</span><span>未认领 {{.Unclaimed}}</span><span>已认领 {{.Claimed}}</span><span>已完成 {{.Completed}}</span>
<a href="{{.CSVLink}}">导出 CSV</a>
</p>
<p><small>更新时间 {{.GeneratedAt}}，数据来源 {{.Source}}</small></p>
<table>
<thead><tr><th>卷</th><th>状态</th><th>认领人</th><th>电话</th><th>天数</th><th>认领时间</th><th>预计完成</th><th>备注</th></tr></thead>
<tbody>
{{range .Rows}}<tr>
<td>{{.Label}}</td>
<td class="{{.Status}}">{{.StatusText}}</td>
<td>{{.ClaimerName}}</td>
<td>{{.ClaimerPhone}}</td>
<td>{{if .PlannedDays}}{{.PlannedDays}}{{end}}</td>
<td>{{.ClaimedText}}</td>
<td>{{.ExpectedText}}</td>
<td>{{.Remarks}}</td>
</tr>{{end}}
</tbody>
</table>
</body>
</html>`))

// ======================
// GET /view?code=
// ======================
func (ctrl *AdminController) Dashboard(c *fiber.Ctx) error {
	res := ctrl.Svc.ListVolumes(c.UserContext())
	loc := ctrl.Svc.Location()

	data := dashboardData{
		GeneratedAt: dbtime.FormatLocal(ctrl.Now(), loc),
		Source:      res.Source,
		Total:       len(res.Volumes),
		CSVLink:     "/view.csv?code=" + template.URLQueryEscaper(c.Query("code")),
	}
	for _, v := range res.Volumes {
		row := dashboardRow{VolumeView: v, StatusText: statusLabel(v.Status)}
		if v.ClaimedAt != nil {
			row.ClaimedText = dbtime.FormatLocal(*v.ClaimedAt, loc)
		}
		if v.ExpectedCompletionAt != nil {
			row.ExpectedText = dbtime.FormatLocal(*v.ExpectedCompletionAt, loc)
		}
		switch v.Status {
		case model.StatusClaimed:
			data.Claimed++
		case model.StatusCompleted:
			data.Completed++
		default:
			data.Unclaimed++
		}
		data.Rows = append(data.Rows, row)
	}

	var buf bytes.Buffer
	if err := dashboardTmpl.Execute(&buf, data); err != nil {
		log.Printf("[ERROR] render dashboard: %v", err)
		return c.Status(fiber.StatusInternalServerError).SendString("页面生成失败")
	}
	c.Set("Cache-Control", "no-store")
	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}

// ======================
// GET /view.csv?code=
// ======================
func (ctrl *AdminController) ExportCSV(c *fiber.Ctx) error {
	res, err := ctrl.Svc.ListClaims(c.UserContext(), true)
	if err != nil {
		log.Printf("[ERROR] export csv: %v", err)
		if res.Claims == nil {
			return c.Status(fiber.StatusInternalServerError).SendString("导出失败，请稍后再试")
		}
		// remote down: ekspor data cache terakhir
	}

	var buf bytes.Buffer
	if err := WriteClaimsCSV(&buf, res.Claims, ctrl.Now(), ctrl.Svc.Location()); err != nil {
		log.Printf("[ERROR] write csv: %v", err)
		return c.Status(fiber.StatusInternalServerError).SendString("导出失败，请稍后再试")
	}

	filename := "claims-" + ctrl.Now().In(ctrl.Svc.Location()).Format("20060102") + ".csv"
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	c.Set("Cache-Control", "no-store")
	return c.Send(buf.Bytes())
}
