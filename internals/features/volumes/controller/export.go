package controller

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"jingjuan_backend/internals/features/volumes/dto"
	"jingjuan_backend/internals/features/volumes/model"
	"jingjuan_backend/internals/features/volumes/service"
	"jingjuan_backend/internals/helpers/dbtime"
)

var csvHeader = []string{"卷号", "经卷", "认领人", "联系电话", "计划天数", "认领时间", "预计完成", "状态", "备注", "阅读链接"}

// WriteClaimsCSV: satu baris header + satu baris per klaim. Quote/koma/newline
// di-escape oleh encoding/csv.
func WriteClaimsCSV(w io.Writer, claims []model.ClaimModel, now time.Time, loc *time.Location) error {
	// BOM supaya Excel baca UTF-8
	if _, err := io.WriteString(w, "\ufeff"); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, c := range claims {
		remarks := ""
		if c.ClaimRemarks != nil {
			remarks = *c.ClaimRemarks
		}
		var view dto.VolumeView
		view.OverlayClaim(c)
		status := service.DeriveStatus(view, now)
		row := []string{
			c.ClaimVolumeID,
			c.ClaimVolumeTitle,
			c.ClaimerName,
			c.ClaimerPhone,
			strconv.Itoa(c.ClaimPlannedDays),
			dbtime.FormatLocal(c.ClaimClaimedAt, loc),
			dbtime.FormatLocal(c.ClaimExpectedCompletionAt, loc),
			statusLabel(status),
			remarks,
			c.ClaimReadingURL,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func statusLabel(status string) string {
	switch status {
	case model.StatusCompleted:
		return "已完成"
	case model.StatusClaimed:
		return "已认领"
	default:
		return "未认领"
	}
}
