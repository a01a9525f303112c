// file: internals/helpers/dbtime/time_helper.go
package dbtime

import (
	"log"
	"strings"
	"sync"
	"time"
)

var (
	locOnce sync.Once
	appLoc  *time.Location
)

// LoadLocation:
// 1) nama zona dari config (mis. "Asia/Shanghai")
// 2) Fallback: Asia/Shanghai
// 3) Fallback terakhir: time.Local
func LoadLocation(name string) *time.Location {
	name = strings.TrimSpace(name)
	if name != "" {
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
		log.Printf("[WARN] timezone %q tidak dikenal, fallback Asia/Shanghai", name)
	}
	if loc, err := time.LoadLocation("Asia/Shanghai"); err == nil {
		return loc
	}
	return time.Local
}

// AppLocation: zona waktu aplikasi, di-resolve sekali.
func AppLocation(name string) *time.Location {
	locOnce.Do(func() { appLoc = LoadLocation(name) })
	return appLoc
}

// AddCalendarDays menambah hari kalender (bukan 24 jam * n) di zona loc,
// jam dinding tetap sama walaupun ada pergantian DST.
func AddCalendarDays(t time.Time, days int, loc *time.Location) time.Time {
	if loc == nil {
		loc = t.Location()
	}
	return t.In(loc).AddDate(0, 0, days)
}

// FormatLocal: format tampilan "2006-01-02 15:04" di zona loc. Zero → "".
func FormatLocal(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format("2006-01-02 15:04")
}
