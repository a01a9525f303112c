package catalog

import (
	"fmt"
	"strings"

	"jingjuan_backend/internals/configs"
)

// Volume: satu unit bacaan yang bisa diklaim. Metadata immutable, milik generator.
type Volume struct {
	ID         string `json:"id"`
	Number     int    `json:"number"`
	Label      string `json:"label"`
	Title      string `json:"title"`
	ReadingURL string `json:"reading_url"`
}

// Definition: aturan generate katalog. Katalog selalu di-generate ulang penuh,
// tidak pernah dimutasi per item.
type Definition struct {
	Title       string
	BookID      string
	Count       int
	ReadingURL  string // format: %s = book id, %d = nomor volume
	IDPrefix    string
	LabelFormat string // format: %d = nomor volume
}

func DefaultDefinition() Definition {
	return Definition{
		Title:       "大方广佛华严经",
		BookID:      "T0279",
		Count:       80,
		IDPrefix:    "V",
		LabelFormat: "第%d卷",
	}
}

// DefinitionFromEnv: override dari ENV, sisanya default.
func DefinitionFromEnv() Definition {
	def := DefaultDefinition()
	def.Title = configs.GetEnv("CATALOG_TITLE", def.Title)
	def.BookID = configs.GetEnv("CATALOG_BOOK_ID", def.BookID)
	def.Count = configs.GetEnvInt("CATALOG_VOLUME_COUNT", def.Count)
	def.ReadingURL = configs.GetEnv("CATALOG_READING_URL", def.ReadingURL)
	return def
}

// Generate membuat katalog lengkap, urut nomor volume.
func Generate(def Definition) []Volume {
	if def.Count <= 0 {
		return []Volume{}
	}
	prefix := def.IDPrefix
	labelFmt := def.LabelFormat
	if labelFmt == "" {
		labelFmt = "%d"
	}

	out := make([]Volume, 0, def.Count)
	for n := 1; n <= def.Count; n++ {
		v := Volume{
			ID:     fmt.Sprintf("%s%d", prefix, n),
			Number: n,
			Label:  fmt.Sprintf(labelFmt, n),
			Title:  fmt.Sprintf("%s %s", def.Title, fmt.Sprintf(labelFmt, n)),
		}
		if def.ReadingURL != "" {
			v.ReadingURL = readingURL(def.ReadingURL, def.BookID, n)
		}
		out = append(out, v)
	}
	return out
}

// Find mencari volume by ID (toleran "V1" / "1" / "v01").
func Find(volumes []Volume, id string) (Volume, bool) {
	want := NormalizeID(id)
	if want == "" {
		return Volume{}, false
	}
	for _, v := range volumes {
		if NormalizeID(v.ID) == want {
			return v, true
		}
	}
	return Volume{}, false
}

// NormalizeID menyamakan representasi ID: trim, lowercase, buang prefix "v"
// dan nol di depan kalau sisanya angka.
func NormalizeID(id string) string {
	s := strings.ToLower(strings.TrimSpace(id))
	if s == "" {
		return ""
	}
	rest := strings.TrimPrefix(s, "v")
	if rest != "" && isDigits(rest) {
		rest = strings.TrimLeft(rest, "0")
		if rest == "" {
			rest = "0"
		}
		return rest
	}
	return s
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func readingURL(tmpl, bookID string, n int) string {
	switch {
	case strings.Contains(tmpl, "%s") && strings.Contains(tmpl, "%"):
		return fmt.Sprintf(tmpl, bookID, n)
	case strings.Contains(tmpl, "%"):
		return fmt.Sprintf(tmpl, n)
	default:
		return tmpl
	}
}
