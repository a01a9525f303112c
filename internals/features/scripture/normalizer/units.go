package normalizer

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// Unit: satu slot tampilan. Break=true artinya ganti paragraf / baris.
type Unit struct {
	Phonetic string
	Char     string
	Break    bool
}

// Units membaca HTML hasil Normalize jadi deretan unit untuk renderer PDF.
// Teks di luar unit ruby dipecah per karakter dengan pinyin kosong.
func Units(normalized string) []Unit {
	var (
		out     []Unit
		cur     *Unit
		inside  string // "py" / "hz" / ""
		skip    int    // kedalaman style/script
		tokens  = html.NewTokenizer(strings.NewReader(normalized))
		lastBrk = true
	)

	addBreak := func() {
		if lastBrk {
			return
		}
		out = append(out, Unit{Break: true})
		lastBrk = true
	}

	for {
		tt := tokens.Next()
		switch tt {
		case html.ErrorToken:
			// EOF (atau markup rusak): buang break di ujung
			for len(out) > 0 && out[len(out)-1].Break {
				out = out[:len(out)-1]
			}
			return out

		case html.StartTagToken, html.SelfClosingTagToken:
			tok := tokens.Token()
			switch tok.Data {
			case "style", "script":
				if tt == html.StartTagToken {
					skip++
				}
			case "br":
				addBreak()
			case "span":
				switch classOf(tok) {
				case RubyUnitClass:
					cur = &Unit{}
				case RubyPhoneticClass:
					inside = "py"
				case RubyCharClass:
					inside = "hz"
				}
			}

		case html.EndTagToken:
			tok := tokens.Token()
			switch tok.Data {
			case "style", "script":
				if skip > 0 {
					skip--
				}
			case "p", "div":
				addBreak()
			case "span":
				switch {
				case inside != "":
					inside = ""
				case cur != nil:
					cur.Phonetic = strings.TrimSpace(cur.Phonetic) // &nbsp; ikut ter-trim
					if cur.Char != "" {
						out = append(out, *cur)
						lastBrk = false
					}
					cur = nil
				}
			}

		case html.TextToken:
			if skip > 0 {
				continue
			}
			text := string(tokens.Text())
			if cur != nil {
				switch inside {
				case "py":
					cur.Phonetic += text
				case "hz":
					cur.Char += strings.TrimSpace(text)
				}
				continue
			}
			for _, r := range text {
				if unicode.IsSpace(r) {
					continue
				}
				out = append(out, Unit{Char: string(r)})
				lastBrk = false
			}
		}
	}
}

func classOf(tok html.Token) string {
	for _, a := range tok.Attr {
		if a.Key == "class" {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}
