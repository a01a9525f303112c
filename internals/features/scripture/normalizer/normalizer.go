// Package normalizer merapikan markup kitab dari sumber upstream: perbaiki tanda baca
// yang nyasar ke dalam span huruf, ubah pasangan pinyin/huruf jadi unit ruby, dan
// ekstrak teks polos. Semua fungsi bekerja di string yang sudah di-decode.
package normalizer

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	// <i A><span B>P</span><span C>X<span D>Q</span></span></i>
	nestedPunctRe = regexp.MustCompile(
		`<i(\s[^>]*)?>\s*<span([^>]*)>([^<]*)</span>\s*<span([^>]*)>([^<]*)<span[^>]*>([^<]*)</span>\s*</span>\s*</i>`)

	// <i A><span>P</span><span>C</span></i>
	pairRe = regexp.MustCompile(`<i(?:\s[^>]*)?>\s*<span[^>]*>([^<]*)</span>\s*<span[^>]*>([^<]*)</span>\s*</i>`)

	rubyPhoneticRe = regexp.MustCompile(`<span class="ruby-py">[^<]*</span>`)

	// span pertama di <i> yang masih diikuti span lain: pinyin dari pasangan yang gagal diperbaiki
	leftoverPhoneticRe = regexp.MustCompile(`<i(?:\s[^>]*)?>\s*<span[^>]*>[^<]*</span>(\s*<span)`)

	styleRe     = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	scriptRe    = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	paraEndRe   = regexp.MustCompile(`(?i)</p\s*>`)
	lineBreakRe = regexp.MustCompile(`(?i)<br\s*/?>`)
	tagRe       = regexp.MustCompile(`<[^>]*>`)
	spacesRe    = regexp.MustCompile(`[ \t\r\f\v]+`)
	anySpaceRe  = regexp.MustCompile(`[ \t\r\n\f\v]+`)
	lineTrimRe  = regexp.MustCompile(` *\n *`)
	blankRunRe  = regexp.MustCompile(`\n{3,}`)
)

const (
	RubyUnitClass     = "ruby-unit"
	RubyPhoneticClass = "ruby-py"
	RubyCharClass     = "ruby-hz"

	// placeholder supaya lebar slot pinyin tetap ada
	emptyPhonetic = "&nbsp;"

	// penanda </p> dan <br> selama whitespace sumber di-collapse (private use area)
	paraMark  = "\uE000"
	breakMark = "\uE001"
)

// RepairPunctuation memecah tanda baca yang ter-nest di span huruf jadi pasangan sendiri
// dengan slot pinyin kosong. Output sudah tidak match pola nested, jadi aman dipanggil ulang.
func RepairPunctuation(html string) string {
	return nestedPunctRe.ReplaceAllString(html,
		`<i${1}><span${2}>${3}</span><span${4}>${5}</span></i><i${1}><span${2}></span><span${4}>${6}</span></i>`)
}

// PairAnnotations: setiap <i> berisi dua span jadi satu unit bertumpuk (pinyin di atas).
func PairAnnotations(html string) string {
	return pairRe.ReplaceAllStringFunc(html, func(m string) string {
		sub := pairRe.FindStringSubmatch(m)
		phonetic := strings.TrimSpace(sub[1])
		if phonetic == "" {
			phonetic = emptyPhonetic
		}
		return `<span class="` + RubyUnitClass + `"><span class="` + RubyPhoneticClass + `">` + phonetic +
			`</span><span class="` + RubyCharClass + `">` + sub[2] + `</span></span>`
	})
}

// Normalize = PairAnnotations(RepairPunctuation(html)). Idempotent.
func Normalize(html string) string {
	return PairAnnotations(RepairPunctuation(html))
}

// PlainText membuang semua markup: pasangan anotasi tinggal hurufnya saja,
// </p> jadi baris kosong, <br> jadi newline. Input boleh mentah atau hasil Normalize.
func PlainText(html string) string {
	s := styleRe.ReplaceAllString(html, "")
	s = scriptRe.ReplaceAllString(s, "")
	s = RepairPunctuation(s)
	s = pairRe.ReplaceAllString(s, "${2}")
	s = leftoverPhoneticRe.ReplaceAllString(s, "${1}")
	s = rubyPhoneticRe.ReplaceAllString(s, "")
	s = paraEndRe.ReplaceAllString(s, " "+paraMark+" ")
	s = lineBreakRe.ReplaceAllString(s, " "+breakMark+" ")
	s = tagRe.ReplaceAllString(s, "")

	// newline di sumber cuma indentasi markup; baris hanya dari </p> dan <br>
	s = anySpaceRe.ReplaceAllString(s, " ")
	s = dropCJKSpaces(s)
	s = strings.ReplaceAll(s, paraMark, "\n\n")
	s = strings.ReplaceAll(s, breakMark, "\n")

	// &amp; terakhir, biar "&amp;lt;" tidak jadi "<"
	s = strings.ReplaceAll(s, "&nbsp;", " ")
	s = strings.ReplaceAll(s, "&lt;", "<")
	s = strings.ReplaceAll(s, "&gt;", ">")
	s = strings.ReplaceAll(s, "&amp;", "&")

	s = spacesRe.ReplaceAllString(s, " ")
	s = lineTrimRe.ReplaceAllString(s, "\n")
	s = blankRunRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// dropCJKSpaces membuang spasi di antara dua karakter CJK (sisa whitespace antar tag).
func dropCJKSpaces(s string) string {
	if !strings.Contains(s, " ") {
		return s
	}
	rs := []rune(s)
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(rs); i++ {
		if rs[i] != ' ' {
			b.WriteRune(rs[i])
			continue
		}
		j := i
		for j < len(rs) && rs[j] == ' ' {
			j++
		}
		if i > 0 && j < len(rs) && isCJK(rs[i-1]) && isCJK(rs[j]) {
			i = j - 1
			continue
		}
		b.WriteRune(' ')
		i = j - 1
	}
	return b.String()
}

func isCJK(r rune) bool {
	switch {
	case unicode.Is(unicode.Han, r):
		return true
	case r >= 0x3000 && r <= 0x303F: // tanda baca CJK
		return true
	case r >= 0xFF00 && r <= 0xFFEF: // bentuk fullwidth
		return true
	}
	return false
}
