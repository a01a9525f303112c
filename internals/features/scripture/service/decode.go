package service

import (
	"bytes"
	"fmt"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

// DecodeBody: byte upstream → string UTF-8. Charset dari Content-Type / <meta>;
// kalau tidak pasti (tebakan windows-1252) anggap GB18030, encoding asli sumbernya.
func DecodeBody(body []byte, contentType string) (string, error) {
	enc, name, certain := charset.DetermineEncoding(body, contentType)
	if name == "utf-8" {
		return string(bytes.TrimPrefix(body, []byte("\xef\xbb\xbf"))), nil
	}
	if !certain && name == "windows-1252" {
		enc = simplifiedchinese.GB18030
		name = "gb18030"
	}
	out, _, err := transform.Bytes(enc.NewDecoder(), body)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", name, err)
	}
	return string(out), nil
}
