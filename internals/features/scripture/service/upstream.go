package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Fetcher: ambil HTML mentah satu juan dari sumber upstream (sudah di-decode).
type Fetcher interface {
	Fetch(ctx context.Context, bookID string, scroll int) (string, error)
}

// HTTPFetcher: fetch via fiber Agent. URLTemplate: %s = book id, %d = nomor juan.
type HTTPFetcher struct {
	URLTemplate string
	Timeout     time.Duration
	UserAgent   string
}

func NewHTTPFetcher(tmpl string, timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &HTTPFetcher{
		URLTemplate: tmpl,
		Timeout:     timeout,
		UserAgent:   "Mozilla/5.0 (compatible; jingjuan/1.0)",
	}
}

func (f *HTTPFetcher) URL(bookID string, scroll int) string {
	if strings.Contains(f.URLTemplate, "%s") {
		return fmt.Sprintf(f.URLTemplate, bookID, scroll)
	}
	return fmt.Sprintf(f.URLTemplate, scroll)
}

func (f *HTTPFetcher) Fetch(ctx context.Context, bookID string, scroll int) (string, error) {
	if f.URLTemplate == "" {
		return "", errors.New("scripture source url not configured")
	}
	timeout := f.Timeout
	if dl, ok := ctx.Deadline(); ok {
		left := time.Until(dl)
		if left <= 0 {
			return "", context.DeadlineExceeded
		}
		if left < timeout {
			timeout = left
		}
	}

	a := fiber.Get(f.URL(bookID, scroll))
	a.Set(fiber.HeaderUserAgent, f.UserAgent)
	a.Set(fiber.HeaderAccept, "text/html,*/*")
	a.Timeout(timeout)

	// content-type dibaca sebelum Bytes() melepas response
	resp := fiber.AcquireResponse()
	defer fiber.ReleaseResponse(resp)
	a.SetResponse(resp)

	code, body, errs := a.Bytes()
	if len(errs) > 0 {
		return "", errors.Join(errs...)
	}
	if code != fiber.StatusOK {
		return "", fmt.Errorf("upstream status %d", code)
	}
	return DecodeBody(body, string(resp.Header.ContentType()))
}
