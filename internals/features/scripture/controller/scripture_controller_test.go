package controller

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"jingjuan_backend/internals/features/scripture/service"
	"jingjuan_backend/internals/features/volumes/catalog"

	"github.com/gofiber/fiber/v2"
)

type stubFetcher struct {
	body string
	err  error
}

func (s stubFetcher) Fetch(ctx context.Context, bookID string, scroll int) (string, error) {
	return s.body, s.err
}

func newApp(f service.Fetcher) *fiber.App {
	def := catalog.DefaultDefinition()
	def.Count = 3
	svc := service.NewScriptureService(service.Options{Fetcher: f, Catalog: def})
	ctrl := NewScriptureController(svc, "")

	app := fiber.New()
	app.Get("/api/scripture/:scroll", ctrl.GetHTML)
	app.Get("/api/scripture/:scroll/txt", ctrl.GetText)
	app.Get("/api/scripture/:scroll/pdf", ctrl.GetPDF)
	return app
}

const page = `<p>南无<i><span>fó</span><span>佛<span>。</span></span></i></p>`

func get(t *testing.T, app *fiber.App, path string) (int, string, map[string][]string) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", path, nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(b), resp.Header
}

func TestGetHTML(t *testing.T) {
	app := newApp(stubFetcher{body: page})

	status, body, _ := get(t, app, "/api/scripture/2")
	if status != fiber.StatusOK {
		t.Fatalf("status = %d: %s", status, body)
	}
	var out struct {
		HTML   string `json:"html"`
		Scroll int    `json:"scroll"`
		BookID string `json:"bookId"`
		Cached bool   `json:"cached"`
	}
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		t.Fatal(err)
	}
	if out.Scroll != 2 || out.BookID != "T0279" || out.Cached {
		t.Fatalf("meta = %+v", out)
	}
	if !strings.Contains(out.HTML, `<span class="ruby-hz">。</span>`) {
		t.Fatalf("html not normalized: %s", out.HTML)
	}

	_, body, _ = get(t, app, "/api/scripture/2")
	if !strings.Contains(body, `"cached":true`) {
		t.Fatalf("second read should be cached: %s", body)
	}
}

func TestGetTextAttachment(t *testing.T) {
	app := newApp(stubFetcher{body: page})
	status, body, hdr := get(t, app, "/api/scripture/1/txt")
	if status != fiber.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if ct := strings.Join(hdr["Content-Type"], ""); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("content-type = %q", ct)
	}
	if cd := strings.Join(hdr["Content-Disposition"], ""); !strings.Contains(cd, `filename="T0279-001.txt"`) {
		t.Fatalf("content-disposition = %q", cd)
	}
	if !strings.Contains(body, "南无佛。") || strings.Contains(body, "fó") {
		t.Fatalf("text = %q", body)
	}
}

func TestScriptureErrors(t *testing.T) {
	tests := []struct {
		name   string
		f      service.Fetcher
		path   string
		status int
	}{
		{"scroll not a number", stubFetcher{body: page}, "/api/scripture/abc", fiber.StatusBadRequest},
		{"scroll out of range", stubFetcher{body: page}, "/api/scripture/4", fiber.StatusBadRequest},
		{"upstream down", stubFetcher{err: errors.New("timeout")}, "/api/scripture/1", fiber.StatusInternalServerError},
		{"txt upstream down", stubFetcher{err: errors.New("timeout")}, "/api/scripture/1/txt", fiber.StatusInternalServerError},
		{"pdf without font", stubFetcher{body: page}, "/api/scripture/1/pdf", fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body, _ := get(t, newApp(tt.f), tt.path)
			if status != tt.status {
				t.Fatalf("status = %d, want %d (%s)", status, tt.status, body)
			}
			if !strings.Contains(body, `"success":false`) {
				t.Fatalf("body = %s", body)
			}
		})
	}
}
