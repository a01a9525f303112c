package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"jingjuan_backend/internals/cache"
	"jingjuan_backend/internals/features/scripture/normalizer"
	"jingjuan_backend/internals/features/volumes/catalog"
)

var (
	// ErrInvalidScroll: nomor juan bukan angka / di luar 1..jumlah juan
	ErrInvalidScroll = errors.New("invalid scroll")
	// ErrUpstream: sumber teks tidak bisa diambil
	ErrUpstream = errors.New("scripture upstream unavailable")
)

const (
	defaultCacheTTL     = time.Hour
	defaultCacheEntries = 200
)

type Options struct {
	Fetcher Fetcher
	Catalog catalog.Definition
	// Cache: HTML mentah (sudah UTF-8) per nomor juan
	Cache        *cache.TTL[int, string]
	Clock        cache.Clock
	FetchTimeout time.Duration
}

type ScriptureService struct {
	fetcher Fetcher
	def     catalog.Definition
	cache   *cache.TTL[int, string]
	timeout time.Duration
}

func NewScriptureService(opts Options) *ScriptureService {
	s := &ScriptureService{
		fetcher: opts.Fetcher,
		def:     opts.Catalog,
		cache:   opts.Cache,
		timeout: opts.FetchTimeout,
	}
	if s.cache == nil {
		s.cache = cache.New[int, string](defaultCacheTTL, defaultCacheEntries, opts.Clock)
	}
	if s.timeout <= 0 {
		s.timeout = 20 * time.Second
	}
	return s
}

// Document: satu juan hasil fetch.
type Document struct {
	Scroll int
	BookID string
	Title  string
	Raw    string
	Cached bool
	// Stale: upstream gagal, isi dari cache kadaluarsa
	Stale bool
}

// HTML: markup siap tampil (ruby unit).
func (d Document) HTML() string { return normalizer.Normalize(d.Raw) }

// Text: transkrip polos.
func (d Document) Text() string { return normalizer.PlainText(d.Raw) }

// Units: deretan unit untuk PDF.
func (d Document) Units() []normalizer.Unit { return normalizer.Units(d.HTML()) }

func (s *ScriptureService) BookID() string { return s.def.BookID }

// ParseScroll: "3" / "03" → 3; wajib 1..jumlah juan di katalog.
func (s *ScriptureService) ParseScroll(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidScroll, raw)
	}
	if n < 1 || n > s.def.Count {
		return 0, fmt.Errorf("%w: %d not in 1..%d", ErrInvalidScroll, n, s.def.Count)
	}
	return n, nil
}

// Get mengambil satu juan: cache dulu, lalu upstream. Upstream gagal tapi ada
// cache kadaluarsa → pakai yang basi (Stale=true).
func (s *ScriptureService) Get(ctx context.Context, scroll int) (Document, error) {
	if scroll < 1 || scroll > s.def.Count {
		return Document{}, fmt.Errorf("%w: %d", ErrInvalidScroll, scroll)
	}
	doc := Document{Scroll: scroll, BookID: s.def.BookID, Title: s.title(scroll)}

	if raw, ok := s.cache.Get(scroll); ok {
		doc.Raw, doc.Cached = raw, true
		return doc, nil
	}
	if s.fetcher == nil {
		return doc, fmt.Errorf("%w: no fetcher configured", ErrUpstream)
	}

	fctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	raw, err := s.fetcher.Fetch(fctx, s.def.BookID, scroll)
	if err == nil && strings.TrimSpace(raw) == "" {
		err = errors.New("empty body")
	}
	if err != nil {
		if stale, ok := s.cache.GetStale(scroll); ok {
			log.Printf("[SCRIPTURE] %s/%d upstream gagal, pakai cache lama: %v", s.def.BookID, scroll, err)
			doc.Raw, doc.Cached, doc.Stale = stale, true, true
			return doc, nil
		}
		return doc, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	s.cache.Set(scroll, raw)
	doc.Raw = raw
	return doc, nil
}

func (s *ScriptureService) title(scroll int) string {
	for _, v := range catalog.Generate(s.def) {
		if v.Number == scroll {
			return v.Title
		}
	}
	return fmt.Sprintf("%s %d", s.def.Title, scroll)
}
