package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors; controller memetakan ke status HTTP.
var (
	// ErrNotFound: volume id tidak ada di katalog
	ErrNotFound = errors.New("volume not found")
	// ErrInvalidArgument: input user salah (nama kosong, nomor HP salah format)
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrConflict: volume sudah diklaim
	ErrConflict = errors.New("volume already claimed")
	// ErrUnavailable: store remote tidak bisa dipakai
	ErrUnavailable = errors.New("claim store unavailable")
)

// ValidationError: gagal validasi per field.
type ValidationError struct {
	Fields map[string]string // field json → pesan untuk user
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidArgument }

// FirstMessage: pesan pertama (urut field) untuk ditampilkan inline.
func (e *ValidationError) FirstMessage() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) == 0 {
		return ""
	}
	return e.Fields[keys[0]]
}
