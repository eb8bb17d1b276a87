// Package env carries the dependencies shared by every screen.
package env

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/abhisek/rcdrill/internal/analytics"
	"github.com/abhisek/rcdrill/internal/i18n"
	"github.com/abhisek/rcdrill/internal/offline"
	"github.com/abhisek/rcdrill/internal/practice"
)

// Env is handed to screens at construction. Screens run on the UI
// goroutine, so the flow is never touched concurrently.
type Env struct {
	Flow      *practice.Flow
	Tr        *i18n.Translator
	Category  analytics.Category
	ExportDir string
	Logger    *slog.Logger
	Location  *time.Location

	// Engine and WasmExec, when both set, replace the built-in session
	// engine in exported pages.
	Engine   []byte
	WasmExec []byte

	// Now is the wall clock used for calendars. Defaults to time.Now.
	Now func() time.Time
}

// Clock returns the current time.
func (e *Env) Clock() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// Loc returns the calendar location.
func (e *Env) Loc() *time.Location {
	if e.Location != nil {
		return e.Location
	}
	return time.Local
}

// I18n returns the translator, falling back to the default language.
func (e *Env) I18n() *i18n.Translator {
	if e.Tr != nil {
		return e.Tr
	}
	return i18n.New(i18n.DefaultLang)
}

// Log returns the screen logger.
func (e *Env) Log() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

// ExportBundle writes b as a self-contained practice page and returns its
// path.
func (e *Env) ExportBundle(b offline.Bundle) (string, error) {
	dir := e.ExportDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	opts := []offline.ExportOption{offline.WithTitle(e.I18n().T("AppTitle"))}
	if len(e.Engine) > 0 && len(e.WasmExec) > 0 {
		opts = append(opts, offline.WithEngine(e.Engine, e.WasmExec))
	}
	var page bytes.Buffer
	if err := offline.Export(&page, b, opts...); err != nil {
		return "", err
	}

	path := filepath.Join(dir, "rcdrill-"+b.CreatedAt.Format("20060102-150405")+".html")
	if err := os.WriteFile(path, page.Bytes(), 0o644); err != nil {
		return "", err
	}
	e.Log().Info("offline bundle exported", "path", path, "questions", len(b.Questions))
	return path, nil
}
