package offline

import (
	"embed"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"time"
)

//go:embed assets/bundle.html.tmpl assets/loader.js
var assets embed.FS

const (
	engineWasmPath = "assets/engine/rcdrill.wasm"
	engineExecPath = "assets/engine/wasm_exec.js"
)

// ErrNoEngine is returned by Export when neither WithEngine nor a built-in
// engine supplies the session engine.
var ErrNoEngine = errors.New("offline page needs the session engine: run go generate ./internal/offline and rebuild, or pass an engine build")

var page = template.Must(template.New("bundle.html.tmpl").
	Funcs(template.FuncMap{"inc": func(i int) int { return i + 1 }}).
	ParseFS(assets, "assets/bundle.html.tmpl"))

// ExportOption configures Export.
type ExportOption func(*exportConfig)

type exportConfig struct {
	title    string
	wasm     []byte
	wasmExec []byte
}

// WithTitle sets the page title.
func WithTitle(title string) ExportOption {
	return func(c *exportConfig) { c.title = title }
}

// WithEngine embeds the given js/wasm build of the session engine and its
// wasm_exec.js instead of the built-in one.
func WithEngine(wasm, wasmExec []byte) ExportOption {
	return func(c *exportConfig) {
		c.wasm = wasm
		c.wasmExec = wasmExec
	}
}

type pageData struct {
	Bundle
	Title    string
	Minutes  int
	Data     template.JS
	Engine   template.JS
	WasmExec template.JS
	Loader   template.JS
}

// Export writes b as a single self-contained HTML file carrying the
// session engine, so the test runs in a browser with no network.
func Export(w io.Writer, b Bundle, opts ...ExportOption) error {
	if err := b.Validate(); err != nil {
		return err
	}

	cfg := exportConfig{
		title: fmt.Sprintf("Reading comprehension practice, %s", b.CreatedAt.Local().Format(time.DateOnly)),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	// json.Marshal escapes <, > and &, so the data cannot close its script element.
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("encode bundle: %w", err)
	}

	pd := pageData{
		Bundle:  b,
		Title:   cfg.title,
		Minutes: (b.TimeBudgetSeconds + 59) / 60,
		Data:    template.JS(data),
	}

	if len(cfg.wasm) == 0 {
		wasm, wasmExec, ok := BuiltinEngine()
		if !ok {
			return ErrNoEngine
		}
		cfg.wasm, cfg.wasmExec = wasm, wasmExec
	}
	if len(cfg.wasmExec) == 0 {
		return fmt.Errorf("engine build needs wasm_exec.js")
	}
	enc, err := json.Marshal(base64.StdEncoding.EncodeToString(cfg.wasm))
	if err != nil {
		return fmt.Errorf("encode engine: %w", err)
	}
	loader, err := assets.ReadFile("assets/loader.js")
	if err != nil {
		return fmt.Errorf("read loader: %w", err)
	}
	pd.Engine = template.JS(enc)
	pd.WasmExec = template.JS(cfg.wasmExec)
	pd.Loader = template.JS(loader)

	if err := page.Execute(w, pd); err != nil {
		return fmt.Errorf("render offline bundle: %w", err)
	}
	return nil
}
