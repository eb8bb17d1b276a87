// Package httpapi serves a read-only JSON view of practice history.
package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/abhisek/rcdrill/internal/analytics"
	"github.com/abhisek/rcdrill/internal/history"
	"github.com/abhisek/rcdrill/internal/i18n"
	"github.com/abhisek/rcdrill/internal/offline"
	"github.com/abhisek/rcdrill/internal/session"
)

// Results is the history the API reads from.
type Results interface {
	All() []session.StoredResult
	Get(id string) (session.StoredResult, bool)
}

// Option configures a Handler.
type Option func(*Handler)

// WithCategory sets the category used when a request names none.
func WithCategory(c analytics.Category) Option {
	return func(h *Handler) { h.category = c }
}

// WithLocation sets the time zone calendar days are computed in.
func WithLocation(loc *time.Location) Option {
	return func(h *Handler) { h.loc = loc }
}

// WithLang sets the fallback language for analysis statements.
func WithLang(lang string) Option {
	return func(h *Handler) { h.lang = lang }
}

// WithLogger sets the handler logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) { h.logger = l }
}

// WithClock overrides the clock used for the default calendar month.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) { h.now = now }
}

// WithEngine replaces the built-in session engine embedded in bundle
// downloads.
func WithEngine(wasm, wasmExec []byte) Option {
	return func(h *Handler) {
		h.engine = []offline.ExportOption{offline.WithEngine(wasm, wasmExec)}
	}
}

// Handler serves the history API.
type Handler struct {
	results  Results
	category analytics.Category
	loc      *time.Location
	lang     string
	logger   *slog.Logger
	now      func() time.Time
	engine   []offline.ExportOption
}

// New creates a Handler over results.
func New(results Results, opts ...Option) *Handler {
	h := &Handler{
		results:  results,
		category: analytics.DefaultCategory,
		loc:      time.Local,
		lang:     i18n.DefaultLang,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Router returns the full middleware stack and routes.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(i18n.Middleware(h.lang))
	h.Routes(r)
	return r
}

// Routes registers the API routes on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/healthz", h.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/results", h.handleList)
		r.Get("/results/{id}", h.handleResult)
		r.Get("/results/{id}/analysis", h.handleAnalysis)
		r.Get("/results/{id}/bundle", h.handleBundle)
		r.Get("/calendar", h.handleMonth)
		r.Get("/calendar/{date}", h.handleDay)
	})
}

// requestID stamps requests without an id with a UUID, which
// middleware.RequestID then adopts.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(middleware.RequestIDHeader) == "" {
			r.Header.Set(middleware.RequestIDHeader, uuid.NewString())
		}
		next.ServeHTTP(w, r)
	})
}

// Summary is one attempt in a listing.
type Summary struct {
	ID                 string    `json:"id"`
	Date               time.Time `json:"dateISO"`
	Score              int       `json:"score"`
	TotalPossibleScore int       `json:"totalPossibleScore"`
	CorrectCount       int       `json:"correctCount"`
	IncorrectCount     int       `json:"incorrectCount"`
	UnattemptedCount   int       `json:"unattemptedCount"`
	TimeTakenSec       int       `json:"timeTakenSec"`
	NumberOfPassages   int       `json:"numberOfPassages"`
	PassageSummary     string    `json:"passageSummary"`
}

// Summarize lists results newest first without their question payloads.
func Summarize(rs []session.StoredResult) []Summary {
	out := make([]Summary, 0, len(rs))
	for _, r := range rs {
		out = append(out, Summary{
			ID:                 r.ID,
			Date:               r.Date,
			Score:              r.Score,
			TotalPossibleScore: r.TotalPossibleScore,
			CorrectCount:       r.CorrectCount,
			IncorrectCount:     r.IncorrectCount,
			UnattemptedCount:   r.UnattemptedCount,
			TimeTakenSec:       r.TimeTakenSec,
			NumberOfPassages:   r.NumberOfPassages,
			PassageSummary:     r.PassageSummary,
		})
	}
	slices.SortStableFunc(out, func(a, b Summary) int { return b.Date.Compare(a.Date) })
	return out
}

// Analysis pairs a comparison with its localized statement.
type Analysis struct {
	analytics.Comparison
	Statement string `json:"statement"`
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "results": len(h.results.All())})
}

func (h *Handler) handleList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, Summarize(h.results.All()))
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (session.StoredResult, bool) {
	id := chi.URLParam(r, "id")
	res, ok := h.results.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("result %q not found", id))
	}
	return res, ok
}

func (h *Handler) handleResult(w http.ResponseWriter, r *http.Request) {
	if res, ok := h.lookup(w, r); ok {
		writeJSON(w, http.StatusOK, res)
	}
}

func (h *Handler) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	res, ok := h.lookup(w, r)
	if !ok {
		return
	}

	cat := h.category
	if q := r.URL.Query().Get("category"); q != "" {
		c, err := analytics.ParseCategory(q)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		cat = c
	}

	cmp, err := analytics.Compare(res.Score, res.TotalPossibleScore, cat)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, Analysis{
		Comparison: cmp,
		Statement:  cmp.Statement(i18n.FromContext(r.Context())),
	})
}

func (h *Handler) handleBundle(w http.ResponseWriter, r *http.Request) {
	res, ok := h.lookup(w, r)
	if !ok {
		return
	}

	b := offline.FromResult(res)
	b.CreatedAt = h.now().UTC()

	// Render fully before writing so a failure can still be reported.
	var buf bytes.Buffer
	if err := offline.Export(&buf, b, h.engine...); err != nil {
		h.logger.Error("render offline bundle", "id", res.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "could not render bundle")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="rcdrill-%s.html"`, res.ID))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) handleMonth(w http.ResponseWriter, r *http.Request) {
	now := h.now().In(h.loc)
	year, month := now.Year(), now.Month()
	if q := r.URL.Query().Get("month"); q != "" {
		t, err := time.Parse("2006-01", q)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("month %q is not YYYY-MM", q))
			return
		}
		year, month = t.Year(), t.Month()
	}
	idx := history.BuildCalendarIndex(h.results.All(), h.loc)
	writeJSON(w, http.StatusOK, idx.Month(year, month))
}

func (h *Handler) handleDay(w http.ResponseWriter, r *http.Request) {
	day := chi.URLParam(r, "date")
	if _, err := time.Parse(history.DateLayout, day); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("date %q is not YYYY-MM-DD", day))
		return
	}
	idx := history.BuildCalendarIndex(h.results.All(), h.loc)
	writeJSON(w, http.StatusOK, Summarize(idx.On(day)))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": strings.TrimSpace(msg)})
}
