package i18n

import "net/http"

// Middleware injects a translator chosen from the lang query parameter,
// then Accept-Language, then fallback.
func Middleware(fallback string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tr := New(r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"), fallback)
			next.ServeHTTP(w, r.WithContext(WithTranslator(r.Context(), tr)))
		})
	}
}
