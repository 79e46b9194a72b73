package middleware

import (
	"net/http"
	"regexp"

	"github.com/go-chi/chi/v5"

	"github.com/tasktrack/tasktrack/internal/api/response"
	"github.com/tasktrack/tasktrack/internal/domain"
)

// Valid identifier pattern: alphanumeric, hyphens, underscores, 1-64 chars.
var validID = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// ValidIDParams rejects requests whose named URL parameters are not
// well-formed identifiers. Absent parameters are ignored.
func ValidIDParams(names ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var details []string
			for _, name := range names {
				v := chi.URLParam(r, name)
				if v != "" && !validID.MatchString(v) {
					details = append(details, "Invalid "+name+". Must be 1-64 alphanumeric characters, hyphens, or underscores.")
				}
			}
			if len(details) > 0 {
				response.Error(w, domain.NewValidationError(details))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
