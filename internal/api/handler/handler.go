// Package handler implements the HTTP endpoints. Handlers are stateless
// apart from the shared service dependencies; each request builds the
// service it needs.
package handler

import (
	"net/http"

	"github.com/tasktrack/tasktrack/internal/api/request"
	"github.com/tasktrack/tasktrack/internal/api/response"
	"github.com/tasktrack/tasktrack/internal/domain"
)

type validatable interface {
	Validate() []string
}

// decode reads and validates a JSON body, writing the error response on
// failure.
func decode(w http.ResponseWriter, r *http.Request, req validatable) bool {
	if err := request.DecodeJSON(r, req); err != nil {
		response.Error(w, domain.NewValidationError([]string{"Invalid JSON body"}))
		return false
	}
	if errs := req.Validate(); len(errs) > 0 {
		response.Error(w, domain.NewValidationError(errs))
		return false
	}
	return true
}

func optionalParam(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
