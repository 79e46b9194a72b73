package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// check runs struct tag validation and renders each failure as one message.
func check(v interface{}) []string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	details := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, fmt.Sprintf("%s failed on '%s' validation", fe.Field(), fe.Tag()))
	}
	return details
}

// DecodeJSON decodes JSON from request body into the given value.
func DecodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// Pagination contains offset pagination parameters.
type Pagination struct {
	Limit  int
	Offset int
}

// MaxLimit is the maximum page size.
const MaxLimit = 100

// ParsePagination extracts limit and offset from query parameters.
func ParsePagination(r *http.Request, defaultLimit int) Pagination {
	p := Pagination{Limit: defaultLimit}

	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 {
			p.Limit = v
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if v, err := strconv.Atoi(o); err == nil && v >= 0 {
			p.Offset = v
		}
	}

	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// ParseBool reads a boolean query parameter; anything unparsable is false.
func ParseBool(r *http.Request, name string) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return v
}
