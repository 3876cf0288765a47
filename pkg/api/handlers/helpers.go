package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/logiclink/logiclink/pkg/backend"
	"github.com/logiclink/logiclink/pkg/bits"
)

// groupParam parses the {group} URL parameter, writing 400 on failure.
func groupParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	g, err := strconv.Atoi(chi.URLParam(r, "group"))
	if err != nil {
		BadRequest(w, "group must be an integer")
		return 0, false
	}
	return g, true
}

// uintQuery parses an optional non-negative query parameter.
func uintQuery(r *http.Request, name string, def uint64) (uint64, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a non-negative integer", name)
	}
	return v, nil
}

// writeStoreError maps store errors to 404 for unknown groups and channels
// and 500 otherwise.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, backend.ErrUnknownGroup), errors.Is(err, bits.ErrOutOfRange):
		NotFound(w, err.Error())
	default:
		InternalServerError(w, err.Error())
	}
}
