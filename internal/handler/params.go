package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"fsanano/inventory-cart/internal/service"
)

// pathID parses the {id} URL parameter. Malformed ids are reported as
// missing resources.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// queryInt reads an optional integer query parameter, recording a
// validation message when it is not a number.
func queryInt(r *http.Request, name string, ve *service.ValidationError) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		ve.Add(name, "The "+name+" field must be an integer.")
		return 0
	}
	return n
}
