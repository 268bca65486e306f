// Package handlers adapts HTTP requests to the service layer. Handlers only
// decode, call one service method and encode; every rule lives below them.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/baharkarakas/qa-forum/internal/apperr"
	"github.com/baharkarakas/qa-forum/internal/models"
	"github.com/baharkarakas/qa-forum/internal/validate"
)

type messageResp struct {
	Message string `json:"message"`
}

func pathID(r *http.Request, name string) (int64, error) {
	id, f := validate.PositiveID(name, chi.URLParam(r, name))
	if f != nil {
		return 0, apperr.Invalid(*f)
	}
	return id, nil
}

// page reads limit/offset query params. Malformed values fall back to the defaults.
func page(r *http.Request) models.Page {
	var p models.Page
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			p.Limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			p.Offset = n
		}
	}
	return p.Normalize()
}
