// Package http exposes the review service as a JSON REST API.
package http

import (
	"encoding/json"
	"errors"
	stdhttp "net/http"
	"strings"

	"github.com/aretw0/ahkcurate/pkg/core"
	"github.com/aretw0/ahkcurate/pkg/review"
)

// ErrorBody is the body of every error response.
type ErrorBody struct {
	Detail string `json:"detail"`
}

// JSON writes v as application/json with the given status.
func JSON(w stdhttp.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// Detail writes an error response.
func Detail(w stdhttp.ResponseWriter, status int, detail string) {
	JSON(w, status, ErrorBody{Detail: detail})
}

const (
	detailNotFound   = "Script not found"
	detailAhkMissing = "AutoHotkey v2 not found. Set AHK_PATH environment variable or install to default location."
)

func statusDetail() string {
	names := make([]string, len(core.SettableStatuses))
	for i, s := range core.SettableStatuses {
		names[i] = string(s)
	}
	return "Invalid status. Must be one of: " + listRepr(names)
}

func levelDetail() string {
	return "Invalid level. Must be one of: " + listRepr(review.FixLevels)
}

// listRepr renders names as ['a', 'b'].
func listRepr(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "'" + n + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// RespondError maps service errors to status codes.
func RespondError(w stdhttp.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		Detail(w, stdhttp.StatusNotFound, detailNotFound)
	case errors.Is(err, core.ErrInvalidStatus):
		Detail(w, stdhttp.StatusBadRequest, statusDetail())
	case errors.Is(err, core.ErrInvalidLevel):
		Detail(w, stdhttp.StatusBadRequest, levelDetail())
	case errors.Is(err, core.ErrInvalidGrade):
		Detail(w, stdhttp.StatusBadRequest, err.Error())
	default:
		Detail(w, stdhttp.StatusInternalServerError, err.Error())
	}
}
