package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/fwojciec/clipnote"
)

// codes maps application error codes to HTTP status codes.
var codes = map[string]int{
	clipnote.ECONFLICT:     http.StatusConflict,
	clipnote.EINVALID:      http.StatusBadRequest,
	clipnote.ENOTFOUND:     http.StatusNotFound,
	clipnote.EUNAUTHORIZED: http.StatusUnauthorized,
	clipnote.EFORBIDDEN:    http.StatusForbidden,
	clipnote.EQUOTA:        http.StatusForbidden,
	clipnote.ERATELIMIT:    http.StatusTooManyRequests,
	clipnote.EUNAVAILABLE:  http.StatusServiceUnavailable,
	clipnote.EMALFORMED:    http.StatusBadGateway,
	clipnote.ETIMEOUT:      http.StatusGatewayTimeout,
	clipnote.EINTERNAL:     http.StatusInternalServerError,
}

// ErrorStatusCode returns the HTTP status code for an application error code.
func ErrorStatusCode(code string) int {
	if v, ok := codes[code]; ok {
		return v
	}
	return http.StatusInternalServerError
}

// writeError writes err as a failed clipnote.Response. Internal errors are
// logged since their details are hidden from the client.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	code := clipnote.ErrorCode(err)
	if code == clipnote.EINTERNAL {
		logger.Error("http error", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	writeJSON(w, ErrorStatusCode(code), &clipnote.Response{OK: false, Error: clipnote.ErrorMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
