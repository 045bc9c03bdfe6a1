package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/fd1az/balancer-connector/internal/apperror"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders err as {"error": {code, message, context}}. Errors
// that are not AppErrors become INTERNAL_ERROR without leaking details.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperror.Wrap(err, apperror.CodeInternalError, "")

	status := apperror.HTTPStatus(appErr)
	if status >= http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "code", appErr.Code, "error", err)
	} else {
		s.logger.Warn(r.Context(), "request rejected", "path", r.URL.Path, "code", appErr.Code, "error", err)
	}
	writeJSON(w, status, appErr.ToResponse(middleware.GetReqID(r.Context())))
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperror.New(apperror.CodeInvalidInput, apperror.WithMessage("request body is empty"))
		}
		return apperror.New(apperror.CodeInvalidInput,
			apperror.WithMessage("malformed request body"),
			apperror.WithCause(err))
	}
	return nil
}

// required takes name, value pairs and reports the first empty value.
func required(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			return apperror.New(apperror.CodeRequiredField, apperror.WithContext(pairs[i]))
		}
	}
	return nil
}
