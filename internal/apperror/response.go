package apperror

import (
	"errors"
	"net/http"
	"strings"
	"time"
)

var statuses = map[Code]int{
	CodeNotReady:           http.StatusServiceUnavailable,
	CodeServiceUnavailable: http.StatusServiceUnavailable,
	CodeCircuitOpen:        http.StatusServiceUnavailable,

	CodeNoRouteFound: http.StatusNotFound,
	CodeEmptyPathSet: http.StatusNotFound,

	CodeSimulationFailed:   http.StatusUnprocessableEntity,
	CodePriceLimitExceeded: http.StatusUnprocessableEntity,

	CodeMalformedSlippageConfig: http.StatusBadRequest,
	CodeRequiredField:           http.StatusBadRequest,
	CodeValidationError:         http.StatusBadRequest,
	CodeUnsupportedNetwork:      http.StatusBadRequest,

	CodeRateLimitExceeded: http.StatusTooManyRequests,

	CodeBalancerAPIError: http.StatusBadGateway,
	CodeRPCError:         http.StatusBadGateway,
	CodeBroadcastFailed:  http.StatusBadGateway,
}

func statusFor(code Code) int {
	if s, ok := statuses[code]; ok {
		return s
	}
	c := string(code)
	switch {
	case strings.Contains(c, "NOT_FOUND"):
		return http.StatusNotFound
	case strings.Contains(c, "INVALID"):
		return http.StatusBadRequest
	case strings.Contains(c, "CONNECTION"), strings.Contains(c, "TIMEOUT"):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// HTTPStatus is the status to answer err with. Plain errors are 500.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	return http.StatusInternalServerError
}

// Response is the JSON envelope of an error answer.
type Response struct {
	Error ResponseBody `json:"error"`
}

type ResponseBody struct {
	Code      Code   `json:"code"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Context   string `json:"context,omitempty"`
	TraceID   string `json:"traceId,omitempty"`
}

// ToResponse renders e for a client. The cause is never included.
func (e *AppError) ToResponse(traceID string) Response {
	return Response{Error: ResponseBody{
		Code:      e.Code,
		Message:   e.Message,
		Timestamp: e.At.UTC().Format(time.RFC3339),
		Context:   e.Context,
		TraceID:   traceID,
	}}
}
