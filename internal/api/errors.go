package api

import (
	"net/http"
	"strconv"
)

// errorBody is the error envelope every service returns. Details carries
// per-field validation messages; RetryAfter is set only on 429 responses and
// mirrors the Retry-After header in seconds.
type errorBody struct {
	Error      string   `json:"error"`
	Details    []string `json:"details,omitempty"`
	RetryAfter int      `json:"retry_after,omitempty"`
}

// WriteError writes a JSON error response with the given status and message.
func WriteError(w http.ResponseWriter, status int, message string) {
	JSON(w, status, errorBody{Error: message})
}

// ValidationError writes a 400 with an itemized list of field problems.
func ValidationError(w http.ResponseWriter, details []string) {
	JSON(w, http.StatusBadRequest, errorBody{Error: "validation failed", Details: details})
}

// BadRequest writes a 400 for malformed input that never reached validation.
func BadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, message)
}

// Unauthorized writes a 401. The message is deliberately generic: callers
// must not distinguish missing, expired, and malformed credentials, nor
// reveal whether an account exists or is locked.
func Unauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, message)
}

// Forbidden writes a 403.
func Forbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, message)
}

// NotFound writes a 404.
func NotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, message)
}

// Conflict writes a 409 for duplicate-resource errors.
func Conflict(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusConflict, message)
}

// TooManyRequests writes a 429 with Retry-After set both as a header and in
// the body, in whole seconds.
func TooManyRequests(w http.ResponseWriter, retryAfterSeconds int) {
	if retryAfterSeconds < 1 {
		retryAfterSeconds = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds))
	JSON(w, http.StatusTooManyRequests, errorBody{
		Error:      "too many requests, please try again later",
		RetryAfter: retryAfterSeconds,
	})
}

// InternalError writes a 500 without leaking internals to the client.
func InternalError(w http.ResponseWriter) {
	WriteError(w, http.StatusInternalServerError, "internal server error")
}
