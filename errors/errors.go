package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrWorkerPanic        = fmt.Errorf("worker panic")
	ErrEmptyWords         = fmt.Errorf("no words have been found")
	ErrInvalidParticipant = fmt.Errorf("invalid participant")
	ErrStoreUnavailable   = fmt.Errorf("store unavailable")
	ErrEmptyInput         = fmt.Errorf("empty input")
	ErrContentTooLong     = fmt.Errorf("content too long")
	ErrRateLimited        = fmt.Errorf("rate limited")
	ErrNotFound           = fmt.Errorf("not found")
	ErrInvalidImage       = fmt.Errorf("invalid image")
	ErrUploadFailed       = fmt.Errorf("upload failed")
	ErrInvalidToken       = fmt.Errorf("invalid or expired token")
	ErrInvalidTheme       = fmt.Errorf("invalid theme")
)

// HTTPStatus maps a domain error to the status code returned to clients.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrEmptyInput),
		errors.Is(err, ErrInvalidParticipant),
		errors.Is(err, ErrContentTooLong),
		errors.Is(err, ErrInvalidImage),
		errors.Is(err, ErrInvalidTheme):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrUploadFailed):
		return http.StatusBadGateway
	case errors.Is(err, ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

var known = []error{
	ErrInvalidParticipant, ErrStoreUnavailable, ErrEmptyInput, ErrContentTooLong, ErrRateLimited,
	ErrNotFound, ErrInvalidImage, ErrUploadFailed, ErrInvalidToken, ErrInvalidTheme,
}

// FromHTTP rebuilds a domain error from an error response. The message is
// matched first, the status code is the fallback.
func FromHTTP(status int, message string) error {
	for _, err := range known {
		if strings.HasPrefix(message, err.Error()) {
			return fmt.Errorf("%w%s", err, strings.TrimPrefix(message, err.Error()))
		}
	}
	var base error
	switch {
	case status == http.StatusUnauthorized:
		base = ErrInvalidToken
	case status == http.StatusNotFound:
		base = ErrNotFound
	case status == http.StatusTooManyRequests:
		base = ErrRateLimited
	case status == http.StatusBadGateway:
		base = ErrUploadFailed
	case status >= http.StatusInternalServerError:
		base = ErrStoreUnavailable
	default:
		base = ErrEmptyInput
	}
	if message == "" {
		return base
	}
	return fmt.Errorf("%w: %s", base, message)
}
