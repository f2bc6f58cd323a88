package domain

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNetwork signals that a backend request did not complete (offline, timeout, 5xx, malformed body).
	ErrNetwork = errors.New("network error")
	// ErrBackendRejected signals a backend envelope with success=false or a 4xx status.
	ErrBackendRejected = errors.New("backend rejected request")
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")

	// ErrGeolocationDenied signals that the user refused the position permission.
	ErrGeolocationDenied = errors.New("geolocation permission denied")
	// ErrGeolocationUnavailable signals a missing capability or a position timeout.
	ErrGeolocationUnavailable = errors.New("geolocation unavailable")
	// ErrLocationUnavailable signals that neither device nor IP lookup produced a location.
	ErrLocationUnavailable = errors.New("unable to detect location")
	// ErrGeocodingFailed signals a failed address or reverse lookup.
	ErrGeocodingFailed = errors.New("geocoding failed")

	// ErrInvalidPriceFormat signals a price that is neither a number nor a numeric string.
	ErrInvalidPriceFormat = errors.New("invalid price format")
	// ErrInvalidQuery signals search parameters that cannot be sent.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrInvalidPreferences signals out-of-range UI preferences.
	ErrInvalidPreferences = errors.New("invalid preferences")
)

// BackendError carries the HTTP status and the backend's own message.
type BackendError struct {
	Status  int
	Message string
}

func (e *BackendError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: status %d", e.Unwrap().Error(), e.Status)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Unwrap().Error(), e.Status, e.Message)
}

// Unwrap maps 5xx (and unknown statuses) to ErrNetwork, everything else to ErrBackendRejected.
func (e *BackendError) Unwrap() error {
	if e.Status >= http.StatusInternalServerError || e.Status == 0 {
		return ErrNetwork
	}
	return ErrBackendRejected
}

// NewBackendError creates a backend error for the given status and message.
func NewBackendError(status int, message string) error {
	return &BackendError{Status: status, Message: message}
}
