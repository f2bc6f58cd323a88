package marketsearch

import "github.com/kailas-cloud/marketsearch/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNetwork                = domain.ErrNetwork
	ErrBackendRejected        = domain.ErrBackendRejected
	ErrNotFound               = domain.ErrNotFound
	ErrGeolocationDenied      = domain.ErrGeolocationDenied
	ErrGeolocationUnavailable = domain.ErrGeolocationUnavailable
	ErrLocationUnavailable    = domain.ErrLocationUnavailable
	ErrGeocodingFailed        = domain.ErrGeocodingFailed
	ErrInvalidPriceFormat     = domain.ErrInvalidPriceFormat
	ErrInvalidQuery           = domain.ErrInvalidQuery
	ErrInvalidPreferences     = domain.ErrInvalidPreferences
)

// BackendError carries the backend's HTTP status and message.
// Use errors.As() to read them.
type BackendError = domain.BackendError
