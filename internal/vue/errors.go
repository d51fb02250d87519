package vue

import "fmt"

// AuthError indicates the API rejected our credentials or session token.
// The scheduler reacts by forcing a fresh login before the next cycle.
type AuthError struct {
	Endpoint string
	Err      error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("authentication failed at %s: %v", e.Endpoint, e.Err)
	}
	return fmt.Sprintf("authentication failed at %s", e.Endpoint)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// APIError covers everything else that can go wrong talking to the API:
// transport failures, non-2xx responses and malformed bodies. StatusCode
// is zero when no HTTP response was received.
type APIError struct {
	StatusCode int
	Endpoint   string
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("API error (%d) at %s: %v", e.StatusCode, e.Endpoint, e.Err)
	}
	return fmt.Sprintf("API error at %s: %v", e.Endpoint, e.Err)
}

func (e *APIError) Unwrap() error {
	return e.Err
}
