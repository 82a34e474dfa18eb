package google

import (
	"errors"
	"net/http"

	"google.golang.org/api/googleapi"

	"github.com/labonzique/comcast-asrs-handler/internal/core/domain"
)

// ErrQuotaExceeded indicates the daily API quota was exhausted.
var ErrQuotaExceeded = errors.New("google: quota exceeded")

// StatusCode returns the HTTP status of a Google API error, or 0.
func StatusCode(err error) int {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code
	}
	return 0
}

// IsUnauthorized returns true if the error indicates invalid credentials.
func IsUnauthorized(err error) bool {
	return errors.Is(err, domain.ErrAuthInvalid) || StatusCode(err) == http.StatusUnauthorized
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	return errors.Is(err, domain.ErrRateLimited) || StatusCode(err) == http.StatusTooManyRequests
}

// WrapError converts a Google API error to a domain error, keeping the
// original message.
func WrapError(err error) error {
	if err == nil {
		return nil
	}

	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}

	switch gerr.Code {
	case http.StatusUnauthorized:
		return errors.Join(domain.ErrAuthInvalid, err)
	case http.StatusForbidden:
		if isQuotaReason(gerr) {
			return errors.Join(ErrQuotaExceeded, err)
		}
		return errors.Join(domain.ErrAuthInvalid, err)
	case http.StatusNotFound:
		return errors.Join(domain.ErrNotFound, err)
	case http.StatusTooManyRequests:
		return errors.Join(domain.ErrRateLimited, err)
	default:
		return err
	}
}

func isQuotaReason(gerr *googleapi.Error) bool {
	for _, item := range gerr.Errors {
		switch item.Reason {
		case "dailyLimitExceeded", "quotaExceeded":
			return true
		}
	}
	return false
}
