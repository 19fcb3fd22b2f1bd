// Package errs defines the error taxonomy shared across the download
// pipeline. Sentinels separate fatal failures (bad credentials, login page
// shape changes) from per-item conditions that only skip a single video.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrBadCredentials indicates the platform rejected the login submission.
	// Fatal: the whole run aborts.
	ErrBadCredentials = errors.New("could not login, please check your credentials")
	// ErrLoginPageChanged indicates the login page no longer carries the
	// expected CSRF form field. Fatal, never retried.
	ErrLoginPageChanged = errors.New("csrf token not found on login page")
	// ErrVideoUnavailable indicates the media URL could not be resolved for a
	// single video (locked course or exhausted retries). The video is skipped
	// and the batch continues.
	ErrVideoUnavailable = errors.New("video unavailable")
	// ErrCourseNotFound indicates the course detail response carried no
	// course element for the requested slug.
	ErrCourseNotFound = errors.New("course not found")
)

// StatusError reports a non-2xx HTTP status from the learning API. Status
// failures are the only errors the metadata retry loop will retry.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.URL)
}

// IsStatus reports whether err is (or wraps) a StatusError.
func IsStatus(err error) bool {
	var se *StatusError
	return errors.As(err, &se)
}
