package postgres

import (
	"regexp"
)

var (
	connectionStringCredentialsPattern = regexp.MustCompile(`://[^@\s]+@`)
	connectionStringPasswordPattern    = regexp.MustCompile(`(?i)(password=)('[^']*'|[^\s&]+)`)
)

// SanitizedError masks credentials in the message of a wrapped error while
// keeping it reachable through errors.Is and errors.As.
type SanitizedError struct {
	err error
}

func (e *SanitizedError) Error() string {
	return sanitizeMessage(e.err.Error())
}

func (e *SanitizedError) Unwrap() error {
	return e.err
}

func sanitize(err error) error {
	if err == nil {
		return nil
	}

	return &SanitizedError{err: err}
}

func sanitizeMessage(msg string) string {
	msg = connectionStringCredentialsPattern.ReplaceAllString(msg, "://***@")

	return connectionStringPasswordPattern.ReplaceAllString(msg, "${1}***")
}
