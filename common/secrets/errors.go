package secrets

import "errors"

var (
	// ErrSecretNotFound is returned when the store has no secret with the id.
	ErrSecretNotFound = errors.New("secret not found")
	// ErrAccessDenied is returned when the caller may not read the secret.
	ErrAccessDenied = errors.New("access to secret denied")
	// ErrSecretEmpty is returned when a secret decodes to no keys.
	ErrSecretEmpty = errors.New("secret is empty")
	// ErrInvalidSecret is returned for binary or non-JSON-object secrets.
	ErrInvalidSecret = errors.New("secret is not a JSON object")
	// ErrMissingEnv is returned when the env var naming the secret is unset.
	ErrMissingEnv = errors.New("secret env var not set")
	// ErrNilFetcher is returned by a cache built without a fetcher.
	ErrNilFetcher = errors.New("secrets fetcher is nil")
)

// permanent reports errors that another attempt cannot fix.
func permanent(err error) bool {
	return errors.Is(err, ErrSecretNotFound) ||
		errors.Is(err, ErrAccessDenied) ||
		errors.Is(err, ErrInvalidSecret)
}
