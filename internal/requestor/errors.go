package requestor

import "errors"

var (
	// ErrMissingAPIKey is returned by New when no client is injected and
	// the credential variable is absent or empty.
	ErrMissingAPIKey = errors.New(APIKeyEnv + " environment variable is not set")
	// ErrClientInit wraps any failure while building the default client.
	ErrClientInit = errors.New("failed to initialize Gemini client")
	// ErrAttachmentNotFound is returned by SendRequest when the configured file is missing.
	ErrAttachmentNotFound = errors.New("attachment not found")
	// ErrRequestFailed wraps any failure raised by the remote call.
	ErrRequestFailed = errors.New("failed to send request")

	// ErrNotYetRequested matches any *NotYetRequestedError via errors.Is.
	ErrNotYetRequested = &NotYetRequestedError{}
)

const defaultNotYetRequestedMessage = "No valid response. Did you forget to call SendRequest?"

// NotYetRequestedError is returned when the response is read before a
// successful SendRequest.
type NotYetRequestedError struct {
	Message string
}

func (e *NotYetRequestedError) Error() string {
	if e.Message == "" {
		return defaultNotYetRequestedMessage
	}
	return e.Message
}

func (e *NotYetRequestedError) Is(target error) bool {
	_, ok := target.(*NotYetRequestedError)
	return ok
}
