package assistant

import (
	"errors"
	"fmt"

	"github.com/sailorhq/speaknote/pkg/retry"
)

var (
	// ErrInvalidCredential means no usable API key was supplied.
	ErrInvalidCredential = errors.New("assistant: invalid API credential")
	// ErrInvalidSession means no assistant profile or conversation thread is
	// available for the call.
	ErrInvalidSession = errors.New("assistant: no session established")
	// ErrDecoding means a success response body did not match the expected
	// shape, or the reply payload was malformed. Not retried: malformed
	// output will not self-correct by re-parsing.
	ErrDecoding = errors.New("assistant: decoding error")
	// ErrNoMessage means the thread held no assistant-authored reply.
	ErrNoMessage = errors.New("assistant: no reply message found")
)

// NetworkError is any non-2xx response from the remote service.
type NetworkError struct {
	StatusCode int
	Body       string
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("assistant: request failed with status %d: %s", e.StatusCode, e.Body)
}

// ServiceError reports a run that reached a state which never resolves to
// completion (requires_action, cancelling, cancelled, failed, expired).
type ServiceError struct {
	Status RunStatus
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("assistant: run ended in status %q", e.Status)
}

// IsClientError reports whether err belongs to the assistant error taxonomy,
// including errors wrapped by the retry utility.
func IsClientError(err error) bool {
	if errors.Is(err, ErrInvalidCredential) ||
		errors.Is(err, ErrInvalidSession) ||
		errors.Is(err, ErrDecoding) ||
		errors.Is(err, ErrNoMessage) {
		return true
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return true
	}
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return true
	}
	var limitErr *retry.LimitError
	return errors.As(err, &limitErr)
}
