package clients

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrDeserialization = errors.New("response could not be deserialized")
	ErrHTTPStatus      = errors.New("host returned a non-success status")
	ErrEventNotFound   = errors.New("event not found")
)

// HTTPStatusError is returned for any non-2xx response. Messages holds whatever error text the
// host put in the body, when it could be decoded.
type HTTPStatusError struct {
	StatusCode int
	Body       []byte
	Messages   []string
}

func (e *HTTPStatusError) Error() string {
	if len(e.Messages) > 0 {
		return fmt.Sprintf("http status %d: %s", e.StatusCode, strings.Join(e.Messages, "; "))
	}
	return fmt.Sprintf("http status %d", e.StatusCode)
}

func (e *HTTPStatusError) Is(target error) bool {
	return target == ErrHTTPStatus
}

// StatusCode extracts the HTTP status of err, or 0 when err did not come from a response.
func StatusCode(err error) int {
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}

// GraphQLErrors carries the errors array of a GraphQL response.
type GraphQLErrors []string

func (e GraphQLErrors) Error() string {
	return "graphql: " + strings.Join(e, "; ")
}
