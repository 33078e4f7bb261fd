package publisher

import (
	"errors"
	"fmt"
)

// ErrUnknownPlatform signals a programming or configuration error, never bad
// user input.
var ErrUnknownPlatform = errors.New("unknown platform")

// ValidationError is a pre-flight constraint violation. It is always raised
// before any network call is made.
type ValidationError struct {
	Platform string
	Message  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Platform, e.Message)
}

func newValidationError(platform, format string, args ...any) *ValidationError {
	return &ValidationError{Platform: platform, Message: fmt.Sprintf(format, args...)}
}

// ContainerError is a media container that terminated in ERROR or EXPIRED.
// Terminal; not retried by this layer.
type ContainerError struct {
	Platform    string
	ContainerID string
	Status      ContainerStatus
}

func (e *ContainerError) Error() string {
	return fmt.Sprintf("%s: container %s terminated with status %s", e.Platform, e.ContainerID, e.Status)
}

// PollTimeoutError is raised when a bounded poll loop exhausts its budget.
type PollTimeoutError struct {
	Platform    string
	ContainerID string
	Polls       int
}

func (e *PollTimeoutError) Error() string {
	return fmt.Sprintf("%s: container %s not ready after %d polls", e.Platform, e.ContainerID, e.Polls)
}

// ProtocolError marks a platform response that violates the documented API
// contract, such as an unrecognized container status.
type ProtocolError struct {
	Platform string
	Message  string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s: protocol violation: %s", e.Platform, e.Message)
}

// UploadError is any failure during a chunked/registered upload sequence,
// distinct from container-polling failures.
type UploadError struct {
	Platform string
	Stage    string
	Err      error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("%s: upload failed at %s: %v", e.Platform, e.Stage, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// RemoteStatusError is an upload that succeeded but whose asynchronous status
// check reported failure. Only TikTok produces this.
type RemoteStatusError struct {
	Platform string
	Reason   string
}

func (e *RemoteStatusError) Error() string {
	return fmt.Sprintf("%s: platform reported publish failure: %s", e.Platform, e.Reason)
}

// APIError is a non-2xx platform response.
type APIError struct {
	Platform   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: unexpected status code %d: %s", e.Platform, e.StatusCode, e.Body)
}
