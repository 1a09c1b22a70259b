package commonerr

import (
	"errors"
	"strings"
)

var (
	// ErrFilesystem occurs when a filesystem interaction fails.
	ErrFilesystem = errors.New("something went wrong when interacting with the fs")

	// ErrCouldNotDownload occurs when a download fails.
	ErrCouldNotDownload = errors.New("could not download requested resource")

	// ErrNotFound occurs when a resource could not be found.
	ErrNotFound = errors.New("the resource cannot be found")

	// ErrUpstreamUnreachable occurs when a version or release feed cannot be
	// queried. Callers must be able to tell this apart from an empty feed.
	ErrUpstreamUnreachable = errors.New("upstream version source is unreachable")

	// ErrGenerationFailed occurs when a downloaded archive yields no
	// recognized assets, or when the download itself failed.
	ErrGenerationFailed = errors.New("could not generate assets for the requested version")

	// ErrCorruptArchive occurs when an archive cannot be opened as a zip.
	ErrCorruptArchive = errors.New("archive could not be read as a zip file")

	ErrBackendException = errors.New("database: an error occured when querying the backend")

	ErrInconsistent = errors.New("database: inconsistent database")
)

// ErrBadRequest occurs when a method has been passed an inappropriate argument.
type ErrBadRequest struct {
	s string
}

// NewBadRequestError instantiates a ErrBadRequest with the specified message.
func NewBadRequestError(message string) error {
	return &ErrBadRequest{s: message}
}

func (e *ErrBadRequest) Error() string {
	return e.s
}

// ValidationError aggregates user-facing validation messages. An upload can
// violate several rules at once (size and type) and all of them are reported.
type ValidationError struct {
	Messages []string
}

func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Messages: messages}
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "; ")
}
