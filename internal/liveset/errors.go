package liveset

import (
	"errors"
	"fmt"
)

// ErrNoTracks reports a document without a track container.
var ErrNoTracks = errors.New("document has no track container")

// ModelError describes why a typed model could not be built.
type ModelError struct {
	Err    error
	Detail string
}

func (e *ModelError) Error() string {
	if e.Detail == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Err, e.Detail)
}

func (e *ModelError) Unwrap() error { return e.Err }

func noTracks(detail string) error {
	return &ModelError{Err: ErrNoTracks, Detail: detail}
}
