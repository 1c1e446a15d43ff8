package template

import (
	"errors"
	"fmt"

	"alsdoctor/internal/idgraph"
)

// ErrTrackIndex reports a track ordinal outside the Tracks container.
var ErrTrackIndex = errors.New("track index out of range")

// IntegrityError is returned when a clone would add dangling references or
// duplicate owners to the target document. The document is left unchanged.
type IntegrityError struct {
	Dangling   []idgraph.Identifier
	Duplicates []idgraph.Identifier
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("cloned track breaks reference integrity: %d dangling references, %d duplicate owners",
		len(e.Dangling), len(e.Duplicates))
}

func indexError(index, count int) error {
	return fmt.Errorf("%w: %d (document has %d tracks)", ErrTrackIndex, index, count)
}
