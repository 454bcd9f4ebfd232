package dataset

import (
	"errors"
	"fmt"
)

// Kind classifies a load failure.
type Kind int

const (
	// KindSourceUnreachable means the source could not be read or returned
	// malformed data. Nothing can be shown.
	KindSourceUnreachable Kind = iota + 1

	// KindEmptyDataset means the source was read but held no rows. The
	// caller shows a "no data" notice instead of aggregations.
	KindEmptyDataset
)

func (k Kind) String() string {
	switch k {
	case KindSourceUnreachable:
		return "source_unreachable"
	case KindEmptyDataset:
		return "empty_dataset"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ErrNoRows is the cause recorded on an EmptyDataset LoadError.
var ErrNoRows = errors.New("source returned no rows")

// LoadError is returned by Loader.Load.
type LoadError struct {
	Source string
	Kind   Kind
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %s: %v", e.Source, e.Kind, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Fatal reports whether the error leaves nothing to display.
func (e *LoadError) Fatal() bool { return e.Kind == KindSourceUnreachable }

// IsSourceUnreachable reports whether err is a fatal LoadError.
func IsSourceUnreachable(err error) bool {
	var le *LoadError
	return errors.As(err, &le) && le.Kind == KindSourceUnreachable
}

// IsEmptyDataset reports whether err is an EmptyDataset LoadError.
func IsEmptyDataset(err error) bool {
	var le *LoadError
	return errors.As(err, &le) && le.Kind == KindEmptyDataset
}
