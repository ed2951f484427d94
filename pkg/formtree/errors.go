package formtree

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

var (
	ErrInvalidInput     = errors.New("input is not JSON-like")
	ErrMaxDepthExceeded = errors.New("maximum nesting depth exceeded")
)

// InvalidInputError reports a value that cannot be classified as primitive, array or
// object, such as a function, a channel or a byte slice.
type InvalidInputError struct {
	Path   string
	Type   string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input at %s: %s (%s)", e.Path, e.Reason, e.Type)
}

// Is makes errors.Is(err, ErrInvalidInput) hold.
func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// MaxDepthExceededError reports nesting deeper than the configured limit. Cyclic input
// always ends up here.
type MaxDepthExceededError struct {
	Path  string
	Limit int
}

func (e *MaxDepthExceededError) Error() string {
	return fmt.Sprintf("nesting at %s exceeds the maximum depth of %d", e.ShortPath(), e.Limit)
}

// maxShownPath is the longest path, in bytes, that ShortPath returns unabbreviated.
const maxShownPath = 64

// ShortPath returns Path cut after the last whole step that fits in maxShownPath bytes,
// followed by "…". Paths through cyclic input otherwise run to hundreds of steps.
func (e *MaxDepthExceededError) ShortPath() string {
	if len(e.Path) <= maxShownPath {
		return e.Path
	}
	cut := strings.LastIndexAny(e.Path[:maxShownPath+1], ".[")
	if cut <= 0 {
		cut = maxShownPath
		for cut > 0 && !utf8.RuneStart(e.Path[cut]) {
			cut--
		}
	}
	return e.Path[:cut] + "…"
}

// Is makes errors.Is(err, ErrMaxDepthExceeded) hold.
func (e *MaxDepthExceededError) Is(target error) bool {
	return target == ErrMaxDepthExceeded
}
