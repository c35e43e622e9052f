package handle

import (
	"errors"
	"fmt"

	"github.com/gogpu/gfx/resource"
)

// ErrCategoryMismatch is wrapped by every CategoryMismatchError.
var ErrCategoryMismatch = errors.New("handle: resource category mismatch")

// CategoryMismatchError reports an id encoded through the wrong category.
type CategoryMismatchError struct {
	Want resource.Type
	Got  resource.Type
}

func (e *CategoryMismatchError) Error() string {
	return fmt.Sprintf("handle: cannot encode %s id as %s handle", e.Got, e.Want)
}

// Unwrap returns ErrCategoryMismatch.
func (e *CategoryMismatchError) Unwrap() error {
	return ErrCategoryMismatch
}
