package index

import (
	"fmt"

	"github.com/viant/descmatch/descriptor"
)

// ValidateBuild checks a set passed to Build.
func ValidateBuild(name string, set descriptor.Set) error {
	if len(set) == 0 {
		return fmt.Errorf("%w: %s: empty descriptor set", descriptor.ErrInvalidInput, name)
	}
	if err := set.Validate(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// ValidateQuery checks the arguments of Query against an index of size n and
// dimension dim.
func ValidateQuery(name string, n, dim int, query descriptor.Descriptor, k, budget int) error {
	if n == 0 {
		return fmt.Errorf("%w: %s: index is not built", descriptor.ErrInvalidInput, name)
	}
	if len(query) != dim {
		return fmt.Errorf("%w: %s: query dim %d != index dim %d", descriptor.ErrInvalidInput, name, len(query), dim)
	}
	if k < 1 || k > n {
		return fmt.Errorf("%w: %s: k=%d outside [1, %d]", descriptor.ErrInvalidInput, name, k, n)
	}
	if budget < 1 {
		return fmt.Errorf("%w: %s: search budget %d < 1", descriptor.ErrInvalidInput, name, budget)
	}
	return nil
}
