package match

import (
	"errors"

	"github.com/viant/descmatch/descriptor"
)

var (
	// ErrInvalidInput reports malformed descriptor input.
	ErrInvalidInput = descriptor.ErrInvalidInput

	// ErrConfiguration reports a configuration field outside its domain.
	ErrConfiguration = errors.New("match: invalid configuration")

	// ErrPrecondition reports a match requested without both descriptor sets.
	ErrPrecondition = errors.New("match: precondition failed")
)
