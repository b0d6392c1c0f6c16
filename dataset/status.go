package dataset

import (
	"strings"

	"github.com/YuminosukeSato/pumpit/pkg/errors"
)

// Status is the ordinal functional state of a pump.
type Status int

const (
	// NonFunctional covers every "non functional…" group.
	NonFunctional Status = 0
	// NeedsRepair covers "functional needs repair".
	NeedsRepair Status = 1
	// Functional is exactly "functional".
	Functional Status = 2
)

func (s Status) String() string {
	switch s {
	case NonFunctional:
		return "non functional"
	case NeedsRepair:
		return "functional needs repair"
	case Functional:
		return "functional"
	}
	return "unknown"
}

// NeedsAttention reports whether the pump is not fully functional.
func (s Status) NeedsAttention() bool {
	return s < Functional
}

// StatusFromGroup maps a status_group label to its Status. The
// "functional needs" prefix is checked before the exact "functional"
// match; anything else is a ValidationError.
func StatusFromGroup(group string) (Status, error) {
	switch {
	case strings.HasPrefix(group, "functional needs"):
		return NeedsRepair, nil
	case strings.HasPrefix(group, "non"):
		return NonFunctional, nil
	case group == "functional":
		return Functional, nil
	}
	return 0, errors.NewValidationError(StatusGroupColumn, "unrecognized status group", group)
}
