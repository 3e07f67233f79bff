package airframe

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrOutOfBounds indicates a placement or relocation that would leave the
	// centerline.
	ErrOutOfBounds = errors.New("airframe: component outside the centerline")

	// ErrNameConflict indicates a duplicate name or misuse of a reserved
	// lifting-surface slot.
	ErrNameConflict = errors.New("airframe: component name conflict")

	// ErrFormValidation indicates a rejected field of a bulk amendment.
	ErrFormValidation = errors.New("airframe: invalid amendment")

	// ErrUnknownComponent indicates a name that is not in the layout.
	ErrUnknownComponent = errors.New("airframe: no such component")

	// ErrInvalidParams indicates construction parameters out of range.
	ErrInvalidParams = errors.New("airframe: invalid parameters")

	// ErrReservedSlot indicates a wing outside the reserved slots, or
	// equipment in one. It is also an ErrNameConflict.
	ErrReservedSlot = fmt.Errorf("%w: reserved lifting-surface slot", ErrNameConflict)
)

// FieldError reports the amendment field that failed validation.
type FieldError struct {
	Field   Field
	Reason  string
	Wrapped error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error {
	return e.Wrapped
}

func reservedError(f Field, format string, args ...any) *FieldError {
	return &FieldError{Field: f, Reason: fmt.Sprintf(format, args...), Wrapped: ErrReservedSlot}
}

func formError(f Field, format string, args ...any) *FieldError {
	return &FieldError{Field: f, Reason: fmt.Sprintf(format, args...), Wrapped: ErrFormValidation}
}

// The range checks below are written so that NaN fails them.

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func positive(v float64) bool { return v > 0 && !math.IsInf(v, 1) }

func nonNegative(v float64) bool { return v >= 0 && !math.IsInf(v, 1) }

func paramError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidParams, fmt.Sprintf(format, args...))
}
