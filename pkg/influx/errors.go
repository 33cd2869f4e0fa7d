package influx

import "fmt"

// FormatError is returned when a value cannot be parsed as the numeric type
// of the field it is assigned to. The field is not stored.
type FormatError struct {
	Field string
	Kind  string
	Value string
}

func (err *FormatError) Error() string {
	return fmt.Sprintf("expected %s value for field %q, but got %q",
		err.Kind, err.Field, err.Value)
}
