package knowledge

import "fmt"

var (
	// ErrNotFound is returned when no value exists under the requested key in
	// the underlying store.
	ErrNotFound = fmt.Errorf("knowledge entry not found")
)
