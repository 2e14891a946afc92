package sales

import (
	"fmt"
	"strings"
)

// SchemaError is returned when required columns are absent from every record of a payload.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing columns from API payload: %s", strings.Join(e.Missing, ", "))
}
