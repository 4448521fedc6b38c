package tabular

import "fmt"

// MissingFileError reports a required input file that does not exist.
type MissingFileError struct {
	Path string
}

func (e *MissingFileError) Error() string {
	return fmt.Sprintf("required file not found: %s", e.Path)
}

// MissingColumnError reports a required column absent from a table.
type MissingColumnError struct {
	Table  string
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("missing column %q in %s", e.Column, e.Table)
}
