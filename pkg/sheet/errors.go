package sheet

import "errors"

var (
	ErrNotFound    = errors.New("sheet: dataset not found")
	ErrInvalidName = errors.New("sheet: invalid dataset name")
	ErrNoHeader    = errors.New("sheet: dataset has no header row")
	ErrMalformed   = errors.New("sheet: malformed dataset")
)
