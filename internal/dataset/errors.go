package dataset

import "errors"

var (
	ErrNoColumn   = errors.New("dataset: no such column")
	ErrNotNumeric = errors.New("dataset: cell is not numeric")
	ErrLength     = errors.New("dataset: column length does not match table")
	ErrNoHeader   = errors.New("dataset: csv has no header row")
)
