package batch

import "errors"

var (
	// ErrExtract marks a package whose archive could not be unpacked.
	ErrExtract = errors.New("batch: extraction failed")

	// ErrPack marks a copy whose rewritten tree could not be repackaged.
	ErrPack = errors.New("batch: packaging failed")

	// ErrNoInput is returned when a run is requested with no archives.
	ErrNoInput = errors.New("batch: no input archives")
)
