package bptree

import "errors"

// ErrNotFound is returned by Lookup when a key cannot be found.
var ErrNotFound = errors.New("bptree: not found")

var (
	// ErrEncodingOverflow is returned when a data fragment exceeds the
	// space available for it in a block.
	ErrEncodingOverflow = errors.New("bptree: fragment exceeds block capacity")

	// ErrNodeOverflow is returned when an attempt is made to pack more
	// than the maximum number of entries into a single node block.
	ErrNodeOverflow = errors.New("bptree: too many entries for one node block")

	// ErrMalformedBlock is returned when a block read back from storage
	// has an internally inconsistent count field.
	ErrMalformedBlock = errors.New("bptree: malformed block")
)
