package cube

import "errors"

var (
	// ErrLoad indicates the cube file could not be opened or parsed.
	ErrLoad = errors.New("cube: unable to load cube file")
	// ErrFormat indicates the file was readable but its header lacks the
	// metadata needed for axis normalization or coordinate transforms.
	ErrFormat = errors.New("cube: header missing required cube metadata")
	// ErrIndex indicates a lookup with out-of-range pixel indices.
	ErrIndex = errors.New("cube: pixel index out of range")
)
