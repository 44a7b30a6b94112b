package cube

import (
	"fmt"
	"math"
	"os"

	"github.com/siravan/fits"
)

// Raw holds a cube as stored on disk: sample dimensions in the native FITS
// axis order plus the unmodified header map. It is what a Source hands to
// the Store before axis normalization.
type Raw struct {
	// Naxis lists the axis lengths in native order (NAXIS1, NAXIS2, ...).
	Naxis []int

	// Header maps metadata keys to their parsed values.
	Header map[string]interface{}

	// At returns the sample at the given native-order pixel indices, with
	// the format's no-data sentinel already mapped to NaN.
	At func(a ...int) float64
}

// Source abstracts the file-reading library behind a narrow interface so the
// core has no dependency on any particular FITS object model.
type Source interface {
	// Read parses the file at path and returns its first image unit.
	Read(path string) (*Raw, error)
}

// fitsSource reads cubes with the siravan/fits package.
type fitsSource struct{}

// NewFITSSource returns the default FITS-backed Source.
func NewFITSSource() Source { return fitsSource{} }

func (fitsSource) Read(path string) (*Raw, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	units, err := fits.Open(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	for _, unit := range units {
		if !unit.HasImage() {
			continue
		}
		u := unit
		return &Raw{
			Naxis:  u.Naxis,
			Header: u.Keys,
			At: func(a ...int) float64 {
				if u.Blank(a...) {
					return math.NaN()
				}
				return u.FloatAt(a...)
			},
		}, nil
	}
	return nil, fmt.Errorf("%s contains no image data", path)
}
