package cube

import (
	"fmt"
	"strings"
)

// spectralPrefixes are the CTYPE prefixes recognized as a spectral axis.
var spectralPrefixes = []string{"VELO", "VRAD", "VOPT", "FELO", "FREQ", "WAVE", "AWAV"}

// CubeData is a loaded cube with its axes in the canonical
// (x = right ascension, y = declination, z = spectral) order. It is
// immutable after Load returns it.
type CubeData struct {
	// Data holds the samples as a flat array with the spectral axis
	// contiguous: sample (x, y, z) lives at index (x*Ny+y)*Nz + z.
	// No-data samples are NaN.
	Data []float64

	// Nx, Ny, Nz are the canonical axis lengths.
	Nx, Ny, Nz int

	// Header carries the source file metadata through unmodified.
	Header map[string]interface{}

	// AxisLng, AxisLat and AxisSpec record which native (on-disk) axis
	// maps to x, y and z respectively.
	AxisLng, AxisLat, AxisSpec int
}

// Store loads cube files through a Source and normalizes their axis order.
// It keeps no state between loads; caching, if any, belongs to the caller.
type Store struct {
	src Source
}

// NewStore returns a Store backed by the default FITS source.
func NewStore() *Store { return &Store{src: NewFITSSource()} }

// NewStoreWithSource returns a Store backed by the given source. This is the
// seam used to load cubes from fabricated data in tests.
func NewStoreWithSource(src Source) *Store { return &Store{src: src} }

// Load reads the cube at path and permutes its axes into canonical order.
// The permutation is decided from the header's CTYPE keywords; the sample
// values themselves pass through untouched.
func (s *Store) Load(path string) (*CubeData, error) {
	raw, err := s.src.Read(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}

	if len(raw.Naxis) != 3 {
		return nil, fmt.Errorf("%w: expected a 3-axis cube, found %d axes", ErrFormat, len(raw.Naxis))
	}

	lng, lat, spec, err := classifyAxes(raw.Header)
	if err != nil {
		return nil, err
	}

	nx, ny, nz := raw.Naxis[lng], raw.Naxis[lat], raw.Naxis[spec]
	data := make([]float64, nx*ny*nz)
	pix := make([]int, 3)
	for x := 0; x < nx; x++ {
		for y := 0; y < ny; y++ {
			base := (x*ny + y) * nz
			for z := 0; z < nz; z++ {
				pix[lng], pix[lat], pix[spec] = x, y, z
				data[base+z] = raw.At(pix...)
			}
		}
	}

	return &CubeData{
		Data:     data,
		Nx:       nx,
		Ny:       ny,
		Nz:       nz,
		Header:   raw.Header,
		AxisLng:  lng,
		AxisLat:  lat,
		AxisSpec: spec,
	}, nil
}

// classifyAxes identifies the right ascension, declination and spectral axes
// of a 3-axis cube from its CTYPE keywords.
func classifyAxes(header map[string]interface{}) (lng, lat, spec int, err error) {
	lng, lat, spec = -1, -1, -1
	types := make([]string, 3)
	for i := 0; i < 3; i++ {
		key := fmt.Sprintf("CTYPE%d", i+1)
		raw, ok := header[key].(string)
		if !ok {
			return 0, 0, 0, fmt.Errorf("%w: %s missing", ErrFormat, key)
		}
		ct := strings.ToUpper(strings.TrimSpace(raw))
		types[i] = ct
		switch {
		case strings.HasPrefix(ct, "RA"):
			lng = i
		case strings.HasPrefix(ct, "DEC"):
			lat = i
		case isSpectralType(ct):
			spec = i
		}
	}
	if lng < 0 || lat < 0 || spec < 0 {
		return 0, 0, 0, fmt.Errorf("%w: cannot identify RA, Dec and spectral axes from CTYPE values %v", ErrFormat, types)
	}
	return lng, lat, spec, nil
}

func isSpectralType(ctype string) bool {
	for _, p := range spectralPrefixes {
		if strings.HasPrefix(ctype, p) {
			return true
		}
	}
	return false
}

// Shape returns the canonical axis lengths (nx, ny, nz).
func (c *CubeData) Shape() (nx, ny, nz int) {
	return c.Nx, c.Ny, c.Nz
}

// At returns the sample at canonical indices (x, y, z). Out-of-range indices
// are a programmer error and panic.
func (c *CubeData) At(x, y, z int) float64 {
	if x < 0 || x >= c.Nx || y < 0 || y >= c.Ny || z < 0 || z >= c.Nz {
		panic(fmt.Sprintf("cube: sample index (%d,%d,%d) outside %dx%dx%d", x, y, z, c.Nx, c.Ny, c.Nz))
	}
	return c.Data[(x*c.Ny+y)*c.Nz+z]
}

// Spectrum returns the spectral slice at spatial position (x, y) as a view
// into the cube data. Callers must treat the returned slice as read-only.
func (c *CubeData) Spectrum(x, y int) []float64 {
	if x < 0 || x >= c.Nx || y < 0 || y >= c.Ny {
		panic(fmt.Sprintf("cube: spatial index (%d,%d) outside %dx%d", x, y, c.Nx, c.Ny))
	}
	base := (x*c.Ny + y) * c.Nz
	return c.Data[base : base+c.Nz : base+c.Nz]
}
