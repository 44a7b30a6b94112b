// Package cube represents a radio astronomy data cube. It standardizes the
// array indices so the first sample is (0,0,0) and the index order (x,y,z)
// always maps to (RA, Dec, spectral) regardless of the on-disk axis order,
// performs per-pixel sky-coordinate lookups through a world-coordinate
// transform built from the file header, and estimates the spatial
// distribution of background noise across the cube.
package cube

import (
	"fmt"
	"sync"

	"astrocube/pkg/stats"
	"astrocube/pkg/wcs"
)

// Transform is the coordinate service the cube consumes. It speaks 1-based
// pixel coordinates in the file's native axis order; translating canonical
// cube indices into that convention is the DataCube's job, not the
// transform's.
type Transform interface {
	PixelToWorld(pix []float64) ([]float64, error)
	WorldToPixel(world []float64) ([]float64, error)
}

// DataCube is the public cube entity: normalized data, coordinate lookups
// and the noise-deviation map. It is read-only for its entire lifetime.
type DataCube struct {
	data     *CubeData
	trans    Transform
	specUnit string

	// ObjectName and LineName are the OBJECT and LINENAME header values,
	// empty when the file does not record them.
	ObjectName string
	LineName   string

	noiseOnce sync.Once
	noiseXY   []float64
}

// New loads the cube at path with the default FITS store and builds its
// coordinate transform from the header. Construction fails entirely when
// either step fails; no partially constructed cube is ever returned.
func New(path string) (*DataCube, error) {
	return NewFromStore(NewStore(), path)
}

// NewFromStore is New with an explicit store, used to load cubes through a
// non-default Source.
func NewFromStore(store *Store, path string) (*DataCube, error) {
	data, err := store.Load(path)
	if err != nil {
		return nil, err
	}

	trans, err := wcs.New(data.Header)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}

	c := &DataCube{
		data:     data,
		trans:    trans,
		specUnit: trans.Unit(data.AxisSpec),
	}
	if s, ok := data.Header["OBJECT"].(string); ok {
		c.ObjectName = s
	}
	if s, ok := data.Header["LINENAME"].(string); ok {
		c.LineName = s
	}
	return c, nil
}

// Data returns the normalized cube data.
func (c *DataCube) Data() *CubeData { return c.data }

// Shape returns the canonical axis lengths (nx, ny, nz).
func (c *DataCube) Shape() (nx, ny, nz int) { return c.data.Shape() }

// PointCoords returns the sky and spectral coordinates of the sample at
// canonical indices (x, y, z): right ascension and declination in degrees
// and the spectral value in km/s for velocity cubes. Out-of-range indices
// return an error wrapping ErrIndex.
func (c *DataCube) PointCoords(x, y, z int) (ra, dec, vel float64, err error) {
	if err := c.checkIndex(x, y, z); err != nil {
		return 0, 0, 0, err
	}

	// The transform expects 1-based pixels in the native axis order.
	pix := make([]float64, 3)
	pix[c.data.AxisLng] = float64(x + 1)
	pix[c.data.AxisLat] = float64(y + 1)
	pix[c.data.AxisSpec] = float64(z + 1)

	world, err := c.trans.PixelToWorld(pix)
	if err != nil {
		return 0, 0, 0, err
	}
	return world[c.data.AxisLng], world[c.data.AxisLat], c.spectralValue(world[c.data.AxisSpec]), nil
}

// VelocityAt returns the spectral coordinate of channel z in km/s.
func (c *DataCube) VelocityAt(z int) (float64, error) {
	_, _, vel, err := c.PointCoords(0, 0, z)
	return vel, err
}

// spectralValue normalizes a spectral world value to km/s. Radio cubes
// record velocities in m/s unless the header says otherwise.
func (c *DataCube) spectralValue(v float64) float64 {
	switch c.specUnit {
	case "", "M/S":
		return v / 1000
	default:
		return v
	}
}

func (c *DataCube) checkIndex(x, y, z int) error {
	if x < 0 || x >= c.data.Nx || y < 0 || y >= c.data.Ny || z < 0 || z >= c.data.Nz {
		return fmt.Errorf("%w: (%d,%d,%d) outside %dx%dx%d", ErrIndex,
			x, y, z, c.data.Nx, c.data.Ny, c.data.Nz)
	}
	return nil
}

// String summarizes the cube: object and line names, shape, intensity range
// and, once computed, the mean noise deviation.
func (c *DataCube) String() string {
	object := c.ObjectName
	if object == "" {
		object = "unknown object"
	}
	line := c.LineName
	if line == "" {
		line = "unknown line"
	}
	min, max := stats.Range(c.data.Data)
	sigma := "not computed"
	if c.noiseXY != nil {
		sigma = fmt.Sprintf("%g", stats.Mean(c.noiseXY))
	}
	return fmt.Sprintf("DataCube %s spectral line map of %s. "+
		"Data shape is (%d, %d, %d) with intensity on the range %g to %g. "+
		"Mean noise deviation is %s.",
		line, object, c.data.Nx, c.data.Ny, c.data.Nz, min, max, sigma)
}
