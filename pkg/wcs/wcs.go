// Package wcs builds world-coordinate transforms from FITS header metadata.
// It implements the linear subset of the FITS WCS convention: each native
// axis n is described by CTYPEn (coordinate type), CRPIXn (1-based reference
// pixel), CRVALn (world value at the reference pixel) and CDELTn (world
// increment per pixel). That subset covers the regularly gridded radio data
// cubes this module works with; no distortion or rotation terms are applied.
package wcs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrHeader indicates the header lacks keywords required to build a transform.
	ErrHeader = errors.New("wcs: header lacks required axis keywords")
	// ErrAxes indicates the sky and spectral axes could not be identified.
	ErrAxes = errors.New("wcs: could not identify longitude, latitude and spectral axes")
	// ErrDimension indicates a coordinate vector of the wrong length.
	ErrDimension = errors.New("wcs: coordinate vector length does not match axis count")
	// ErrSingular indicates a zero CDELT axis, which has no pixel-space inverse.
	ErrSingular = errors.New("wcs: zero-increment axis cannot be inverted")
)

// spectralPrefixes are the CTYPE prefixes recognized as a spectral axis.
var spectralPrefixes = []string{"VELO", "VRAD", "VOPT", "FELO", "FREQ", "WAVE", "AWAV"}

// Transform maps between 1-based pixel coordinates in the native FITS axis
// order and physical world coordinates. It is immutable once constructed.
type Transform struct {
	naxis int
	ctype []string
	cunit []string
	crpix []float64
	crval []float64
	cdelt []float64

	lng, lat, spec int
}

// New builds a Transform from a FITS header map, as produced by a FITS
// reading library (string keys, int/float64/string values). Every axis must
// carry a CTYPE; CRPIX and CRVAL default to 0 and CDELT to 1 when absent.
func New(header map[string]interface{}) (*Transform, error) {
	naxis, ok := intKey(header, "NAXIS")
	if !ok || naxis < 1 {
		return nil, fmt.Errorf("%w: NAXIS missing or invalid", ErrHeader)
	}

	t := &Transform{
		naxis: naxis,
		ctype: make([]string, naxis),
		cunit: make([]string, naxis),
		crpix: make([]float64, naxis),
		crval: make([]float64, naxis),
		cdelt: make([]float64, naxis),
		lng:   -1,
		lat:   -1,
		spec:  -1,
	}

	for i := 0; i < naxis; i++ {
		n := i + 1
		ctype, ok := stringKey(header, fmt.Sprintf("CTYPE%d", n))
		if !ok {
			return nil, fmt.Errorf("%w: CTYPE%d missing", ErrHeader, n)
		}
		t.ctype[i] = ctype
		t.cunit[i], _ = stringKey(header, fmt.Sprintf("CUNIT%d", n))
		t.crpix[i], _ = floatKey(header, fmt.Sprintf("CRPIX%d", n))
		t.crval[i], _ = floatKey(header, fmt.Sprintf("CRVAL%d", n))
		t.cdelt[i] = 1
		if d, ok := floatKey(header, fmt.Sprintf("CDELT%d", n)); ok {
			t.cdelt[i] = d
		}

		switch {
		case strings.HasPrefix(ctype, "RA"):
			t.lng = i
		case strings.HasPrefix(ctype, "DEC"):
			t.lat = i
		case isSpectral(ctype):
			t.spec = i
		}
	}

	if t.lng < 0 || t.lat < 0 || t.spec < 0 {
		return nil, fmt.Errorf("%w: CTYPE values %v", ErrAxes, t.ctype)
	}
	return t, nil
}

func isSpectral(ctype string) bool {
	for _, p := range spectralPrefixes {
		if strings.HasPrefix(ctype, p) {
			return true
		}
	}
	return false
}

// NAxes returns the number of native axes.
func (t *Transform) NAxes() int { return t.naxis }

// Lng returns the native index of the longitude (right ascension) axis.
func (t *Transform) Lng() int { return t.lng }

// Lat returns the native index of the latitude (declination) axis.
func (t *Transform) Lat() int { return t.lat }

// Spec returns the native index of the spectral axis.
func (t *Transform) Spec() int { return t.spec }

// CType returns the coordinate type of the given native axis.
func (t *Transform) CType(axis int) string { return t.ctype[axis] }

// Unit returns the trimmed, upper-cased CUNIT of the given native axis,
// or the empty string when the header did not record one.
func (t *Transform) Unit(axis int) string { return t.cunit[axis] }

// PixelToWorld converts a 1-based pixel coordinate vector in the native
// axis order into world coordinates.
func (t *Transform) PixelToWorld(pix []float64) ([]float64, error) {
	if len(pix) != t.naxis {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimension, len(pix), t.naxis)
	}
	world := make([]float64, t.naxis)
	for i := range world {
		world[i] = t.crval[i] + (pix[i]-t.crpix[i])*t.cdelt[i]
	}
	return world, nil
}

// WorldToPixel converts world coordinates into 1-based pixel coordinates in
// the native axis order. It is the exact inverse of PixelToWorld.
func (t *Transform) WorldToPixel(world []float64) ([]float64, error) {
	if len(world) != t.naxis {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimension, len(world), t.naxis)
	}
	pix := make([]float64, t.naxis)
	for i := range pix {
		if t.cdelt[i] == 0 {
			return nil, fmt.Errorf("%w: axis %d", ErrSingular, i+1)
		}
		pix[i] = t.crpix[i] + (world[i]-t.crval[i])/t.cdelt[i]
	}
	return pix, nil
}

// intKey reads an integer header value, accepting int and float64 encodings.
func intKey(header map[string]interface{}, key string) (int, bool) {
	switch v := header[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	}
	return 0, false
}

// floatKey reads a numeric header value, accepting int and float64 encodings.
func floatKey(header map[string]interface{}, key string) (float64, bool) {
	switch v := header[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// stringKey reads a string header value, trimmed and upper-cased.
func stringKey(header map[string]interface{}, key string) (string, bool) {
	v, ok := header[key].(string)
	if !ok {
		return "", false
	}
	return strings.ToUpper(strings.TrimSpace(v)), true
}
