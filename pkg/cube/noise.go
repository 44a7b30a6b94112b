package cube

import (
	"fmt"
	"math"
	"runtime"
	"sync"

	"astrocube/pkg/stats"
)

// NoiseOptions controls the iterative per-position noise estimate.
type NoiseOptions struct {
	// Iterations is the number of MAD passes over each spectrum. Passes
	// after the first clip samples brighter than SignalThreshold times
	// the current estimate before recomputing it, so that real signal
	// does not inflate the noise estimate.
	Iterations int

	// SignalThreshold is the clip level in units of the estimated sigma.
	SignalThreshold float64

	// Workers is how many goroutines share the spatial positions.
	Workers int
}

// DefaultNoiseOptions returns the parameters used for typical cubes:
// three MAD passes clipping at four sigma, one worker per CPU.
func DefaultNoiseOptions() NoiseOptions {
	return NoiseOptions{
		Iterations:      3,
		SignalThreshold: 4,
		Workers:         runtime.NumCPU(),
	}
}

// NoiseDevXY returns the noise-deviation estimate for every spatial
// position as a flat (nx, ny) map: position (x, y) lives at index x*ny+y.
// The map is computed on first access with DefaultNoiseOptions and cached
// for the cube's lifetime; repeated access returns the identical array.
// Positions whose spectrum holds no finite samples are NaN, all others are
// >= 0.
func (c *DataCube) NoiseDevXY() []float64 {
	c.noiseOnce.Do(func() {
		c.noiseXY = c.computeNoiseDev(DefaultNoiseOptions())
	})
	return c.noiseXY
}

// NoiseDevAt returns the noise-deviation estimate at spatial position
// (x, y), computing the map first if needed.
func (c *DataCube) NoiseDevAt(x, y int) (float64, error) {
	if x < 0 || x >= c.data.Nx || y < 0 || y >= c.data.Ny {
		return 0, fmt.Errorf("%w: (%d,%d) outside %dx%d", ErrIndex, x, y, c.data.Nx, c.data.Ny)
	}
	return c.NoiseDevXY()[x*c.data.Ny+y], nil
}

// ComputeNoiseDev recomputes the noise map with explicit parameters and
// replaces the cached map. Use it to override the defaults; plain reads
// should go through NoiseDevXY.
func (c *DataCube) ComputeNoiseDev(opt NoiseOptions) []float64 {
	m := c.computeNoiseDev(opt)
	c.noiseOnce.Do(func() {})
	c.noiseXY = m
	return m
}

func (c *DataCube) computeNoiseDev(opt NoiseOptions) []float64 {
	if opt.Iterations < 1 {
		opt.Iterations = 1
	}
	if opt.SignalThreshold <= 0 {
		opt.SignalThreshold = DefaultNoiseOptions().SignalThreshold
	}
	nx, ny, nz := c.data.Shape()
	workers := opt.Workers
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	if workers > nx {
		workers = nx
	}

	out := make([]float64, nx*ny)

	// Each position only reads its own spectral slice, so the work fans
	// out over disjoint x ranges with no synchronization beyond the join.
	var wg sync.WaitGroup
	colsPerWorker := (nx + workers - 1) / workers
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()

			start := id * colsPerWorker
			end := start + colsPerWorker
			if end > nx {
				end = nx
			}

			work := make([]float64, nz)
			for x := start; x < end; x++ {
				for y := 0; y < ny; y++ {
					copy(work, c.data.Spectrum(x, y))
					out[x*ny+y] = noiseDev(work, opt)
				}
			}
		}(w)
	}
	wg.Wait()

	return out
}

// noiseDev estimates the noise sigma of a single spectrum. spec is scratch
// space owned by the caller and is clipped in place across iterations.
func noiseDev(spec []float64, opt NoiseOptions) float64 {
	sigma := stats.MAD(spec)
	for i := 1; i < opt.Iterations; i++ {
		if math.IsNaN(sigma) || sigma == 0 {
			break
		}
		clip := opt.SignalThreshold * sigma

		// Clipping must never empty the spectrum: a position with finite
		// samples keeps a finite estimate.
		kept := 0
		for _, v := range spec {
			if !math.IsNaN(v) && v <= clip {
				kept++
			}
		}
		if kept == 0 {
			break
		}

		for j, v := range spec {
			if v > clip {
				spec[j] = math.NaN()
			}
		}
		sigma = stats.MAD(spec)
	}
	return sigma
}
