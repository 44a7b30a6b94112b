package cube

import (
	"errors"
	"math"
	"testing"

	"astrocube/pkg/stats"
)

// spikeCube is the 3x3x4 robustness fixture: every position holds the pure
// noise spectrum {0.1, 0.1, 0.2, 0.1} except (1,1), where the second channel
// carries a bright signal spike.
func spikeCube(t *testing.T) *DataCube {
	t.Helper()
	raw := rawFromFunc(3, 3, 4, func(x, y, z int) float64 {
		if x == 1 && y == 1 && z == 1 {
			return 5.0
		}
		if z == 2 {
			return 0.2
		}
		return 0.1
	})
	return newTestCube(t, raw)
}

func TestNoiseDevShape(t *testing.T) {
	c := newTestCube(t, rawCube([3]byte{'x', 'y', 'z'}, 3, 4, 5))

	if m := c.NoiseDevXY(); len(m) != 3*4 {
		t.Fatalf("len(NoiseDevXY()) = %d; want %d", len(m), 3*4)
	}
}

// TestNoiseDevRobustToSpike checks the core robustness property: a single
// bright channel must not inflate the estimate over its pure-noise neighbors.
func TestNoiseDevRobustToSpike(t *testing.T) {
	c := spikeCube(t)
	m := c.NoiseDevXY()

	spiked := m[1*3+1]
	clean := m[0*3+0]
	if math.IsNaN(spiked) || math.IsNaN(clean) {
		t.Fatalf("unexpected NaN: spiked=%v clean=%v", spiked, clean)
	}
	if diff := math.Abs(spiked - clean); diff > 0.01 {
		t.Errorf("estimate at spiked position differs from clean neighbor by %v; want <= 0.01", diff)
	}

	// A plain standard deviation over the spiked spectrum would be ~2.1;
	// the robust estimate has to stay far below that.
	if spiked > 0.5 {
		t.Errorf("noise estimate at spiked position = %v; not robust to the spike", spiked)
	}
}

func TestNoiseDevNonNegative(t *testing.T) {
	c := spikeCube(t)
	for i, v := range c.NoiseDevXY() {
		if !math.IsNaN(v) && v < 0 {
			t.Errorf("NoiseDevXY()[%d] = %v; want >= 0", i, v)
		}
	}
}

// TestNoiseDevCached verifies the compute-once contract: repeated access
// returns the identical array, not a recomputation.
func TestNoiseDevCached(t *testing.T) {
	c := spikeCube(t)

	first := c.NoiseDevXY()
	second := c.NoiseDevXY()
	if &first[0] != &second[0] {
		t.Error("NoiseDevXY() returned a different array on second access")
	}
	for i := range first {
		same := first[i] == second[i] || (math.IsNaN(first[i]) && math.IsNaN(second[i]))
		if !same {
			t.Fatalf("NoiseDevXY()[%d] changed between accesses: %v vs %v", i, first[i], second[i])
		}
	}
}

// TestNoiseDevNaNPropagation checks that a position is NaN exactly when its
// whole spectrum is the no-data sentinel.
func TestNoiseDevNaNPropagation(t *testing.T) {
	raw := rawFromFunc(2, 2, 4, func(x, y, z int) float64 {
		if x == 1 && y == 0 {
			return math.NaN()
		}
		return 0.1 * float64(z+1)
	})
	c := newTestCube(t, raw)

	m := c.NoiseDevXY()
	for x := 0; x < 2; x++ {
		for y := 0; y < 2; y++ {
			v := m[x*2+y]
			if x == 1 && y == 0 {
				if !math.IsNaN(v) {
					t.Errorf("NoiseDevXY()[%d,%d] = %v; want NaN for an all-blank spectrum", x, y, v)
				}
			} else if math.IsNaN(v) || v < 0 {
				t.Errorf("NoiseDevXY()[%d,%d] = %v; want a finite value >= 0", x, y, v)
			}
		}
	}
}

// TestNoiseDevPartialBlanks: a spectrum that still has finite samples gets a
// finite estimate even when some channels are blank.
func TestNoiseDevPartialBlanks(t *testing.T) {
	raw := rawFromFunc(1, 1, 6, func(x, y, z int) float64 {
		if z%2 == 0 {
			return math.NaN()
		}
		return float64(z)
	})
	c := newTestCube(t, raw)

	if v := c.NoiseDevXY()[0]; math.IsNaN(v) || v < 0 {
		t.Errorf("NoiseDevXY()[0] = %v; want a finite value >= 0", v)
	}
}

func TestComputeNoiseDevSingleIteration(t *testing.T) {
	c := spikeCube(t)

	m := c.ComputeNoiseDev(NoiseOptions{Iterations: 1, SignalThreshold: 4, Workers: 1})

	// One pass is the plain MAD of the spectrum.
	want := stats.MAD([]float64{0.1, 5.0, 0.2, 0.1})
	if got := m[1*3+1]; math.Abs(got-want) > 1e-12 {
		t.Errorf("single-pass estimate at (1,1) = %v; want %v", got, want)
	}
}

func TestComputeNoiseDevReplacesCache(t *testing.T) {
	c := spikeCube(t)

	def := c.NoiseDevXY()[1*3+1]
	single := c.ComputeNoiseDev(NoiseOptions{Iterations: 1, SignalThreshold: 4, Workers: 1})[1*3+1]
	if def == single {
		t.Fatalf("expected different estimates for different parameters, both %v", def)
	}
	if got := c.NoiseDevXY()[1*3+1]; got != single {
		t.Errorf("NoiseDevXY() after ComputeNoiseDev = %v; want %v", got, single)
	}
}

// TestNoiseDevWorkerCountInvariant: the estimate is a pure function of the
// data, so the worker split must not change a single bit of the output.
func TestNoiseDevWorkerCountInvariant(t *testing.T) {
	raw := rawFromFunc(7, 5, 16, func(x, y, z int) float64 {
		return math.Sin(float64(x*31+y*17+z)) * 0.01
	})
	c := newTestCube(t, raw)

	serial := c.ComputeNoiseDev(NoiseOptions{Iterations: 3, SignalThreshold: 4, Workers: 1})
	for _, workers := range []int{2, 4, 16} {
		parallel := c.ComputeNoiseDev(NoiseOptions{Iterations: 3, SignalThreshold: 4, Workers: workers})
		for i := range serial {
			if serial[i] != parallel[i] {
				t.Fatalf("workers=%d: map[%d] = %v; serial computed %v", workers, i, parallel[i], serial[i])
			}
		}
	}
}

func TestNoiseDevAt(t *testing.T) {
	c := spikeCube(t)

	v, err := c.NoiseDevAt(1, 1)
	if err != nil {
		t.Fatalf("NoiseDevAt(1,1) failed: %v", err)
	}
	if want := c.NoiseDevXY()[1*3+1]; v != want {
		t.Errorf("NoiseDevAt(1,1) = %v; want %v", v, want)
	}

	if _, err := c.NoiseDevAt(3, 0); !errors.Is(err, ErrIndex) {
		t.Errorf("NoiseDevAt(3,0) error = %v; want ErrIndex", err)
	}
}
