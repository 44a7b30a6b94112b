package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"astrocube/pkg/config"
	"astrocube/pkg/cube"
	"astrocube/pkg/stats"
)

func main() {
	// Parse command line arguments
	fitsFile := flag.String("file", "", "Path to a 3-axis FITS data cube")
	configPath := flag.String("config", "astrocube.yaml", "Path to the YAML configuration file")
	point := flag.String("point", "", "Cube index \"x,y,z\" to report sky coordinates for")
	noiseOut := flag.String("noise-out", "", "Write the noise-deviation map to this CSV file")
	iterations := flag.Int("iterations", 0, "Noise estimation MAD passes (overrides config)")
	threshold := flag.Float64("threshold", 0, "Sigma-clipping threshold (overrides config)")
	workers := flag.Int("cores", 0, "Number of CPU cores to use (overrides config)")
	flag.Parse()

	// Validate inputs
	if *fitsFile == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *iterations > 0 {
		cfg.Noise.Iterations = *iterations
	}
	if *threshold > 0 {
		cfg.Noise.SignalThreshold = *threshold
	}
	if *workers > 0 {
		cfg.Noise.Workers = *workers
	}
	if *noiseOut != "" {
		cfg.Output.NoiseMapFile = *noiseOut
	}

	if cfg.Output.Verbose {
		fmt.Println("================================")
		fmt.Println("ASTROCUBE: RADIO ASTRONOMY DATA CUBE UTILITIES")
		fmt.Println("================================")
	}

	// Load the cube and normalize its axes
	fmt.Printf("Loading data cube from: %s\n", *fitsFile)
	startTime := time.Now()
	c, err := cube.New(*fitsFile)
	if err != nil {
		log.Fatalf("Failed to load cube: %v", err)
	}
	fmt.Printf("Cube loaded in %.2f seconds\n", time.Since(startTime).Seconds())

	// Report sky coordinates for a requested pixel
	if *point != "" {
		x, y, z, err := parsePoint(*point)
		if err != nil {
			log.Fatalf("Invalid -point argument: %v", err)
		}
		opt := cube.CoordFormat{
			RA:       cfg.Coords.RAFormat,
			Dec:      cfg.Coords.DecFormat,
			Decimals: cfg.Coords.Decimals,
		}
		ra, dec, vel, err := c.PointCoordsStr(x, y, z, opt)
		if err != nil {
			log.Fatalf("Coordinate lookup failed: %v", err)
		}
		fmt.Printf("Pixel (%d, %d, %d): RA %s, Dec %s, velocity %s\n", x, y, z, ra, dec, vel)
	}

	// Estimate the spatial noise distribution
	fmt.Println("Estimating noise deviation per spatial position...")
	startTime = time.Now()
	noise := c.ComputeNoiseDev(cube.NoiseOptions{
		Iterations:      cfg.Noise.Iterations,
		SignalThreshold: cfg.Noise.SignalThreshold,
		Workers:         cfg.Noise.Workers,
	})
	noiseTime := time.Since(startTime)

	fmt.Println(c.String())
	if cfg.Output.Verbose {
		nx, ny, _ := c.Shape()
		fmt.Printf("Noise estimation over %d positions took %.2f seconds on %d cores\n",
			nx*ny, noiseTime.Seconds(), cfg.Noise.Workers)
		min, max := stats.Range(noise)
		fmt.Printf("Noise deviation range: %g to %g\n", min, max)
	}

	// Export the noise map if requested
	if cfg.Output.NoiseMapFile != "" {
		fmt.Printf("Writing noise map to: %s\n", cfg.Output.NoiseMapFile)
		if err := writeNoiseMap(cfg.Output.NoiseMapFile, c, noise); err != nil {
			log.Fatalf("Failed to write noise map: %v", err)
		}
	}
}

// parsePoint splits a "x,y,z" argument into cube indices.
func parsePoint(s string) (x, y, z int, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("expected \"x,y,z\", got %q", s)
	}
	idx := make([]int, 3)
	for i, p := range parts {
		idx[i], err = strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return 0, 0, 0, fmt.Errorf("index %q is not an integer", p)
		}
	}
	return idx[0], idx[1], idx[2], nil
}

// writeNoiseMap saves the noise-deviation map as CSV, one row per x position
// with ny columns. No-data positions are written as "nan".
func writeNoiseMap(path string, c *cube.DataCube, noise []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	nx, ny, _ := c.Shape()
	record := make([]string, ny)
	for x := 0; x < nx; x++ {
		for y := 0; y < ny; y++ {
			v := noise[x*ny+y]
			if math.IsNaN(v) {
				record[y] = "nan"
			} else {
				record[y] = strconv.FormatFloat(v, 'g', -1, 64)
			}
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return w.Error()
}
