// Package sweep runs a batch of independent realizations in parallel,
// typically to average an effective property over random networks.
package sweep

import (
	"context"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Point is one realization: a seed for the network generator plus a
// multiplier applied to a swept parameter.
type Point struct {
	Seed  int64
	Scale float64
}

// Result pairs a point with the scalar it produced.
type Result struct {
	Point
	Value float64
}

// RunFunc evaluates one point. It must be safe to call concurrently.
type RunFunc func(ctx context.Context, pt Point) (float64, error)

// SeedRange builds n points with consecutive seeds and unit scale.
func SeedRange(start int64, n int) []Point {
	pts := make([]Point, n)
	for i := range pts {
		pts[i] = Point{Seed: start + int64(i), Scale: 1.0}
	}
	return pts
}

// ScaleRange builds points sweeping the scale from lo to hi in n steps,
// all with the same seed.
func ScaleRange(seed int64, lo, hi float64, n int) []Point {
	pts := make([]Point, n)
	for i := range pts {
		frac := 0.0
		if n > 1 {
			frac = float64(i) / float64(n-1)
		}
		pts[i] = Point{Seed: seed, Scale: lo + frac*(hi-lo)}
	}
	return pts
}

// Run evaluates every point with at most workers in flight (<=0 means
// one per CPU). The first error cancels the rest.
func Run(ctx context.Context, points []Point, workers int, fn RunFunc) ([]Result, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	results := make([]Result, len(points))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, pt := range points {
		i, pt := i, pt
		g.Go(func() error {
			v, err := fn(ctx, pt)
			if err != nil {
				return err
			}
			results[i] = Result{Point: pt, Value: v}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Stats returns the mean and sample standard deviation of the values.
func Stats(results []Result) (mean, std float64) {
	n := float64(len(results))
	if n == 0 {
		return 0, 0
	}
	for _, r := range results {
		mean += r.Value
	}
	mean /= n
	if n < 2 {
		return mean, 0
	}
	for _, r := range results {
		d := r.Value - mean
		std += d * d
	}
	return mean, math.Sqrt(std / (n - 1))
}
