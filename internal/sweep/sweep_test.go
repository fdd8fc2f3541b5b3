package sweep

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
)

func TestSeedRange(t *testing.T) {
	pts := SeedRange(40, 3)
	if len(pts) != 3 {
		t.Fatalf("expected 3 points, got %d", len(pts))
	}
	for i, pt := range pts {
		if pt.Seed != int64(40+i) {
			t.Errorf("point %d: expected seed %d, got %d", i, 40+i, pt.Seed)
		}
		if pt.Scale != 1.0 {
			t.Errorf("point %d: expected unit scale, got %g", i, pt.Scale)
		}
	}
}

func TestScaleRange(t *testing.T) {
	pts := ScaleRange(7, 0.5, 2.0, 4)
	want := []float64{0.5, 1.0, 1.5, 2.0}
	for i, pt := range pts {
		if pt.Seed != 7 {
			t.Errorf("point %d: expected seed 7, got %d", i, pt.Seed)
		}
		if math.Abs(pt.Scale-want[i]) > 1e-12 {
			t.Errorf("point %d: expected scale %g, got %g", i, want[i], pt.Scale)
		}
	}

	single := ScaleRange(7, 0.5, 2.0, 1)
	if len(single) != 1 || single[0].Scale != 0.5 {
		t.Errorf("single-point sweep should sit at lo, got %+v", single)
	}
}

func TestRunKeepsOrder(t *testing.T) {
	pts := SeedRange(0, 8)
	results, err := Run(context.Background(), pts, 4, func(ctx context.Context, pt Point) (float64, error) {
		return float64(pt.Seed) * 2, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 8 {
		t.Fatalf("expected 8 results, got %d", len(results))
	}
	for i, r := range results {
		if r.Seed != int64(i) || r.Value != float64(i)*2 {
			t.Errorf("result %d out of order: %+v", i, r)
		}
	}
}

func TestRunLimitsWorkers(t *testing.T) {
	var inFlight, peak int32
	var mu sync.Mutex

	_, err := Run(context.Background(), SeedRange(0, 16), 2, func(ctx context.Context, pt Point) (float64, error) {
		n := atomic.AddInt32(&inFlight, 1)
		mu.Lock()
		if n > peak {
			peak = n
		}
		mu.Unlock()
		defer atomic.AddInt32(&inFlight, -1)
		return 0, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if peak > 2 {
		t.Errorf("expected at most 2 workers in flight, saw %d", peak)
	}
}

func TestRunPropagatesError(t *testing.T) {
	boom := errors.New("bad realization")
	var calls int32

	_, err := Run(context.Background(), SeedRange(0, 8), 1, func(ctx context.Context, pt Point) (float64, error) {
		atomic.AddInt32(&calls, 1)
		if pt.Seed == 2 {
			return 0, boom
		}
		return 1, nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected the realization error, got %v", err)
	}
}

func TestRunHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, SeedRange(0, 4), 1, func(ctx context.Context, pt Point) (float64, error) {
		return 0, ctx.Err()
	})
	if err == nil {
		t.Error("expected an error after cancellation")
	}
}

func TestStats(t *testing.T) {
	results := []Result{{Value: 2}, {Value: 4}, {Value: 6}}
	mean, std := Stats(results)
	if mean != 4 {
		t.Errorf("expected mean 4, got %g", mean)
	}
	if math.Abs(std-2) > 1e-12 {
		t.Errorf("expected sample std 2, got %g", std)
	}

	mean, std = Stats(nil)
	if mean != 0 || std != 0 {
		t.Errorf("empty stats should be zero, got %g/%g", mean, std)
	}

	mean, std = Stats([]Result{{Value: 5}})
	if mean != 5 || std != 0 {
		t.Errorf("single-sample std should be zero, got %g/%g", mean, std)
	}
}
