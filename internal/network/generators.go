package network

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"

	"github.com/porelab/porenet/internal/topology"
)

// Cubic generates a simple cubic lattice with 6-connectivity. Pores sit at
// cell centres, so a [Nx, Ny, Nz] network with spacing s spans a physical
// domain of [Nx*s, Ny*s, Nz*s]. Face labels (left/right along x,
// front/back along y, bottom/top along z) plus surface and internal labels
// are applied. 2D networks use a shape entry of 1.
func Cubic(shape [3]int, spacing float64) (*Network, error) {
	nx, ny, nz := shape[0], shape[1], shape[2]
	if nx < 1 || ny < 1 || nz < 1 {
		return nil, errors.Errorf("network: invalid cubic shape %v", shape)
	}
	if spacing <= 0 {
		return nil, errors.Errorf("network: spacing must be positive, got %g", spacing)
	}
	np := nx * ny * nz
	coords := make([][3]float64, np)
	idx := func(ix, iy, iz int) int { return ix*ny*nz + iy*nz + iz }
	for ix := 0; ix < nx; ix++ {
		for iy := 0; iy < ny; iy++ {
			for iz := 0; iz < nz; iz++ {
				coords[idx(ix, iy, iz)] = [3]float64{
					(float64(ix) + 0.5) * spacing,
					(float64(iy) + 0.5) * spacing,
					(float64(iz) + 0.5) * spacing,
				}
			}
		}
	}

	conns := make([][2]int, 0, 3*np)
	for ix := 0; ix < nx; ix++ {
		for iy := 0; iy < ny; iy++ {
			for iz := 0; iz < nz; iz++ {
				p := idx(ix, iy, iz)
				if ix+1 < nx {
					conns = append(conns, [2]int{p, idx(ix+1, iy, iz)})
				}
				if iy+1 < ny {
					conns = append(conns, [2]int{p, idx(ix, iy+1, iz)})
				}
				if iz+1 < nz {
					conns = append(conns, [2]int{p, idx(ix, iy, iz+1)})
				}
			}
		}
	}

	net, err := New(coords, conns)
	if err != nil {
		return nil, err
	}

	faces := []struct {
		name string
		axis int
		n    int
		last bool
	}{
		{"pore.left", 0, nx, false},
		{"pore.right", 0, nx, true},
		{"pore.front", 1, ny, false},
		{"pore.back", 1, ny, true},
		{"pore.bottom", 2, nz, false},
		{"pore.top", 2, nz, true},
	}
	for _, f := range faces {
		if f.n < 2 {
			continue
		}
		var locs []int
		for p, c := range coords {
			pos := c[f.axis]/spacing - 0.5
			if (!f.last && pos < 0.5) || (f.last && pos > float64(f.n)-1.5) {
				locs = append(locs, p)
			}
		}
		if err := net.SetLabel(f.name, locs); err != nil {
			return nil, err
		}
	}
	if err := labelSurface(net); err != nil {
		return nil, err
	}
	return net, nil
}

// Random generates a network from seeded random points inside a box-shaped
// domain, connecting every pair of points closer than rmax. Clusters not
// attached to the largest one are trimmed, mirroring the trim step of
// tessellation-based generators. Axes with zero extent produce 2D or 1D
// networks.
func Random(n int, shape [3]float64, rmax float64, seed int64) (*Network, error) {
	if n < 2 {
		return nil, errors.Errorf("network: need at least 2 points, got %d", n)
	}
	if rmax <= 0 {
		return nil, errors.Errorf("network: rmax must be positive, got %g", rmax)
	}
	rng := rand.New(rand.NewSource(seed))
	coords := make([][3]float64, n)
	for i := range coords {
		for d := 0; d < 3; d++ {
			if shape[d] > 0 {
				coords[i][d] = rng.Float64() * shape[d]
			}
		}
	}

	var conns [][2]int
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			dx := coords[i][0] - coords[j][0]
			dy := coords[i][1] - coords[j][1]
			dz := coords[i][2] - coords[j][2]
			if math.Sqrt(dx*dx+dy*dy+dz*dz) <= rmax {
				conns = append(conns, [2]int{i, j})
			}
		}
	}

	net, err := New(coords, conns)
	if err != nil {
		return nil, err
	}
	if iso := topology.FindIsolatedPores(net.Np(), net.Conns()); len(iso) > 0 {
		if err := net.Trim(iso); err != nil {
			return nil, err
		}
	}
	if err := labelSurface(net); err != nil {
		return nil, err
	}
	return net, nil
}

func labelSurface(net *Network) error {
	surf := topology.SurfaceNodes(net.Coords())
	var onSurf, inside []int
	for p, hit := range surf {
		if hit {
			onSurf = append(onSurf, p)
		} else {
			inside = append(inside, p)
		}
	}
	if err := net.SetLabel("pore.surface", onSurf); err != nil {
		return err
	}
	return net.SetLabel("pore.internal", inside)
}
