package topology

import (
	"math"
	"sort"

	"github.com/pkg/errors"
)

// Dimensionality reports, per axis, whether the coordinates span more than
// a single value. A 2D lattice in the xy plane returns [true, true, false].
func Dimensionality(coords [][3]float64) [3]bool {
	var dims [3]bool
	if len(coords) == 0 {
		return dims
	}
	const eps = 1e-12
	for d := 0; d < 3; d++ {
		first := coords[0][d]
		for _, c := range coords {
			if math.Abs(c[d]-first) > eps*math.Max(1, math.Abs(first)) {
				dims[d] = true
				break
			}
		}
	}
	return dims
}

// IsOutside flags nodes lying beyond the domain shape. The shape argument
// follows the generator convention:
//
//	[x, y, z]  cubic domain with origin at [0, 0, 0]
//	[x, y, 0]  2D square domain
//	[r, 0, 0]  sphere of radius r centred on the origin (y and z zero)
//
// Cylinders ([r, z]) collapse onto the same 3-element form with y == 0 and
// z > 0. Tolerance is applied as a fraction of the domain size per axis.
func IsOutside(coords [][3]float64, shape [3]float64, tol float64) []bool {
	out := make([]bool, len(coords))
	switch {
	case shape[1] == 0 && shape[2] == 0:
		// Spherical
		r := shape[0] * (1 + tol)
		for i, c := range coords {
			out[i] = math.Sqrt(c[0]*c[0]+c[1]*c[1]+c[2]*c[2]) > r
		}
	case shape[1] == 0 && shape[2] > 0:
		// Cylindrical about z
		r := shape[0] * (1 + tol)
		zhi := shape[2] * (1 + tol)
		zlo := -shape[2] * tol
		for i, c := range coords {
			out[i] = math.Hypot(c[0], c[1]) > r || c[2] > zhi || c[2] < zlo
		}
	default:
		// Rectilinear, possibly 2D when an extent is zero
		for i, c := range coords {
			for d := 0; d < 3; d++ {
				if shape[d] == 0 {
					continue
				}
				thresh := tol * shape[d]
				if c[d] > shape[d]+thresh || c[d] < -thresh {
					out[i] = true
					break
				}
			}
		}
	}
	return out
}

// SurfaceNodes identifies nodes on the outer faces of a cubic domain by
// comparing against the extremes along each spanned axis.
func SurfaceNodes(coords [][3]float64) []bool {
	hits := make([]bool, len(coords))
	if len(coords) == 0 {
		return hits
	}
	dims := Dimensionality(coords)
	const eps = 1e-12
	for d := 0; d < 3; d++ {
		if !dims[d] {
			continue
		}
		lo, hi := coords[0][d], coords[0][d]
		for _, c := range coords {
			lo = math.Min(lo, c[d])
			hi = math.Max(hi, c[d])
		}
		for i, c := range coords {
			if math.Abs(c[d]-lo) < eps || math.Abs(c[d]-hi) < eps {
				hits[i] = true
			}
		}
	}
	return hits
}

// Coplanar reports whether the given points all lie on a single plane.
// At least 3 points are required.
func Coplanar(coords [][3]float64) (bool, error) {
	if len(coords) < 3 {
		return false, errors.New("topology: at least 3 points required for coplanarity check")
	}
	// Common-coordinate shortcut
	for d := 0; d < 3; d++ {
		same := true
		for _, c := range coords {
			if c[d] != coords[0][d] {
				same = false
				break
			}
		}
		if same {
			return true, nil
		}
	}
	// General case: normal from the first two independent edge vectors
	n1 := sub3(coords[1], coords[0])
	var n [3]float64
	i := 1
	for norm3(n) == 0 {
		if i >= len(coords)-1 {
			return false, nil
		}
		n2 := sub3(coords[i+1], coords[i])
		n = cross3(n1, n2)
		i++
	}
	const eps = 1e-9
	for _, c := range coords[1:] {
		if math.Abs(dot3(n, sub3(c, coords[0]))) > eps*norm3(n) {
			return false, nil
		}
	}
	return true, nil
}

// Spacing infers the lattice spacing of a simple cubic network along each
// axis. Axes with no extent report zero.
func Spacing(coords [][3]float64) [3]float64 {
	var spc [3]float64
	for d := 0; d < 3; d++ {
		vals := uniqueAxis(coords, d)
		if len(vals) < 2 {
			continue
		}
		spc[d] = vals[1] - vals[0]
	}
	return spc
}

// Shape infers the number of lattice sites along each axis of a simple
// cubic network. Axes with no extent report 1.
func Shape(coords [][3]float64) [3]int {
	var shp [3]int
	for d := 0; d < 3; d++ {
		shp[d] = len(uniqueAxis(coords, d))
		if shp[d] == 0 {
			shp[d] = 1
		}
	}
	return shp
}

// DomainArea computes the cross-sectional area spanned by a face of pores,
// taken as the bounding rectangle over the axes the face spans. Both faces
// should be coplanar and axis aligned; the inlet face defines the result.
func DomainArea(coords [][3]float64, inlets, outlets []int) (float64, error) {
	if len(inlets) == 0 || len(outlets) == 0 {
		return 0, errors.New("topology: inlet and outlet pores required")
	}
	in := gather(coords, inlets)
	if ok, err := Coplanar(in); err != nil {
		return 0, err
	} else if !ok {
		return 0, errors.New("topology: inlet pores are not coplanar, specify area manually")
	}
	area := 1.0
	spanned := 0
	for d := 0; d < 3; d++ {
		p := ptp(in, d)
		if p > 0 {
			area *= p
			spanned++
		}
	}
	if spanned == 0 {
		return 0, errors.New("topology: inlet face has no extent")
	}
	return area, nil
}

// DomainLength computes the separation between the inlet and outlet faces
// as the shortest inlet-outlet distance. The second return reports whether
// that distance was uniform across outlets, which it is for plane-parallel
// faces.
func DomainLength(coords [][3]float64, inlets, outlets []int) (float64, bool, error) {
	if len(inlets) == 0 || len(outlets) == 0 {
		return 0, false, errors.New("topology: inlet and outlet pores required")
	}
	in := gather(coords, inlets)
	out := gather(coords, outlets)
	minD := math.Inf(1)
	maxD := 0.0
	for _, o := range out {
		best := math.Inf(1)
		for _, p := range in {
			d := norm3(sub3(o, p))
			if d < best {
				best = d
			}
		}
		minD = math.Min(minD, best)
		maxD = math.Max(maxD, best)
	}
	uniform := (maxD - minD) <= 1e-9*math.Max(1, maxD)
	return minD, uniform, nil
}

// InternodeDistance returns the pairwise distances between two node sets.
func InternodeDistance(coords [][3]float64, nodes1, nodes2 []int) [][]float64 {
	d := make([][]float64, len(nodes1))
	for i, a := range nodes1 {
		d[i] = make([]float64, len(nodes2))
		for j, b := range nodes2 {
			d[i][j] = norm3(sub3(coords[a], coords[b]))
		}
	}
	return d
}

func uniqueAxis(coords [][3]float64, d int) []float64 {
	const eps = 1e-12
	vals := make([]float64, 0, len(coords))
	for _, c := range coords {
		vals = append(vals, c[d])
	}
	sort.Float64s(vals)
	uniq := vals[:0]
	for _, v := range vals {
		if len(uniq) == 0 || v-uniq[len(uniq)-1] > eps {
			uniq = append(uniq, v)
		}
	}
	return uniq
}

func gather(coords [][3]float64, idx []int) [][3]float64 {
	out := make([][3]float64, len(idx))
	for i, p := range idx {
		out[i] = coords[p]
	}
	return out
}

func ptp(coords [][3]float64, d int) float64 {
	lo, hi := coords[0][d], coords[0][d]
	for _, c := range coords {
		lo = math.Min(lo, c[d])
		hi = math.Max(hi, c[d])
	}
	return hi - lo
}

func sub3(a, b [3]float64) [3]float64 {
	return [3]float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

func cross3(a, b [3]float64) [3]float64 {
	return [3]float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func dot3(a, b [3]float64) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func norm3(a [3]float64) float64 {
	return math.Sqrt(dot3(a, a))
}
