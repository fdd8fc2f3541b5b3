package physics

import "math"

// SourceTerm is a nonlinear generation/consumption rate r(x) that can be
// linearized about the current iterate as r ~ S1*x + S2 (the Patankar
// form). Negative rates consume the transported quantity.
type SourceTerm interface {
	Name() string
	Rate(x float64) float64
	Linearize(x float64) (s1, s2 float64)
}

// LinearSource is r = A1*x + A2, already linear so the linearization is
// exact.
type LinearSource struct {
	A1, A2 float64
}

func (s LinearSource) Name() string { return "linear" }

func (s LinearSource) Rate(x float64) float64 { return s.A1*x + s.A2 }

func (s LinearSource) Linearize(x float64) (float64, float64) {
	return s.A1, s.A2
}

// PowerLawSource is r = A1*x^A2 + A3. The slope is the derivative at x and
// the intercept keeps the tangent through r(x):
//
//	S1 = A1*A2*x^(A2-1)
//	S2 = A1*x^A2*(1-A2) + A3
//
// For x <= 0 with a non-integer exponent the power is undefined, so the
// rate is evaluated at a small positive floor instead.
type PowerLawSource struct {
	A1, A2, A3 float64
}

func (s PowerLawSource) Name() string { return "power_law" }

const powerFloor = 1e-30

func (s PowerLawSource) Rate(x float64) float64 {
	if x <= 0 {
		x = powerFloor
	}
	return s.A1*math.Pow(x, s.A2) + s.A3
}

func (s PowerLawSource) Linearize(x float64) (float64, float64) {
	if x <= 0 {
		x = powerFloor
	}
	s1 := s.A1 * s.A2 * math.Pow(x, s.A2-1)
	s2 := s.A1*math.Pow(x, s.A2)*(1-s.A2) + s.A3
	return s1, s2
}
