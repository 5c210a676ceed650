package elliptic

// Polynomial holds coefficients ordered from the highest degree down to the
// constant term.
type Polynomial []float64

// Eval returns p(x) using Horner's method.
func (p Polynomial) Eval(x float64) float64 {
	if len(p) == 0 {
		return 0
	}
	result := p[0]
	for _, c := range p[1:] {
		result = result*x + c
	}
	return result
}

// Degree returns the polynomial degree, or -1 for an empty polynomial.
func (p Polynomial) Degree() int {
	return len(p) - 1
}
