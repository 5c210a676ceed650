package field

import (
	"fmt"
	"strings"

	"github.com/san-kum/cuspsim/internal/elliptic"
)

// Evaluator selects how K and E are obtained for the off-axis formula.
type Evaluator int

const (
	// Tabulated reads the nearest lower sample of the shared table.
	Tabulated Evaluator = iota
	// Interpolated interpolates linearly between shared table samples.
	Interpolated
	// Exact evaluates the rational approximations on every call.
	Exact
)

var evaluatorNames = map[Evaluator]string{
	Tabulated:    "table",
	Interpolated: "interpolated",
	Exact:        "exact",
}

func (ev Evaluator) String() string {
	if name, ok := evaluatorNames[ev]; ok {
		return name
	}
	return fmt.Sprintf("evaluator(%d)", int(ev))
}

// ParseEvaluator maps a config name to an Evaluator. The empty string is the
// table default.
func ParseEvaluator(name string) (Evaluator, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "table":
		return Tabulated, nil
	case "interpolated", "interp":
		return Interpolated, nil
	case "exact":
		return Exact, nil
	}
	return 0, fmt.Errorf("unknown field evaluator: %s", name)
}

func (ev Evaluator) integrals(p float64) (k, e float64) {
	switch ev {
	case Interpolated:
		return elliptic.DefaultTable().Interpolate(p)
	case Exact:
		return elliptic.CompleteFirstKind(p), elliptic.CompleteSecondKind(p)
	default:
		return elliptic.DefaultTable().At(p)
	}
}
