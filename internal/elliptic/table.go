package elliptic

import (
	"errors"
	"math"
	"sync"
	"sync/atomic"
)

// Samples is the resolution of the default table.
const Samples = 100_000

// ErrOutOfRange is returned by Table.Lookup for arguments outside [0, 1].
var ErrOutOfRange = errors.New("elliptic: table argument out of range [0, 1]")

// Table holds K and E sampled at i/n for i in [0, n).
type Table struct {
	k []float64
	e []float64
	n int
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
	builds       atomic.Int64
)

// DefaultTable returns the process-wide table, building it on first use.
//
// Exactly one build ever happens. Callers racing the first build block until
// it has finished and all of them receive the same fully built table.
func DefaultTable() *Table {
	defaultOnce.Do(func() {
		defaultTable = NewTable(Samples)
		builds.Add(1)
	})
	return defaultTable
}

// Builds reports how many times the default table has been constructed.
func Builds() int64 {
	return builds.Load()
}

// NewTable builds a private table with n samples.
func NewTable(n int) *Table {
	if n <= 0 {
		panic("elliptic: table size must be positive")
	}

	t := &Table{
		k: make([]float64, n),
		e: make([]float64, n),
		n: n,
	}

	for i := 0; i < n; i++ {
		x := float64(i) / float64(n)
		t.k[i] = CompleteFirstKind(x)
		t.e[i] = CompleteSecondKind(x)
	}

	return t
}

// Len returns the number of samples.
func (t *Table) Len() int { return t.n }

// Index maps x to floor(x*n) clamped to [0, n-1]. NaN maps to 0.
func (t *Table) Index(x float64) int {
	if !(x > 0) {
		return 0
	}
	idx := x * float64(t.n)
	if idx >= float64(t.n-1) {
		return t.n - 1
	}
	return int(idx)
}

// At returns K and E at the clamped index for x. Arguments in (0, 1/n)
// would floor onto the K(0) sentinel, so they are evaluated exactly.
func (t *Table) At(x float64) (k, e float64) {
	i := t.Index(x)
	if i == 0 && x > 0 {
		return CompleteFirstKind(x), CompleteSecondKind(x)
	}
	return t.k[i], t.e[i]
}

// Lookup is At with explicit range rejection. x == 1 is accepted and reads
// the last sample.
func (t *Table) Lookup(x float64) (k, e float64, err error) {
	if math.IsNaN(x) || x < 0 || x > 1 {
		return 0, 0, ErrOutOfRange
	}
	k, e = t.At(x)
	return k, e, nil
}

// Interpolate returns K and E linearly interpolated between neighbouring
// samples. Arguments are clamped to [0, 1]; the segment past the last sample
// interpolates towards the exact value at 1.
func (t *Table) Interpolate(x float64) (k, e float64) {
	if !(x > 0) {
		return t.k[0], t.e[0]
	}
	if x >= 1 {
		return CompleteFirstKind(1), CompleteSecondKind(1)
	}

	idx := x * float64(t.n)
	i := int(idx)
	frac := idx - float64(i)

	// K(0) is the MaxFloat64 sentinel; blending it would overflow.
	if i == 0 {
		return CompleteFirstKind(x), CompleteSecondKind(x)
	}

	var k1, e1 float64
	if i+1 < t.n {
		k1, e1 = t.k[i+1], t.e[i+1]
	} else {
		k1, e1 = CompleteFirstKind(1), CompleteSecondKind(1)
	}

	k = t.k[i]*(1-frac) + k1*frac
	e = t.e[i]*(1-frac) + e1*frac
	return k, e
}
