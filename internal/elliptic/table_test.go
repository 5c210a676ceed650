package elliptic

import (
	"errors"
	"math"
	"sync"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

func TestTableSamples(t *testing.T) {
	tbl := NewTable(1000)

	if tbl.Len() != 1000 {
		t.Fatalf("Len() = %d, want 1000", tbl.Len())
	}

	for _, i := range []int{0, 1, 250, 500, 999} {
		x := float64(i) / 1000
		if tbl.k[i] != CompleteFirstKind(x) || tbl.e[i] != CompleteSecondKind(x) {
			t.Errorf("sample %d: got (%v, %v), want (%v, %v)", i, tbl.k[i], tbl.e[i], CompleteFirstKind(x), CompleteSecondKind(x))
		}
	}

	if k, _ := tbl.At(0); k != math.MaxFloat64 {
		t.Errorf("At(0) K = %v, want MaxFloat64 sentinel", k)
	}
}

func TestTableIndexClamps(t *testing.T) {
	tbl := NewTable(100)

	tests := []struct {
		x    float64
		want int
	}{
		{-0.5, 0},
		{0, 0},
		{0.0049, 0},
		{0.015, 1},
		{0.5, 50},
		{0.999, 99},
		{1, 99},
		{7, 99},
		{math.Inf(1), 99},
		{math.NaN(), 0},
	}

	for _, tt := range tests {
		if got := tbl.Index(tt.x); got != tt.want {
			t.Errorf("Index(%v) = %d, want %d", tt.x, got, tt.want)
		}
	}
}

func TestTableAtFirstBandIsExact(t *testing.T) {
	tbl := NewTable(100)

	for _, x := range []float64{1e-12, 1e-6, 0.0049} {
		k, e := tbl.At(x)
		if k != CompleteFirstKind(x) || e != CompleteSecondKind(x) {
			t.Errorf("At(%v) = (%v, %v), want (%v, %v)", x, k, e, CompleteFirstKind(x), CompleteSecondKind(x))
		}
		if k == math.MaxFloat64 {
			t.Errorf("At(%v) returned the K(0) sentinel", x)
		}
	}
}

func TestTableLookupRange(t *testing.T) {
	tbl := NewTable(100)

	for _, x := range []float64{-1e-9, 1.000001, math.NaN(), math.Inf(-1)} {
		if _, _, err := tbl.Lookup(x); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("Lookup(%v) error = %v, want ErrOutOfRange", x, err)
		}
	}

	k, e, err := tbl.Lookup(1)
	if err != nil {
		t.Fatalf("Lookup(1) failed: %v", err)
	}
	if k != CompleteFirstKind(0.99) || e != CompleteSecondKind(0.99) {
		t.Errorf("Lookup(1) did not clamp to last sample: got (%v, %v)", k, e)
	}
}

func TestTableInterpolate(t *testing.T) {
	tbl := NewTable(1000)

	for _, x := range []float64{0.0005, 0.1234, 0.5, 0.77777, 0.9995, 1} {
		k, e := tbl.Interpolate(x)
		wantK, wantE := CompleteFirstKind(x), CompleteSecondKind(x)
		if !scalar.EqualWithinRel(k, wantK, 1e-5) {
			t.Errorf("Interpolate(%v) K = %v, want %v", x, k, wantK)
		}
		if !scalar.EqualWithinRel(e, wantE, 1e-5) {
			t.Errorf("Interpolate(%v) E = %v, want %v", x, e, wantE)
		}
	}
}

func TestDefaultTableBuiltOnce(t *testing.T) {
	const readers = 64

	tables := make([]*Table, readers)
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			<-start
			tables[idx] = DefaultTable()
		}(i)
	}

	close(start)
	wg.Wait()

	if got := Builds(); got != 1 {
		t.Fatalf("Builds() = %d, want 1", got)
	}

	first := tables[0]
	if first.Len() != Samples {
		t.Fatalf("default table has %d samples, want %d", first.Len(), Samples)
	}
	for i, tbl := range tables {
		if tbl != first {
			t.Fatalf("reader %d received a different table", i)
		}
	}

	k, e := first.At(0.5)
	if k != CompleteFirstKind(0.5) || e != CompleteSecondKind(0.5) {
		t.Errorf("default table sample at 0.5 = (%v, %v)", k, e)
	}
}

func TestNewTablePanicsOnZero(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for zero-size table")
		}
	}()
	NewTable(0)
}

func BenchmarkDefaultTableAt(b *testing.B) {
	tbl := DefaultTable()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tbl.At(float64(i%1000) / 1000)
	}
}

func BenchmarkCompleteFirstKind(b *testing.B) {
	for i := 0; i < b.N; i++ {
		CompleteFirstKind(float64(i%1000+1) / 1001)
	}
}
