package indicator

import (
	"math"
	"testing"
)

func TestBollinger_KnownWindow(t *testing.T) {
	closes := []float64{1, 2, 3, 4}
	upper, middle, lower := Bollinger(closes, 3, 2)

	for i := 0; i < 2; i++ {
		if upper[i].Valid || middle[i].Valid || lower[i].Valid {
			t.Errorf("index %d: expected missing before first full window", i)
		}
	}

	// window [1,2,3]: mean 2, population sigma sqrt(2/3)
	sigma := math.Sqrt(2.0 / 3)
	checks := []struct {
		idx  int
		mean float64
	}{
		{2, 2},
		{3, 3},
	}
	for _, c := range checks {
		if math.Abs(middle[c.idx].Float64-c.mean) > eps {
			t.Errorf("index %d: expected middle %.6f, got %.6f", c.idx, c.mean, middle[c.idx].Float64)
		}
		if math.Abs(upper[c.idx].Float64-(c.mean+2*sigma)) > eps {
			t.Errorf("index %d: expected upper %.6f, got %.6f", c.idx, c.mean+2*sigma, upper[c.idx].Float64)
		}
		if math.Abs(lower[c.idx].Float64-(c.mean-2*sigma)) > eps {
			t.Errorf("index %d: expected lower %.6f, got %.6f", c.idx, c.mean-2*sigma, lower[c.idx].Float64)
		}
	}
}

func TestBollinger_ConstantSeriesCollapsesBands(t *testing.T) {
	closes := []float64{5, 5, 5, 5, 5, 5}
	upper, middle, lower := Bollinger(closes, 4, 2)
	for i := 3; i < len(closes); i++ {
		if math.Abs(upper[i].Float64-5) > eps ||
			math.Abs(middle[i].Float64-5) > eps ||
			math.Abs(lower[i].Float64-5) > eps {
			t.Errorf("index %d: expected all bands at 5 for constant series, got %.6f/%.6f/%.6f",
				i, upper[i].Float64, middle[i].Float64, lower[i].Float64)
		}
	}
}

func TestBollinger_UnderSizedSeriesIsAllMissing(t *testing.T) {
	upper, middle, lower := Bollinger([]float64{1, 2, 3}, 5, 2)
	for i := 0; i < 3; i++ {
		if upper[i].Valid || middle[i].Valid || lower[i].Valid {
			t.Errorf("index %d: expected missing for under-sized series", i)
		}
	}
}
