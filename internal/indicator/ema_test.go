package indicator

import (
	"math"
	"testing"
)

func TestEMA_SeedsWithFirstClose(t *testing.T) {
	closes := []float64{2, 4, 6}
	out := EMA(closes, 2)

	if !out[0].Valid || out[0].Float64 != 2 {
		t.Fatalf("expected EMA[0] to equal first close, got %+v", out[0])
	}
	// m = 2/(2+1); EMA[1] = 4*m + 2*(1-m) = 10/3
	if math.Abs(out[1].Float64-10.0/3) > eps {
		t.Errorf("expected EMA[1]=%.6f, got %.6f", 10.0/3, out[1].Float64)
	}
}

func TestEMA_Recurrence(t *testing.T) {
	closes := []float64{10, 11, 9, 12, 13, 8, 14, 10}
	period := 4
	out := EMA(closes, period)

	m := 2.0 / float64(period+1)
	prev := closes[0]
	for i := 1; i < len(closes); i++ {
		want := closes[i]*m + prev*(1-m)
		if !out[i].Valid || math.Abs(out[i].Float64-want) > eps {
			t.Errorf("index %d: expected %.6f, got %+v", i, want, out[i])
		}
		prev = want
	}
}

func TestEMA_UnderSizedSeriesIsAllMissing(t *testing.T) {
	out := EMA([]float64{1, 2}, 3)
	for i, v := range out {
		if v.Valid {
			t.Errorf("index %d: expected missing for under-sized series", i)
		}
	}
}
