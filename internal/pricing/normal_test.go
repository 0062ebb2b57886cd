package pricing

import (
	"math"
	"testing"
)

func TestNormalDistribution(t *testing.T) {
	tests := []struct {
		x, cdf, pdf float64
	}{
		{0, 0.5, 0.3989422804014327},
		{1.96, 0.9750021048517795, 0.05844094433345147},
		{-1, 0.15865525393145707, 0.24197072451914337},
	}
	for _, tt := range tests {
		if got := normCDF(tt.x); math.Abs(got-tt.cdf) > 1e-12 {
			t.Errorf("normCDF(%v) = %v, want %v", tt.x, got, tt.cdf)
		}
		if got := normPDF(tt.x); math.Abs(got-tt.pdf) > 1e-12 {
			t.Errorf("normPDF(%v) = %v, want %v", tt.x, got, tt.pdf)
		}
	}
}

func TestNormCDFLowerTail(t *testing.T) {
	// 1+erf would cancel to zero long before x = -30.
	for _, x := range []float64{-10, -20, -30} {
		want := 0.5 * math.Erfc(-x/math.Sqrt2)
		got := normCDF(x)
		if got <= 0 || math.Abs(got-want) > 1e-12*want {
			t.Errorf("normCDF(%v) = %v, want %v", x, got, want)
		}
	}
}
