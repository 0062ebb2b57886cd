package pricing

import "gonum.org/v1/gonum/stat/distuv"

// normCDF is the standard normal CDF. distuv evaluates it through erfc, so
// the lower tail keeps full relative precision.
func normCDF(x float64) float64 {
	return distuv.UnitNormal.CDF(x)
}

func normPDF(x float64) float64 {
	return distuv.UnitNormal.Prob(x)
}
