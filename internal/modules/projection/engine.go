package projection

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Compute derives the projection for in.
//
// Compute is total over inputs that pass Validate: every division is guarded, so it never
// panics and never returns an error. It keeps no state and performs no rounding; calling it
// twice with the same input yields bit-identical results.
func Compute(in Input) Result {
	n := len(in.Entities)

	weights := make([]float64, n)
	revenuePerUnit := make([]float64, n)
	marginRate := make([]float64, n)
	for i, e := range in.Entities {
		weights[i] = e.Weight
		revenuePerUnit[i] = e.RevenuePerUnit
		marginRate[i] = e.MarginRate
	}

	shares := Shares(weights)

	totalAdded := in.AnnualGrowth * in.HorizonYears
	addedUnits := floats.ScaleTo(make([]float64, n), float64(totalAdded), shares)

	grossProfitPerUnit := floats.MulTo(make([]float64, n), revenuePerUnit, marginRate)
	addedRevenue := floats.MulTo(make([]float64, n), addedUnits, revenuePerUnit)
	addedGrossProfit := floats.MulTo(make([]float64, n), addedUnits, grossProfitPerUnit)

	rows := make([]EntityResult, n)
	for i, e := range in.Entities {
		rows[i] = EntityResult{
			Name:               e.Name,
			Share:              shares[i],
			AddedUnits:         addedUnits[i],
			RevenuePerUnit:     e.RevenuePerUnit,
			MarginRate:         e.MarginRate,
			GrossProfitPerUnit: grossProfitPerUnit[i],
			AddedRevenue:       addedRevenue[i],
			AddedGrossProfit:   addedGrossProfit[i],
		}
	}

	totals := Totals{
		AddedUnits:       floats.Sum(addedUnits),
		AddedRevenue:     floats.Sum(addedRevenue),
		AddedGrossProfit: floats.Sum(addedGrossProfit),
	}

	return Result{
		TotalAdded:        totalAdded,
		FinalCount:        in.BaselineCount + totalAdded,
		Rows:              rows,
		Totals:            totals,
		BlendedMarginRate: BlendedMarginRate(totals.AddedGrossProfit, totals.AddedRevenue),
	}
}

// Shares normalizes weights into proportions summing to 1.
// When the weights sum to zero or less, every entry gets an equal 1/n share.
// Weights large enough to overflow their sum are rescaled first.
func Shares(weights []float64) []float64 {
	n := len(weights)
	shares := make([]float64, n)
	if n == 0 {
		return shares
	}

	sum := floats.Sum(weights)
	if math.IsInf(sum, 1) {
		// Finite weights near MaxFloat64 overflow the sum; normalize by the largest first.
		return Shares(floats.ScaleTo(make([]float64, n), 1/floats.Max(weights), weights))
	}
	if sum <= 0 {
		for i := range shares {
			shares[i] = 1 / float64(n)
		}
		return shares
	}

	for i, w := range weights {
		shares[i] = w / sum
	}
	return shares
}

// BlendedMarginRate is aggregate gross profit over aggregate revenue, or 0 without revenue.
func BlendedMarginRate(grossProfit, revenue float64) float64 {
	if revenue > 0 {
		return grossProfit / revenue
	}
	return 0
}
