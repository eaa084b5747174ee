package projection

// DefaultInput returns the starting scenario: three Japanese B2B/B2C retailers with equal
// weights and unit economics estimated from public figures.
func DefaultInput() Input {
	return Input{
		BaselineCount: 2_000_000,
		AnnualGrowth:  1_000_000,
		HorizonYears:  10,
		Entities: []EntityConfig{
			{Name: "ヨドバシ.com", Weight: 33.3333, RevenuePerUnit: 28_350, MarginRate: 0.26},
			{Name: "MonotaRO", Weight: 33.3333, RevenuePerUnit: 11_642, MarginRate: 0.293},
			{Name: "ASKUL", Weight: 33.3333, RevenuePerUnit: 32_476, MarginRate: 0.26},
		},
	}
}

// FieldBounds describes the accepted range and input step of one parameter.
// Max is nil when the field is unbounded above.
type FieldBounds struct {
	Min  float64  `json:"min" msgpack:"min"`
	Max  *float64 `json:"max,omitempty" msgpack:"max,omitempty"`
	Step float64  `json:"step" msgpack:"step"`
}

// Bounds lists FieldBounds for every parameter a form or CLI has to collect.
type Bounds struct {
	BaselineCount  FieldBounds `json:"baseline_count" msgpack:"baseline_count"`
	AnnualGrowth   FieldBounds `json:"annual_growth" msgpack:"annual_growth"`
	HorizonYears   FieldBounds `json:"horizon_years" msgpack:"horizon_years"`
	Weight         FieldBounds `json:"weight" msgpack:"weight"`
	RevenuePerUnit FieldBounds `json:"revenue_per_unit" msgpack:"revenue_per_unit"`
	MarginRate     FieldBounds `json:"margin_rate" msgpack:"margin_rate"`
}

// DefaultBounds mirrors the ranges enforced by Validate.
func DefaultBounds() Bounds {
	maxCount := float64(MaxCount)
	maxHorizon := float64(MaxHorizonYears)
	maxRevenue := MaxRevenuePerUnit
	maxMargin := 1.0
	return Bounds{
		BaselineCount:  FieldBounds{Min: 0, Max: &maxCount, Step: 1000},
		AnnualGrowth:   FieldBounds{Min: 0, Max: &maxCount, Step: 1000},
		HorizonYears:   FieldBounds{Min: 1, Max: &maxHorizon, Step: 1},
		Weight:         FieldBounds{Min: 0, Step: 0.1},
		RevenuePerUnit: FieldBounds{Min: 0, Max: &maxRevenue, Step: 100},
		MarginRate:     FieldBounds{Min: 0, Max: &maxMargin, Step: 0.001},
	}
}
