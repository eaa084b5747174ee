// Package projection computes incremental revenue and gross profit attributable to SKU
// growth, split across retail channels by normalized allocation weights.
package projection

// Upper bounds enforced by Validate. With these caps the added and final counts always
// fit in int64 and revenue stays far below the float64 range.
const (
	MaxCount          = 1_000_000_000_000_000
	MaxHorizonYears   = 1000
	MaxRevenuePerUnit = 1e12
)

// Input is one parameter set for a projection run.
// Entity order is preserved in every output. The validate tags repeat the Max* constants.
type Input struct {
	BaselineCount int64          `json:"baseline_count" yaml:"baseline_count" msgpack:"baseline_count" validate:"gte=0,lte=1000000000000000"`
	AnnualGrowth  int64          `json:"annual_growth" yaml:"annual_growth" msgpack:"annual_growth" validate:"gte=0,lte=1000000000000000"`
	HorizonYears  int64          `json:"horizon_years" yaml:"horizon_years" msgpack:"horizon_years" validate:"gte=1,lte=1000"`
	Entities      []EntityConfig `json:"entities" yaml:"entities" msgpack:"entities" validate:"min=1,dive"`
}

// EntityConfig holds the allocation weight and unit economics of a single retailer.
// Weights are relative; they do not need to sum to any particular total.
type EntityConfig struct {
	Name           string  `json:"name" yaml:"name" msgpack:"name" validate:"notblank"`
	Weight         float64 `json:"weight" yaml:"weight" msgpack:"weight" validate:"finite,gte=0"`
	RevenuePerUnit float64 `json:"revenue_per_unit" yaml:"revenue_per_unit" msgpack:"revenue_per_unit" validate:"finite,gte=0,lte=1000000000000"`
	MarginRate     float64 `json:"margin_rate" yaml:"margin_rate" msgpack:"margin_rate" validate:"finite,gte=0,lte=1"`
}

// Result is the full-precision outcome of Compute. Nothing in it is rounded.
type Result struct {
	TotalAdded        int64          `json:"total_added" msgpack:"total_added"`
	FinalCount        int64          `json:"final_count" msgpack:"final_count"`
	Rows              []EntityResult `json:"rows" msgpack:"rows"`
	Totals            Totals         `json:"totals" msgpack:"totals"`
	BlendedMarginRate float64        `json:"blended_margin_rate" msgpack:"blended_margin_rate"`
}

// EntityResult is the per-entity slice of a Result, index-aligned with Input.Entities.
type EntityResult struct {
	Name               string  `json:"name" msgpack:"name"`
	Share              float64 `json:"share" msgpack:"share"`
	AddedUnits         float64 `json:"added_units" msgpack:"added_units"`
	RevenuePerUnit     float64 `json:"revenue_per_unit" msgpack:"revenue_per_unit"`
	MarginRate         float64 `json:"margin_rate" msgpack:"margin_rate"`
	GrossProfitPerUnit float64 `json:"gross_profit_per_unit" msgpack:"gross_profit_per_unit"`
	AddedRevenue       float64 `json:"added_revenue" msgpack:"added_revenue"`
	AddedGrossProfit   float64 `json:"added_gross_profit" msgpack:"added_gross_profit"`
}

// Totals aggregates the additive EntityResult columns.
type Totals struct {
	AddedUnits       float64 `json:"added_units" msgpack:"added_units"`
	AddedRevenue     float64 `json:"added_revenue" msgpack:"added_revenue"`
	AddedGrossProfit float64 `json:"added_gross_profit" msgpack:"added_gross_profit"`
}
