package presentation

import (
	"fmt"

	"github.com/aristath/skusim/internal/modules/projection"
)

// Labels used across the table, KPIs and exports.
const (
	Title = "SKU 売上・粗利シミュレーター"

	LabelEntity             = "会社"
	LabelSharePct           = "割合(%)"
	LabelAddedUnits         = "追加SKU"
	LabelRevenuePerUnit     = "1SKU売上(円)"
	LabelMarginRate         = "粗利率"
	LabelGrossProfitPerUnit = "1SKU粗利(円)"
	LabelAddedRevenue       = "追加売上高(円)"
	LabelAddedGrossProfit   = "追加粗利(円)"

	LabelTotalAdded   = "合計 追加SKU"
	LabelFinalCount   = "最終SKU（年数経過後）"
	LabelBlendedRate  = "平均粗利率（追加分）"
	LabelTotalRevenue = "合計 追加売上高"
	LabelTotalProfit  = "合計 追加粗利"
)

// View is everything a front end needs to render one projection.
type View struct {
	Title         string        `json:"title" msgpack:"title"`
	Caption       string        `json:"caption" msgpack:"caption"`
	KPIs          []KPI         `json:"kpis" msgpack:"kpis"`
	Table         Table         `json:"table" msgpack:"table"`
	Charts        []ChartSeries `json:"charts" msgpack:"charts"`
	Summary       Summary       `json:"summary" msgpack:"summary"`
	RoundingDrift Drift         `json:"rounding_drift" msgpack:"rounding_drift"`
}

// KPI is one headline metric. Raw keeps the unformatted number.
type KPI struct {
	Label   string  `json:"label" msgpack:"label"`
	Value   string  `json:"value" msgpack:"value"`
	Caption string  `json:"caption,omitempty" msgpack:"caption,omitempty"`
	Raw     float64 `json:"raw" msgpack:"raw"`
}

// TableRow is one entity rounded for display. Money and unit columns are rounded per row;
// SharePct and MarginRate keep full precision with formatted twins for display.
type TableRow struct {
	Name               string  `json:"name" msgpack:"name"`
	SharePct           float64 `json:"share_pct" msgpack:"share_pct"`
	ShareLabel         string  `json:"share_label" msgpack:"share_label"`
	AddedUnits         int64   `json:"added_units" msgpack:"added_units"`
	RevenuePerUnit     int64   `json:"revenue_per_unit" msgpack:"revenue_per_unit"`
	MarginRate         float64 `json:"margin_rate" msgpack:"margin_rate"`
	MarginLabel        string  `json:"margin_label" msgpack:"margin_label"`
	GrossProfitPerUnit int64   `json:"gross_profit_per_unit" msgpack:"gross_profit_per_unit"`
	AddedRevenue       int64   `json:"added_revenue" msgpack:"added_revenue"`
	AddedGrossProfit   int64   `json:"added_gross_profit" msgpack:"added_gross_profit"`
}

// TableTotals is the totals line under the table.
type TableTotals struct {
	AddedUnits       int64 `json:"added_units" msgpack:"added_units"`
	AddedRevenue     int64 `json:"added_revenue" msgpack:"added_revenue"`
	AddedGrossProfit int64 `json:"added_gross_profit" msgpack:"added_gross_profit"`
}

// Table is the per-entity breakdown.
type Table struct {
	Rows   []TableRow  `json:"rows" msgpack:"rows"`
	Totals TableTotals `json:"totals" msgpack:"totals"`
}

// ChartPoint is one bar.
type ChartPoint struct {
	Label string  `json:"label" msgpack:"label"`
	Value float64 `json:"value" msgpack:"value"`
}

// ChartSeries is a bar chart grouped by entity name.
type ChartSeries struct {
	Key    string       `json:"key" msgpack:"key"`
	Title  string       `json:"title" msgpack:"title"`
	YTitle string       `json:"y_title" msgpack:"y_title"`
	Points []ChartPoint `json:"points" msgpack:"points"`
}

// Summary holds the formatted totals block.
type Summary struct {
	AddedUnits        string `json:"added_units" msgpack:"added_units"`
	AddedRevenue      string `json:"added_revenue" msgpack:"added_revenue"`
	AddedGrossProfit  string `json:"added_gross_profit" msgpack:"added_gross_profit"`
	BlendedMarginRate string `json:"blended_margin_rate" msgpack:"blended_margin_rate"`
}

// Drift is the difference between the sum of rounded rows and the rounded total, per column.
// A non-zero value means the displayed rows do not add up exactly to the displayed total.
type Drift struct {
	AddedUnits       int64 `json:"added_units" msgpack:"added_units"`
	AddedRevenue     int64 `json:"added_revenue" msgpack:"added_revenue"`
	AddedGrossProfit int64 `json:"added_gross_profit" msgpack:"added_gross_profit"`
}

// BuildView formats res for display. Totals and KPIs come from the full-precision engine
// totals, rounded once; they are never re-derived from rounded rows.
func BuildView(in projection.Input, res projection.Result) View {
	rows := make([]TableRow, len(res.Rows))
	var rowSum TableTotals
	for i, r := range res.Rows {
		rows[i] = TableRow{
			Name:               r.Name,
			SharePct:           r.Share * 100,
			ShareLabel:         Percent(r.Share, 1),
			AddedUnits:         RoundHalfEven(r.AddedUnits),
			RevenuePerUnit:     RoundHalfEven(r.RevenuePerUnit),
			MarginRate:         r.MarginRate,
			MarginLabel:        Percent(r.MarginRate, 1),
			GrossProfitPerUnit: RoundHalfEven(r.GrossProfitPerUnit),
			AddedRevenue:       RoundHalfEven(r.AddedRevenue),
			AddedGrossProfit:   RoundHalfEven(r.AddedGrossProfit),
		}
		rowSum.AddedUnits += rows[i].AddedUnits
		rowSum.AddedRevenue += rows[i].AddedRevenue
		rowSum.AddedGrossProfit += rows[i].AddedGrossProfit
	}

	totals := TableTotals{
		AddedUnits:       RoundHalfEven(res.Totals.AddedUnits),
		AddedRevenue:     RoundHalfEven(res.Totals.AddedRevenue),
		AddedGrossProfit: RoundHalfEven(res.Totals.AddedGrossProfit),
	}

	return View{
		Title: Title,
		Caption: fmt.Sprintf(
			"配分・単価・粗利率・増加SKUを調整すると、%d年間の『追加売上』と『追加粗利』が即時計算されます。",
			in.HorizonYears,
		),
		KPIs: []KPI{
			{
				Label:   LabelTotalAdded,
				Value:   Count(res.TotalAdded),
				Caption: fmt.Sprintf("= 年 %s × %d 年", Count(in.AnnualGrowth), in.HorizonYears),
				Raw:     float64(res.TotalAdded),
			},
			{
				Label:   LabelFinalCount,
				Value:   Count(res.FinalCount),
				Caption: fmt.Sprintf("= 現状 %s + 追加 %s", Count(in.BaselineCount), Count(res.TotalAdded)),
				Raw:     float64(res.FinalCount),
			},
			{
				Label: LabelBlendedRate,
				Value: Percent(res.BlendedMarginRate, 2),
				Raw:   res.BlendedMarginRate,
			},
		},
		Table:  Table{Rows: rows, Totals: totals},
		Charts: buildCharts(res),
		Summary: Summary{
			AddedUnits:        Units(res.Totals.AddedUnits),
			AddedRevenue:      Yen(res.Totals.AddedRevenue),
			AddedGrossProfit:  Yen(res.Totals.AddedGrossProfit),
			BlendedMarginRate: Percent(res.BlendedMarginRate, 1),
		},
		RoundingDrift: Drift{
			AddedUnits:       rowSum.AddedUnits - totals.AddedUnits,
			AddedRevenue:     rowSum.AddedRevenue - totals.AddedRevenue,
			AddedGrossProfit: rowSum.AddedGrossProfit - totals.AddedGrossProfit,
		},
	}
}

func buildCharts(res projection.Result) []ChartSeries {
	revenue := ChartSeries{
		Key:    "added_revenue",
		Title:  "会社別 追加売上高",
		YTitle: "追加売上高（円）",
		Points: make([]ChartPoint, len(res.Rows)),
	}
	profit := ChartSeries{
		Key:    "added_gross_profit",
		Title:  "会社別 追加粗利",
		YTitle: "追加粗利（円）",
		Points: make([]ChartPoint, len(res.Rows)),
	}
	for i, r := range res.Rows {
		revenue.Points[i] = ChartPoint{Label: r.Name, Value: r.AddedRevenue}
		profit.Points[i] = ChartPoint{Label: r.Name, Value: r.AddedGrossProfit}
	}
	return []ChartSeries{revenue, profit}
}

// SummaryLines renders the totals block as plain text lines.
func SummaryLines(v View) []string {
	return []string{
		fmt.Sprintf("%s：%s", LabelTotalAdded, v.Summary.AddedUnits),
		fmt.Sprintf("%s：%s", LabelTotalRevenue, v.Summary.AddedRevenue),
		fmt.Sprintf("%s：%s（平均粗利率 %s）", LabelTotalProfit, v.Summary.AddedGrossProfit, v.Summary.BlendedMarginRate),
	}
}
