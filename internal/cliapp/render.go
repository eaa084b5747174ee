package cliapp

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/aristath/skusim/internal/modules/presentation"
)

const barWidth = 30

// RenderTable lays out the KPIs, the entity table, both bar charts and the totals
// summary. Colors are only emitted when w is a terminal.
func RenderTable(v presentation.View, w io.Writer) string {
	r := lipgloss.NewRenderer(w)
	title := r.NewStyle().Bold(true)
	muted := r.NewStyle().Faint(true)

	var sections []string
	sections = append(sections, title.Render(v.Title), muted.Render(v.Caption), "")

	for _, kpi := range v.KPIs {
		line := fmt.Sprintf("%s  %s", kpi.Label, title.Render(kpi.Value))
		if kpi.Caption != "" {
			line += "  " + muted.Render(kpi.Caption)
		}
		sections = append(sections, line)
	}
	sections = append(sections, "", entityTable(r, v.Table).String(), "")

	for _, series := range v.Charts {
		sections = append(sections, title.Render(series.Title), renderBars(r, series), "")
	}

	sections = append(sections, presentation.SummaryLines(v)...)
	if d := v.RoundingDrift; d != (presentation.Drift{}) {
		sections = append(sections, muted.Render(fmt.Sprintf(
			"(rounded rows differ from totals by %d units, %d yen revenue, %d yen profit)",
			d.AddedUnits, d.AddedRevenue, d.AddedGrossProfit,
		)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...) + "\n"
}

func entityTable(r *lipgloss.Renderer, t presentation.Table) *table.Table {
	header := r.NewStyle().Bold(true).Padding(0, 1)
	cell := r.NewStyle().Padding(0, 1)
	numeric := cell.Align(lipgloss.Right)

	rows := make([][]string, 0, len(t.Rows)+1)
	for _, row := range t.Rows {
		rows = append(rows, []string{
			row.Name,
			fmt.Sprintf("%.1f", row.SharePct),
			presentation.Count(row.AddedUnits),
			presentation.Count(row.RevenuePerUnit),
			row.MarginLabel,
			presentation.Count(row.GrossProfitPerUnit),
			presentation.Count(row.AddedRevenue),
			presentation.Count(row.AddedGrossProfit),
		})
	}
	rows = append(rows, []string{
		"合計", "", presentation.Count(t.Totals.AddedUnits), "", "", "",
		presentation.Count(t.Totals.AddedRevenue),
		presentation.Count(t.Totals.AddedGrossProfit),
	})

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(r.NewStyle().Faint(true)).
		Headers(
			presentation.LabelEntity,
			presentation.LabelSharePct,
			presentation.LabelAddedUnits,
			presentation.LabelRevenuePerUnit,
			presentation.LabelMarginRate,
			presentation.LabelGrossProfitPerUnit,
			presentation.LabelAddedRevenue,
			presentation.LabelAddedGrossProfit,
		).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return header
			case col == 0:
				return cell
			default:
				return numeric
			}
		})
}

// renderBars draws one horizontal bar per point, scaled to the largest value.
func renderBars(r *lipgloss.Renderer, series presentation.ChartSeries) string {
	maxValue := 0.0
	labelWidth := 0
	for _, p := range series.Points {
		maxValue = math.Max(maxValue, p.Value)
		labelWidth = max(labelWidth, lipgloss.Width(p.Label))
	}

	fill := r.NewStyle().Foreground(lipgloss.Color("4"))
	lines := make([]string, len(series.Points))
	for i, p := range series.Points {
		label := r.NewStyle().Width(labelWidth).Render(p.Label)
		lines[i] = fmt.Sprintf("%s %s %s", label, fill.Render(bar(p.Value, maxValue, barWidth)), presentation.Yen(p.Value))
	}
	return strings.Join(lines, "\n")
}

// bar returns a width-cell bar for value/maxValue using eighth-block runes for the
// fractional cell.
func bar(value, maxValue float64, width int) string {
	eighths := []rune{'▏', '▎', '▍', '▌', '▋', '▊', '▉'}

	cells := make([]rune, width)
	for i := range cells {
		cells[i] = ' '
	}
	if maxValue <= 0 || value <= 0 || math.IsNaN(value) {
		return string(cells)
	}

	filled := math.Min(value/maxValue, 1) * float64(width)
	full := int(filled)
	for i := 0; i < full; i++ {
		cells[i] = '█'
	}
	if idx := int((filled-float64(full))*8) - 1; idx >= 0 && full < width {
		cells[full] = eighths[idx]
	}
	return string(cells)
}
