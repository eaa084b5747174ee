// Package export writes projection tables to downloadable files and hands them to a sink.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aristath/skusim/internal/modules/presentation"
)

// Format is a supported export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat maps a query or flag value to a Format. Empty means CSV.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported export format %q (must be csv or xlsx)", s)
	}
}

// ContentType returns the MIME type of files in format f.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// FileName returns the default download name for format f.
func FileName(f Format) string {
	return "sku_simulator." + string(f)
}

// HeaderLocale selects the language of the header row.
type HeaderLocale string

const (
	HeaderJapanese HeaderLocale = "ja"
	HeaderEnglish  HeaderLocale = "en"
)

// ParseHeaderLocale maps a flag value to a HeaderLocale. Empty means Japanese.
func ParseHeaderLocale(s string) (HeaderLocale, error) {
	switch HeaderLocale(strings.ToLower(s)) {
	case "", HeaderJapanese:
		return HeaderJapanese, nil
	case HeaderEnglish:
		return HeaderEnglish, nil
	default:
		return "", fmt.Errorf("unsupported header language %q (must be ja or en)", s)
	}
}

// Columns returns the header row in the requested locale.
func Columns(locale HeaderLocale) []string {
	if locale == HeaderEnglish {
		return []string{
			"entity", "share_pct", "added_units", "revenue_per_unit",
			"margin_rate", "gross_profit_per_unit", "added_revenue", "added_gross_profit",
		}
	}
	return []string{
		presentation.LabelEntity,
		presentation.LabelSharePct,
		presentation.LabelAddedUnits,
		presentation.LabelRevenuePerUnit,
		presentation.LabelMarginRate,
		presentation.LabelGrossProfitPerUnit,
		presentation.LabelAddedRevenue,
		presentation.LabelAddedGrossProfit,
	}
}

// CSVOptions controls CSV output.
type CSVOptions struct {
	Locale HeaderLocale
	// NoBOM suppresses the UTF-8 byte order mark spreadsheet apps need to detect UTF-8.
	NoBOM bool
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV writes one header row followed by one row per entity of view's table.
func WriteCSV(w io.Writer, view presentation.View, opts CSVOptions) error {
	if !opts.NoBOM {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Columns(opts.Locale)); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range view.Table.Rows {
		if err := cw.Write(recordOf(row)); err != nil {
			return fmt.Errorf("failed to write CSV row %q: %w", row.Name, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

func recordOf(row presentation.TableRow) []string {
	return []string{
		row.Name,
		strconv.FormatFloat(row.SharePct, 'f', -1, 64),
		strconv.FormatInt(row.AddedUnits, 10),
		strconv.FormatInt(row.RevenuePerUnit, 10),
		strconv.FormatFloat(row.MarginRate, 'f', -1, 64),
		strconv.FormatInt(row.GrossProfitPerUnit, 10),
		strconv.FormatInt(row.AddedRevenue, 10),
		strconv.FormatInt(row.AddedGrossProfit, 10),
	}
}
