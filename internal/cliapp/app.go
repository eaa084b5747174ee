// Package cliapp implements the skusim command line: load a scenario, apply overrides,
// validate, compute and print the projection in the requested format.
package cliapp

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/aristath/skusim/internal/modules/export"
	"github.com/aristath/skusim/internal/modules/presentation"
	"github.com/aristath/skusim/internal/modules/projection"
)

// Exit codes returned by Run.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

const (
	outputTable = "table"
	outputCSV   = "csv"
	outputXLSX  = "xlsx"
	outputJSON  = "json"
)

// Run executes the command line and returns the process exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	app := NewApp(stdout, stderr)

	err := app.Run(args)
	if err == nil {
		return ExitOK
	}

	var exitErr cli.ExitCoder
	if errors.As(err, &exitErr) {
		if msg := exitErr.Error(); msg != "" {
			fmt.Fprintln(stderr, msg)
		}
		return exitErr.ExitCode()
	}

	fmt.Fprintln(stderr, "error:", err)
	return ExitFailure
}

// NewApp builds the urfave/cli application. Errors are returned, never os.Exit-ed.
func NewApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "skusim",
		Usage:     "project added revenue and gross profit from SKU growth",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "scenario",
				Aliases: []string{"s"},
				Usage:   "YAML or JSON scenario file (built-in defaults when omitted)",
			},
			&cli.Int64Flag{Name: "baseline", Usage: "override the current SKU count"},
			&cli.Int64Flag{Name: "growth", Usage: "override the SKUs added per year"},
			&cli.Int64Flag{Name: "years", Usage: "override the horizon in years"},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   outputTable,
				Usage:   "output format: table, csv, xlsx or json",
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "write output to this file instead of stdout (required for xlsx)",
			},
			&cli.StringFlag{
				Name:  "header",
				Value: string(export.HeaderJapanese),
				Usage: "csv header language: ja or en",
			},
			&cli.BoolFlag{Name: "no-bom", Usage: "omit the UTF-8 byte order mark from csv output"},
		},
		Action: run,
		OnUsageError: func(c *cli.Context, err error, isSubcommand bool) error {
			return cli.Exit(err.Error(), ExitUsage)
		},
		ExitErrHandler: func(*cli.Context, error) {},
	}
}

func run(c *cli.Context) error {
	format := strings.ToLower(c.String("format"))
	switch format {
	case outputTable, outputCSV, outputXLSX, outputJSON:
	default:
		return cli.Exit(fmt.Sprintf("unsupported format %q (table, csv, xlsx or json)", format), ExitUsage)
	}
	if format == outputXLSX && c.String("out") == "" {
		return cli.Exit("xlsx output needs --out", ExitUsage)
	}
	locale, err := export.ParseHeaderLocale(c.String("header"))
	if err != nil {
		return cli.Exit(err.Error(), ExitUsage)
	}

	in, err := loadInput(c.String("scenario"))
	if err != nil {
		return cli.Exit(err.Error(), ExitUsage)
	}
	if c.IsSet("baseline") {
		in.BaselineCount = c.Int64("baseline")
	}
	if c.IsSet("growth") {
		in.AnnualGrowth = c.Int64("growth")
	}
	if c.IsSet("years") {
		in.HorizonYears = c.Int64("years")
	}

	if err := projection.Validate(in); err != nil {
		return cli.Exit(describeValidation(err), ExitUsage)
	}

	res := projection.Compute(in)
	view := presentation.BuildView(in, res)

	w, closeOut, err := openOutput(c.App.Writer, c.String("out"))
	if err != nil {
		return cli.Exit(err.Error(), ExitFailure)
	}

	switch format {
	case outputCSV:
		err = export.WriteCSV(w, view, export.CSVOptions{
			Locale: locale,
			NoBOM:  c.Bool("no-bom"),
		})
	case outputXLSX:
		err = export.WriteXLSX(w, view)
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(map[string]interface{}{
			"input":  in,
			"result": res,
			"view":   view,
		})
	default:
		_, err = io.WriteString(w, RenderTable(view, w))
	}

	if cerr := closeOut(); err == nil {
		err = cerr
	}
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to write %s output: %v", format, err), ExitFailure)
	}
	return nil
}

func loadInput(path string) (projection.Input, error) {
	if path == "" {
		return projection.DefaultInput(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return projection.Input{}, fmt.Errorf("failed to open scenario: %w", err)
	}
	defer f.Close()

	return projection.LoadScenario(f)
}

func openOutput(stdout io.Writer, path string) (io.Writer, func() error, error) {
	if path == "" {
		return stdout, func() error { return nil }, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}

// describeValidation lists one field per line, sorted by path.
func describeValidation(err error) string {
	var verr *projection.ValidationError
	if !errors.As(err, &verr) {
		return err.Error()
	}

	fields := make([]string, 0, len(verr.Fields))
	for field := range verr.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var b strings.Builder
	b.WriteString("invalid input:")
	for _, field := range fields {
		fmt.Fprintf(&b, "\n  %s: %s", field, verr.Fields[field])
	}
	return b.String()
}
