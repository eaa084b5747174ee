package projection

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_DefaultInputIsValid(t *testing.T) {
	assert.NoError(t, Validate(DefaultInput()))
}

func TestValidate_Ranges(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *Input)
		field  string
		rule   string
	}{
		{
			name:   "negative baseline",
			mutate: func(in *Input) { in.BaselineCount = -1 },
			field:  "baseline_count",
			rule:   "gte",
		},
		{
			name:   "negative annual growth",
			mutate: func(in *Input) { in.AnnualGrowth = -1000 },
			field:  "annual_growth",
			rule:   "gte",
		},
		{
			name:   "zero horizon",
			mutate: func(in *Input) { in.HorizonYears = 0 },
			field:  "horizon_years",
			rule:   "gte",
		},
		{
			name:   "no entities",
			mutate: func(in *Input) { in.Entities = nil },
			field:  "entities",
			rule:   "min",
		},
		{
			name:   "blank name",
			mutate: func(in *Input) { in.Entities[0].Name = "   " },
			field:  "entities[0].name",
			rule:   "notblank",
		},
		{
			name:   "negative weight",
			mutate: func(in *Input) { in.Entities[1].Weight = -0.1 },
			field:  "entities[1].weight",
			rule:   "gte",
		},
		{
			name:   "negative revenue per unit",
			mutate: func(in *Input) { in.Entities[2].RevenuePerUnit = -5 },
			field:  "entities[2].revenue_per_unit",
			rule:   "gte",
		},
		{
			name:   "margin above one",
			mutate: func(in *Input) { in.Entities[1].MarginRate = 1.01 },
			field:  "entities[1].margin_rate",
			rule:   "lte",
		},
		{
			name:   "negative margin",
			mutate: func(in *Input) { in.Entities[0].MarginRate = -0.2 },
			field:  "entities[0].margin_rate",
			rule:   "gte",
		},
		{
			name:   "NaN weight",
			mutate: func(in *Input) { in.Entities[0].Weight = math.NaN() },
			field:  "entities[0].weight",
			rule:   "finite",
		},
		{
			name:   "infinite revenue",
			mutate: func(in *Input) { in.Entities[2].RevenuePerUnit = math.Inf(1) },
			field:  "entities[2].revenue_per_unit",
			rule:   "finite",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := DefaultInput()
			tt.mutate(&in)

			err := Validate(in)
			require.Error(t, err)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.rule, verr.Fields[tt.field], "fields: %v", verr.Fields)
		})
	}
}

func TestValidate_BoundaryValuesAccepted(t *testing.T) {
	in := Input{
		BaselineCount: 0,
		AnnualGrowth:  0,
		HorizonYears:  1,
		Entities: []EntityConfig{
			{Name: "edge-low", Weight: 0, RevenuePerUnit: 0, MarginRate: 0},
			{Name: "edge-high", Weight: 0, RevenuePerUnit: 0, MarginRate: 1},
		},
	}
	assert.NoError(t, Validate(in))
}

func TestValidate_ReportsAllFields(t *testing.T) {
	in := DefaultInput()
	in.HorizonYears = 0
	in.Entities[0].MarginRate = 2
	in.Entities[1].Weight = -1

	err := Validate(in)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Fields, 3)

	msg := err.Error()
	assert.True(t, strings.HasPrefix(msg, "invalid projection input: "))
	assert.Less(t, strings.Index(msg, "entities[0]"), strings.Index(msg, "horizon_years"), "fields are sorted")
}

func TestValidate_UpperBounds(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *Input)
		field  string
	}{
		{"baseline above cap", func(in *Input) { in.BaselineCount = MaxCount + 1 }, "baseline_count"},
		{"growth above cap", func(in *Input) { in.AnnualGrowth = 5_000_000_000 * 1_000_000 }, "annual_growth"},
		{"horizon above cap", func(in *Input) { in.HorizonYears = 5_000_000_000 }, "horizon_years"},
		{"revenue above cap", func(in *Input) { in.Entities[0].RevenuePerUnit = 1e300 }, "entities[0].revenue_per_unit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := DefaultInput()
			tt.mutate(&in)

			var verr *ValidationError
			require.ErrorAs(t, Validate(in), &verr)
			assert.Equal(t, "lte", verr.Fields[tt.field])
		})
	}
}

func TestValidate_CapsCannotOverflow(t *testing.T) {
	in := DefaultInput()
	in.BaselineCount = MaxCount
	in.AnnualGrowth = MaxCount
	in.HorizonYears = MaxHorizonYears
	in.Entities[0].RevenuePerUnit = MaxRevenuePerUnit
	require.NoError(t, Validate(in))

	require.LessOrEqual(t, int64(MaxCount), int64(math.MaxInt64)/MaxHorizonYears)
	assert.LessOrEqual(t, int64(MaxCount), int64(math.MaxInt64)-MaxCount*MaxHorizonYears)

	res := Compute(in)
	assert.Equal(t, int64(MaxCount)*MaxHorizonYears, res.TotalAdded)
	assert.Equal(t, int64(MaxCount)*(MaxHorizonYears+1), res.FinalCount)
}

func TestDefaultBounds_MatchValidation(t *testing.T) {
	b := DefaultBounds()
	require.NotNil(t, b.BaselineCount.Max)
	require.NotNil(t, b.HorizonYears.Max)
	require.NotNil(t, b.RevenuePerUnit.Max)
	assert.Equal(t, float64(MaxCount), *b.BaselineCount.Max)
	assert.Equal(t, float64(MaxCount), *b.AnnualGrowth.Max)
	assert.Equal(t, float64(MaxHorizonYears), *b.HorizonYears.Max)
	assert.Equal(t, MaxRevenuePerUnit, *b.RevenuePerUnit.Max)
	assert.Nil(t, b.Weight.Max)

	in := DefaultInput()
	in.BaselineCount = int64(*b.BaselineCount.Max)
	in.AnnualGrowth = int64(*b.AnnualGrowth.Max)
	in.HorizonYears = int64(*b.HorizonYears.Max)
	in.Entities[0].RevenuePerUnit = *b.RevenuePerUnit.Max
	assert.NoError(t, Validate(in))
}
