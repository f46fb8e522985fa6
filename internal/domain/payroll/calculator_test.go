package payroll

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestWorkedDays(t *testing.T) {
	tests := []struct {
		name       string
		start, end time.Time
		want       int
	}{
		{"same day", date(2024, 3, 1), date(2024, 3, 1), 1},
		{"full month", date(2024, 3, 1), date(2024, 3, 30), 30},
		{"first fortnight", date(2024, 2, 1), date(2024, 2, 15), 15},
		{"leap february", date(2024, 2, 1), date(2024, 2, 29), 29},
		{"across months", date(2024, 1, 25), date(2024, 2, 5), 12},
		{"time of day ignored", time.Date(2024, 3, 1, 23, 0, 0, 0, time.UTC), date(2024, 3, 2), 2},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, err := WorkedDays(tt.start, tt.end)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWorkedDays_InvalidPeriod(t *testing.T) {
	_, err := WorkedDays(date(2024, 3, 10), date(2024, 3, 9))
	assert.ErrorIs(t, err, ErrInvalidPeriod)

	_, err = WorkedDays(time.Time{}, date(2024, 3, 9))
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestCalculate_FullMonthWithOvertime(t *testing.T) {
	calc := NewCalculator(DefaultCalculatorConfig())

	got, err := calc.Calculate(CalculationInput{
		BaseSalary:  d("2400000"),
		PeriodStart: date(2024, 3, 1),
		PeriodEnd:   date(2024, 3, 30),
		Overtime:    []OvertimeEntry{{Category: OvertimeDay, Hours: d("4")}},
	})
	require.NoError(t, err)

	assert.Equal(t, 30, got.WorkedDays)
	assert.True(t, d("80000").Equal(got.DailyRate))
	assert.True(t, d("10000").Equal(got.HourlyRate))
	assert.True(t, d("2400000").Equal(got.BasePay))
	assert.True(t, d("50000").Equal(got.TotalOvertimePay))
	assert.True(t, d("4").Equal(got.TotalOvertimeHrs))
	assert.True(t, d("249095").Equal(got.TransportSubsidy))
	assert.True(t, d("2699095").Equal(got.GrossSubtotal))
	assert.True(t, d("98000").Equal(got.Pension))
	assert.True(t, d("98000").Equal(got.Health))
	assert.True(t, d("196000").Equal(got.TotalDeductions))
	assert.True(t, d("2503095").Equal(got.NetPay))

	require.Len(t, got.OvertimeLines, 1)
	line := got.OvertimeLines[0]
	assert.Equal(t, OvertimeDay, line.Category)
	assert.True(t, d("25").Equal(line.SurchargePercent))
	assert.True(t, d("10000").Equal(line.BaseHourlyValue))
	assert.True(t, d("12500").Equal(line.OvertimeHourlyValue))
	assert.True(t, d("50000").Equal(line.Total))
}

func TestCalculate_Invariants(t *testing.T) {
	calc := NewCalculator(DefaultCalculatorConfig())

	got, err := calc.Calculate(CalculationInput{
		BaseSalary:  d("1750905"),
		PeriodStart: date(2024, 6, 1),
		PeriodEnd:   date(2024, 6, 15),
		Overtime: []OvertimeEntry{
			{Category: OvertimeNight, Hours: d("3.5")},
			{Category: OvertimeDaySundayHoliday, Hours: d("2")},
			{Category: OvertimeNightSundayHoliday, Hours: d("1")},
		},
	})
	require.NoError(t, err)

	assert.True(t, got.NetPay.Equal(got.GrossSubtotal.Sub(got.TotalDeductions)))
	assert.True(t, got.TotalDeductions.Equal(got.Pension.Add(got.Health)))
	assert.True(t, got.GrossSubtotal.Equal(got.BasePay.Add(got.TotalOvertimePay).Add(got.TransportSubsidy)))

	sum := decimal.Zero
	for _, l := range got.OvertimeLines {
		sum = sum.Add(l.Total)
	}
	assert.True(t, sum.Equal(got.TotalOvertimePay))
	assert.Len(t, got.OvertimeLines, 3)
}

func TestCalculate_EdgeCases(t *testing.T) {
	calc := NewCalculator(DefaultCalculatorConfig())
	base := CalculationInput{
		BaseSalary:  d("1000000"),
		PeriodStart: date(2024, 3, 1),
		PeriodEnd:   date(2024, 3, 1),
	}

	t.Run("single day period", func(t *testing.T) {
		got, err := calc.Calculate(base)
		require.NoError(t, err)
		assert.Equal(t, 1, got.WorkedDays)
		assert.True(t, DailyRate(d("1000000")).Round(2).Equal(got.BasePay))
	})

	t.Run("zero salary", func(t *testing.T) {
		in := base
		in.BaseSalary = decimal.Zero
		got, err := calc.Calculate(in)
		require.NoError(t, err)
		assert.True(t, got.BasePay.IsZero())
		assert.True(t, got.TotalDeductions.IsZero())
		assert.True(t, got.NetPay.Equal(DefaultTransportSubsidy))
	})

	t.Run("negative salary", func(t *testing.T) {
		in := base
		in.BaseSalary = d("-1")
		_, err := calc.Calculate(in)
		assert.ErrorIs(t, err, ErrNegativeSalary)
	})

	t.Run("end before start", func(t *testing.T) {
		in := base
		in.PeriodEnd = date(2024, 2, 28)
		_, err := calc.Calculate(in)
		assert.ErrorIs(t, err, ErrInvalidPeriod)
	})

	t.Run("negative hours clamp to zero", func(t *testing.T) {
		in := base
		in.Overtime = []OvertimeEntry{{Category: OvertimeDay, Hours: d("-3")}}
		got, err := calc.Calculate(in)
		require.NoError(t, err)
		require.Len(t, got.OvertimeLines, 1)
		assert.True(t, got.OvertimeLines[0].Hours.IsZero())
		assert.True(t, got.TotalOvertimePay.IsZero())
	})

	t.Run("unknown category dropped", func(t *testing.T) {
		in := base
		in.Overtime = []OvertimeEntry{{Category: "EXTRA_FANTASMA", Hours: d("3")}}
		got, err := calc.Calculate(in)
		require.NoError(t, err)
		assert.Empty(t, got.OvertimeLines)
		assert.Equal(t, 1, got.DroppedOvertime)
		assert.True(t, got.TotalOvertimePay.IsZero())
	})
}

func TestCalculate_CustomConstants(t *testing.T) {
	calc := NewCalculator(CalculatorConfig{
		TransportSubsidy: d("0"),
		PensionRate:      d("0.1"),
		HealthRate:       d("0"),
	})

	got, err := calc.Calculate(CalculationInput{
		BaseSalary:  d("3000000"),
		PeriodStart: date(2024, 4, 1),
		PeriodEnd:   date(2024, 4, 30),
	})
	require.NoError(t, err)

	assert.True(t, d("3000000").Equal(got.GrossSubtotal))
	assert.True(t, d("300000").Equal(got.Pension))
	assert.True(t, got.Health.IsZero())
	assert.True(t, d("2700000").Equal(got.NetPay))
}
