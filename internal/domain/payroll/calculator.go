package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

const moneyPlaces = 2

var (
	DefaultTransportSubsidy = decimal.NewFromInt(249095)
	DefaultPensionRate      = decimal.RequireFromString("0.04")
	DefaultHealthRate       = decimal.RequireFromString("0.04")
)

// CalculatorConfig holds the statutory constants used by Calculator.
type CalculatorConfig struct {
	TransportSubsidy decimal.Decimal
	PensionRate      decimal.Decimal
	HealthRate       decimal.Decimal
}

// DefaultCalculatorConfig returns the constants currently in force.
func DefaultCalculatorConfig() CalculatorConfig {
	return CalculatorConfig{
		TransportSubsidy: DefaultTransportSubsidy,
		PensionRate:      DefaultPensionRate,
		HealthRate:       DefaultHealthRate,
	}
}

// OvertimeEntry is one requested block of overtime hours.
type OvertimeEntry struct {
	Category OvertimeCategory
	Hours    decimal.Decimal
}

type CalculationInput struct {
	BaseSalary  decimal.Decimal
	PeriodStart time.Time
	PeriodEnd   time.Time
	Overtime    []OvertimeEntry
}

type Calculation struct {
	WorkedDays       int
	DailyRate        decimal.Decimal
	HourlyRate       decimal.Decimal
	BasePay          decimal.Decimal
	OvertimeLines    []OvertimeLine
	DroppedOvertime  int // entries with an unknown category
	TotalOvertimePay decimal.Decimal
	TotalOvertimeHrs decimal.Decimal
	TransportSubsidy decimal.Decimal
	GrossSubtotal    decimal.Decimal
	Pension          decimal.Decimal
	Health           decimal.Decimal
	TotalDeductions  decimal.Decimal
	NetPay           decimal.Decimal
}

// Calculator derives a payroll from salary, period and overtime. It has no side effects.
type Calculator struct {
	cfg CalculatorConfig
}

func NewCalculator(cfg CalculatorConfig) *Calculator {
	return &Calculator{cfg: cfg}
}

// WorkedDays counts calendar days in [start, end], both inclusive.
func WorkedDays(start, end time.Time) (int, error) {
	if start.IsZero() || end.IsZero() {
		return 0, ErrInvalidPeriod
	}
	start = truncateToDate(start)
	end = truncateToDate(end)
	if end.Before(start) {
		return 0, ErrInvalidPeriod
	}
	return int(end.Sub(start).Hours()/24) + 1, nil
}

func (c *Calculator) Calculate(in CalculationInput) (Calculation, error) {
	if in.BaseSalary.IsNegative() {
		return Calculation{}, ErrNegativeSalary
	}

	days, err := WorkedDays(in.PeriodStart, in.PeriodEnd)
	if err != nil {
		return Calculation{}, err
	}

	daily := DailyRate(in.BaseSalary)
	hourly := HourlyRate(in.BaseSalary)
	basePay := daily.Mul(decimal.NewFromInt(int64(days))).Round(moneyPlaces)

	lines := make([]OvertimeLine, 0, len(in.Overtime))
	overtimePay := decimal.Zero
	overtimeHours := decimal.Zero
	dropped := 0
	for _, entry := range in.Overtime {
		extraHourly, ok := OvertimeHourlyRate(hourly, entry.Category)
		if !ok {
			dropped++
			continue
		}
		hours := entry.Hours
		if hours.IsNegative() {
			hours = decimal.Zero
		}
		percent, _ := SurchargePercent(entry.Category)
		total := hours.Mul(extraHourly).Round(moneyPlaces)

		lines = append(lines, OvertimeLine{
			Category:            entry.Category,
			SurchargePercent:    percent,
			Hours:               hours,
			BaseHourlyValue:     hourly.Round(moneyPlaces),
			OvertimeHourlyValue: extraHourly.Round(moneyPlaces),
			Total:               total,
		})
		overtimePay = overtimePay.Add(total)
		overtimeHours = overtimeHours.Add(hours)
	}

	contributionBase := basePay.Add(overtimePay)
	pension := contributionBase.Mul(c.cfg.PensionRate).Round(moneyPlaces)
	health := contributionBase.Mul(c.cfg.HealthRate).Round(moneyPlaces)
	deductions := pension.Add(health)
	gross := contributionBase.Add(c.cfg.TransportSubsidy)

	return Calculation{
		WorkedDays:       days,
		DailyRate:        daily.Round(moneyPlaces),
		HourlyRate:       hourly.Round(moneyPlaces),
		BasePay:          basePay,
		OvertimeLines:    lines,
		DroppedOvertime:  dropped,
		TotalOvertimePay: overtimePay,
		TotalOvertimeHrs: overtimeHours,
		TransportSubsidy: c.cfg.TransportSubsidy,
		GrossSubtotal:    gross,
		Pension:          pension,
		Health:           health,
		TotalDeductions:  deductions,
		NetPay:           gross.Sub(deductions),
	}, nil
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
