package payroll

import "github.com/shopspring/decimal"

// OvertimeCategory enum
type OvertimeCategory string

const (
	OvertimeDay                OvertimeCategory = "EXTRA_DIURNA"
	OvertimeNight              OvertimeCategory = "EXTRA_NOCTURNA"
	OvertimeDaySundayHoliday   OvertimeCategory = "EXTRA_DIURNA_DOMINICAL_FESTIVO"
	OvertimeNightSundayHoliday OvertimeCategory = "EXTRA_NOCTURNA_DOMINICAL_FESTIVO"
)

const (
	MonthDays  = 30
	MonthHours = 240
)

var hundred = decimal.NewFromInt(100)

// overtimeSurcharges is the fraction added on top of the ordinary hourly rate.
var overtimeSurcharges = map[OvertimeCategory]decimal.Decimal{
	OvertimeDay:                decimal.RequireFromString("0.25"),
	OvertimeNight:              decimal.RequireFromString("0.75"),
	OvertimeDaySundayHoliday:   decimal.RequireFromString("1.05"),
	OvertimeNightSundayHoliday: decimal.RequireFromString("1.55"),
}

// OvertimeCategories returns the known categories in display order.
func OvertimeCategories() []OvertimeCategory {
	return []OvertimeCategory{
		OvertimeDay,
		OvertimeNight,
		OvertimeDaySundayHoliday,
		OvertimeNightSundayHoliday,
	}
}

// Surcharge returns the surcharge fraction for a category (0.25 for EXTRA_DIURNA).
func Surcharge(category OvertimeCategory) (decimal.Decimal, bool) {
	s, ok := overtimeSurcharges[category]
	return s, ok
}

// SurchargePercent returns the surcharge as a percentage (25 for EXTRA_DIURNA).
func SurchargePercent(category OvertimeCategory) (decimal.Decimal, bool) {
	s, ok := overtimeSurcharges[category]
	if !ok {
		return decimal.Zero, false
	}
	return s.Mul(hundred), true
}

func IsKnownOvertimeCategory(category OvertimeCategory) bool {
	_, ok := overtimeSurcharges[category]
	return ok
}

// DailyRate is salary / 30.
func DailyRate(salary decimal.Decimal) decimal.Decimal {
	return salary.Div(decimal.NewFromInt(MonthDays))
}

// HourlyRate is salary / 240.
func HourlyRate(salary decimal.Decimal) decimal.Decimal {
	return salary.Div(decimal.NewFromInt(MonthHours))
}

// OvertimeHourlyRate applies the category surcharge to an ordinary hourly rate.
// Unknown categories yield false.
func OvertimeHourlyRate(hourly decimal.Decimal, category OvertimeCategory) (decimal.Decimal, bool) {
	s, ok := overtimeSurcharges[category]
	if !ok {
		return decimal.Zero, false
	}
	return hourly.Mul(decimal.NewFromInt(1).Add(s)), true
}
