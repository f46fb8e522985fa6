package payroll

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sistema-nomina/backend-nomina/internal/pkg/validator"
)

const MaxConceptLength = 100

// Exclusive upper bounds of the storage columns: NUMERIC(12,2), NUMERIC(8,2) and NUMERIC(5,2).
var (
	maxMoney   = decimal.New(1, 10)
	maxHours   = decimal.New(1, 6)
	maxPercent = decimal.New(1, 3)
)

// NormalizePaymentType maps anything other than QUINCENAL to MENSUAL.
func NormalizePaymentType(s string) PaymentType {
	if PaymentType(s) == PaymentTypeBiweekly {
		return PaymentTypeBiweekly
	}
	return PaymentTypeMonthly
}

// TruncateConcept cuts a concept to MaxConceptLength characters.
func TruncateConcept(s string) string {
	if len(s) <= MaxConceptLength {
		return s
	}
	runes := []rune(s)
	if len(runes) <= MaxConceptLength {
		return s
	}
	return string(runes[:MaxConceptLength])
}

// IsPersistableDetail keeps lines with a storable concept and a non-negative value that fits its column.
func IsPersistableDetail(line DetailLine) bool {
	return isStorableText(line.Concept) &&
		!line.Value.IsNegative() &&
		fitsColumn(line.Value, maxMoney)
}

// IsPersistableOvertime keeps lines of a known category with positive hours and a
// non-negative total, every value fitting its column.
func IsPersistableOvertime(line OvertimeLine) bool {
	return IsKnownOvertimeCategory(line.Category) &&
		line.Hours.IsPositive() &&
		fitsColumn(line.Hours, maxHours) &&
		!line.SurchargePercent.IsNegative() &&
		fitsColumn(line.SurchargePercent, maxPercent) &&
		fitsColumn(line.BaseHourlyValue, maxMoney) &&
		fitsColumn(line.OvertimeHourlyValue, maxMoney) &&
		!line.Total.IsNegative() &&
		fitsColumn(line.Total, maxMoney)
}

// isStorableText rejects blank text and NUL bytes, which Postgres text columns refuse.
func isStorableText(s string) bool {
	return !validator.IsEmpty(s) && !strings.ContainsRune(s, 0)
}

func fitsColumn(d, limit decimal.Decimal) bool {
	return d.Abs().LessThan(limit)
}

// NormalizeDetailLine converts a raw entry into a DetailLine, or reports false when it must be dropped.
func NormalizeDetailLine(req DetailLineRequest) (DetailLine, bool) {
	if !req.Value.Valid {
		return DetailLine{}, false
	}
	line := DetailLine{
		Concept: TruncateConcept(req.Concept.String()),
		Value:   req.Value.Decimal().Round(moneyPlaces),
	}
	return line, IsPersistableDetail(line)
}

// NormalizeOvertimeLine converts a raw entry into an OvertimeLine, completing
// derived values the caller left out, or reports false when it must be dropped.
func NormalizeOvertimeLine(req OvertimeLineRequest) (OvertimeLine, bool) {
	category := OvertimeCategory(strings.TrimSpace(req.Category.String()))
	if !IsKnownOvertimeCategory(category) || !req.Hours.Valid {
		return OvertimeLine{}, false
	}

	// values are rounded to the column scale before the checks run
	percent := req.SurchargePercent.Decimal().Round(moneyPlaces)
	if !req.SurchargePercent.Valid || percent.IsZero() {
		percent, _ = SurchargePercent(category)
	}

	base := req.BaseHourlyValue.Decimal().Round(moneyPlaces)
	extra := req.OvertimeHourlyValue.Decimal().Round(moneyPlaces)
	if !req.OvertimeHourlyValue.Valid || extra.IsZero() {
		factor := decimal.NewFromInt(1).Add(percent.Div(hundred))
		extra = base.Mul(factor).Round(moneyPlaces)
	}

	hours := req.Hours.Decimal().Round(moneyPlaces)
	total := req.Total.Decimal().Round(moneyPlaces)
	if !req.Total.Valid {
		total = hours.Mul(extra).Round(moneyPlaces)
	}

	line := OvertimeLine{
		Category:            category,
		SurchargePercent:    percent,
		Hours:               hours,
		BaseHourlyValue:     base,
		OvertimeHourlyValue: extra,
		Total:               total,
	}
	return line, IsPersistableOvertime(line)
}
