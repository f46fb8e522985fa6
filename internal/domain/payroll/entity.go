package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentType enum
type PaymentType string

const (
	PaymentTypeMonthly  PaymentType = "MENSUAL"
	PaymentTypeBiweekly PaymentType = "QUINCENAL"
)

// PayrollRecord - Payroll header (nomina)
type PayrollRecord struct {
	ID              int64
	EmployeeID      int64
	PeriodStart     time.Time
	PeriodEnd       time.Time
	PaymentType     PaymentType
	TotalEarned     decimal.Decimal
	TotalDeductions decimal.Decimal
	TotalPayable    decimal.Decimal // computed by the store: earned - deductions
	CreatedAt       time.Time

	// Joined fields
	EmployeeName *string
}

// DetailLine - Itemized concept of a payroll (detalle_nomina)
type DetailLine struct {
	ID        int64
	PayrollID int64
	Concept   string
	Value     decimal.Decimal
}

// OvertimeLine - Overtime entry of a payroll (horas_extra_nomina)
type OvertimeLine struct {
	ID                  int64
	PayrollID           int64
	Category            OvertimeCategory
	SurchargePercent    decimal.Decimal
	Hours               decimal.Decimal
	BaseHourlyValue     decimal.Decimal
	OvertimeHourlyValue decimal.Decimal
	Total               decimal.Decimal
	CreatedAt           time.Time
}

// MonthlyReport - Running aggregate per (year, month) (reporte_nomina_mensual)
type MonthlyReport struct {
	ID                 int64
	Year               int
	Month              int
	TotalPayrolls      int
	TotalEarned        decimal.Decimal
	TotalDeductions    decimal.Decimal
	TotalPaid          decimal.Decimal
	TotalOvertimeHours decimal.Decimal
	TotalOvertimeValue decimal.Decimal
	UpdatedAt          time.Time
}

// MonthlyReportIncrement is what a single payroll adds to its month's report.
type MonthlyReportIncrement struct {
	Year               int
	Month              int
	TotalEarned        decimal.Decimal
	TotalDeductions    decimal.Decimal
	TotalPaid          decimal.Decimal
	TotalOvertimeHours decimal.Decimal
	TotalOvertimeValue decimal.Decimal
}
