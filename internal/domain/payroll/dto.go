package payroll

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sistema-nomina/backend-nomina/internal/pkg/validator"
)

const dateLayout = "2006-01-02"

// ========== CREATE PAYROLL ==========

type DetailLineRequest struct {
	Concept LenientText    `json:"concepto"`
	Value   LenientDecimal `json:"valor"`
}

// UnmarshalJSON leaves non-object entries empty so they get filtered out.
func (r *DetailLineRequest) UnmarshalJSON(data []byte) error {
	*r = DetailLineRequest{}
	if !isJSONKind(data, '{') {
		return nil
	}
	type plain DetailLineRequest
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return nil
	}
	*r = DetailLineRequest(p)
	return nil
}

type OvertimeLineRequest struct {
	Category            LenientText    `json:"tipo_hora"`
	SurchargePercent    LenientDecimal `json:"porcentaje_recargo"`
	Hours               LenientDecimal `json:"horas"`
	BaseHourlyValue     LenientDecimal `json:"valor_hora_base"`
	OvertimeHourlyValue LenientDecimal `json:"valor_hora_extra"`
	Total               LenientDecimal `json:"valor_total"`
}

func (r *OvertimeLineRequest) UnmarshalJSON(data []byte) error {
	*r = OvertimeLineRequest{}
	if !isJSONKind(data, '{') {
		return nil
	}
	type plain OvertimeLineRequest
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return nil
	}
	*r = OvertimeLineRequest(p)
	return nil
}

// DetailLineList decodes to nil when the field is not an array.
type DetailLineList []DetailLineRequest

func (l *DetailLineList) UnmarshalJSON(data []byte) error {
	*l = nil
	if !isJSONKind(data, '[') {
		return nil
	}
	var items []DetailLineRequest
	if err := json.Unmarshal(data, &items); err != nil {
		return nil
	}
	*l = items
	return nil
}

// OvertimeLineList decodes to nil when the field is not an array.
type OvertimeLineList []OvertimeLineRequest

func (l *OvertimeLineList) UnmarshalJSON(data []byte) error {
	*l = nil
	if !isJSONKind(data, '[') {
		return nil
	}
	var items []OvertimeLineRequest
	if err := json.Unmarshal(data, &items); err != nil {
		return nil
	}
	*l = items
	return nil
}

type CreatePayrollRequest struct {
	EmployeeID      EmployeeRef      `json:"id_empleado"`
	PeriodStart     LenientText      `json:"fecha_inicio"`
	PeriodEnd       LenientText      `json:"fecha_corte"`
	PaymentType     LenientText      `json:"tipo_pago"`
	TotalEarned     LenientDecimal   `json:"total_devengado"`
	TotalDeductions LenientDecimal   `json:"total_deducciones"`
	Details         DetailLineList   `json:"detalles"`
	Overtime        OvertimeLineList `json:"horas_extras"`
}

// CreatePayrollCommand is a validated payroll ready to be written.
type CreatePayrollCommand struct {
	Record          PayrollRecord
	Details         []DetailLine
	Overtime        []OvertimeLine
	DroppedDetails  int
	DroppedOvertime int
}

// Normalize validates the request and filters its sub-entries.
// Only header problems fail; bad detail or overtime entries are dropped.
func (r *CreatePayrollRequest) Normalize() (CreatePayrollCommand, error) {
	if r.EmployeeID <= 0 || validator.IsEmpty(r.PeriodStart.String()) || validator.IsEmpty(r.PeriodEnd.String()) {
		return CreatePayrollCommand{}, ErrMissingRequiredFields
	}

	start, okStart := parseDate(r.PeriodStart.String())
	end, okEnd := parseDate(r.PeriodEnd.String())
	if !okStart || !okEnd {
		return CreatePayrollCommand{}, ErrInvalidDates
	}
	if end.Before(start) {
		return CreatePayrollCommand{}, ErrPeriodOutOfOrder
	}

	earned := r.TotalEarned.Decimal().Round(moneyPlaces)
	deductions := r.TotalDeductions.Decimal().Round(moneyPlaces)
	if earned.IsNegative() || deductions.IsNegative() {
		return CreatePayrollCommand{}, ErrNegativeTotals
	}
	if !fitsColumn(earned, maxMoney) || !fitsColumn(deductions, maxMoney) {
		return CreatePayrollCommand{}, ErrTotalsOutOfRange
	}

	cmd := CreatePayrollCommand{
		Record: PayrollRecord{
			EmployeeID:      int64(r.EmployeeID),
			PeriodStart:     start,
			PeriodEnd:       end,
			PaymentType:     NormalizePaymentType(strings.TrimSpace(r.PaymentType.String())),
			TotalEarned:     earned,
			TotalDeductions: deductions,
		},
	}

	for _, item := range r.Details {
		line, ok := NormalizeDetailLine(item)
		if !ok {
			cmd.DroppedDetails++
			continue
		}
		cmd.Details = append(cmd.Details, line)
	}

	for _, item := range r.Overtime {
		line, ok := NormalizeOvertimeLine(item)
		if !ok {
			cmd.DroppedOvertime++
			continue
		}
		cmd.Overtime = append(cmd.Overtime, line)
	}

	return cmd, nil
}

// ReportIncrement returns the contribution of this payroll to the month of its cut-off date.
func (c CreatePayrollCommand) ReportIncrement() MonthlyReportIncrement {
	hours := decimal.Zero
	value := decimal.Zero
	for _, line := range c.Overtime {
		hours = hours.Add(line.Hours)
		value = value.Add(line.Total)
	}

	return MonthlyReportIncrement{
		Year:               c.Record.PeriodEnd.Year(),
		Month:              int(c.Record.PeriodEnd.Month()),
		TotalEarned:        c.Record.TotalEarned,
		TotalDeductions:    c.Record.TotalDeductions,
		TotalPaid:          c.Record.TotalEarned.Sub(c.Record.TotalDeductions),
		TotalOvertimeHours: hours,
		TotalOvertimeValue: value,
	}
}

// ========== CALCULATE PAYROLL ==========

type OvertimeEntryRequest struct {
	Category LenientText    `json:"tipo_hora"`
	Hours    LenientDecimal `json:"horas"`
}

type CalculatePayrollRequest struct {
	EmployeeID  EmployeeRef            `json:"id_empleado"`
	BaseSalary  LenientDecimal         `json:"sueldo"`
	PeriodStart string                 `json:"fecha_inicio"`
	PeriodEnd   string                 `json:"fecha_corte"`
	Overtime    []OvertimeEntryRequest `json:"horas_extras"`
}

// Validate checks the request. The salary may be omitted when an employee is given.
// Overtime entries are not checked here; the calculator drops unknown categories.
func (r *CalculatePayrollRequest) Validate() error {
	var errs validator.ValidationErrors

	if !r.BaseSalary.Valid && r.EmployeeID <= 0 {
		return ErrSalaryOrEmployee
	}
	if r.BaseSalary.Valid && r.BaseSalary.Decimal().IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "sueldo", Message: "no puede ser negativo"})
	}

	start, okStart := parseDate(r.PeriodStart)
	if !okStart {
		errs = append(errs, validator.ValidationError{Field: "fecha_inicio", Message: "debe tener el formato AAAA-MM-DD"})
	}
	end, okEnd := parseDate(r.PeriodEnd)
	if !okEnd {
		errs = append(errs, validator.ValidationError{Field: "fecha_corte", Message: "debe tener el formato AAAA-MM-DD"})
	}
	if okStart && okEnd && end.Before(start) {
		errs = append(errs, validator.ValidationError{Field: "fecha_corte", Message: "no puede ser anterior a fecha_inicio"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Input builds the calculator input once the salary is known.
func (r *CalculatePayrollRequest) Input(salary decimal.Decimal) CalculationInput {
	start, _ := parseDate(r.PeriodStart)
	end, _ := parseDate(r.PeriodEnd)

	entries := make([]OvertimeEntry, 0, len(r.Overtime))
	for _, e := range r.Overtime {
		entries = append(entries, OvertimeEntry{
			Category: OvertimeCategory(strings.TrimSpace(e.Category.String())),
			Hours:    e.Hours.Decimal(),
		})
	}

	return CalculationInput{
		BaseSalary:  salary,
		PeriodStart: start,
		PeriodEnd:   end,
		Overtime:    entries,
	}
}

type CalculationResponse struct {
	EmployeeID       *int64                 `json:"id_empleado,omitempty"`
	EmployeeName     *string                `json:"empleado,omitempty"`
	BaseSalary       decimal.Decimal        `json:"sueldo"`
	WorkedDays       int                    `json:"dias_trabajados"`
	DailyRate        decimal.Decimal        `json:"valor_dia"`
	HourlyRate       decimal.Decimal        `json:"valor_hora"`
	BasePay          decimal.Decimal        `json:"salario_base"`
	Overtime         []OvertimeLineResponse `json:"horas_extras"`
	DroppedOvertime  int                    `json:"horas_extras_descartadas"`
	TotalOvertimeHrs decimal.Decimal        `json:"total_horas_extra"`
	TotalOvertimePay decimal.Decimal        `json:"valor_horas_extra"`
	TransportSubsidy decimal.Decimal        `json:"auxilio_transporte"`
	TotalEarned      decimal.Decimal        `json:"total_devengado"`
	Pension          decimal.Decimal        `json:"pension"`
	Health           decimal.Decimal        `json:"salud"`
	TotalDeductions  decimal.Decimal        `json:"total_deducciones"`
	NetPay           decimal.Decimal        `json:"neto_pagar"`
}

// ========== READ MODELS ==========

type PayrollRecordResponse struct {
	ID              int64           `json:"id_nomina"`
	EmployeeID      int64           `json:"id_empleado"`
	EmployeeName    *string         `json:"empleado,omitempty"`
	PeriodStart     string          `json:"fecha_inicio"`
	PeriodEnd       string          `json:"fecha_corte"`
	PaymentType     string          `json:"tipo_pago"`
	TotalEarned     decimal.Decimal `json:"total_devengado"`
	TotalDeductions decimal.Decimal `json:"total_deducciones"`
	TotalPayable    decimal.Decimal `json:"total_pagar"`
	CreatedAt       *string         `json:"creado_en,omitempty"`
}

type DetailLineResponse struct {
	ID      int64           `json:"id_detalle"`
	Concept string          `json:"concepto"`
	Value   decimal.Decimal `json:"valor"`
}

type OvertimeLineResponse struct {
	ID                  int64           `json:"id_hora_extra,omitempty"`
	Category            string          `json:"tipo_hora"`
	SurchargePercent    decimal.Decimal `json:"porcentaje_recargo"`
	Hours               decimal.Decimal `json:"horas"`
	BaseHourlyValue     decimal.Decimal `json:"valor_hora_base"`
	OvertimeHourlyValue decimal.Decimal `json:"valor_hora_extra"`
	Total               decimal.Decimal `json:"valor_total"`
}

type PayrollDetailResponse struct {
	PayrollRecordResponse
	Details  []DetailLineResponse   `json:"detalles"`
	Overtime []OvertimeLineResponse `json:"horas_extras"`
}

type PayrollFilter struct {
	EmployeeID *int64
	Year       *int
	Month      *int
	Page       int
	Limit      int
}

// Validate checks paging and period filters, filling defaults.
func (f *PayrollFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page == 0 {
		f.Page = 1
	}
	if f.Limit == 0 {
		f.Limit = 20
	}
	if f.Page < 1 {
		errs = append(errs, validator.ValidationError{Field: "page", Message: "debe ser mayor que 0"})
	}
	if f.Limit < 1 || f.Limit > 100 {
		errs = append(errs, validator.ValidationError{Field: "limit", Message: "debe estar entre 1 y 100"})
	}
	if f.Month != nil && (*f.Month < 1 || *f.Month > 12) {
		errs = append(errs, validator.ValidationError{Field: "mes", Message: "debe estar entre 1 y 12"})
	}
	if f.Month != nil && f.Year == nil {
		errs = append(errs, validator.ValidationError{Field: "anio", Message: "es obligatorio cuando se filtra por mes"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ListPayrollRecordResponse struct {
	Data       []PayrollRecordResponse `json:"data"`
	TotalCount int64                   `json:"total_count"`
	Page       int                     `json:"page"`
	Limit      int                     `json:"limit"`
}

type MonthlyReportRequest struct {
	Year  int
	Month int
}

func (r *MonthlyReportRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Year < 1900 || r.Year > 9999 {
		errs = append(errs, validator.ValidationError{Field: "anio", Message: "año inválido"})
	}
	if r.Month < 1 || r.Month > 12 {
		errs = append(errs, validator.ValidationError{Field: "mes", Message: "debe estar entre 1 y 12"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type MonthlyReportResponse struct {
	Year               int             `json:"anio"`
	Month              int             `json:"mes"`
	TotalPayrolls      int             `json:"total_nominas"`
	TotalEarned        decimal.Decimal `json:"total_devengado"`
	TotalDeductions    decimal.Decimal `json:"total_deducciones"`
	TotalPaid          decimal.Decimal `json:"total_pagado"`
	TotalOvertimeHours decimal.Decimal `json:"total_horas_extra"`
	TotalOvertimeValue decimal.Decimal `json:"valor_horas_extra"`
	UpdatedAt          *string         `json:"actualizado_en,omitempty"`
}

// parseDate accepts YYYY-MM-DD or an RFC 3339 timestamp and keeps only the date.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if t, ok := validator.IsValidDate(s); ok {
		return t, true
	}
	if t, ok := validator.IsValidDateTime(s); ok {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

// FormatDate renders a date the way the API accepts it.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}
