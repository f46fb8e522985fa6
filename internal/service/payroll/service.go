package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sistema-nomina/backend-nomina/internal/domain/employee"
	"github.com/sistema-nomina/backend-nomina/internal/domain/payroll"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	defaultWriteTimeout = 10 * time.Second
	reportQueryTimeout  = 10 * time.Second
)

type PayrollServiceImpl struct {
	tx           payroll.Transactor
	payrollRepo  payroll.PayrollRepository
	employeeRepo employee.EmployeeRepository
	calculator   *payroll.Calculator
	writeTimeout time.Duration
	logger       *slog.Logger

	// coalesces concurrent reads of the same month
	reports singleflight.Group
}

type Option func(*PayrollServiceImpl)

// WithWriteTimeout bounds how long a payroll write may hold its transaction.
func WithWriteTimeout(d time.Duration) Option {
	return func(s *PayrollServiceImpl) {
		if d > 0 {
			s.writeTimeout = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *PayrollServiceImpl) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewPayrollService(
	tx payroll.Transactor,
	payrollRepo payroll.PayrollRepository,
	employeeRepo employee.EmployeeRepository,
	calculator *payroll.Calculator,
	opts ...Option,
) payroll.PayrollService {
	s := &PayrollServiceImpl{
		tx:           tx,
		payrollRepo:  payrollRepo,
		employeeRepo: employeeRepo,
		calculator:   calculator,
		writeTimeout: defaultWriteTimeout,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ========== CREATE ==========

// CreatePayroll validates the request, then writes header, detail lines, overtime
// lines and the monthly report increment in one transaction.
func (s *PayrollServiceImpl) CreatePayroll(ctx context.Context, req payroll.CreatePayrollRequest) (payroll.PayrollRecordResponse, error) {
	cmd, err := req.Normalize()
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	if cmd.DroppedDetails > 0 || cmd.DroppedOvertime > 0 {
		s.logger.InfoContext(ctx, "discarded invalid payroll entries",
			slog.Int64("employee_id", cmd.Record.EmployeeID),
			slog.Int("dropped_details", cmd.DroppedDetails),
			slog.Int("dropped_overtime", cmd.DroppedOvertime),
		)
	}

	writeCtx, cancel := context.WithTimeout(ctx, s.writeTimeout)
	defer cancel()

	var created payroll.PayrollRecord
	err = s.tx.WithinTransaction(writeCtx, func(txCtx context.Context) error {
		record, err := s.payrollRepo.CreatePayrollRecord(txCtx, cmd.Record)
		if err != nil {
			return err
		}

		if err := s.payrollRepo.CreateDetailLines(txCtx, record.ID, cmd.Details); err != nil {
			return err
		}

		if err := s.payrollRepo.CreateOvertimeLines(txCtx, record.ID, cmd.Overtime); err != nil {
			return err
		}

		if err := s.payrollRepo.UpsertMonthlyReport(txCtx, cmd.ReportIncrement()); err != nil {
			return err
		}

		created = record
		return nil
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to save payroll",
			slog.Int64("employee_id", cmd.Record.EmployeeID),
			slog.String("period_end", payroll.FormatDate(cmd.Record.PeriodEnd)),
			slog.Any("error", err),
		)
		return payroll.PayrollRecordResponse{}, &payroll.PersistenceError{Op: "create payroll", Err: err}
	}

	s.logger.InfoContext(ctx, "payroll saved",
		slog.Int64("payroll_id", created.ID),
		slog.Int64("employee_id", created.EmployeeID),
		slog.Int("detail_lines", len(cmd.Details)),
		slog.Int("overtime_lines", len(cmd.Overtime)),
	)

	return toRecordResponse(created), nil
}

// ========== CALCULATE ==========

func (s *PayrollServiceImpl) CalculatePayroll(ctx context.Context, req payroll.CalculatePayrollRequest) (payroll.CalculationResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.CalculationResponse{}, err
	}

	var resp payroll.CalculationResponse
	salary := req.BaseSalary.Decimal()

	if req.EmployeeID > 0 {
		emp, err := s.employeeRepo.GetByID(ctx, int64(req.EmployeeID))
		if err != nil {
			return payroll.CalculationResponse{}, err
		}
		id := emp.ID
		name := emp.FullName()
		resp.EmployeeID = &id
		resp.EmployeeName = &name
		if !req.BaseSalary.Valid {
			salary = emp.BaseSalary
		}
	}

	calc, err := s.calculator.Calculate(req.Input(salary))
	if err != nil {
		return payroll.CalculationResponse{}, err
	}

	resp.BaseSalary = salary
	resp.WorkedDays = calc.WorkedDays
	resp.DailyRate = calc.DailyRate
	resp.HourlyRate = calc.HourlyRate
	resp.BasePay = calc.BasePay
	resp.Overtime = toOvertimeResponses(calc.OvertimeLines)
	resp.DroppedOvertime = calc.DroppedOvertime
	resp.TotalOvertimeHrs = calc.TotalOvertimeHrs
	resp.TotalOvertimePay = calc.TotalOvertimePay
	resp.TransportSubsidy = calc.TransportSubsidy
	resp.TotalEarned = calc.GrossSubtotal
	resp.Pension = calc.Pension
	resp.Health = calc.Health
	resp.TotalDeductions = calc.TotalDeductions
	resp.NetPay = calc.NetPay

	return resp, nil
}

// ========== READS ==========

func (s *PayrollServiceImpl) GetPayrollRecord(ctx context.Context, id int64) (payroll.PayrollDetailResponse, error) {
	var (
		record   payroll.PayrollRecord
		details  []payroll.DetailLine
		overtime []payroll.OvertimeLine
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		record, err = s.payrollRepo.GetPayrollRecordByID(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		details, err = s.payrollRepo.GetDetailLines(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		overtime, err = s.payrollRepo.GetOvertimeLines(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return payroll.PayrollDetailResponse{}, err
	}

	resp := payroll.PayrollDetailResponse{
		PayrollRecordResponse: toRecordResponse(record),
		Details:               make([]payroll.DetailLineResponse, 0, len(details)),
		Overtime:              toOvertimeResponses(overtime),
	}
	for _, d := range details {
		resp.Details = append(resp.Details, payroll.DetailLineResponse{
			ID:      d.ID,
			Concept: d.Concept,
			Value:   d.Value,
		})
	}

	return resp, nil
}

func (s *PayrollServiceImpl) ListPayrollRecords(ctx context.Context, filter payroll.PayrollFilter) (payroll.ListPayrollRecordResponse, error) {
	if err := filter.Validate(); err != nil {
		return payroll.ListPayrollRecordResponse{}, err
	}

	records, total, err := s.payrollRepo.ListPayrollRecords(ctx, filter)
	if err != nil {
		return payroll.ListPayrollRecordResponse{}, fmt.Errorf("list payroll records: %w", err)
	}

	data := make([]payroll.PayrollRecordResponse, 0, len(records))
	for _, r := range records {
		data = append(data, toRecordResponse(r))
	}

	return payroll.ListPayrollRecordResponse{
		Data:       data,
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

// GetMonthlyReport returns the month's aggregate. A month without payrolls reports zeros.
func (s *PayrollServiceImpl) GetMonthlyReport(ctx context.Context, req payroll.MonthlyReportRequest) (payroll.MonthlyReportResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.MonthlyReportResponse{}, err
	}

	// the shared query outlives any single caller; each caller waits on its own ctx
	key := fmt.Sprintf("%04d-%02d", req.Year, req.Month)
	ch := s.reports.DoChan(key, func() (interface{}, error) {
		queryCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), reportQueryTimeout)
		defer cancel()
		return s.payrollRepo.GetMonthlyReport(queryCtx, req.Year, req.Month)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return payroll.MonthlyReportResponse{}, ctx.Err()
	case res = <-ch:
	}

	err := res.Err
	if errors.Is(err, payroll.ErrMonthlyReportNotFound) {
		return payroll.MonthlyReportResponse{
			Year:               req.Year,
			Month:              req.Month,
			TotalEarned:        decimal.Zero,
			TotalDeductions:    decimal.Zero,
			TotalPaid:          decimal.Zero,
			TotalOvertimeHours: decimal.Zero,
			TotalOvertimeValue: decimal.Zero,
		}, nil
	}
	if err != nil {
		return payroll.MonthlyReportResponse{}, fmt.Errorf("get monthly report: %w", err)
	}
	report := res.Val.(payroll.MonthlyReport)

	updatedAt := report.UpdatedAt.Format(time.RFC3339)
	return payroll.MonthlyReportResponse{
		Year:               report.Year,
		Month:              report.Month,
		TotalPayrolls:      report.TotalPayrolls,
		TotalEarned:        report.TotalEarned,
		TotalDeductions:    report.TotalDeductions,
		TotalPaid:          report.TotalPaid,
		TotalOvertimeHours: report.TotalOvertimeHours,
		TotalOvertimeValue: report.TotalOvertimeValue,
		UpdatedAt:          &updatedAt,
	}, nil
}

func toRecordResponse(r payroll.PayrollRecord) payroll.PayrollRecordResponse {
	resp := payroll.PayrollRecordResponse{
		ID:              r.ID,
		EmployeeID:      r.EmployeeID,
		EmployeeName:    r.EmployeeName,
		PeriodStart:     payroll.FormatDate(r.PeriodStart),
		PeriodEnd:       payroll.FormatDate(r.PeriodEnd),
		PaymentType:     string(r.PaymentType),
		TotalEarned:     r.TotalEarned,
		TotalDeductions: r.TotalDeductions,
		TotalPayable:    r.TotalPayable,
	}
	if !r.CreatedAt.IsZero() {
		createdAt := r.CreatedAt.Format(time.RFC3339)
		resp.CreatedAt = &createdAt
	}
	return resp
}

func toOvertimeResponses(lines []payroll.OvertimeLine) []payroll.OvertimeLineResponse {
	out := make([]payroll.OvertimeLineResponse, 0, len(lines))
	for _, l := range lines {
		out = append(out, payroll.OvertimeLineResponse{
			ID:                  l.ID,
			Category:            string(l.Category),
			SurchargePercent:    l.SurchargePercent,
			Hours:               l.Hours,
			BaseHourlyValue:     l.BaseHourlyValue,
			OvertimeHourlyValue: l.OvertimeHourlyValue,
			Total:               l.Total,
		})
	}
	return out
}
