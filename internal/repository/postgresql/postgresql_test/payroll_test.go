package postgresql_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sistema-nomina/backend-nomina/internal/domain/employee"
	"github.com/sistema-nomina/backend-nomina/internal/domain/payroll"
	"github.com/sistema-nomina/backend-nomina/internal/repository/postgresql"
	payrollService "github.com/sistema-nomina/backend-nomina/internal/service/payroll"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestEmployeeRepository_GetByID(t *testing.T) {
	setup := NewTestDatabase(t)
	repo := postgresql.NewEmployeeRepository(setup.DB)
	ctx := context.Background()

	id := setup.CreateEmployee(t, "Ana María", "Gómez Ruiz", dec("2400000"))

	emp, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Ana María Gómez Ruiz", emp.FullName())
	assert.True(t, dec("2400000").Equal(emp.BaseSalary))
	assert.Nil(t, emp.PositionName)

	_, err = repo.GetByID(ctx, id+1000)
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestPayrollRepository_WritesInOneTransaction(t *testing.T) {
	setup := NewTestDatabase(t)
	repo := postgresql.NewPayrollRepository(setup.DB)
	tx := postgresql.NewTransactor(setup.DB)
	ctx := context.Background()

	empID := setup.CreateEmployee(t, "Luis", "Pérez", dec("2400000"))

	var created payroll.PayrollRecord
	err := tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		created, err = repo.CreatePayrollRecord(ctx, payroll.PayrollRecord{
			EmployeeID:      empID,
			PeriodStart:     day(2024, 3, 1),
			PeriodEnd:       day(2024, 3, 30),
			PaymentType:     payroll.PaymentTypeMonthly,
			TotalEarned:     dec("2699095"),
			TotalDeductions: dec("196000"),
		})
		if err != nil {
			return err
		}
		if err := repo.CreateDetailLines(ctx, created.ID, []payroll.DetailLine{
			{Concept: "Salario básico", Value: dec("2400000")},
			{Concept: "Auxilio de transporte", Value: dec("249095")},
		}); err != nil {
			return err
		}
		return repo.CreateOvertimeLines(ctx, created.ID, []payroll.OvertimeLine{{
			Category:            payroll.OvertimeDay,
			SurchargePercent:    dec("25"),
			Hours:               dec("4"),
			BaseHourlyValue:     dec("10000"),
			OvertimeHourlyValue: dec("12500"),
			Total:               dec("50000"),
		}})
	})
	require.NoError(t, err)

	assert.Positive(t, created.ID)
	assert.True(t, dec("2503095").Equal(created.TotalPayable))
	assert.False(t, created.CreatedAt.IsZero())

	record, err := repo.GetPayrollRecordByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, record.EmployeeName)
	assert.Equal(t, "Luis Pérez", *record.EmployeeName)
	assert.Equal(t, day(2024, 3, 30), record.PeriodEnd.UTC())

	details, err := repo.GetDetailLines(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, details, 2)
	assert.Equal(t, "Salario básico", details[0].Concept)

	overtime, err := repo.GetOvertimeLines(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, overtime, 1)
	assert.Equal(t, payroll.OvertimeDay, overtime[0].Category)
	assert.True(t, dec("50000").Equal(overtime[0].Total))
}

func TestPayrollRepository_RollbackOnFailure(t *testing.T) {
	setup := NewTestDatabase(t)
	repo := postgresql.NewPayrollRepository(setup.DB)
	tx := postgresql.NewTransactor(setup.DB)
	ctx := context.Background()

	empID := setup.CreateEmployee(t, "Marta", "Ríos", dec("1300000"))

	// the detail CHECK constraint rejects negative values after the header is written
	err := tx.WithinTransaction(ctx, func(ctx context.Context) error {
		created, err := repo.CreatePayrollRecord(ctx, payroll.PayrollRecord{
			EmployeeID:  empID,
			PeriodStart: day(2024, 4, 1),
			PeriodEnd:   day(2024, 4, 30),
			PaymentType: payroll.PaymentTypeMonthly,
		})
		if err != nil {
			return err
		}
		return repo.CreateDetailLines(ctx, created.ID, []payroll.DetailLine{{Concept: "Bono", Value: dec("-1")}})
	})
	require.Error(t, err)

	assert.Zero(t, setup.Count(t, "SELECT COUNT(*) FROM nomina WHERE id_empleado = $1", empID))
	assert.Zero(t, setup.Count(t, "SELECT COUNT(*) FROM detalle_nomina"))
}

func TestPayrollRepository_DeadlineRollsBack(t *testing.T) {
	setup := NewTestDatabase(t)
	repo := postgresql.NewPayrollRepository(setup.DB)
	tx := postgresql.NewTransactor(setup.DB)

	empID := setup.CreateEmployee(t, "Jorge", "Lara", dec("1300000"))

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	err := tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := repo.CreatePayrollRecord(ctx, payroll.PayrollRecord{
			EmployeeID:  empID,
			PeriodStart: day(2024, 5, 1),
			PeriodEnd:   day(2024, 5, 31),
			PaymentType: payroll.PaymentTypeMonthly,
		}); err != nil {
			return err
		}
		_, err := postgresql.GetQuerier(ctx, setup.DB).Exec(ctx, "SELECT pg_sleep(5)")
		return err
	})
	require.Error(t, err)

	assert.Zero(t, setup.Count(t, "SELECT COUNT(*) FROM nomina WHERE id_empleado = $1", empID))
}

func TestPayrollRepository_UpsertMonthlyReportIsAdditive(t *testing.T) {
	setup := NewTestDatabase(t)
	repo := postgresql.NewPayrollRepository(setup.DB)
	ctx := context.Background()

	_, err := repo.GetMonthlyReport(ctx, 2024, 6)
	assert.ErrorIs(t, err, payroll.ErrMonthlyReportNotFound)

	inc := payroll.MonthlyReportIncrement{
		Year:               2024,
		Month:              6,
		TotalEarned:        dec("1000.50"),
		TotalDeductions:    dec("100.25"),
		TotalPaid:          dec("900.25"),
		TotalOvertimeHours: dec("2.5"),
		TotalOvertimeValue: dec("30000"),
	}
	require.NoError(t, repo.UpsertMonthlyReport(ctx, inc))
	require.NoError(t, repo.UpsertMonthlyReport(ctx, inc))

	report, err := repo.GetMonthlyReport(ctx, 2024, 6)
	require.NoError(t, err)
	assert.Equal(t, 2, report.TotalPayrolls)
	assert.True(t, dec("2001").Equal(report.TotalEarned))
	assert.True(t, dec("200.5").Equal(report.TotalDeductions))
	assert.True(t, dec("1800.5").Equal(report.TotalPaid))
	assert.True(t, dec("5").Equal(report.TotalOvertimeHours))
	assert.True(t, dec("60000").Equal(report.TotalOvertimeValue))

	// other months untouched
	_, err = repo.GetMonthlyReport(ctx, 2024, 7)
	assert.ErrorIs(t, err, payroll.ErrMonthlyReportNotFound)
}

func TestPayrollRepository_ConcurrentUpsertsDoNotLoseUpdates(t *testing.T) {
	setup := NewTestDatabase(t)
	repo := postgresql.NewPayrollRepository(setup.DB)
	tx := postgresql.NewTransactor(setup.DB)
	ctx := context.Background()

	const writers = 20
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < writers; i++ {
		g.Go(func() error {
			return tx.WithinTransaction(gctx, func(ctx context.Context) error {
				return repo.UpsertMonthlyReport(ctx, payroll.MonthlyReportIncrement{
					Year:               2024,
					Month:              8,
					TotalEarned:        dec("100"),
					TotalDeductions:    dec("10"),
					TotalPaid:          dec("90"),
					TotalOvertimeHours: dec("1"),
					TotalOvertimeValue: dec("5"),
				})
			})
		})
	}
	require.NoError(t, g.Wait())

	report, err := repo.GetMonthlyReport(ctx, 2024, 8)
	require.NoError(t, err)
	assert.Equal(t, writers, report.TotalPayrolls)
	assert.True(t, dec("2000").Equal(report.TotalEarned))
	assert.True(t, dec("1800").Equal(report.TotalPaid))
	assert.True(t, dec("20").Equal(report.TotalOvertimeHours))
}

func TestPayrollRepository_ListPayrollRecords(t *testing.T) {
	setup := NewTestDatabase(t)
	repo := postgresql.NewPayrollRepository(setup.DB)
	ctx := context.Background()

	ana := setup.CreateEmployee(t, "Ana", "Gil", dec("1500000"))
	leo := setup.CreateEmployee(t, "Leo", "Mora", dec("1800000"))

	periods := []struct {
		emp   int64
		start time.Time
		end   time.Time
	}{
		{ana, day(2024, 1, 1), day(2024, 1, 31)},
		{ana, day(2024, 2, 1), day(2024, 2, 29)},
		{leo, day(2024, 2, 1), day(2024, 2, 15)},
	}
	for _, p := range periods {
		_, err := repo.CreatePayrollRecord(ctx, payroll.PayrollRecord{
			EmployeeID:  p.emp,
			PeriodStart: p.start,
			PeriodEnd:   p.end,
			PaymentType: payroll.PaymentTypeMonthly,
		})
		require.NoError(t, err)
	}

	all, total, err := repo.ListPayrollRecords(ctx, payroll.PayrollFilter{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, all, 2)

	year, month := 2024, 2
	feb, total, err := repo.ListPayrollRecords(ctx, payroll.PayrollFilter{Year: &year, Month: &month, Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, feb, 2)

	onlyAna, total, err := repo.ListPayrollRecords(ctx, payroll.PayrollFilter{EmployeeID: &ana, Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	for _, r := range onlyAna {
		assert.Equal(t, ana, r.EmployeeID)
	}

	_, err = repo.GetPayrollRecordByID(ctx, 99999)
	assert.ErrorIs(t, err, payroll.ErrPayrollRecordNotFound)
}

func TestPayrollService_CreatePayrollEndToEnd(t *testing.T) {
	setup := NewTestDatabase(t)
	repo := postgresql.NewPayrollRepository(setup.DB)
	svc := payrollService.NewPayrollService(
		postgresql.NewTransactor(setup.DB),
		repo,
		postgresql.NewEmployeeRepository(setup.DB),
		payroll.NewCalculator(payroll.DefaultCalculatorConfig()),
	)
	ctx := context.Background()

	empID := setup.CreateEmployee(t, "Sara", "Vega", dec("2400000"))

	req := payroll.CreatePayrollRequest{
		EmployeeID:      payroll.EmployeeRef(empID),
		PeriodStart:     "2024-03-01",
		PeriodEnd:       "2024-03-30",
		PaymentType:     "QUINCENAL",
		TotalEarned:     payroll.NewLenientDecimal(dec("2699095")),
		TotalDeductions: payroll.NewLenientDecimal(dec("196000")),
		Details: payroll.DetailLineList{
			{Concept: "Salario", Value: payroll.NewLenientDecimal(dec("2400000"))},
			{Concept: "", Value: payroll.NewLenientDecimal(dec("1"))},
		},
		Overtime: payroll.OvertimeLineList{
			{Category: "EXTRA_DIURNA", Hours: payroll.NewLenientDecimal(dec("4")), BaseHourlyValue: payroll.NewLenientDecimal(dec("10000"))},
		},
	}

	for i := 0; i < 2; i++ {
		resp, err := svc.CreatePayroll(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "QUINCENAL", resp.PaymentType)
		assert.True(t, dec("2503095").Equal(resp.TotalPayable))
	}

	report, err := svc.GetMonthlyReport(ctx, payroll.MonthlyReportRequest{Year: 2024, Month: 3})
	require.NoError(t, err)
	assert.Equal(t, 2, report.TotalPayrolls)
	assert.True(t, dec("5006190").Equal(report.TotalPaid))
	assert.True(t, dec("8").Equal(report.TotalOvertimeHours))
	assert.True(t, dec("100000").Equal(report.TotalOvertimeValue))

	assert.Equal(t, 2, setup.Count(t, "SELECT COUNT(*) FROM detalle_nomina"))
	assert.Equal(t, 2, setup.Count(t, "SELECT COUNT(*) FROM horas_extra_nomina"))

	calc, err := svc.CalculatePayroll(ctx, payroll.CalculatePayrollRequest{
		EmployeeID:  payroll.EmployeeRef(empID),
		PeriodStart: "2024-03-01",
		PeriodEnd:   "2024-03-30",
	})
	require.NoError(t, err)
	assert.True(t, dec("2400000").Equal(calc.BaseSalary))
}

func TestPayrollService_UnknownEmployeeRollsBack(t *testing.T) {
	setup := NewTestDatabase(t)
	svc := payrollService.NewPayrollService(
		postgresql.NewTransactor(setup.DB),
		postgresql.NewPayrollRepository(setup.DB),
		postgresql.NewEmployeeRepository(setup.DB),
		payroll.NewCalculator(payroll.DefaultCalculatorConfig()),
	)

	_, err := svc.CreatePayroll(context.Background(), payroll.CreatePayrollRequest{
		EmployeeID:  424242,
		PeriodStart: "2024-09-01",
		PeriodEnd:   "2024-09-30",
	})

	var persistence *payroll.PersistenceError
	require.True(t, errors.As(err, &persistence))
	assert.Zero(t, setup.Count(t, "SELECT COUNT(*) FROM reporte_nomina_mensual"))
}

func TestPayrollService_UnstorableEntriesAreDroppedNotFatal(t *testing.T) {
	setup := NewTestDatabase(t)
	svc := payrollService.NewPayrollService(
		postgresql.NewTransactor(setup.DB),
		postgresql.NewPayrollRepository(setup.DB),
		postgresql.NewEmployeeRepository(setup.DB),
		payroll.NewCalculator(payroll.DefaultCalculatorConfig()),
	)

	empID := setup.CreateEmployee(t, "Luis", "Rojas", dec("1500000"))

	resp, err := svc.CreatePayroll(context.Background(), payroll.CreatePayrollRequest{
		EmployeeID:      payroll.EmployeeRef(empID),
		PeriodStart:     "2024-10-01",
		PeriodEnd:       "2024-10-31",
		TotalEarned:     payroll.NewLenientDecimal(dec("1000.456")),
		TotalDeductions: payroll.NewLenientDecimal(dec("0.454")),
		Details: payroll.DetailLineList{
			{Concept: "Bono", Value: payroll.NewLenientDecimal(dec("1e13"))},
			{Concept: "a\x00b", Value: payroll.NewLenientDecimal(dec("10"))},
			{Concept: "Ajuste", Value: payroll.NewLenientDecimal(dec("10"))},
		},
		Overtime: payroll.OvertimeLineList{
			{Category: "EXTRA_DIURNA", Hours: payroll.NewLenientDecimal(dec("0.004")), Total: payroll.NewLenientDecimal(dec("1"))},
			{Category: "EXTRA_DIURNA", Hours: payroll.NewLenientDecimal(dec("1")), SurchargePercent: payroll.NewLenientDecimal(dec("1000")), Total: payroll.NewLenientDecimal(dec("1"))},
			{Category: "EXTRA_DIURNA", Hours: payroll.NewLenientDecimal(dec("1")), Total: payroll.NewLenientDecimal(dec("1"))},
		},
	})
	require.NoError(t, err)
	assert.True(t, dec("1000.01").Equal(resp.TotalPayable))

	assert.Equal(t, 1, setup.Count(t, "SELECT COUNT(*) FROM detalle_nomina"))
	assert.Equal(t, 1, setup.Count(t, "SELECT COUNT(*) FROM horas_extra_nomina"))

	report, err := svc.GetMonthlyReport(context.Background(), payroll.MonthlyReportRequest{Year: 2024, Month: 10})
	require.NoError(t, err)
	assert.True(t, resp.TotalPayable.Equal(report.TotalPaid))
}
