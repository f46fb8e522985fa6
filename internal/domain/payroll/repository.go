package payroll

import "context"

// PayrollRepository defines data access methods for payroll.
// Write methods join the transaction carried by ctx when there is one.
type PayrollRepository interface {
	// Writes
	CreatePayrollRecord(ctx context.Context, record PayrollRecord) (PayrollRecord, error)
	CreateDetailLines(ctx context.Context, payrollID int64, lines []DetailLine) error
	CreateOvertimeLines(ctx context.Context, payrollID int64, lines []OvertimeLine) error
	UpsertMonthlyReport(ctx context.Context, inc MonthlyReportIncrement) error

	// Reads
	GetPayrollRecordByID(ctx context.Context, id int64) (PayrollRecord, error)
	GetDetailLines(ctx context.Context, payrollID int64) ([]DetailLine, error)
	GetOvertimeLines(ctx context.Context, payrollID int64) ([]OvertimeLine, error)
	ListPayrollRecords(ctx context.Context, filter PayrollFilter) ([]PayrollRecord, int64, error)
	GetMonthlyReport(ctx context.Context, year, month int) (MonthlyReport, error)
}

// Transactor runs fn as one unit of work. If fn returns an error or panics
// nothing it wrote is kept.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
