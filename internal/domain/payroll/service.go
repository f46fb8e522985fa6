package payroll

import "context"

type PayrollService interface {
	CreatePayroll(ctx context.Context, req CreatePayrollRequest) (PayrollRecordResponse, error)
	CalculatePayroll(ctx context.Context, req CalculatePayrollRequest) (CalculationResponse, error)
	GetPayrollRecord(ctx context.Context, id int64) (PayrollDetailResponse, error)
	ListPayrollRecords(ctx context.Context, filter PayrollFilter) (ListPayrollRecordResponse, error)
	GetMonthlyReport(ctx context.Context, req MonthlyReportRequest) (MonthlyReportResponse, error)
}
