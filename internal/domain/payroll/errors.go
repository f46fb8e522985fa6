package payroll

import "errors"

var (
	ErrPayrollRecordNotFound = errors.New("payroll record not found")
	ErrMonthlyReportNotFound = errors.New("monthly report not found")
	ErrInvalidPeriod         = errors.New("invalid payroll period")
	ErrNegativeSalary        = errors.New("base salary cannot be negative")
)

// ValidationError is a client input problem. Message is safe to show to the caller.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var (
	ErrMissingRequiredFields = &ValidationError{Message: "id_empleado, fecha_inicio y fecha_corte son obligatorios"}
	ErrNegativeTotals        = &ValidationError{Message: "Los valores de nómina no pueden ser negativos"}
	ErrTotalsOutOfRange      = &ValidationError{Message: "Los valores de nómina exceden el máximo permitido"}
	ErrInvalidDates          = &ValidationError{Message: "fecha_inicio y fecha_corte deben tener el formato AAAA-MM-DD"}
	ErrPeriodOutOfOrder      = &ValidationError{Message: "fecha_corte no puede ser anterior a fecha_inicio"}
	ErrSalaryOrEmployee      = &ValidationError{Message: "Debe enviar sueldo o id_empleado"}
)

// PersistenceError wraps any store failure while writing a payroll.
// The wrapped error is for logs only.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return "payroll persistence failed (" + e.Op + "): " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
