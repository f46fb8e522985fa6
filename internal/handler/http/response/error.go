package response

import (
	"errors"
	"net/http"

	"github.com/sistema-nomina/backend-nomina/internal/domain/auth"
	"github.com/sistema-nomina/backend-nomina/internal/domain/employee"
	"github.com/sistema-nomina/backend-nomina/internal/domain/payroll"
	"github.com/sistema-nomina/backend-nomina/internal/domain/user"
	"github.com/sistema-nomina/backend-nomina/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Field-level validation errors
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// Request-level validation errors carry their own message
	var payrollValidation *payroll.ValidationError
	if errors.As(err, &payrollValidation) {
		BadRequest(w, payrollValidation.Message, nil)
		return
	}

	// Persistence failures never leak the store error
	var persistence *payroll.PersistenceError
	if errors.As(err, &persistence) {
		InternalServerError(w, "Error guardando la nómina")
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrTokenMissing),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenExpired),
		errors.Is(err, user.ErrRoleMissing):
		Unauthorized(w, err.Error())
	case errors.Is(err, user.ErrInsufficientPermissions):
		Forbidden(w, err.Error())

	// Payroll domain errors
	case errors.Is(err, payroll.ErrPayrollRecordNotFound):
		NotFound(w, "Nómina no encontrada")
	case errors.Is(err, payroll.ErrMonthlyReportNotFound):
		NotFound(w, "Reporte mensual no encontrado")
	case errors.Is(err, payroll.ErrInvalidPeriod):
		BadRequest(w, "La fecha de corte no puede ser anterior a la fecha de inicio", nil)
	case errors.Is(err, payroll.ErrNegativeSalary):
		BadRequest(w, "El sueldo no puede ser negativo", nil)

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Empleado no encontrado")

	// Default
	default:
		InternalServerError(w, "Error interno del servidor")
	}
}
