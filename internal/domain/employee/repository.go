package employee

import "context"

// EmployeeRepository is the read side payroll needs. Employee maintenance lives elsewhere.
type EmployeeRepository interface {
	GetByID(ctx context.Context, id int64) (Employee, error)
}
