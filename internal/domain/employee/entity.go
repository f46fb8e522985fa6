package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

type Employee struct {
	ID                   int64
	FirstNames           string
	LastNames            string
	IdentificationType   string
	IdentificationNumber string
	BaseSalary           decimal.Decimal
	DOB                  *time.Time
	HireDate             *time.Time
	PositionID           *int64
	DepartmentID         *int64

	// Joined fields
	PositionName   *string
	DepartmentName *string
}

// FullName joins names and surnames the way payslips print them.
func (e Employee) FullName() string {
	if e.LastNames == "" {
		return e.FirstNames
	}
	return e.FirstNames + " " + e.LastNames
}
