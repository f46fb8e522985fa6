package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/sistema-nomina/backend-nomina/internal/domain/employee"
	"github.com/sistema-nomina/backend-nomina/internal/pkg/database"
)

type employeeRepository struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepository{db: db}
}

func (r *employeeRepository) GetByID(ctx context.Context, id int64) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT e.id_empleado, e.nombres, e.apellidos, e.tipo_identificacion, e.numero_identificacion,
			e.sueldo, e.fecha_nacimiento, e.fecha_ingreso, e.id_cargo, e.id_departamento,
			c.nombre_cargo, d.nombre_departamento
		FROM empleados e
		LEFT JOIN cargos c ON c.id_cargo = e.id_cargo
		LEFT JOIN departamentos d ON d.id_departamento = e.id_departamento
		WHERE e.id_empleado = $1
	`

	var e employee.Employee
	err := q.QueryRow(ctx, query, id).Scan(
		&e.ID, &e.FirstNames, &e.LastNames, &e.IdentificationType, &e.IdentificationNumber,
		&e.BaseSalary, &e.DOB, &e.HireDate, &e.PositionID, &e.DepartmentID,
		&e.PositionName, &e.DepartmentName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}

	return e, nil
}
