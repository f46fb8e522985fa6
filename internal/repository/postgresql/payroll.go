package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/sistema-nomina/backend-nomina/internal/domain/payroll"
	"github.com/sistema-nomina/backend-nomina/internal/pkg/database"
)

type payrollRepository struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepository{db: db}
}

// ========== WRITES ==========

func (r *payrollRepository) CreatePayrollRecord(ctx context.Context, record payroll.PayrollRecord) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO nomina (id_empleado, fecha_inicio, fecha_corte, tipo_pago, total_devengado, total_deducciones)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id_nomina, id_empleado, fecha_inicio, fecha_corte, tipo_pago,
			total_devengado, total_deducciones, total_pagar, creado_en
	`

	var p payroll.PayrollRecord
	err := q.QueryRow(ctx, query,
		record.EmployeeID, record.PeriodStart, record.PeriodEnd, record.PaymentType,
		record.TotalEarned, record.TotalDeductions,
	).Scan(
		&p.ID, &p.EmployeeID, &p.PeriodStart, &p.PeriodEnd, &p.PaymentType,
		&p.TotalEarned, &p.TotalDeductions, &p.TotalPayable, &p.CreatedAt,
	)
	if err != nil {
		return payroll.PayrollRecord{}, fmt.Errorf("failed to create payroll record: %w", err)
	}

	return p, nil
}

func (r *payrollRepository) CreateDetailLines(ctx context.Context, payrollID int64, lines []payroll.DetailLine) error {
	if len(lines) == 0 {
		return nil
	}
	q := GetQuerier(ctx, r.db)

	values := make([]string, 0, len(lines))
	args := make([]interface{}, 0, len(lines)*3)
	for i, line := range lines {
		n := i * 3
		values = append(values, fmt.Sprintf("($%d, $%d, $%d)", n+1, n+2, n+3))
		args = append(args, payrollID, line.Concept, line.Value)
	}

	query := "INSERT INTO detalle_nomina (id_nomina, concepto, valor) VALUES " + strings.Join(values, ", ")
	if _, err := q.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to create payroll detail lines: %w", err)
	}

	return nil
}

func (r *payrollRepository) CreateOvertimeLines(ctx context.Context, payrollID int64, lines []payroll.OvertimeLine) error {
	if len(lines) == 0 {
		return nil
	}
	q := GetQuerier(ctx, r.db)

	const cols = 7
	values := make([]string, 0, len(lines))
	args := make([]interface{}, 0, len(lines)*cols)
	for i, line := range lines {
		n := i * cols
		values = append(values, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4, n+5, n+6, n+7))
		args = append(args,
			payrollID, line.Category, line.SurchargePercent, line.Hours,
			line.BaseHourlyValue, line.OvertimeHourlyValue, line.Total,
		)
	}

	query := `INSERT INTO horas_extra_nomina
		(id_nomina, tipo_hora, porcentaje_recargo, horas, valor_hora_base, valor_hora_extra, valor_total)
		VALUES ` + strings.Join(values, ", ")
	if _, err := q.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to create payroll overtime lines: %w", err)
	}

	return nil
}

// UpsertMonthlyReport adds inc to the (year, month) row, creating it on first use.
// The increment happens in a single statement so concurrent payrolls never lose updates.
func (r *payrollRepository) UpsertMonthlyReport(ctx context.Context, inc payroll.MonthlyReportIncrement) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO reporte_nomina_mensual (
			anio, mes, total_nominas, total_devengado, total_deducciones,
			total_pagado, total_horas_extra, valor_horas_extra
		) VALUES ($1, $2, 1, $3, $4, $5, $6, $7)
		ON CONFLICT (anio, mes) DO UPDATE SET
			total_nominas = reporte_nomina_mensual.total_nominas + EXCLUDED.total_nominas,
			total_devengado = reporte_nomina_mensual.total_devengado + EXCLUDED.total_devengado,
			total_deducciones = reporte_nomina_mensual.total_deducciones + EXCLUDED.total_deducciones,
			total_pagado = reporte_nomina_mensual.total_pagado + EXCLUDED.total_pagado,
			total_horas_extra = reporte_nomina_mensual.total_horas_extra + EXCLUDED.total_horas_extra,
			valor_horas_extra = reporte_nomina_mensual.valor_horas_extra + EXCLUDED.valor_horas_extra,
			actualizado_en = NOW()
	`

	_, err := q.Exec(ctx, query,
		inc.Year, inc.Month, inc.TotalEarned, inc.TotalDeductions,
		inc.TotalPaid, inc.TotalOvertimeHours, inc.TotalOvertimeValue,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert monthly payroll report: %w", err)
	}

	return nil
}

// ========== READS ==========

const payrollRecordColumns = `
	n.id_nomina, n.id_empleado, n.fecha_inicio, n.fecha_corte, n.tipo_pago,
	n.total_devengado, n.total_deducciones, n.total_pagar, n.creado_en,
	CONCAT_WS(' ', e.nombres, e.apellidos)
`

func scanPayrollRecord(row pgx.Row) (payroll.PayrollRecord, error) {
	var p payroll.PayrollRecord
	var name string
	err := row.Scan(
		&p.ID, &p.EmployeeID, &p.PeriodStart, &p.PeriodEnd, &p.PaymentType,
		&p.TotalEarned, &p.TotalDeductions, &p.TotalPayable, &p.CreatedAt,
		&name,
	)
	if err != nil {
		return payroll.PayrollRecord{}, err
	}
	if name != "" {
		p.EmployeeName = &name
	}
	return p, nil
}

func (r *payrollRepository) GetPayrollRecordByID(ctx context.Context, id int64) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + payrollRecordColumns + `
		FROM nomina n
		LEFT JOIN empleados e ON e.id_empleado = n.id_empleado
		WHERE n.id_nomina = $1
	`

	p, err := scanPayrollRecord(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
		}
		return payroll.PayrollRecord{}, fmt.Errorf("failed to get payroll record: %w", err)
	}

	return p, nil
}

func (r *payrollRepository) GetDetailLines(ctx context.Context, payrollID int64) ([]payroll.DetailLine, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id_detalle, id_nomina, concepto, valor
		FROM detalle_nomina
		WHERE id_nomina = $1
		ORDER BY id_detalle
	`

	rows, err := q.Query(ctx, query, payrollID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll detail lines: %w", err)
	}
	defer rows.Close()

	var lines []payroll.DetailLine
	for rows.Next() {
		var l payroll.DetailLine
		if err := rows.Scan(&l.ID, &l.PayrollID, &l.Concept, &l.Value); err != nil {
			return nil, fmt.Errorf("failed to scan payroll detail line: %w", err)
		}
		lines = append(lines, l)
	}

	return lines, rows.Err()
}

func (r *payrollRepository) GetOvertimeLines(ctx context.Context, payrollID int64) ([]payroll.OvertimeLine, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id_hora_extra, id_nomina, tipo_hora, porcentaje_recargo, horas,
			valor_hora_base, valor_hora_extra, valor_total, creado_en
		FROM horas_extra_nomina
		WHERE id_nomina = $1
		ORDER BY id_hora_extra
	`

	rows, err := q.Query(ctx, query, payrollID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll overtime lines: %w", err)
	}
	defer rows.Close()

	var lines []payroll.OvertimeLine
	for rows.Next() {
		var l payroll.OvertimeLine
		if err := rows.Scan(
			&l.ID, &l.PayrollID, &l.Category, &l.SurchargePercent, &l.Hours,
			&l.BaseHourlyValue, &l.OvertimeHourlyValue, &l.Total, &l.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan payroll overtime line: %w", err)
		}
		lines = append(lines, l)
	}

	return lines, rows.Err()
}

func (r *payrollRepository) ListPayrollRecords(ctx context.Context, filter payroll.PayrollFilter) ([]payroll.PayrollRecord, int64, error) {
	q := GetQuerier(ctx, r.db)

	where := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if filter.EmployeeID != nil {
		where = append(where, fmt.Sprintf("n.id_empleado = $%d", argIdx))
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.Year != nil {
		where = append(where, fmt.Sprintf("EXTRACT(YEAR FROM n.fecha_corte) = $%d", argIdx))
		args = append(args, *filter.Year)
		argIdx++
	}
	if filter.Month != nil {
		where = append(where, fmt.Sprintf("EXTRACT(MONTH FROM n.fecha_corte) = $%d", argIdx))
		args = append(args, *filter.Month)
		argIdx++
	}
	whereClause := strings.Join(where, " AND ")

	var total int64
	countQuery := "SELECT COUNT(*) FROM nomina n WHERE " + whereClause
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count payroll records: %w", err)
	}

	offset := (filter.Page - 1) * filter.Limit
	query := fmt.Sprintf(`SELECT %s
		FROM nomina n
		LEFT JOIN empleados e ON e.id_empleado = n.id_empleado
		WHERE %s
		ORDER BY n.fecha_corte DESC, n.id_nomina DESC
		LIMIT $%d OFFSET $%d`, payrollRecordColumns, whereClause, argIdx, argIdx+1)
	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payroll records: %w", err)
	}
	defer rows.Close()

	var records []payroll.PayrollRecord
	for rows.Next() {
		p, err := scanPayrollRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan payroll record: %w", err)
		}
		records = append(records, p)
	}

	return records, total, rows.Err()
}

func (r *payrollRepository) GetMonthlyReport(ctx context.Context, year, month int) (payroll.MonthlyReport, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id_reporte, anio, mes, total_nominas, total_devengado, total_deducciones,
			total_pagado, total_horas_extra, valor_horas_extra, actualizado_en
		FROM reporte_nomina_mensual
		WHERE anio = $1 AND mes = $2
	`

	var m payroll.MonthlyReport
	err := q.QueryRow(ctx, query, year, month).Scan(
		&m.ID, &m.Year, &m.Month, &m.TotalPayrolls, &m.TotalEarned, &m.TotalDeductions,
		&m.TotalPaid, &m.TotalOvertimeHours, &m.TotalOvertimeValue, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.MonthlyReport{}, payroll.ErrMonthlyReportNotFound
		}
		return payroll.MonthlyReport{}, fmt.Errorf("failed to get monthly payroll report: %w", err)
	}

	return m, nil
}
