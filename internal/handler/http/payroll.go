package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sistema-nomina/backend-nomina/internal/domain/payroll"
	"github.com/sistema-nomina/backend-nomina/internal/handler/http/response"
	"github.com/sistema-nomina/backend-nomina/internal/pkg/validator"
)

type PayrollHandler interface {
	// Writes
	CreatePayroll(w http.ResponseWriter, r *http.Request)
	CalculatePayroll(w http.ResponseWriter, r *http.Request)

	// Reads
	GetPayrollRecord(w http.ResponseWriter, r *http.Request)
	ListPayrollRecords(w http.ResponseWriter, r *http.Request)
	GetMonthlyReport(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService payroll.PayrollService
}

func NewPayrollHandler(payrollService payroll.PayrollService) PayrollHandler {
	return &payrollHandlerImpl{payrollService: payrollService}
}

// ========== WRITES ==========

func (h *payrollHandlerImpl) CreatePayroll(w http.ResponseWriter, r *http.Request) {
	var req payroll.CreatePayrollRequest
	// an empty body falls through to the required-fields check
	if err := decodeBody(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeDecodeError(w, err)
		return
	}

	result, err := h.payrollService.CreatePayroll(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Nómina guardada exitosamente", result)
}

func (h *payrollHandlerImpl) CalculatePayroll(w http.ResponseWriter, r *http.Request) {
	var req payroll.CalculatePayrollRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	result, err := h.payrollService.CalculatePayroll(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// maxBodyBytes caps JSON request bodies at 100 KB.
const maxBodyBytes = 100 << 10

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}

func writeDecodeError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		response.PayloadTooLarge(w, "El cuerpo de la solicitud excede el tamaño permitido")
		return
	}
	response.BadRequest(w, "Cuerpo de la solicitud inválido", nil)
}

// ========== READS ==========

func (h *payrollHandlerImpl) GetPayrollRecord(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(w, "ID de nómina inválido", nil)
		return
	}

	result, err := h.payrollService.GetPayrollRecord(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) ListPayrollRecords(w http.ResponseWriter, r *http.Request) {
	q := queryParams{values: r.URL.Query()}

	filter := payroll.PayrollFilter{
		Page:       q.integer("page"),
		Limit:      q.integer("limit"),
		EmployeeID: q.optionalInt64("id_empleado"),
		Year:       q.optionalInt("anio"),
		Month:      q.optionalInt("mes"),
	}
	if len(q.errs) > 0 {
		response.HandleError(w, q.errs)
		return
	}

	result, err := h.payrollService.ListPayrollRecords(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Data, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: result.TotalCount,
		TotalPages: totalPages(result.TotalCount, result.Limit),
	})
}

func (h *payrollHandlerImpl) GetMonthlyReport(w http.ResponseWriter, r *http.Request) {
	q := queryParams{values: r.URL.Query()}

	req := payroll.MonthlyReportRequest{
		Year:  q.required("anio"),
		Month: q.required("mes"),
	}
	if len(q.errs) > 0 {
		response.HandleError(w, q.errs)
		return
	}

	result, err := h.payrollService.GetMonthlyReport(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func totalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

// queryParams collects integer query parameters and their parse errors.
type queryParams struct {
	values map[string][]string
	errs   validator.ValidationErrors
}

func (q *queryParams) get(key string) string {
	if v := q.values[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

func (q *queryParams) parse(key string) (int64, bool) {
	raw := q.get(key)
	if raw == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		q.errs = append(q.errs, validator.ValidationError{Field: key, Message: "debe ser un número entero"})
		return 0, false
	}
	return n, true
}

func (q *queryParams) integer(key string) int {
	n, _ := q.parse(key)
	return int(n)
}

func (q *queryParams) required(key string) int {
	if q.get(key) == "" {
		q.errs = append(q.errs, validator.ValidationError{Field: key, Message: "es obligatorio"})
		return 0
	}
	return q.integer(key)
}

func (q *queryParams) optionalInt(key string) *int {
	n, ok := q.parse(key)
	if !ok {
		return nil
	}
	v := int(n)
	return &v
}

func (q *queryParams) optionalInt64(key string) *int64 {
	n, ok := q.parse(key)
	if !ok {
		return nil
	}
	return &n
}
