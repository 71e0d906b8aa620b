package http

import (
	"net/http"

	"github.com/cmlabs-hris/hris-ledger/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-ledger/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type PayrollHandler interface {
	Generate(w http.ResponseWriter, r *http.Request)
	GenerateBulk(w http.ResponseWriter, r *http.Request)
	Edit(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	ListForEmployee(w http.ResponseWriter, r *http.Request)
	ListForTeam(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService payroll.PayrollService
}

func NewPayrollHandler(payrollService payroll.PayrollService) PayrollHandler {
	return &payrollHandlerImpl{payrollService: payrollService}
}

// Generate implements PayrollHandler.
func (h *payrollHandlerImpl) Generate(w http.ResponseWriter, r *http.Request) {
	employeeID, err := employeeKey(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req payroll.GenerateRequest
	if !decodeJSON(w, r, &req, "GeneratePayslip") {
		return
	}
	req.EmployeeID = employeeID

	result, err := h.payrollService.Generate(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Payslip generated successfully", result)
}

// GenerateBulk implements PayrollHandler. Per-employee failures are part of
// the 200 body.
func (h *payrollHandlerImpl) GenerateBulk(w http.ResponseWriter, r *http.Request) {
	var req payroll.BulkGenerateRequest
	if !decodeJSON(w, r, &req, "GenerateBulkPayslips") {
		return
	}

	result, err := h.payrollService.GenerateBulk(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// Edit implements PayrollHandler.
func (h *payrollHandlerImpl) Edit(w http.ResponseWriter, r *http.Request) {
	employeeID, err := employeeKey(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req payroll.EditRequest
	if !decodeJSON(w, r, &req, "EditPayslip") {
		return
	}
	req.EmployeeID = employeeID
	req.SlipID = chi.URLParam(r, "ref")

	result, err := h.payrollService.Edit(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Payslip updated successfully", result)
}

// Delete implements PayrollHandler. Payslips are deleted by pay date.
func (h *payrollHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	employeeID, err := employeeKey(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	err = h.payrollService.Delete(r.Context(), payroll.DeleteRequest{
		EmployeeID: employeeID,
		PayDate:    chi.URLParam(r, "ref"),
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Payslip deleted successfully", nil)
}

// ListForEmployee implements PayrollHandler.
func (h *payrollHandlerImpl) ListForEmployee(w http.ResponseWriter, r *http.Request) {
	employeeID, err := employeeKey(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.payrollService.ListForEmployee(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// ListForTeam implements PayrollHandler.
func (h *payrollHandlerImpl) ListForTeam(w http.ResponseWriter, r *http.Request) {
	managerID, err := employeeKey(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.payrollService.ListForManagerTeam(r.Context(), managerID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}
