package http

import (
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/hris-ledger/internal/domain/employee"
	"github.com/cmlabs-hris/hris-ledger/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type EmployeeHandler interface {
	CreateEmployee(w http.ResponseWriter, r *http.Request)
	GetEmployee(w http.ResponseWriter, r *http.Request)
	GetEmployeeByBadge(w http.ResponseWriter, r *http.Request)
	UpdateEmployee(w http.ResponseWriter, r *http.Request)
	UpdateProfile(w http.ResponseWriter, r *http.Request)
	InactivateEmployee(w http.ResponseWriter, r *http.Request)
	DeleteEmployee(w http.ResponseWriter, r *http.Request)
	ListEmployees(w http.ResponseWriter, r *http.Request)
	ListReportees(w http.ResponseWriter, r *http.Request)
}

type employeeHandlerImpl struct {
	employeeService employee.EmployeeService
}

func NewEmployeeHandler(employeeService employee.EmployeeService) EmployeeHandler {
	return &employeeHandlerImpl{
		employeeService: employeeService,
	}
}

// CreateEmployee implements EmployeeHandler
func (h *employeeHandlerImpl) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req employee.CreateEmployeeRequest
	if !decodeJSON(w, r, &req, "CreateEmployee") {
		return
	}

	result, err := h.employeeService.CreateEmployee(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Employee created successfully", result)
}

// GetEmployee implements EmployeeHandler
func (h *employeeHandlerImpl) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := employeeKey(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.employeeService.GetEmployee(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// GetEmployeeByBadge implements EmployeeHandler
func (h *employeeHandlerImpl) GetEmployeeByBadge(w http.ResponseWriter, r *http.Request) {
	result, err := h.employeeService.GetEmployeeByBadge(r.Context(), chi.URLParam(r, "badgeID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// UpdateEmployee implements EmployeeHandler
func (h *employeeHandlerImpl) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := employeeKey(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req employee.UpdateEmployeeRequest
	if !decodeJSON(w, r, &req, "UpdateEmployee") {
		return
	}
	req.ID = id

	result, err := h.employeeService.UpdateEmployee(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Employee updated successfully", result)
}

// UpdateProfile implements EmployeeHandler
func (h *employeeHandlerImpl) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req employee.UpdateProfileRequest
	if !decodeJSON(w, r, &req, "UpdateProfile") {
		return
	}

	result, err := h.employeeService.UpdateOwnProfile(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Profile updated successfully", result)
}

// InactivateEmployee implements EmployeeHandler
func (h *employeeHandlerImpl) InactivateEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := employeeKey(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req employee.InactivateEmployeeRequest
	if !decodeJSON(w, r, &req, "InactivateEmployee") {
		return
	}
	req.ID = id

	result, err := h.employeeService.InactivateEmployee(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Employee inactivated successfully", result)
}

// DeleteEmployee implements EmployeeHandler
func (h *employeeHandlerImpl) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := employeeKey(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if err := h.employeeService.DeleteEmployee(r.Context(), id); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Employee deleted successfully", nil)
}

// ListEmployees implements EmployeeHandler
func (h *employeeHandlerImpl) ListEmployees(w http.ResponseWriter, r *http.Request) {
	filter := employee.EmployeeFilter{
		Status:             optionalQuery(r, "status"),
		Department:         optionalQuery(r, "department"),
		ReportingManagerID: optionalQuery(r, "reporting_manager_id"),
		Search:             optionalQuery(r, "search"),
	}

	// Pagination
	page := 1
	if p := r.URL.Query().Get("page"); p != "" {
		if pageNum, err := strconv.Atoi(p); err == nil && pageNum > 0 {
			page = pageNum
		}
	}
	filter.Page = page

	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		if limitNum, err := strconv.Atoi(l); err == nil && limitNum > 0 {
			limit = limitNum
		}
	}
	filter.Limit = limit

	results, err := h.employeeService.ListEmployees(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, results)
}

// ListReportees implements EmployeeHandler
func (h *employeeHandlerImpl) ListReportees(w http.ResponseWriter, r *http.Request) {
	id, err := employeeKey(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	results, err := h.employeeService.ListReportees(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, results)
}
