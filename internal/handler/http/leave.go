package http

import (
	"net/http"

	"github.com/cmlabs-hris/hris-ledger/internal/domain/leave"
	"github.com/cmlabs-hris/hris-ledger/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type LeaveHandler interface {
	CreateType(w http.ResponseWriter, r *http.Request)
	GetType(w http.ResponseWriter, r *http.Request)
	ListTypes(w http.ResponseWriter, r *http.Request)
	UpdateType(w http.ResponseWriter, r *http.Request)
	DeleteType(w http.ResponseWriter, r *http.Request)

	Submit(w http.ResponseWriter, r *http.Request)
	SetStatus(w http.ResponseWriter, r *http.Request)
	SetComment(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	UsedDays(w http.ResponseWriter, r *http.Request)
	Balances(w http.ResponseWriter, r *http.Request)
	ListForEmployee(w http.ResponseWriter, r *http.Request)
	ListForTeam(w http.ResponseWriter, r *http.Request)
	ListAll(w http.ResponseWriter, r *http.Request)
}

type LeaveHandlerImpl struct {
	leaveService leave.LeaveService
}

func NewLeaveHandler(leaveService leave.LeaveService) LeaveHandler {
	return &LeaveHandlerImpl{leaveService: leaveService}
}

func leaveFilter(r *http.Request) leave.LeaveFilter {
	return leave.LeaveFilter{
		Status:      optionalQuery(r, "status"),
		LeaveTypeID: optionalQuery(r, "leave_type_id"),
	}
}

// CreateType implements LeaveHandler.
func (l *LeaveHandlerImpl) CreateType(w http.ResponseWriter, r *http.Request) {
	var req leave.CreateLeaveTypeRequest
	if !decodeJSON(w, r, &req, "CreateType") {
		return
	}

	result, err := l.leaveService.CreateType(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Leave type created successfully", result)
}

// GetType implements LeaveHandler.
func (l *LeaveHandlerImpl) GetType(w http.ResponseWriter, r *http.Request) {
	result, err := l.leaveService.GetType(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// ListTypes implements LeaveHandler.
func (l *LeaveHandlerImpl) ListTypes(w http.ResponseWriter, r *http.Request) {
	result, err := l.leaveService.ListTypes(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// UpdateType implements LeaveHandler.
func (l *LeaveHandlerImpl) UpdateType(w http.ResponseWriter, r *http.Request) {
	var req leave.UpdateLeaveTypeRequest
	if !decodeJSON(w, r, &req, "UpdateType") {
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := l.leaveService.UpdateType(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Leave type updated successfully", result)
}

// DeleteType implements LeaveHandler.
func (l *LeaveHandlerImpl) DeleteType(w http.ResponseWriter, r *http.Request) {
	if err := l.leaveService.DeleteType(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Leave type deleted successfully", nil)
}

// Submit implements LeaveHandler. An allotment overrun still answers 201,
// with the warning in the body.
func (l *LeaveHandlerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	employeeID, err := employeeKey(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req leave.SubmitLeaveRequest
	if !decodeJSON(w, r, &req, "SubmitLeave") {
		return
	}
	req.EmployeeID = employeeID

	result, err := l.leaveService.Submit(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Leave request submitted", result)
}

// SetStatus implements LeaveHandler.
func (l *LeaveHandlerImpl) SetStatus(w http.ResponseWriter, r *http.Request) {
	employeeID, err := employeeKey(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req leave.UpdateStatusRequest
	if !decodeJSON(w, r, &req, "SetLeaveStatus") {
		return
	}
	req.EmployeeID = employeeID
	req.EntryID = chi.URLParam(r, "entryID")

	result, err := l.leaveService.SetStatus(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Leave status updated", result)
}

// SetComment implements LeaveHandler.
func (l *LeaveHandlerImpl) SetComment(w http.ResponseWriter, r *http.Request) {
	employeeID, err := employeeKey(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req leave.UpdateCommentRequest
	if !decodeJSON(w, r, &req, "SetLeaveComment") {
		return
	}
	req.EmployeeID = employeeID
	req.EntryID = chi.URLParam(r, "entryID")

	result, err := l.leaveService.SetComment(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Leave comment updated", result)
}

// Delete implements LeaveHandler.
func (l *LeaveHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	employeeID, err := employeeKey(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	err = l.leaveService.Delete(r.Context(), leave.DeleteLeaveRequest{
		EmployeeID: employeeID,
		EntryID:    chi.URLParam(r, "entryID"),
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Leave request deleted", nil)
}

// UsedDays implements LeaveHandler.
func (l *LeaveHandlerImpl) UsedDays(w http.ResponseWriter, r *http.Request) {
	employeeID, err := employeeKey(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	leaveTypeID := r.URL.Query().Get("leave_type_id")
	if leaveTypeID == "" {
		response.BadRequest(w, "leave_type_id is required", nil)
		return
	}

	used, err := l.leaveService.UsedDays(r.Context(), employeeID, leaveTypeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, map[string]int{"used_days": used})
}

// Balances implements LeaveHandler.
func (l *LeaveHandlerImpl) Balances(w http.ResponseWriter, r *http.Request) {
	employeeID, err := employeeKey(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := l.leaveService.Balances(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// ListForEmployee implements LeaveHandler.
func (l *LeaveHandlerImpl) ListForEmployee(w http.ResponseWriter, r *http.Request) {
	employeeID, err := employeeKey(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := l.leaveService.ListForEmployee(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// ListForTeam implements LeaveHandler.
func (l *LeaveHandlerImpl) ListForTeam(w http.ResponseWriter, r *http.Request) {
	managerID, err := employeeKey(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := l.leaveService.ListForManagerTeam(r.Context(), managerID, leaveFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// ListAll implements LeaveHandler.
func (l *LeaveHandlerImpl) ListAll(w http.ResponseWriter, r *http.Request) {
	result, err := l.leaveService.ListAll(r.Context(), leaveFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}
