package http

import (
	"net/http"
	"time"

	"github.com/cmlabs-hris/hris-ledger/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-ledger/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type AttendanceHandler interface {
	CheckIn(w http.ResponseWriter, r *http.Request)
	CheckOut(w http.ResponseWriter, r *http.Request)
	Status(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Month(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
	loc               *time.Location
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService, loc *time.Location) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
		loc:               loc,
	}
}

// CheckIn implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckIn(w http.ResponseWriter, r *http.Request) {
	employeeID, err := employeeKey(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.CheckIn(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Checked in successfully", result)
}

// CheckOut implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckOut(w http.ResponseWriter, r *http.Request) {
	employeeID, err := employeeKey(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.CheckOut(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Checked out successfully", result)
}

// Status implements AttendanceHandler.
func (h *attendanceHandlerImpl) Status(w http.ResponseWriter, r *http.Request) {
	employeeID, err := employeeKey(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.Status(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// List implements AttendanceHandler.
func (h *attendanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	employeeID, err := employeeKey(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.List(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// Month implements AttendanceHandler.
func (h *attendanceHandlerImpl) Month(w http.ResponseWriter, r *http.Request) {
	employeeID, err := employeeKey(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	month, year, ok := monthYear(r, h.loc)
	if !ok {
		response.BadRequest(w, "month and year must be numbers", nil)
		return
	}

	result, err := h.attendanceService.ListForRange(r.Context(), attendance.RangeFilter{
		EmployeeID: employeeID,
		Month:      month,
		Year:       year,
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// Delete implements AttendanceHandler.
func (h *attendanceHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	employeeID, err := employeeKey(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	err = h.attendanceService.DeleteEntry(r.Context(), attendance.DeleteEntryRequest{
		EmployeeID: employeeID,
		Date:       chi.URLParam(r, "date"),
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Attendance entry deleted", nil)
}
