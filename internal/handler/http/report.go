package http

import (
	"net/http"
	"time"

	"github.com/cmlabs-hris/hris-ledger/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/report"
	"github.com/cmlabs-hris/hris-ledger/internal/handler/http/response"
)

type ReportHandler interface {
	AttendanceMonth(w http.ResponseWriter, r *http.Request)
	LeaveSummary(w http.ResponseWriter, r *http.Request)
	PayrollMonth(w http.ResponseWriter, r *http.Request)
	TeamOverview(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
	loc           *time.Location
}

func NewReportHandler(reportService report.ReportService, loc *time.Location) ReportHandler {
	return &reportHandlerImpl{reportService: reportService, loc: loc}
}

// AttendanceMonth implements ReportHandler.
func (h *reportHandlerImpl) AttendanceMonth(w http.ResponseWriter, r *http.Request) {
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

	result, err := h.reportService.AttendanceMonth(r.Context(), attendance.RangeFilter{EmployeeID: employeeID, Month: month, Year: year})
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// LeaveSummary implements ReportHandler.
func (h *reportHandlerImpl) LeaveSummary(w http.ResponseWriter, r *http.Request) {
	employeeID, err := employeeKey(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.reportService.LeaveSummary(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// PayrollMonth implements ReportHandler.
func (h *reportHandlerImpl) PayrollMonth(w http.ResponseWriter, r *http.Request) {
	month, year, ok := monthYear(r, h.loc)
	if !ok {
		response.BadRequest(w, "month and year must be numbers", nil)
		return
	}

	result, err := h.reportService.PayrollMonth(r.Context(), report.MonthRequest{Month: month, Year: year})
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// TeamOverview implements ReportHandler.
func (h *reportHandlerImpl) TeamOverview(w http.ResponseWriter, r *http.Request) {
	managerID, err := employeeKey(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	month, year, ok := monthYear(r, h.loc)
	if !ok {
		response.BadRequest(w, "month and year must be numbers", nil)
		return
	}

	result, err := h.reportService.TeamOverview(r.Context(), managerID, report.MonthRequest{Month: month, Year: year})
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}
