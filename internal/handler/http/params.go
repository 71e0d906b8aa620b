package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/cmlabs-hris/hris-ledger/internal/domain/employee"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/identity"
	"github.com/cmlabs-hris/hris-ledger/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

// decodeJSON writes a 400 and returns false when the body is not valid JSON.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}, op string) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		slog.Error(op+" decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return false
	}
	return true
}

// employeeKey reads the {employeeID} route parameter. "me" stands for the
// caller's own record.
func employeeKey(r *http.Request) (string, error) {
	key := chi.URLParam(r, "employeeID")
	if key != "me" {
		return key, nil
	}
	id, err := identity.FromContext(r.Context())
	if err != nil {
		return "", err
	}
	if id.Employee == nil {
		return "", employee.ErrEmployeeNotFound
	}
	return id.Employee.ID, nil
}

// monthYear reads ?month=&year=, defaulting to the current month in loc.
func monthYear(r *http.Request, loc *time.Location) (month int, year int, ok bool) {
	now := time.Now().In(loc)
	month, year = int(now.Month()), now.Year()

	q := r.URL.Query()
	if v := q.Get("month"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, false
		}
		month = m
	}
	if v := q.Get("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, false
		}
		year = y
	}
	return month, year, true
}

func optionalQuery(r *http.Request, key string) *string {
	if v := r.URL.Query().Get(key); v != "" {
		return &v
	}
	return nil
}
