package payroll

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestNetSalary(t *testing.T) {
	net := NetSalary(d("50000"), d("5000"), d("2000"))
	assert.True(t, net.Equal(d("53000")), net.String())

	net = NetSalary(d("1000.50"), d("0.25"), d("0.75"))
	assert.True(t, net.Equal(d("1000")), net.String())
}

func TestSlips_Add_RecomputesNet(t *testing.T) {
	slip := Slip{
		ID:          "s1",
		PayDate:     "2024-03-31",
		BasicSalary: d("50000"),
		Allowances:  d("5000"),
		Deductions:  d("2000"),
		NetSalary:   d("999999"), // never trusted
	}

	ss, added, err := Slips(nil).Add(slip)
	require.NoError(t, err)
	require.Len(t, ss, 1)
	assert.True(t, added.NetSalary.Equal(d("53000")))
	assert.True(t, ss[0].NetSalary.Equal(d("53000")))
}

func TestSlips_Add_RejectsDuplicatePayDate(t *testing.T) {
	ss, _, err := Slips(nil).Add(Slip{ID: "s1", PayDate: "2024-03-31"})
	require.NoError(t, err)

	out, _, err := ss.Add(Slip{ID: "s2", PayDate: "2024-03-31"})
	assert.ErrorIs(t, err, ErrPayslipExists)
	assert.Len(t, out, 1)
}

func TestSlips_Apply_RoundTrip(t *testing.T) {
	ss, _, err := Slips(nil).Add(Slip{ID: "s1", PayDate: "2024-03-31", BasicSalary: d("50000"), Status: StatusPending})
	require.NoError(t, err)

	now := time.Date(2024, 4, 2, 8, 0, 0, 0, time.UTC)
	edit := Edit{
		PayDate:       "2024-04-01",
		BasicSalary:   d("52000"),
		Allowances:    d("3000.50"),
		Deductions:    d("1200"),
		PaymentMethod: "Cheque",
		Status:        StatusSent,
		BankName:      "State Bank",
		AccountNumber: "0012345678",
		IFSC:          "SBIN0001234",
		BankBranch:    "MG Road",
	}

	ss, got, err := ss.Apply("s1", edit, now)
	require.NoError(t, err)
	assert.Equal(t, ss[0], got)

	assert.Equal(t, edit.PayDate, got.PayDate)
	assert.True(t, edit.BasicSalary.Equal(got.BasicSalary))
	assert.True(t, edit.Allowances.Equal(got.Allowances))
	assert.True(t, edit.Deductions.Equal(got.Deductions))
	assert.True(t, got.NetSalary.Equal(d("53800.50")))
	assert.False(t, got.NetOverridden)
	assert.Equal(t, edit.PaymentMethod, got.PaymentMethod)
	assert.Equal(t, edit.Status, got.Status)
	assert.Equal(t, edit.BankName, got.BankName)
	assert.Equal(t, edit.AccountNumber, got.AccountNumber)
	assert.Equal(t, edit.IFSC, got.IFSC)
	assert.Equal(t, edit.BankBranch, got.BankBranch)
	assert.Equal(t, now, got.UpdatedAt)
}

func TestSlips_Apply_NetOverride(t *testing.T) {
	ss, _, err := Slips(nil).Add(Slip{ID: "s1", PayDate: "2024-03-31", BasicSalary: d("50000")})
	require.NoError(t, err)

	override := d("45000")
	_, got, err := ss.Apply("s1", Edit{PayDate: "2024-03-31", BasicSalary: d("50000"), NetOverride: &override}, time.Now())
	require.NoError(t, err)
	assert.True(t, got.NetSalary.Equal(override))
	assert.True(t, got.NetOverridden)
}

func TestSlips_Apply_Errors(t *testing.T) {
	ss := Slips{{ID: "s1", PayDate: "2024-03-31"}, {ID: "s2", PayDate: "2024-04-30"}}

	_, _, err := ss.Apply("missing", Edit{PayDate: "2024-05-31"}, time.Now())
	assert.ErrorIs(t, err, ErrPayslipNotFound)

	_, _, err = ss.Apply("s1", Edit{PayDate: "2024-04-30"}, time.Now())
	assert.ErrorIs(t, err, ErrPayslipExists)

	_, _, err = ss.Apply("s1", Edit{PayDate: "2024-03-31"}, time.Now())
	assert.NoError(t, err)
}

func TestSlips_RemoveByDate_Idempotent(t *testing.T) {
	ss := Slips{{ID: "s1", PayDate: "2024-03-31"}, {ID: "s2", PayDate: "2024-04-30"}}

	once, removed := ss.RemoveByDate("2024-03-31")
	assert.True(t, removed)
	require.Len(t, once, 1)
	assert.Equal(t, "s2", once[0].ID)

	twice, removed := once.RemoveByDate("2024-03-31")
	assert.False(t, removed)
	assert.Equal(t, once, twice)
}

func TestSlips_InMonth(t *testing.T) {
	ss := Slips{{PayDate: "2024-03-01"}, {PayDate: "2024-03-31"}, {PayDate: "2024-04-01"}, {PayDate: "bad"}}
	assert.Len(t, ss.InMonth(2024, time.March), 2)
	assert.Len(t, ss.InMonth(2024, time.April), 1)
	assert.Empty(t, ss.InMonth(2023, time.March))
}

func TestGenerateRequest_Validate_Defaults(t *testing.T) {
	req := GenerateRequest{EmployeeID: "e1", PayDate: "2024-03-31"}
	require.NoError(t, req.Validate())
	assert.Equal(t, DefaultPaymentMethod, req.PaymentMethod)
	assert.Equal(t, string(StatusPending), req.Status)
	assert.True(t, OrZero(req.Allowances).IsZero())
}

func TestGenerateRequest_Validate_Negative(t *testing.T) {
	neg := d("-1")
	req := GenerateRequest{EmployeeID: "e1", PayDate: "2024-03-31", Deductions: &neg, Status: "Paid"}
	err := req.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deductions must not be negative")
	assert.Contains(t, err.Error(), "status must be")
}
