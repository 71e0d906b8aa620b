package http

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-ledger/internal/domain/identity"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/user"
	"github.com/cmlabs-hris/hris-ledger/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type Handlers struct {
	Auth       AuthHandler
	Employee   EmployeeHandler
	Attendance AttendanceHandler
	Leave      LeaveHandler
	Payroll    PayrollHandler
	Report     ReportHandler
	Master     MasterHandler
}

type RouterOptions struct {
	Logger         *slog.Logger
	LogLevel       slog.Level
	AllowedOrigins []string
	// Bounds check-in and check-out per user. Nil disables limiting.
	RateLimiter *middleware.RateLimiter
}

func NewRouter(JWTService jwt.Service, resolver identity.Resolver, h Handlers, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)

	if opts.Logger != nil {
		r.Use(httplog.RequestLogger(opts.Logger, &httplog.Options{
			Level:  opts.LogLevel,
			Schema: httplog.SchemaECS,
		}))
	}

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	limit := func(next http.Handler) http.Handler { return next }
	if opts.RateLimiter != nil {
		limit = opts.RateLimiter.Limit
	}

	authenticated := func(r chi.Router) {
		r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
		r.Use(middleware.AuthRequired(JWTService.JWTAuth()))
		r.Use(middleware.ResolveIdentity(resolver))
	}

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.Auth.Login)
			r.Post("/refresh", h.Auth.RefreshToken)
			r.Post("/logout", h.Auth.Logout)

			r.Group(func(r chi.Router) {
				authenticated(r)
				r.Get("/me", h.Auth.Me)
				r.Post("/change-password", h.Auth.ChangePassword)
			})
		})

		// Requires authentication
		r.Group(func(r chi.Router) {
			authenticated(r)

			r.Put("/profile", h.Employee.UpdateProfile)

			r.Route("/catalogues/{kind}", func(r chi.Router) {
				r.Get("/", h.Master.List)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionCatalogueManage))
					r.Post("/", h.Master.Create)
					r.Put("/{id}", h.Master.Update)
					r.Delete("/{id}", h.Master.Delete)
				})
			})

			r.Route("/leave-types", func(r chi.Router) {
				r.Get("/", h.Leave.ListTypes)
				r.Get("/{id}", h.Leave.GetType)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionLeaveManageTypes))
					r.Post("/", h.Leave.CreateType)
					r.Put("/{id}", h.Leave.UpdateType)
					r.Delete("/{id}", h.Leave.DeleteType)
				})
			})

			// Admin only
			r.With(middleware.RequirePermission(user.PermissionLeaveViewAll)).Get("/leave", h.Leave.ListAll)
			r.With(middleware.RequirePermission(user.PermissionPayrollManage)).Post("/payroll/bulk", h.Payroll.GenerateBulk)
			r.With(middleware.RequirePermission(user.PermissionReportsViewAll)).Get("/reports/payroll", h.Report.PayrollMonth)

			r.Route("/employees", func(r chi.Router) {
				r.Get("/", h.Employee.ListEmployees)
				r.With(middleware.AdminOnly).Post("/", h.Employee.CreateEmployee)
				r.Get("/badge/{badgeID}", h.Employee.GetEmployeeByBadge)

				r.Route("/{employeeID}", func(r chi.Router) {
					r.Get("/", h.Employee.GetEmployee)

					r.Group(func(r chi.Router) {
						r.Use(middleware.AdminOnly)
						r.Put("/", h.Employee.UpdateEmployee)
						r.Post("/inactivate", h.Employee.InactivateEmployee)
						r.Delete("/", h.Employee.DeleteEmployee)
					})

					r.Route("/attendance", func(r chi.Router) {
						r.Get("/", h.Attendance.List)
						r.Get("/month", h.Attendance.Month)
						r.Get("/status", h.Attendance.Status)
						r.With(limit).Post("/check-in", h.Attendance.CheckIn)
						r.With(limit).Post("/check-out", h.Attendance.CheckOut)
						r.Delete("/{date}", h.Attendance.Delete)
					})

					r.Route("/leave", func(r chi.Router) {
						r.Get("/", h.Leave.ListForEmployee)
						r.Post("/", h.Leave.Submit)
						r.Get("/balances", h.Leave.Balances)
						r.Get("/used", h.Leave.UsedDays)
						r.With(middleware.RequirePermission(user.PermissionLeaveApprove)).Patch("/{entryID}/status", h.Leave.SetStatus)
						r.Patch("/{entryID}/comment", h.Leave.SetComment)
						r.Delete("/{entryID}", h.Leave.Delete)
					})

					r.Route("/payslips", func(r chi.Router) {
						r.Get("/", h.Payroll.ListForEmployee)

						// Admins, or managers for their direct reports
						r.Group(func(r chi.Router) {
							r.Use(middleware.RequirePermission(user.PermissionPayrollManageTeam))
							r.Post("/", h.Payroll.Generate)
							// {ref} is the slip id on PUT and the pay date on DELETE.
							r.Put("/{ref}", h.Payroll.Edit)
							r.Delete("/{ref}", h.Payroll.Delete)
						})
					})

					r.Route("/reports", func(r chi.Router) {
						r.Get("/attendance", h.Report.AttendanceMonth)
						r.Get("/leave", h.Report.LeaveSummary)
					})

					// Manager views over direct reports
					r.With(middleware.RequireReviewer).Get("/reportees", h.Employee.ListReportees)
					r.With(middleware.RequirePermission(user.PermissionLeaveViewTeam)).Get("/team/leave", h.Leave.ListForTeam)
					r.With(middleware.RequirePermission(user.PermissionPayrollViewTeam)).Get("/team/payslips", h.Payroll.ListForTeam)
					r.With(middleware.RequirePermission(user.PermissionAttendanceViewTeam)).Get("/team/overview", h.Report.TeamOverview)
				})
			})
		})
	})
	return r
}
