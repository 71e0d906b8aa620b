package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/hris-ledger/internal/config"
	"github.com/cmlabs-hris/hris-ledger/internal/fixtures"
	appHTTP "github.com/cmlabs-hris/hris-ledger/internal/handler/http"
	"github.com/cmlabs-hris/hris-ledger/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/cache"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/cron"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/database"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-ledger/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/hris-ledger/internal/service/attendance"
	serviceAuth "github.com/cmlabs-hris/hris-ledger/internal/service/auth"
	employeeService "github.com/cmlabs-hris/hris-ledger/internal/service/employee"
	identityService "github.com/cmlabs-hris/hris-ledger/internal/service/identity"
	leaveService "github.com/cmlabs-hris/hris-ledger/internal/service/leave"
	masterService "github.com/cmlabs-hris/hris-ledger/internal/service/master"
	payrollService "github.com/cmlabs-hris/hris-ledger/internal/service/payroll"
	reportService "github.com/cmlabs-hris/hris-ledger/internal/service/report"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loc := cfg.Location()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	rdb, err := cache.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if rdb == nil {
		slog.Warn("REDIS_ADDR not set, identity and catalogue caching disabled")
	} else {
		defer rdb.Close()
	}
	redisCache := cache.NewRedisCache(rdb)

	userRepo := postgresql.NewUserRepository(db)
	JWTRepository := postgresql.NewJWTRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	badgeRepo := postgresql.NewBadgeCounterRepository(db)
	catalogueRepo := postgresql.NewCatalogueRepository(db)
	leaveTypeRepo := postgresql.NewLeaveTypeRepository(db)
	attendanceLedger := postgresql.NewAttendanceLedgerRepository(db)
	leaveLedger := postgresql.NewLeaveLedgerRepository(db)
	payslipLedger := postgresql.NewPayslipLedgerRepository(db)
	txManager := postgresql.NewTxManager(db)

	seeder := fixtures.NewSeeder(catalogueRepo, leaveTypeRepo, userRepo)
	if err := seeder.SeedDefaults(ctx); err != nil {
		return fmt.Errorf("seed defaults: %w", err)
	}
	if err := seeder.EnsureSuperuser(ctx, cfg.Ledger.SuperuserEmail, cfg.Ledger.SuperuserPassword); err != nil {
		return fmt.Errorf("ensure superuser: %w", err)
	}

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration)
	resolver := identityService.NewResolver(employeeRepo, redisCache, cfg.Redis.TTL, cfg.Ledger.SuperuserEmail)

	authService := serviceAuth.NewAuthService(userRepo, JWTService, JWTRepository, employeeRepo, txManager, cfg.Ledger.SuperuserEmail)
	employeeSvc := employeeService.NewEmployeeService(
		employeeRepo,
		badgeRepo,
		userRepo,
		catalogueRepo,
		employeeService.Ledgers{
			Attendance: attendanceLedger,
			Leave:      leaveLedger,
			Payslips:   payslipLedger,
		},
		txManager,
		resolver,
	)
	attendanceSvc := attendanceService.NewAttendanceService(attendanceLedger, employeeRepo, loc)
	leaveSvc := leaveService.NewLeaveService(leaveTypeRepo, leaveLedger, employeeRepo, userRepo, cfg.Ledger.EnforceLeaveAllotment, loc)
	payrollSvc := payrollService.NewPayrollService(payslipLedger, employeeRepo, loc, cfg.Ledger.PayrollBulkConcurrency)
	reportSvc := reportService.NewReportService(employeeRepo, attendanceLedger, leaveLedger, leaveTypeRepo, payslipLedger, loc)
	masterSvc := masterService.NewMasterService(catalogueRepo, redisCache)

	absentSpec := ""
	if cfg.Cron.MaterializeAbsent {
		absentSpec = cfg.Cron.AbsentSpec
	}
	scheduler := cron.NewScheduler(loc)
	jobs := cron.NewAttendanceJobs(attendanceSvc, cfg.Cron.AutoCloseSpec, absentSpec, loc)
	if err := jobs.RegisterJobs(scheduler); err != nil {
		return fmt.Errorf("register cron jobs: %w", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(JWTService, resolver, appHTTP.Handlers{
		Auth:       appHTTP.NewAuthHandler(JWTService, authService),
		Employee:   appHTTP.NewEmployeeHandler(employeeSvc),
		Attendance: appHTTP.NewAttendanceHandler(attendanceSvc, loc),
		Leave:      appHTTP.NewLeaveHandler(leaveSvc),
		Payroll:    appHTTP.NewPayrollHandler(payrollSvc),
		Report:     appHTTP.NewReportHandler(reportSvc, loc),
		Master:     appHTTP.NewMasterHandler(masterSvc),
	}, appHTTP.RouterOptions{
		Logger:         logger,
		LogLevel:       cfg.SlogLevel(),
		AllowedOrigins: cfg.App.CORSOrigins,
		RateLimiter:    middleware.NewRateLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst),
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("HTTP server running", "addr", server.Addr, "env", cfg.App.Env, "timezone", loc.String())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	slog.Info("Server exited gracefully")
	return nil
}
