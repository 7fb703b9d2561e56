package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5"

	"github.com/talenttrack-hr/talenttrack-backend-go/internal/config"
	appHTTP "github.com/talenttrack-hr/talenttrack-backend-go/internal/handler/http"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/pkg/cron"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/pkg/database"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/pkg/events"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/pkg/jwt"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/repository/postgresql"
	anomalyService "github.com/talenttrack-hr/talenttrack-backend-go/internal/service/anomaly"
	dashboardService "github.com/talenttrack-hr/talenttrack-backend-go/internal/service/dashboard"
	kpiService "github.com/talenttrack-hr/talenttrack-backend-go/internal/service/kpi"
	leaveService "github.com/talenttrack-hr/talenttrack-backend-go/internal/service/leave"
	normalizerService "github.com/talenttrack-hr/talenttrack-backend-go/internal/service/normalizer"
	reconcileService "github.com/talenttrack-hr/talenttrack-backend-go/internal/service/reconcile"
	shiftService "github.com/talenttrack-hr/talenttrack-backend-go/internal/service/shift"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	dsn := cfg.DatabaseURL()
	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}
	defer db.Close()

	companyRepo := postgresql.NewCompanyRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	shiftDefinitionRepo := postgresql.NewShiftDefinitionRepository(db)
	shiftAssignmentRepo := postgresql.NewShiftAssignmentRepository(db)
	ruleRepo := postgresql.NewAttendanceRuleRepository(db)
	geofenceRepo := postgresql.NewGeofenceRepository(db)
	eventRepo := postgresql.NewEventRepository(db)
	summaryRepo := postgresql.NewSummaryRepository(db)
	leaveTypeRepo := postgresql.NewLeaveTypeRepository(db)
	leaveRequestRepo := postgresql.NewLeaveRequestRepository(db)
	leaveApprovalRepo := postgresql.NewLeaveApprovalRepository(db)
	leaveBalanceRepo := postgresql.NewLeaveBalanceRepository(db)
	holidayRepo := postgresql.NewHolidayRepository(db)
	kpiDefinitionRepo := postgresql.NewKPIDefinitionRepository(db)
	kpiResultRepo := postgresql.NewKPIResultRepository(db)
	kpiEvaluationRepo := postgresql.NewKPIEvaluationRepository(db)

	jwtSvc := jwt.NewJWTService(cfg.JWT.Secret)
	hub := events.NewHub()
	runTx := func(ctx context.Context, fn func(tx pgx.Tx) error) error {
		return postgresql.WithTransaction(ctx, db, fn)
	}

	resolver := shiftService.NewResolver(shiftDefinitionRepo, shiftAssignmentRepo)
	normalizerSvc := normalizerService.NewService(employeeRepo, eventRepo, ruleRepo, geofenceRepo, resolver)
	reconcileSvc := reconcileService.NewService(
		companyRepo,
		employeeRepo,
		eventRepo,
		summaryRepo,
		ruleRepo,
		resolver,
		hub,
		cfg.Reconcile,
	)
	anomalySvc := anomalyService.NewService(companyRepo, employeeRepo, eventRepo, summaryRepo, leaveRequestRepo)
	leaveSvc := leaveService.NewService(
		employeeRepo,
		leaveTypeRepo,
		leaveRequestRepo,
		leaveApprovalRepo,
		leaveBalanceRepo,
		holidayRepo,
		runTx,
		hub,
	)
	kpiSvc := kpiService.NewService(employeeRepo, summaryRepo, kpiDefinitionRepo, kpiResultRepo, kpiEvaluationRepo, hub)
	dashboardSvc := dashboardService.NewService(companyRepo, employeeRepo, summaryRepo, kpiResultRepo)

	attendanceHandler := appHTTP.NewAttendanceHandler(jwtSvc, normalizerSvc, reconcileSvc)
	dashboardHandler := appHTTP.NewDashboardHandler(jwtSvc, dashboardSvc, anomalySvc, cfg.Reconcile.LookbackDays)
	leaveHandler := appHTTP.NewLeaveHandler(jwtSvc, leaveSvc)

	router := appHTTP.NewRouter(
		cfg.App.Env,
		jwtSvc,
		attendanceHandler,
		dashboardHandler,
		leaveHandler,
	)

	scheduler := cron.NewScheduler()
	cron.RegisterJobs(scheduler, cfg.Reconcile, companyRepo, reconcileSvc, kpiSvc)
	scheduler.Start()
	defer scheduler.Stop()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	server := &http.Server{Addr: port, Handler: router}
	go func() {
		fmt.Printf("Server running at http://localhost%s\n", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Println("Server error:", err)
		}
	}()

	<-stop
	if err := server.Shutdown(context.Background()); err != nil {
		fmt.Println("Shutdown error:", err)
	}
}
