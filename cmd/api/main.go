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

	"github.com/sistema-nomina/backend-nomina/internal/config"
	"github.com/sistema-nomina/backend-nomina/internal/domain/payroll"
	appHTTP "github.com/sistema-nomina/backend-nomina/internal/handler/http"
	"github.com/sistema-nomina/backend-nomina/internal/pkg/database"
	"github.com/sistema-nomina/backend-nomina/internal/pkg/jwt"
	"github.com/sistema-nomina/backend-nomina/internal/pkg/logger"
	"github.com/sistema-nomina/backend-nomina/internal/repository/postgresql"
	payrollService "github.com/sistema-nomina/backend-nomina/internal/service/payroll"
	"golang.org/x/time/rate"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	log := logger.New(os.Stdout, cfg.App.Name, cfg.App.Version, cfg.App.Env, cfg.App.LogLevel)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dsn := cfg.DatabaseURL()

	if cfg.Database.AutoMigrate {
		migrator, err := database.NewMigrator(dsn, log)
		if err != nil {
			return err
		}
		upErr := migrator.Up()
		if err := errors.Join(upErr, migrator.Close()); err != nil {
			return err
		}
	}

	db, err := database.NewPostgreSQLDB(ctx, dsn)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	payrollRepo := postgresql.NewPayrollRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	transactor := postgresql.NewTransactor(db)

	calculator := payroll.NewCalculator(payroll.CalculatorConfig{
		TransportSubsidy: cfg.Payroll.TransportSubsidy,
		PensionRate:      cfg.Payroll.PensionRate,
		HealthRate:       cfg.Payroll.HealthRate,
	})

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	payrollSvc := payrollService.NewPayrollService(
		transactor,
		payrollRepo,
		employeeRepo,
		calculator,
		payrollService.WithWriteTimeout(cfg.Payroll.WriteTimeout),
		payrollService.WithLogger(log),
	)

	payrollHandler := appHTTP.NewPayrollHandler(payrollSvc)

	router := appHTTP.NewRouter(JWTService, payrollHandler, appHTTP.RouterOptions{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Logger:         log,
		WriteRateLimit: rate.Limit(cfg.RateLimit.RequestsPerSecond),
		WriteBurst:     cfg.RateLimit.Burst,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server starting", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("server exited gracefully")
	return nil
}
