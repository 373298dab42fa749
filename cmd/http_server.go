package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adiwardana/expense-approval/internal"
	"github.com/adiwardana/expense-approval/internal/approval"
	approvalPostgres "github.com/adiwardana/expense-approval/internal/approval/postgres"
	"github.com/adiwardana/expense-approval/internal/auth"
	authPostgres "github.com/adiwardana/expense-approval/internal/auth/postgres"
	"github.com/adiwardana/expense-approval/internal/currency"
	"github.com/adiwardana/expense-approval/internal/expense"
	expensePostgres "github.com/adiwardana/expense-approval/internal/expense/postgres"
	"github.com/adiwardana/expense-approval/internal/ocr"
	"github.com/adiwardana/expense-approval/internal/transport/rest"
	"github.com/adiwardana/expense-approval/internal/user"
	userPostgres "github.com/adiwardana/expense-approval/internal/user/postgres"
	"github.com/adiwardana/expense-approval/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	DB       *sqlx.DB
	GormDB   *gorm.DB
	Router   *chi.Mux
	Handlers rest.Handlers
	Logger   *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, deps.Handlers, deps.Config.Server.AllowedOrigins, deps.Logger)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"))
	log := logger.L()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// gorm shares the pgx pool so there is a single set of connections
	gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm connection: %w", err)
	}

	handlers, err := buildHandlers(config, gormDB, log)
	if err != nil {
		return nil, err
	}

	return &Dependencies{
		Config:   config,
		Logger:   log,
		DB:       db,
		GormDB:   gormDB,
		Router:   chi.NewRouter(),
		Handlers: handlers,
	}, nil
}

func buildHandlers(cfg *internal.Config, db *gorm.DB, log *slog.Logger) (rest.Handlers, error) {
	tokenGen := auth.NewJWTTokenGenerator(
		cfg.Security.AccessTokenSecret,
		cfg.Security.RefreshTokenSecret,
		cfg.Security.AccessTokenDuration,
		cfg.Security.RefreshTokenDuration,
	)

	authRepo := authPostgres.NewAuthRepository(db)
	authService := auth.NewService(authRepo, tokenGen, cfg.Security.BCryptCost, log)
	authHandler := auth.NewHandler(authService)

	userRepo := userPostgres.NewUserRepository(db)
	userService := user.NewService(userRepo, cfg.Security.BCryptCost, log)
	userHandler := user.NewHandler(userService)

	rateClient := currency.NewRateClient(cfg.ExchangeRate, log)
	normalizer := currency.NewNormalizer(rateClient, log)
	currencyHandler := currency.NewHandler(normalizer)

	approvalRepo := approvalPostgres.NewApprovalRepository(db)
	approvalService := approval.NewService(approvalRepo, log)
	approvalHandler := approval.NewHandler(approvalService)

	expenseRepo := expensePostgres.NewExpenseRepository(db)
	expenseService := expense.NewService(expenseRepo, approvalService, normalizer, log)
	expenseHandler := expense.NewHandler(expenseService)

	extractor := ocr.NewHTTPExtractor(cfg.OCR, log)
	ocrHandler := ocr.NewHandler(extractor)

	return rest.Handlers{
		Auth:     authHandler,
		User:     userHandler,
		Expense:  expenseHandler,
		Approval: approvalHandler,
		Currency: currencyHandler,
		OCR:      ocrHandler,
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
