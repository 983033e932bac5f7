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

	"github.com/cmlabs-hris/appraisal-backend-go/internal/config"
	appHTTP "github.com/cmlabs-hris/appraisal-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/appraisal-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/appraisal-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/appraisal-backend-go/internal/pkg/grading"
	"github.com/cmlabs-hris/appraisal-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/appraisal-backend-go/internal/pkg/oauth"
	"github.com/cmlabs-hris/appraisal-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/appraisal-backend-go/internal/repository/postgresql"
	serviceAuth "github.com/cmlabs-hris/appraisal-backend-go/internal/service/auth"
	evaluationService "github.com/cmlabs-hris/appraisal-backend-go/internal/service/evaluation"
	personnelService "github.com/cmlabs-hris/appraisal-backend-go/internal/service/personnel"
	pollService "github.com/cmlabs-hris/appraisal-backend-go/internal/service/poll"
	statisticsService "github.com/cmlabs-hris/appraisal-backend-go/internal/service/statistics"
)

const version = "v1.0.0"

func main() {
	if err := run(); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	engine := grading.NewDefaultEngine()

	txManager := postgresql.NewTxManager(db)
	userRepo := postgresql.NewUserRepository(db)
	personnelRepo := postgresql.NewPersonnelRepository(db)
	evaluationRepo := postgresql.NewEvaluationRepository(db)
	pollRepo := postgresql.NewPollRepository(db)
	refreshTokenRepo := postgresql.NewRefreshTokenRepository(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration)
	var googleService oauth.GoogleService
	if cfg.OAuth2Google.Enabled() {
		googleService = oauth.NewGoogleService(cfg.OAuth2Google.ClientID, cfg.OAuth2Google.ClientSecret, cfg.OAuth2Google.RedirectURL, cfg.OAuth2Google.Scopes)
	}
	hub := sse.NewHub()

	authService := serviceAuth.NewAuthService(txManager, userRepo, personnelRepo, refreshTokenRepo, JWTService)
	personnelSvc := personnelService.NewPersonnelService(personnelRepo)
	evaluationSvc := evaluationService.NewEvaluationService(txManager, evaluationRepo, personnelRepo, userRepo, engine)
	statisticsSvc := statisticsService.NewStatisticsService(personnelRepo, userRepo, evaluationRepo, engine)
	pollSvc := pollService.NewPollService(txManager, pollRepo, hub, cfg.Poll.VoterSecret)

	if err := authService.EnsureAdmin(ctx, cfg.Admin.Username, cfg.Admin.Name, cfg.Admin.Password); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}

	scheduler := cron.NewScheduler()
	cron.NewPollJobs(pollSvc, time.Minute).RegisterJobs(scheduler)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	router := appHTTP.NewRouter(JWTService, appHTTP.Handlers{
		Auth:       appHTTP.NewAuthHandler(JWTService, authService, googleService, cfg.App.FrontendURL),
		User:       appHTTP.NewUserHandler(authService),
		Personnel:  appHTTP.NewPersonnelHandler(personnelSvc),
		Evaluation: appHTTP.NewEvaluationHandler(evaluationSvc),
		Statistics: appHTTP.NewStatisticsHandler(statisticsSvc),
		Poll:       appHTTP.NewPollHandler(pollSvc, JWTService),
	}, appHTTP.RouterOptions{
		AllowedOrigins: cfg.App.AllowedOrigins,
		Env:            cfg.App.Env,
		Version:        version,
		LogLevel:       cfg.SlogLevel(),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr, "env", cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
