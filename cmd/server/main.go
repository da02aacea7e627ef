package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/khoahotran/cvnova/adapters/event"
	httpAdapter "github.com/khoahotran/cvnova/adapters/http"
	"github.com/khoahotran/cvnova/adapters/identity"
	"github.com/khoahotran/cvnova/adapters/persistence"
	"github.com/khoahotran/cvnova/internal/application/service"
	analyticsUC "github.com/khoahotran/cvnova/internal/application/usecase/analytics"
	authUC "github.com/khoahotran/cvnova/internal/application/usecase/auth"
	cvUC "github.com/khoahotran/cvnova/internal/application/usecase/cv"
	prefsUC "github.com/khoahotran/cvnova/internal/application/usecase/preferences"
	shareUC "github.com/khoahotran/cvnova/internal/application/usecase/share"
	"github.com/khoahotran/cvnova/internal/config"
	"github.com/khoahotran/cvnova/internal/domain/user"
	"github.com/khoahotran/cvnova/pkg/auth"
	"github.com/khoahotran/cvnova/pkg/logger"
	"github.com/khoahotran/cvnova/pkg/tracing"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		panic("cannot load config: " + err.Error())
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)
	defer appLogger.Sync()
	appLogger.Info("Start CVNova API Server...", zap.String("env", cfg.App.Env))

	tp, err := tracing.NewTracerProvider(cfg, appLogger, "cvnova-api")
	if err != nil {
		appLogger.Fatal("cannot init tracing", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracing.Shutdown(ctx, tp); err != nil {
			appLogger.Error("Failed to flush traces", err)
		}
	}()

	// Store
	store, closeStore, err := persistence.OpenStore(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("cannot open store", err, zap.String("driver", cfg.Store.Driver))
	}
	defer closeStore()

	// Repositories
	cvRepo := persistence.NewCVRepo(store, appLogger)
	shareRepo := persistence.NewShareRepo(store)
	prefsRepo := persistence.NewPreferencesRepo(store)
	counters := persistence.NewCounters(store)
	userRepo := persistence.NewUserRepo(store)

	// Identity
	idp, err := openIdentityProvider(cfg, userRepo, appLogger)
	if err != nil {
		appLogger.Fatal("cannot init identity provider", err, zap.String("provider", cfg.Auth.Provider))
	}

	// View events
	recordViewUseCase := analyticsUC.NewRecordViewUseCase(counters, appLogger)
	var publisher service.ViewEventPublisher = event.NewInlinePublisher(recordViewUseCase)
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaClient, err := event.NewKafkaProducerClient(cfg, appLogger)
		if err != nil {
			appLogger.Fatal("cannot init Kafka", err)
		}
		defer kafkaClient.Close()
		publisher = kafkaClient
	}

	// Use Cases
	listCVsUseCase := cvUC.NewListCVsUseCase(cvRepo, appLogger)
	createCVUseCase := cvUC.NewCreateCVUseCase(cvRepo, cfg.Documents.AllowUnknownFields, appLogger)
	updateCVUseCase := cvUC.NewUpdateCVUseCase(cvRepo, cfg.Documents.AllowUnknownFields, appLogger)
	deleteCVUseCase := cvUC.NewDeleteCVUseCase(cvRepo, appLogger)
	shareCVUseCase := shareUC.NewShareCVUseCase(cvRepo, shareRepo, counters, cfg.Sharing.PublicBaseURL, cfg.Sharing.ResharePolicy, appLogger)
	getSharedCVUseCase := shareUC.NewGetSharedCVUseCase(cvRepo, shareRepo, counters, publisher, appLogger)
	preferencesUseCase := prefsUC.NewPreferencesUseCase(prefsRepo, appLogger)
	getAnalyticsUseCase := analyticsUC.NewGetAnalyticsUseCase(cvRepo, counters, appLogger)
	signUpUseCase := authUC.NewSignUpUseCase(idp, appLogger)
	signInUseCase := authUC.NewSignInUseCase(idp, appLogger)
	oauthURLUseCase := authUC.NewOAuthURLUseCase(idp)

	// HTTP Handlers
	handlers := httpAdapter.Handlers{
		Auth: httpAdapter.NewAuthHandler(signUpUseCase, signInUseCase, oauthURLUseCase, appLogger),
		CV: httpAdapter.NewCVHandler(
			listCVsUseCase,
			createCVUseCase,
			updateCVUseCase,
			deleteCVUseCase,
			shareCVUseCase,
			appLogger,
		),
		Shared:      httpAdapter.NewSharedHandler(getSharedCVUseCase),
		Preferences: httpAdapter.NewPreferencesHandler(preferencesUseCase),
		Analytics:   httpAdapter.NewAnalyticsHandler(getAnalyticsUseCase),
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		RoutePrefix:    cfg.App.RoutePrefix,
		AllowedOrigins: cfg.App.CORSAllowedOrigins,
	}, handlers, idp, appLogger)

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  cfg.App.ReadTimeout,
		WriteTimeout: cfg.App.WriteTimeout,
	}

	go func() {
		appLogger.Info("Server running", zap.String("port", cfg.App.Port), zap.String("prefix", cfg.App.RoutePrefix))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("Cannot run server", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", err)
	}
}

func openIdentityProvider(cfg config.Config, users user.Repository, log logger.Logger) (service.IdentityProvider, error) {
	switch cfg.Auth.Provider {
	case config.AuthProviderSupabase:
		provider, err := identity.NewSupabaseProvider(cfg, nil, log)
		if err != nil {
			return nil, err
		}
		return provider, nil
	case config.AuthProviderLocal, "":
		jwtSvc := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenLifespan)
		return identity.NewLocalProvider(users, jwtSvc, log), nil
	default:
		return nil, fmt.Errorf("unknown auth provider %q", cfg.Auth.Provider)
	}
}
