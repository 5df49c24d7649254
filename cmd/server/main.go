package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/circle/backend/internal/mail"
	"github.com/anonto42/circle/backend/internal/router"
	"github.com/anonto42/circle/backend/internal/services"
	"github.com/anonto42/circle/backend/pkg/config"
	"github.com/anonto42/circle/backend/pkg/firebase"
	"github.com/anonto42/circle/backend/pkg/logger"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.MustLoad("")

	if err := logger.Initialize(cfg.Env, cfg.Log.Level, cfg.Log.File); err != nil {
		panic(err)
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := config.InitDB(ctx, cfg)
	if err != nil {
		logger.Log.Fatal("failed to initialize databases", zap.Error(err))
	}
	defer db.CloseDB()

	// Fatal skips deferred calls, so connections are closed first.
	fatal := func(msg string, err error) {
		db.CloseDB()
		logger.Log.Fatal(msg, zap.Error(err))
	}

	var verifier services.FirebaseVerifier
	if cfg.FirebaseCredentialsPath != "" {
		app, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			fatal("failed to initialize firebase", err)
		}
		verifier = app.AuthClient
	} else {
		logger.Log.Warn("FIREBASE_CREDENTIALS_PATH not set, firebase login disabled")
	}

	var mailer services.Mailer = mail.LogMailer{}
	if cfg.Mail.From != "" {
		ses, err := mail.NewSESMailer(ctx, cfg.Mail.AWSRegion, cfg.Mail.From)
		if err != nil {
			fatal("failed to initialize SES mailer", err)
		}
		mailer = ses
	} else {
		logger.Log.Warn("MAIL_FROM not set, password reset codes are written to the log")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	router.SetupMiddleware(e)
	router.SetupRoutes(e, router.Dependencies{
		Config:   cfg,
		DB:       db,
		Firebase: verifier,
		Mailer:   mailer,
	})

	metricsServer := &http.Server{
		Addr:              ":" + cfg.MetricsPort,
		Handler:           promhttp.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Log.Info("metrics server listening", zap.String("port", cfg.MetricsPort))
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("metrics server stopped", zap.Error(err))
		}
	}()

	go func() {
		logger.Log.Info("api server listening", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("api server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("api server shutdown failed", zap.Error(err))
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("metrics server shutdown failed", zap.Error(err))
	}
}
