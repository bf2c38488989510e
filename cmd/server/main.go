package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pntme/Retail-management/internal/auth"
	"github.com/pntme/Retail-management/internal/config"
	"github.com/pntme/Retail-management/internal/db"
	httpapi "github.com/pntme/Retail-management/internal/http"
	"github.com/pntme/Retail-management/internal/repository"
	"github.com/pntme/Retail-management/internal/service"
)

const (
	defaultAdminUsername = "admin"
	defaultAdminPassword = "admin123"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("config error")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, db.PoolOptions{
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		MaxConnIdleTime: cfg.DBConnIdleTime,
	})
	if err != nil {
		log.WithError(err).Fatal("database error")
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, pool); err != nil {
		log.WithError(err).Fatal("migration error")
	}

	repo := repository.New(pool)
	authManager := auth.NewManager(cfg.JWTSecret, cfg.TokenTTL)
	svc := service.New(repo, authManager, cfg.OffDay)
	if err := svc.EnsureDefaultAdmin(ctx, defaultAdminUsername, defaultAdminPassword); err != nil {
		log.WithError(err).Fatal("default admin init error")
	}

	handler := httpapi.NewHandler(svc)
	router := httpapi.NewRouter(handler, authManager, log)

	server := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.WithField("addr", server.Addr).Info("server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server error")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
		if closeErr := server.Close(); closeErr != nil {
			log.WithError(closeErr).Error("force close failed")
		}
	}
}
