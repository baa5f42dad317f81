package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/enterprise-pm/enterprise-project-management/internal/api"
	"github.com/enterprise-pm/enterprise-project-management/internal/database"
	"github.com/enterprise-pm/enterprise-project-management/internal/service"
	"github.com/enterprise-pm/enterprise-project-management/internal/storage"
	pkgauth "github.com/enterprise-pm/enterprise-project-management/pkg/auth"
	"github.com/enterprise-pm/enterprise-project-management/pkg/config"
	"github.com/enterprise-pm/enterprise-project-management/pkg/identity"
	"github.com/enterprise-pm/enterprise-project-management/pkg/logger"
	"github.com/enterprise-pm/enterprise-project-management/pkg/mail"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Log)

	db, err := database.NewDatabase(cfg.Database.DataDir)
	if err != nil {
		slog.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}

	fileStorage, err := storage.NewFileStorage(cfg.Storage.UploadDir)
	if err != nil {
		slog.Error("failed to initialize file storage", "error", err)
		os.Exit(1)
	}

	var mailer mail.Mailer
	if cfg.Mail.ResendAPIKey != "" {
		mailer = mail.NewResendMailer(cfg.Mail.ResendAPIKey, cfg.Mail.SenderEmail)
	} else {
		slog.Warn("RESEND_API_KEY not set, email notifications disabled")
	}

	jwtManager := pkgauth.NewJWTManager(cfg.Auth.JWTSecret, pkgauth.TokenDuration)
	provider := identity.NewClient(cfg.Auth.ProviderURL)
	notifier := service.NewNotifier(db, mailer)

	router := api.SetupRouter(cfg, db, fileStorage, jwtManager, provider, notifier)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	slog.Info("starting server", "addr", addr, "data_dir", cfg.Database.DataDir)
	if err := router.Run(addr); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}
