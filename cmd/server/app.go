package main

import (
	"database/sql"
	"fmt"
	"time"

	"gym_club_backend/internal/config"
	"gym_club_backend/internal/database"
	"gym_club_backend/internal/handlers"
	"gym_club_backend/internal/middleware"
	"gym_club_backend/internal/notify"
	"gym_club_backend/internal/repositories"
	"gym_club_backend/internal/repositories/memory"
	"gym_club_backend/internal/router"
	"gym_club_backend/internal/services"
	"gym_club_backend/internal/storage"
	"gym_club_backend/pkg/utils"
)

// app holds the wired object graph shared by every command.
type app struct {
	cfg        *config.Config
	db         *sql.DB
	store      *repositories.Store
	dispatcher *services.Dispatcher
	services   router.Services
}

func openStore(cfg *config.Config) (*repositories.Store, *sql.DB, error) {
	if cfg.Database.Driver == config.DriverMemory {
		utils.LogWarn(nil, "using in-memory storage, data is lost on restart")
		return memory.NewStore(), nil, nil
	}

	db, err := database.Open(cfg.Database.DSN())
	if err != nil {
		return nil, nil, err
	}
	if cfg.Database.ApplySchema {
		if err := database.ApplySchema(db); err != nil {
			db.Close()
			return nil, nil, err
		}
	}
	return repositories.NewPostgresStore(db), db, nil
}

func newApp(cfg *config.Config) (*app, error) {
	store, db, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	tokens, err := utils.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Expiration)
	if err != nil {
		return nil, err
	}

	local, err := storage.NewLocalStore(cfg.Media.UploadDir, cfg.PublicBaseURL)
	if err != nil {
		return nil, err
	}
	var remote storage.Store
	if cfg.Media.CloudinaryEnabled() {
		cld, err := storage.NewCloudinaryStore(cfg.Media.CloudinaryURL, cfg.Media.CloudName, cfg.Media.APIKey, cfg.Media.APISecret, cfg.Media.Folder)
		if err != nil {
			utils.LogWarn(err, "cloudinary disabled, uploads go to local disk")
		} else {
			remote = cld
		}
	}

	mailer := notify.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password, cfg.SMTP.From)
	whatsapp := notify.NewTwilioWhatsApp(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.WhatsAppFrom)

	dispatcher := services.NewDispatcher(4)
	notifications := services.NewNotificationService(store, mailer, whatsapp, cfg.Twilio.CountryCode)
	authService := services.NewAuthService(store.Users, tokens)

	return &app{
		cfg:        cfg,
		db:         db,
		store:      store,
		dispatcher: dispatcher,
		services: router.Services{
			Auth:          authService,
			Users:         services.NewUserService(store.Users),
			Memberships:   services.NewMembershipService(store.Memberships, notifications, dispatcher, nil),
			Attendance:    services.NewAttendanceService(store.Attendance, store.Memberships, nil),
			Blog:          services.NewBlogService(store.Posts, nil),
			Products:      services.NewProductService(store.Products, nil),
			Notifications: notifications,
			Uploads:       services.NewUploadService(local, remote, cfg.Media.MaxBytes),
			Dashboard:     services.NewDashboardService(store, nil),
		},
	}, nil
}

func (a *app) diagnostics() handlers.DiagnosticsFunc {
	return func() (string, map[string]int, error) {
		if a.db == nil {
			users, err := a.store.Users.Count()
			return config.DriverMemory, map[string]int{"users": users}, err
		}
		if err := a.db.Ping(); err != nil {
			return config.DriverPostgres, nil, fmt.Errorf("ping: %w", err)
		}
		counts, err := database.TableCounts(a.db)
		return config.DriverPostgres, counts, err
	}
}

func (a *app) routerOptions() router.Options {
	return router.Options{
		AllowedOrigins: a.cfg.AllowedOrigins,
		Production:     a.cfg.IsProduction(),
		DebugEndpoints: a.cfg.DebugEndpoints,
		Diagnostics:    a.diagnostics(),
		Metrics:        middleware.NewMetrics("gym"),
	}
}

// close waits for queued notifications, bounded by timeout, and closes the DB.
func (a *app) close(timeout time.Duration) {
	done := make(chan struct{})
	go func() {
		a.dispatcher.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		utils.LogWarn(nil, "shutdown timed out waiting for background tasks")
	}
	if a.db != nil {
		a.db.Close()
	}
}
