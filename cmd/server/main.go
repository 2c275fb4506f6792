package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/babybliss/babybliss-backend/internal/apperr"
	"github.com/babybliss/babybliss-backend/internal/audit"
	"github.com/babybliss/babybliss-backend/internal/config"
	"github.com/babybliss/babybliss-backend/internal/database"
	"github.com/babybliss/babybliss-backend/internal/handler"
	"github.com/babybliss/babybliss-backend/internal/importer"
	"github.com/babybliss/babybliss-backend/internal/logs"
	"github.com/babybliss/babybliss-backend/internal/mailer"
	"github.com/babybliss/babybliss-backend/internal/queue"
	"github.com/babybliss/babybliss-backend/internal/realtime"
	"github.com/babybliss/babybliss-backend/internal/repository"
	"github.com/babybliss/babybliss-backend/internal/router"
)

func main() {
	_ = godotenv.Load()
	logs.Init()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logs.WithError(err).Fatal("database connection failed")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	if err := database.Migrate(ctx, db); err != nil {
		cancel()
		logs.WithError(err).Fatal("migrations failed")
	}
	cancel()

	rdb := config.NewRedisClient() // nil when Redis is absent; features degrade

	users := repository.NewUserRepo(db)
	profiles := repository.NewProfileRepo(db)
	resets := repository.NewResetTokenRepo(db)
	bookings := repository.NewBookingRepo(db)
	payments := repository.NewPaymentRepo(db)
	expenses := repository.NewExpenseRepo(db)
	messages := repository.NewMessageRepo(db)
	settings := repository.NewSettingRepo(db)
	audits := repository.NewAuditRepo(db)
	stats := repository.NewStatsRepo(db)

	auditLog := audit.New(audits)
	notifier := realtime.NewNotifier(rdb)
	mail := mailer.New(cfg)
	go queue.StartMailConsumer(mail)

	if err := seedAdmin(users, cfg.BcryptCost); err != nil {
		logs.WithError(err).Fatal("admin seed failed")
	}

	importSvc := &importer.Service{
		DB:         db,
		Bookings:   bookings,
		Payments:   payments,
		Users:      users,
		BcryptCost: cfg.BcryptCost,
	}

	h := router.Handlers{
		Auth:      handler.NewAuthHandler(cfg, users, resets, mail, auditLog),
		Bookings:  handler.NewBookingHandler(bookings, payments, auditLog, notifier),
		Clients:   handler.NewClientHandler(cfg, users, bookings, auditLog),
		Financial: handler.NewFinancialHandler(payments, expenses, bookings, stats, auditLog, notifier),
		Messages:  handler.NewMessageHandler(messages, mail, auditLog, notifier),
		Profile:   handler.NewProfileHandler(cfg, users, profiles, auditLog),
		Settings:  handler.NewSettingsHandler(settings, auditLog),
		Staff:     handler.NewStaffHandler(cfg, users, auditLog),
		Reports:   handler.NewReportsHandler(stats, bookings, messages, audits),
		Import:    handler.NewImportHandler(importSvc, cfg.ImportStrict, auditLog, notifier),
		Realtime:  handler.NewRealtimeHandler(notifier, stats, messages),
		Health:    handler.NewHealthHandler(db),
	}

	e := router.New(cfg, users, h, rdb)
	logs.WithField("port", cfg.Port).Info("server starting")
	if err := e.Start(":" + cfg.Port); err != nil {
		logs.WithError(err).Fatal("server stopped")
	}
}

// seedAdmin creates the initial admin account on an empty database so the
// back office is reachable after a fresh deploy.  An existing account wins;
// the seed never overwrites.
func seedAdmin(users *repository.UserRepo, cost int) error {
	email := os.Getenv("ADMIN_EMAIL")
	if email == "" {
		email = "admin@babybliss.local"
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := users.GetByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return err
	}
	id, err := users.Create(ctx, email, password, "admin", cost)
	if err != nil {
		return err
	}
	logs.WithField("user_id", id).WithField("email", email).Info("seeded admin account")
	return nil
}
