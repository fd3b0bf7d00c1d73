package main

import (
	"log"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/jan112121/attendance-backend/attendance"
	"github.com/jan112121/attendance-backend/config"
	"github.com/jan112121/attendance-backend/database"
	"github.com/jan112121/attendance-backend/livefeed"
	"github.com/jan112121/attendance-backend/notify"
	"github.com/jan112121/attendance-backend/penalty"
	"github.com/jan112121/attendance-backend/routes"
	"github.com/jan112121/attendance-backend/schedule"
	"github.com/jan112121/attendance-backend/session"
)

func main() {
	cfg := config.Load()

	// Fail fast if the database is down.
	database.Connect(cfg)

	resolver, err := session.FromConfig(cfg)
	if err != nil {
		log.Fatalf("session windows: %v", err)
	}

	var sender notify.Sender = notify.LogSender{}
	if cfg.SMTPHost != "" {
		sender = notify.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)
	}
	notifier := notify.NewService(database.DB, sender)

	store := attendance.NewStore(database.DB)
	ledger := penalty.NewLedger(database.DB)
	rules := penalty.NewRules(database.DB, cfg.PenaltyDefaultAmount)
	feed := livefeed.NewHub(cfg.JWTSecret)
	processor := attendance.NewProcessor(database.DB, store, resolver, ledger, rules, notifier, feed)

	reconciler := schedule.NewReconciler(database.DB, store, ledger, rules, notifier, resolver)
	archiver := schedule.NewArchiver(database.DB)

	sched, err := schedule.Start(cfg, resolver, reconciler, archiver)
	if err != nil {
		log.Fatalf("scheduler: %v", err)
	}
	defer sched.Stop()

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.CORS())

	routes.Register(e, &routes.Deps{
		Cfg:        cfg,
		Processor:  processor,
		Ledger:     ledger,
		Rules:      rules,
		Reconciler: reconciler,
		Archiver:   archiver,
		Resolver:   resolver,
		Feed:       feed,
	})

	addr := ":" + cfg.AppPort
	log.Printf("server listening at %s", addr)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
