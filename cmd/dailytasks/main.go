package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"daily-tasks/internal/bot"
	"daily-tasks/internal/config"
	"daily-tasks/internal/httpapi"
	"daily-tasks/internal/metrics"
	"daily-tasks/internal/repository"
	"daily-tasks/internal/service"
	"daily-tasks/internal/store"
	"daily-tasks/internal/store/local"
	"daily-tasks/internal/store/remote"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, using environment variables")
	} else {
		log.Println("[config] Loaded .env file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	seeds, err := config.LoadSeeds(cfg.SeedFile)
	if err != nil {
		log.Fatalf("seeds: %v", err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	var taskStore store.TaskStore
	switch cfg.StoreBackend {
	case config.BackendRemote:
		taskStore = remote.New(cfg.RemoteEndpoint, cfg.RemoteTimeout)
		log.Printf("[info] using remote task store at %s", cfg.RemoteEndpoint)
	default:
		taskStore = local.New(repository.NewTaskRepository(db))
		log.Printf("[info] using local task store at %s", cfg.DatabaseURL)
	}

	settingRepo := repository.NewSettingRepository(db)
	registry := service.NewRegistry(repository.NewTemplateRepository(db), settingRepo, seeds)
	collector := metrics.NewCollector(prometheus.DefaultRegisterer)

	planner, err := service.NewPlanner(taskStore, registry, service.NewResetMarker(settingRepo),
		service.WithLocation(cfg.Location),
		service.WithObserver(collector),
	)
	if err != nil {
		log.Fatalf("planner: %v", err)
	}

	// A failed first load leaves an empty list; /reload or the next rollover retries.
	if _, err := planner.Load(ctx); err != nil {
		log.Printf("initial load: %v", err)
	}

	reminderSvc := service.NewReminderService(planner)

	var telegramBot *bot.Bot
	if cfg.TelegramToken != "" {
		telegramBot, err = bot.New(cfg.TelegramToken, planner, reminderSvc, cfg)
		if err != nil {
			log.Fatalf("bot: %v", err)
		}
	}

	scheduler := service.NewSchedulerService(cfg.Location)
	if _, err := scheduler.ScheduleDaily(cfg.RolloverTime, func() {
		jobCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()
		if _, err := planner.Load(jobCtx); err != nil {
			log.Printf("rollover: %v", err)
		}
	}); err != nil {
		log.Fatalf("schedule rollover: %v", err)
	}

	watcher := service.NewStatusWatcher()
	if _, err := scheduler.ScheduleInterval(cfg.TickInterval, func() {
		views := planner.Views()
		transitions := watcher.Observe(views)
		collector.ObserveStatuses(service.Counts(views))
		for _, tr := range transitions {
			collector.StatusChanged(tr.To)
		}
		if telegramBot != nil {
			if err := telegramBot.NotifyTransitions(transitions); err != nil {
				log.Printf("notify: %v", err)
			}
		}
	}); err != nil {
		log.Fatalf("schedule tick: %v", err)
	}

	if telegramBot != nil && cfg.ReportInterval > 0 {
		if _, err := scheduler.ScheduleInterval(cfg.ReportInterval, func() {
			if err := telegramBot.SendDailyReport(); err != nil {
				log.Printf("report: %v", err)
			}
		}); err != nil {
			log.Fatalf("schedule reports: %v", err)
		}
	}
	scheduler.Start()
	defer scheduler.Stop()

	var server *http.Server
	if cfg.HTTPAddr != "" {
		router := httpapi.NewRouter(httpapi.NewHandler(planner), promhttp.Handler(), collector.Middleware())
		server = &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			log.Printf("[info] http listening on %s", cfg.HTTPAddr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatalf("http server failed: %v", err)
			}
		}()
	}

	log.Println("Daily tasks started.")
	if telegramBot != nil {
		if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("bot stopped with error: %v", err)
		}
	}
	<-ctx.Done()

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("http shutdown: %v", err)
		}
	}
	log.Println("Shutdown complete.")
}
