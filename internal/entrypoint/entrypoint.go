package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/groking122/readingcompanion-sub001/internal/config"
	"github.com/groking122/readingcompanion-sub001/internal/database"
	"github.com/groking122/readingcompanion-sub001/internal/entities"
	http_controllers "github.com/groking122/readingcompanion-sub001/internal/http"
	"github.com/groking122/readingcompanion-sub001/internal/notify"
	"github.com/groking122/readingcompanion-sub001/internal/queue"
	"github.com/groking122/readingcompanion-sub001/internal/review"
	"github.com/groking122/readingcompanion-sub001/internal/stats"
	"github.com/groking122/readingcompanion-sub001/internal/tasks"
	"github.com/groking122/readingcompanion-sub001/internal/translation"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// serviceSubmitter adapts the review service to the queue's submitter
// interface so drained attempts go through the same dedup and
// scheduling path as direct submissions.
type serviceSubmitter struct {
	service *review.Service
}

func (s *serviceSubmitter) Submit(ctx context.Context, attempt entities.ReviewAttempt) error {
	_, err := s.service.Submit(ctx, attempt)
	return err
}

// databaseConnectivity reports the engine reachable while the main
// database answers pings.
type databaseConnectivity struct {
	db *database.Database
}

func (c *databaseConnectivity) IsOnline() bool {
	sqlDB, err := c.db.DB.DB()
	if err != nil {
		return false
	}
	return sqlDB.Ping() == nil
}

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop the task queue)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Reading Companion v%s", version)

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	repo := review.NewRepository(db.DB)
	service := review.NewService(repo)

	// Open the durable offline queue alongside the main database
	queueStore, err := queue.NewStore(queue.StorePathFor(cfg.Database.Path))
	if err != nil {
		log.Fatalf("Failed to open offline queue: %v", err)
	}
	defer func() {
		if err := queueStore.Close(); err != nil {
			log.Printf("Error closing offline queue: %v", err)
		}
	}()

	offlineQueue := queue.New(queueStore, &serviceSubmitter{service: service}, &databaseConnectivity{db: db})

	if cfg.Queue.DrainOnStart {
		if result, err := offlineQueue.Drain(context.Background()); err != nil {
			log.Printf("Startup queue drain failed: %v", err)
		} else if result.Synced > 0 || result.Failed > 0 {
			log.Printf("Startup queue drain: %d synced, %d failed", result.Synced, result.Failed)
		}
	}

	// Translation lookup with its bounded in-memory cache
	translationCache := translation.NewCache(cfg.Translation.CacheCapacity)
	translationClient := translation.NewLibreTranslateClient(cfg.Translation.BaseURL, cfg.Translation.APIKey)

	aggregator := stats.NewAggregator(db.DB)

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	var notifier notify.Notifier = notify.NewLogNotifier(true)
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:              cfg.Tasks.Workers,
			ReleaseAfter:         cfg.Tasks.ReleaseAfter,
			CleanupInterval:      cfg.Tasks.CleanupInterval,
			AttemptRetentionDays: cfg.Tasks.AttemptRetentionDays,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		// Reminder delivery goes through the durable queue so a failed
		// delivery is retried instead of lost.
		inner := notifier
		taskClient.Register(
			tasks.NewReminderQueue(inner),
			tasks.NewPruneAttemptsQueue(repo),
		)
		notifier = tasks.NewQueuedNotifier(taskClient, inner)

		// Start task workers in background
		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		if cfg.Tasks.AttemptRetentionDays > 0 {
			_, err := taskClient.Add(tasks.PruneAttemptsTask{RetentionDays: cfg.Tasks.AttemptRetentionDays}).Save()
			if err != nil {
				log.Printf("Failed to schedule attempt pruning: %v", err)
			}
		}
	}

	// Periodic due-card reminder checks
	var reminders *notify.Scheduler
	if cfg.Notifications.Enabled {
		reminders = notify.NewScheduler(service, notifier, cfg.Notifications.CheckInterval)
		if err := reminders.Start(context.Background()); err != nil {
			log.Fatalf("Failed to start reminder scheduler: %v", err)
		}
	}

	routerCfg := http_controllers.RouterConfig{
		Database:          db,
		ReviewService:     service,
		Queue:             offlineQueue,
		Stats:             aggregator,
		TranslationCache:  translationCache,
		TranslationClient: translationClient,
		SourceLang:        cfg.Translation.SourceLang,
		TargetLang:        cfg.Translation.TargetLang,
		Version:           version,
	}

	router := http_controllers.NewRouter(routerCfg)

	// Shutdown callback for graceful cleanup
	onShutdown := func(ctx context.Context) {
		if reminders != nil {
			reminders.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
