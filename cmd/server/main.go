package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/iliyamo/plant-catalog/internal/config"
	"github.com/iliyamo/plant-catalog/internal/database"
	"github.com/iliyamo/plant-catalog/internal/handler"
	"github.com/iliyamo/plant-catalog/internal/metrics"
	"github.com/iliyamo/plant-catalog/internal/middleware"
	"github.com/iliyamo/plant-catalog/internal/queue"
	"github.com/iliyamo/plant-catalog/internal/repository"
	"github.com/iliyamo/plant-catalog/internal/router"
	"github.com/iliyamo/plant-catalog/internal/service"
)

func main() {
	cfg := config.Load()
	lvl := config.ParseLogLevel(cfg.LogLevel)
	log.SetLevel(lvl)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The database is optional: without it the service still starts and
	// answers every data request with a configuration error.
	conn := openDatabase(ctx, cfg)
	var db *mongo.Database
	if conn != nil {
		db = conn.Database
	}

	var rdb *redis.Client
	if cfg.RateLimit.Enabled {
		if rdb = config.NewRedisClient(cfg.Redis); rdb == nil {
			log.Warnf("redis unreachable at %s; rate limiting disabled", cfg.Redis.Addr)
		} else {
			defer rdb.Close()
		}
	}

	var events handler.EventPublisher
	if cfg.Events.Enabled {
		events = service.NewQueuePublisher(cfg.Events.URL)
		go func() {
			if err := queue.StartPlantConsumer(ctx, cfg.Events.URL, cfg.Events.LogDir); err != nil && !errors.Is(err, context.Canceled) {
				log.Errorf("plant-consumer stopped: %v", err)
			}
		}()
	}

	m := metrics.New()
	e := router.New(router.Deps{
		Plants: handler.NewPlantHandler(repository.NewPlantRepo(db), events, m),
		Diagnostics: &handler.DiagnosticsHandler{
			Probe:   repository.NewDiagnosticsRepo(db),
			URLSet:  cfg.DatabaseURL != "",
			NameSet: cfg.DatabaseName != "",
			Timeout: cfg.DBTimeout,
		},
		Metrics:   m,
		RateLimit: middleware.NewTokenBucket(cfg.RateLimit, rdb),
	})
	e.HidePort = true
	e.Logger.SetLevel(lvl)

	addr := ":" + cfg.Port
	log.Infof("listening on %s (env=%s)", addr, cfg.Env)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Errorf("http shutdown: %v", err)
	}
	if err := conn.Close(shutdownCtx); err != nil {
		log.Errorf("mongo disconnect: %v", err)
	}
}

// openDatabase connects to MongoDB when both DATABASE_URL and DATABASE_NAME
// are set.  A failed ping keeps the handle (the driver reconnects by itself
// and /test reports the failure); a failed connect returns nil.
func openDatabase(ctx context.Context, cfg config.Config) *database.Conn {
	if !cfg.DatabaseConfigured() {
		log.Warn("DATABASE_URL or DATABASE_NAME not set; data endpoints are disabled")
		return nil
	}
	conn, err := database.Open(ctx, cfg.DatabaseURL, cfg.DatabaseName, cfg.DBTimeout)
	if conn == nil {
		log.Errorf("database unavailable: %v", err)
		return nil
	}
	if err != nil {
		log.Warnf("database not reachable yet: %v", err)
		return conn
	}
	log.Infof("connected to database %q", cfg.DatabaseName)
	return conn
}
