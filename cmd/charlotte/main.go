package main

// @title           CHArloTte API
// @version         1.0
// @description     Conference knowledge assistant API. CHArloTte answers attendee questions from a curated knowledge base and powers realtime voice sessions with knowledge tools.

// @contact.name   CHArloTte
// @contact.url    https://github.com/Vettuu/CHArloTte/issues

// @host      localhost:8080
// @BasePath  /api/v1
// @schemes   http https

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	_ "github.com/Vettuu/CHArloTte/docs"
	"github.com/Vettuu/CHArloTte/internal/adapters/driven/auth"
	"github.com/Vettuu/CHArloTte/internal/adapters/driven/fs"
	"github.com/Vettuu/CHArloTte/internal/adapters/driven/openai"
	"github.com/Vettuu/CHArloTte/internal/adapters/driven/postgres"
	postgresqueue "github.com/Vettuu/CHArloTte/internal/adapters/driven/queue/postgres"
	redisqueue "github.com/Vettuu/CHArloTte/internal/adapters/driven/queue/redis"
	redisadapter "github.com/Vettuu/CHArloTte/internal/adapters/driven/redis"
	"github.com/Vettuu/CHArloTte/internal/adapters/driving/http"
	"github.com/Vettuu/CHArloTte/internal/config"
	"github.com/Vettuu/CHArloTte/internal/core/ports/driven"
	"github.com/Vettuu/CHArloTte/internal/core/ports/driving"
	"github.com/Vettuu/CHArloTte/internal/core/services"
	"github.com/Vettuu/CHArloTte/internal/worker"
)

var version = "dev"

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file (optional)")
	flag.Parse()

	// Run mode from CHARLOTTE_MODE or first positional arg
	mode := os.Getenv("CHARLOTTE_MODE")
	if mode == "" {
		mode = "all"
	}
	if args := flag.Args(); len(args) > 0 {
		mode = args[0]
	}

	log.Printf("charlotte %s starting in %s mode", version, mode)

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("Shutdown signal received, stopping...")
		cancel()
	}()

	// ===== Initialize PostgreSQL =====
	log.Println("Connecting to PostgreSQL...")
	db, err := postgres.Connect(ctx, postgres.Config{
		URL:             cfg.Database.URL,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Database.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Database.ConnMaxIdleTime) * time.Second,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.InitSchema(ctx); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}
	log.Println("PostgreSQL connected and schema initialized")

	// ===== Initialize Redis (optional) =====
	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		log.Println("Connecting to Redis...")
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatalf("Failed to parse Redis URL: %v", err)
		}
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		log.Println("Redis connected")
	}

	// ===== Driven adapters =====
	authAdapter := auth.NewAdapter(cfg.Auth.JWTSecret, cfg.Auth.RebuildToken)
	source := fs.New(cfg.Knowledge.Dir, slog.Default())
	chunkStore := postgres.NewChunkStore(db)

	embeddings, err := openai.NewEmbedding(cfg.Embedding.APIKey, cfg.Embedding.Model, cfg.Embedding.BaseURL)
	if err != nil {
		log.Fatalf("Failed to create embedding client: %v", err)
	}

	// ===== Session Store (Redis if available, otherwise PostgreSQL) =====
	var sessionStore driven.SessionStore
	if redisClient != nil {
		sessionStore = redisadapter.NewSessionStore(redisClient)
		log.Println("Using Redis session store")
	} else {
		sessionStore = postgres.NewSessionStore(db)
		log.Println("Using PostgreSQL session store")
	}

	// ===== Task Queue (Redis if available, otherwise PostgreSQL) =====
	var taskQueue driven.TaskQueue
	if redisClient != nil {
		taskQueue, err = redisqueue.NewQueue(redisClient)
		if err != nil {
			log.Fatalf("Failed to create task queue: %v", err)
		}
		log.Println("Using Redis task queue")
	} else {
		taskQueue, err = postgresqueue.NewQueue(db)
		if err != nil {
			log.Fatalf("Failed to create task queue: %v", err)
		}
		log.Println("Using PostgreSQL task queue")
	}

	// ===== Distributed Lock (Redis if available, otherwise advisory locks) =====
	var distributedLock driven.DistributedLock
	if redisClient != nil {
		distributedLock = redisadapter.NewLock(redisClient)
		log.Println("Using Redis distributed lock")
	} else {
		distributedLock = postgres.NewAdvisoryLock(db)
		log.Println("Using PostgreSQL advisory lock")
	}

	// ===== Core services =====
	indexerService := services.NewIndexer(services.IndexerConfig{
		Source:     source,
		ChunkStore: chunkStore,
		Embeddings: embeddings,
		Lock:       distributedLock,
		ChunkSize:  cfg.Knowledge.ChunkSize,
		Overlap:    cfg.Knowledge.ChunkOverlap,
		BatchSize:  cfg.Knowledge.BatchSize,
		Logger:     slog.Default(),
	})
	searchService := services.NewSearch(services.SearchConfig{
		Source:     source,
		ChunkStore: chunkStore,
		Embeddings: embeddings,
		MinScore:   cfg.Knowledge.MinScore,
		Logger:     slog.Default(),
	})
	toolService := services.NewTools(source, slog.Default())

	realtimeClient, err := openai.NewRealtime(openai.RealtimeConfig{
		APIKey:          cfg.Realtime.APIKey,
		Organization:    cfg.Realtime.Organization,
		Project:         cfg.Realtime.Project,
		BaseURL:         cfg.Realtime.BaseURL,
		SessionDefaults: cfg.Realtime.Session,
	})
	if err != nil {
		log.Fatalf("Failed to create realtime client: %v", err)
	}
	realtimeService := services.NewRealtime(services.RealtimeConfig{
		Client:      realtimeClient,
		Sessions:    sessionStore,
		Tools:       toolService,
		DefaultMode: cfg.Realtime.DefaultMode,
		Logger:      slog.Default(),
	})

	// ===== Scheduler (optional) =====
	var scheduler *services.Scheduler
	if cfg.Scheduler.Enabled {
		scheduler = services.NewScheduler(services.SchedulerConfig{
			TaskQueue: taskQueue,
			Lock:      distributedLock,
			Logger:    slog.Default(),
			Interval:  cfg.SchedulerInterval(),
		})
		log.Printf("Scheduler enabled (interval=%s)", cfg.SchedulerInterval())
	}

	// *redis.Client's Ping returns a command, not an error; adapt it for
	// the readiness probe and keep the interface nil when Redis is absent.
	var redisPinger http.Pinger
	if redisClient != nil {
		redisPinger = redisPing{client: redisClient}
	}

	switch mode {
	case "api":
		runAPI(cfg, searchService, realtimeService, taskQueue, authAdapter, db, redisPinger)

	case "worker":
		runWorkerMode(ctx, cfg, taskQueue, indexerService, realtimeService, scheduler)

	case "all":
		go runWorkerMode(ctx, cfg, taskQueue, indexerService, realtimeService, scheduler)
		runAPI(cfg, searchService, realtimeService, taskQueue, authAdapter, db, redisPinger)

	case "index":
		// One-shot rebuild, then exit
		total, err := indexerService.Rebuild(ctx)
		if err != nil {
			log.Fatalf("Rebuild failed: %v", err)
		}
		log.Printf("Rebuild complete: %d chunks indexed", total)

	case "backfill-norms":
		updated, err := indexerService.BackfillNorms(ctx)
		if err != nil {
			log.Fatalf("Norm backfill failed: %v", err)
		}
		log.Printf("Norm backfill complete: %d chunks updated", updated)

	default:
		log.Fatalf("Unknown mode: %s (use: api, worker, all, index, or backfill-norms)", mode)
	}
}

type redisPing struct {
	client *redis.Client
}

func (p redisPing) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

func runAPI(
	cfg *config.Config,
	searchService driving.SearchService,
	realtimeService driving.RealtimeService,
	taskQueue driven.TaskQueue,
	authAdapter driven.AuthAdapter,
	db http.Pinger,
	redisClient http.Pinger,
) {
	server := http.NewServer(
		http.Config{
			Host:    cfg.Server.Host,
			Port:    cfg.Server.Port,
			Version: version,
		},
		searchService,
		realtimeService,
		taskQueue,
		authAdapter,
		db,
		redisClient,
	)

	log.Printf("API server starting on :%d", cfg.Server.Port)
	if err := server.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// runWorkerMode starts the worker and scheduler. It processes rebuild and
// webhook tasks from the queue until the context is cancelled.
func runWorkerMode(
	ctx context.Context,
	cfg *config.Config,
	taskQueue driven.TaskQueue,
	indexerService driving.IndexerService,
	realtimeService driving.RealtimeService,
	scheduler *services.Scheduler,
) {
	log.Println("Starting worker mode...")

	w := worker.New(worker.Config{
		TaskQueue:      taskQueue,
		Indexer:        indexerService,
		Realtime:       realtimeService,
		Scheduler:      scheduler,
		Logger:         slog.Default(),
		Concurrency:    cfg.Worker.Concurrency,
		DequeueTimeout: cfg.Worker.DequeueTimeout,
	})

	if err := w.Start(ctx); err != nil {
		log.Fatalf("Failed to start worker: %v", err)
	}

	log.Println("Worker started, processing tasks...")

	<-ctx.Done()

	log.Println("Stopping worker...")
	w.Stop()
	log.Println("Worker stopped")
}
