package main

// @title           Sercha Core API
// @version         1.0
// @description     Retrieval core for a single corpus: hybrid semantic/lexical search, PII-redacted chat, and LLM-judged evaluation.

// @contact.name   Sercha OSS
// @contact.url    https://github.com/custodia-labs/sercha-core/issues

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /
// @schemes   http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token. Format: "Bearer {token}". Optional: only enforced when AUTH_SECRET is set.

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/sercha-core/internal/adapters/driven/ai"
	"github.com/custodia-labs/sercha-core/internal/adapters/driven/auth"
	"github.com/custodia-labs/sercha-core/internal/adapters/driven/postgres"
	postgresqueue "github.com/custodia-labs/sercha-core/internal/adapters/driven/queue/postgres"
	redisqueue "github.com/custodia-labs/sercha-core/internal/adapters/driven/queue/redis"
	redisadapter "github.com/custodia-labs/sercha-core/internal/adapters/driven/redis"
	"github.com/custodia-labs/sercha-core/internal/adapters/driven/vespa"
	httpadapter "github.com/custodia-labs/sercha-core/internal/adapters/driving/http"
	"github.com/custodia-labs/sercha-core/internal/chunking"
	"github.com/custodia-labs/sercha-core/internal/config"
	"github.com/custodia-labs/sercha-core/internal/core/domain"
	"github.com/custodia-labs/sercha-core/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-core/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-core/internal/core/services"
	"github.com/custodia-labs/sercha-core/internal/runtime"
	"github.com/custodia-labs/sercha-core/internal/worker"
	"github.com/redis/go-redis/v9"
)

var version = "dev"

func main() {
	mode := os.Getenv("RUN_MODE")
	if mode == "" {
		mode = "all"
	}
	if len(os.Args) > 1 {
		mode = os.Args[1]
	}

	cfg := config.Load()
	cfg.Version = version

	log.Printf("sercha-core %s starting in %s mode", version, mode)

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
	dbConfig := postgres.Config{
		URL:             cfg.DatabaseURL,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		ConnMaxIdleTime: cfg.DBConnIdleTime,
	}
	db, err := postgres.Connect(ctx, dbConfig)
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
	if cfg.RedisURL != "" {
		log.Println("Connecting to Redis...")
		opts, err := redis.ParseURL(cfg.RedisURL)
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

	// ===== Initialize Vespa =====
	log.Println("Connecting to Vespa...")
	semanticSearcher := vespa.NewSemanticSearcher(vespa.DefaultConfig(cfg.VespaURL))
	if err := semanticSearcher.HealthCheck(ctx); err != nil {
		log.Printf("Warning: Vespa health check failed: %v (semantic search may not work)", err)
	} else {
		log.Println("Vespa connected")
	}

	// ===== AI provider services (hot-swappable via runtime.Services) =====
	aiFactory := ai.NewFactory()

	settings := domain.DefaultSettings()
	settings.HybridAlpha = cfg.HybridAlpha
	settings.HybridRetrievalMultiplier = cfg.HybridRetrievalMultiplier
	settings.ChunkJavaMaxTokens = cfg.ChunkJavaMaxTokens
	settings.ChunkMarkdownMaxTokens = cfg.ChunkMarkdownMaxTokens
	settings.Embedding = domain.EmbeddingSettings{
		Provider: domain.AIProvider(cfg.EmbeddingProvider),
		Model:    cfg.EmbeddingModel,
		APIKey:   cfg.EmbeddingAPIKey,
		BaseURL:  cfg.EmbeddingBaseURL,
	}
	settings.LLM = domain.LLMSettings{
		Provider: domain.AIProvider(cfg.LLMProvider),
		Model:    cfg.LLMModel,
		APIKey:   cfg.LLMAPIKey,
		BaseURL:  cfg.LLMBaseURL,
	}

	runtimeConfig := domain.NewRuntimeConfig()
	runtimeServices := runtime.NewServices(runtimeConfig)

	embedder, err := aiFactory.CreateEmbeddingService(&settings.Embedding)
	if err != nil {
		log.Printf("Warning: embedding service unavailable: %v", err)
	} else {
		runtimeServices.SetEmbeddingService(embedder)
		runtimeConfig.SetEmbeddingAvailable(true)
	}

	llm, err := aiFactory.CreateLLMService(&settings.LLM)
	if err != nil {
		log.Printf("Warning: LLM service unavailable: %v", err)
	} else {
		runtimeServices.SetLLMService(llm)
		runtimeConfig.SetLLMAvailable(true)
	}

	log.Printf("Runtime config: embedding=%t, llm=%t",
		runtimeConfig.EmbeddingAvailable(), runtimeConfig.LLMAvailable())

	// ===== Stores =====
	fragmentStore := postgres.NewFragmentStore(db, embedder, semanticSearcher)
	lexicalSearcher := postgres.NewLexicalSearcher(db)
	chunkingRegistry := chunking.NewRegistry()

	// ===== Task Queue (Redis if available, otherwise PostgreSQL) =====
	var taskQueue driven.TaskQueue
	if redisClient != nil {
		taskQueue, err = redisqueue.NewQueue(redisClient, fmt.Sprintf("worker-%d", os.Getpid()))
		if err != nil {
			log.Fatalf("Failed to create task queue: %v", err)
		}
		log.Println("Using Redis task queue")
	} else {
		taskQueue = postgresqueue.NewQueue(db.DB)
		log.Println("Using PostgreSQL task queue")
	}

	// ===== Distributed Lock (Redis if available, otherwise PostgreSQL advisory locks) =====
	var distributedLock driven.DistributedLock
	if redisClient != nil {
		distributedLock = redisadapter.NewLock(redisClient)
		log.Println("Using Redis distributed lock")
	} else {
		distributedLock = postgres.NewAdvisoryLock(db)
		log.Println("Using PostgreSQL advisory lock")
	}

	// ===== Core services =====
	var ingestor driving.Ingestor = services.NewIngestor(chunkingRegistry, fragmentStore, *settings, slog.Default())
	ingestor = services.WithConcurrency(ingestor, cfg.IngestConcurrency)
	ingestor = services.NewLockingIngestor(ingestor, distributedLock)
	hybridFuser := services.NewHybridFuser(semanticSearcher, lexicalSearcher, embedder, *settings)
	redactor := services.NewRedactor()
	orchestrator := services.NewOrchestrator(hybridFuser, redactor, llm)
	evaluator := services.NewEvaluator(orchestrator, llm)

	// ===== Optional bearer-token auth =====
	var authAdapter *auth.Adapter
	if cfg.AuthSecret != "" {
		authAdapter = auth.NewAdapter(cfg.AuthSecret)
		log.Println("Bearer-token auth enabled for /api/v1/*")
	} else {
		log.Println("AUTH_SECRET not set, /api/v1/* is unauthenticated")
	}

	switch mode {
	case "api":
		runAPI(cfg, orchestrator, ingestor, evaluator, db, redisClient, authAdapter)

	case "worker":
		runWorkerMode(ctx, cfg, taskQueue, ingestor)

	case "all":
		go runWorkerMode(ctx, cfg, taskQueue, ingestor)
		runAPI(cfg, orchestrator, ingestor, evaluator, db, redisClient, authAdapter)

	default:
		log.Fatalf("Unknown mode: %s (use: api, worker, or all)", mode)
	}
}

func runAPI(
	cfg config.Config,
	orchestrator driving.Orchestrator,
	ingestor driving.Ingestor,
	evaluator driving.Evaluator,
	db httpadapter.Pinger,
	redisClient *redis.Client,
	authAdapter *auth.Adapter,
) {
	serverCfg := httpadapter.Config{
		Host:    "0.0.0.0",
		Port:    cfg.Port,
		Version: cfg.Version,
	}

	var redisPinger httpadapter.Pinger
	if redisClient != nil {
		redisPinger = redisPingerAdapter{redisClient}
	}

	server := httpadapter.NewServer(serverCfg, orchestrator, ingestor, evaluator, db, redisPinger, authAdapter)

	log.Printf("API server starting on :%d", cfg.Port)
	if err := server.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// runWorkerMode drains ingest tasks from the queue until ctx is cancelled.
func runWorkerMode(
	ctx context.Context,
	cfg config.Config,
	taskQueue driven.TaskQueue,
	ingestor driving.Ingestor,
) {
	log.Println("Starting worker mode...")

	w := worker.NewWorker(worker.WorkerConfig{
		TaskQueue:      taskQueue,
		Ingestor:       ingestor,
		Logger:         slog.Default(),
		Concurrency:    cfg.WorkerConcurrency,
		DequeueTimeout: cfg.WorkerDequeueTimeout,
	})

	if err := w.Start(ctx); err != nil {
		log.Fatalf("Failed to start worker: %v", err)
	}

	log.Println("Worker started, processing ingest_path tasks...")

	<-ctx.Done()

	log.Println("Stopping worker...")
	w.Stop()
	log.Println("Worker stopped")
}

// redisPingerAdapter adapts *redis.Client to httpadapter.Pinger.
type redisPingerAdapter struct {
	client *redis.Client
}

func (r redisPingerAdapter) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
