package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"alfredoptarigan/resume-roast/internal/config"
	"alfredoptarigan/resume-roast/internal/handlers"
	"alfredoptarigan/resume-roast/internal/logger"
	"alfredoptarigan/resume-roast/internal/metrics"
	"alfredoptarigan/resume-roast/internal/ratelimit"
	"alfredoptarigan/resume-roast/internal/repositories"
	"alfredoptarigan/resume-roast/internal/services"
)

func main() {
	cfg := config.Load()

	zlog, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, zlog); err != nil {
		zlog.Error("❌ Server stopped with error", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, zlog *zap.Logger) error {
	m := metrics.New()

	provider, gemini, err := newProvider(ctx, cfg, zlog)
	if err != nil {
		return err
	}
	gateway := services.NewGateway(provider, cfg.AI.Timeout, zlog, m)
	zlog.Info("✅ AI gateway ready", zap.String("mode", gateway.Mode()))

	store, closeStore, err := newRateLimitStore(ctx, cfg, zlog)
	if err != nil {
		return err
	}
	defer closeStore()

	policies := map[string]ratelimit.Policy{}
	for _, task := range []string{
		services.TaskRoast,
		services.TaskGenerateContent,
		services.TaskGeneratePreview,
		services.TaskParseCV,
	} {
		policies[task] = ratelimit.Policy{Limit: cfg.RateLimit.DefaultLimit, Window: cfg.RateLimit.Window}
	}
	policies[services.TaskFix] = ratelimit.Policy{Limit: cfg.RateLimit.FixLimit, Window: cfg.RateLimit.Window}

	deps := handlers.Dependencies{
		Limiter:     ratelimit.NewMiddleware(store, zlog, m),
		Policies:    policies,
		Metrics:     m,
		Logger:      zlog,
		BodyLimit:   cfg.Server.BodyLimit,
		MaxFileSize: cfg.Storage.MaxFileSize,
		RequestLog:  cfg.Server.Env == "development",
	}

	db, err := config.InitDatabase(cfg, zlog)
	if err != nil {
		return err
	}
	if db != nil {
		genRepo := repositories.NewGenerationRepository(db)
		archiver := services.NewArchiver(genRepo, cfg.Worker.Concurrency, cfg.Worker.QueueSize, zlog)
		archiver.Start(ctx)
		defer archiver.Stop()

		deps.Archiver = archiver
		deps.Generations = genRepo
		deps.Documents = repositories.NewDocumentRepository(db)
		zlog.Info("✅ Archiver started", zap.Int("concurrency", cfg.Worker.Concurrency))
	}

	storage := services.NewStorageService(cfg.Storage.UploadPath)
	if err := storage.EnsureUploadDir(); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}
	deps.Storage = storage
	deps.PDFParser = services.NewPDFParserService(50000)

	prompts := services.NewPromptBuilder()
	guidance := newGuidance(ctx, cfg, gemini, prompts, zlog)
	deps.Tasks = services.NewTaskSet(gateway, prompts, guidance, cfg.AI.RetryBaseDelay, zlog)

	app := handlers.NewApp(deps)

	errCh := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		zlog.Info("🚀 Server starting", zap.String("addr", addr))
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zlog.Info("🛑 Shutting down server...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

// newProvider returns the configured provider, plus the Gemini client when
// running live so it can be reused for embeddings.
func newProvider(ctx context.Context, cfg *config.Config, zlog *zap.Logger) (services.Provider, *services.GeminiProvider, error) {
	if cfg.AI.MockMode() {
		zlog.Warn("⚠️  AI credentials missing or mock mode forced, serving canned responses")
		return services.NewMockProvider(), nil, nil
	}

	gemini, err := services.NewGeminiProvider(ctx, cfg.AI, zlog)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize Gemini: %w", err)
	}
	return gemini, gemini, nil
}

func newRateLimitStore(ctx context.Context, cfg *config.Config, zlog *zap.Logger) (ratelimit.Store, func(), error) {
	if cfg.RateLimit.Store == config.RateLimitStoreRedis {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		zlog.Info("✅ Redis rate limit store connected", zap.String("addr", cfg.Redis.Addr))
		return ratelimit.NewRedisStore(client, ""), func() { _ = client.Close() }, nil
	}

	store := ratelimit.NewMemoryStore()
	store.StartSweeper(ctx, cfg.RateLimit.SweepInterval, zlog)
	return store, func() {}, nil
}

// newGuidance enables ATS guidance retrieval only when Qdrant is configured
// and a live embedder is available.
func newGuidance(ctx context.Context, cfg *config.Config, gemini *services.GeminiProvider, prompts *services.PromptBuilder, zlog *zap.Logger) services.GuidanceRetriever {
	if !cfg.Qdrant.Enabled || gemini == nil {
		return services.NoGuidance{}
	}

	store, err := services.NewQdrantStore(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection, zlog)
	if err != nil {
		zlog.Warn("⚠️  Qdrant unavailable, continuing without ATS guidance", zap.Error(err))
		return services.NoGuidance{}
	}
	if err := store.InitCollection(ctx); err != nil {
		zlog.Warn("⚠️  Qdrant collection init failed, continuing without ATS guidance", zap.Error(err))
		return services.NoGuidance{}
	}

	zlog.Info("✅ ATS guidance retrieval enabled", zap.String("collection", cfg.Qdrant.Collection))
	return services.NewVectorGuidance(store, gemini, prompts, 0, zlog)
}
