package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"newsbrief/internal/cache"
	"newsbrief/internal/config"
	httphandler "newsbrief/internal/http"
	"newsbrief/internal/ingest"
	"newsbrief/internal/repo"
	"newsbrief/internal/services/llm"
	"newsbrief/internal/services/news"
)

func main() {
	var (
		ingestDir = flag.String("ingest", "", "Ingest raw source files from this directory and exit")
		port      = flag.String("port", "", "Port to run the server on (overrides PORT)")
	)
	flag.Parse()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	if *port == "" {
		*port = cfg.Server.Port
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := repo.NewDB(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()
	repository := repo.NewRepository(db)

	redisCache, err := cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisCache.Close()

	invoker, err := llm.NewOpenAIInvoker(cfg.LLM.APIKey)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create LLM invoker")
	}
	generator := llm.NewGenerator(invoker, cache.NewMetrics(redisCache), llm.GeneratorConfig{
		MaxAttempts:        cfg.LLM.MaxAttempts,
		RetryDelay:         cfg.LLM.RetryDelay,
		MinRequestInterval: cfg.LLM.MinRequestInterval,
	})
	llmClient := llm.NewStructuredClient(generator, llm.InvocationConfig{
		Capability: llm.Capability(cfg.LLM.Capability),
		Budget:     llm.Budget(cfg.LLM.Budget),
	})

	newsService := news.NewService(repository, redisCache, llmClient)

	if *ingestDir != "" {
		loader := ingest.NewLoader(newsService)
		if err := loader.LoadFromDirectory(ctx, *ingestDir); err != nil {
			log.Fatal().Err(err).Msg("Ingest failed")
		}
		return
	}

	worker := news.NewSummaryWorker(repository, redisCache, llmClient, int32(cfg.Worker.BatchSize))
	worker.Start(ctx, cfg.Worker.Interval)
	defer worker.Stop()

	router := httphandler.NewRouter()
	router.RegisterNewsRoutes(httphandler.NewNewsHandler(newsService))
	router.RegisterHealthRoutes()

	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().Str("port", *port).Msg("Starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}

	log.Info().Msg("Server stopped")
}
