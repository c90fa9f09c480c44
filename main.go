package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"edumate/internal/api"
	"edumate/internal/config"
	"edumate/internal/history"
	"edumate/internal/redis"
	"edumate/internal/service/ai"
	"edumate/internal/service/chat"
	"edumate/internal/session"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg("load .env failed")
	}

	cfg, err := config.Load(os.Getenv("EDUMATE_CONFIG"))
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	setupLogging(cfg.BasicConfig)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		repo   history.Repository
		memory ai.Memory
		rdb    *redis.Client
	)
	switch cfg.History.Backend {
	case "redis":
		rdb, err = redis.NewRedisClient(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("create redis client")
		}
		defer rdb.Close()
		ttl := time.Duration(cfg.History.TTLMinutes) * time.Minute
		repo = history.NewRedisRepository(rdb, ttl)
		memory = ai.NewRedisMemory(rdb, ttl)
	default:
		repo = history.NewMemoryRepository()
		memory = ai.NewBufferMemory()
	}
	log.Info().Str("backend", cfg.History.Backend).Msg("history repository ready")

	systemPrompt, err := ai.LoadSystemPrompt(cfg.BasicConfig.SystemPromptPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load system prompt")
	}
	chatModel, err := ai.NewChatModel(ctx, cfg.Provider)
	if err != nil {
		log.Fatal().Err(err).Msg("init chat model")
	}
	generator, err := ai.NewChainGenerator(ctx, chatModel, systemPrompt)
	if err != nil {
		log.Fatal().Err(err).Msg("init chat chain")
	}
	gateway := chat.NewGateway(generator, memory)
	store := history.NewStore(repo, history.MaxEntries, gateway.Forget)
	sessions := session.NewManager(cfg.Session.CookieName, time.Duration(cfg.Session.MaxAgeHours)*time.Hour)
	handlers := api.NewHandler(gateway, store, sessions)

	router := gin.Default()
	handlers.RegisterRoutes(router)

	server := &http.Server{
		Addr:              cfg.BasicConfig.ServerAddress,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		log.Info().Str("addr", server.Addr).Str("provider", cfg.Provider.Name).Str("model", cfg.Provider.Model).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	eg.Go(func() error {
		<-egCtx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	if err := eg.Wait(); err != nil {
		log.Error().Err(err).Msg("server stopped")
	}
}

func setupLogging(cfg config.BasicConfig) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("level", cfg.LogLevel).Msg("unknown log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.PrettyLogs {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	}
	if level > zerolog.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
}
