package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/josinaldojr/legal-chat-rag/internal/cache"
	"github.com/josinaldojr/legal-chat-rag/internal/config"
	"github.com/josinaldojr/legal-chat-rag/internal/db"
	apphttp "github.com/josinaldojr/legal-chat-rag/internal/http"
	"github.com/josinaldojr/legal-chat-rag/internal/llm"
	"github.com/josinaldojr/legal-chat-rag/internal/logger"
	"github.com/josinaldojr/legal-chat-rag/internal/rag"
)

const serveLongDesc string = `Serve the IPC legal chat API.

The vector index is opened once at startup; if it cannot be loaded the
process exits. Settings come from the environment (and .env); flags
override them.`

type serveCommander struct {
	port        string
	indexDriver string
	indexPath   string
	debug       bool

	cfg    *config.Config
	logger *zap.Logger
}

func newServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:           "legal-chat",
		Short:         "Serve the IPC legal chat API",
		Long:          serveLongDesc,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			return cmder.run(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&cmder.port, "port", "p", "", "Port to listen on (overrides PORT)")
	cmd.Flags().StringVar(&cmder.indexDriver, "index-driver", "", "Vector index driver: pgvector or sqlite (overrides INDEX_DRIVER)")
	cmd.Flags().StringVar(&cmder.indexPath, "index-path", "", "Path to a sqlite-vec index file (overrides INDEX_PATH)")

	return cmd
}

func (c *serveCommander) run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(c.applyFlags)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	c.cfg = cfg

	c.logger = logger.New(cfg.Debug)
	defer c.logger.Sync()

	index, cleanup, err := c.openIndex(ctx)
	if err != nil {
		c.logger.Error("failed to load vector index", zap.String("driver", cfg.IndexDriver), zap.Error(err))
		return err
	}
	defer cleanup()

	geminiClient, err := llm.NewGeminiClient(ctx, llm.Options{
		APIKey:          cfg.APIKey,
		ChatModel:       cfg.LLMModel,
		EmbeddingModel:  cfg.EmbeddingModel,
		EmbeddingDim:    cfg.EmbeddingDim,
		Temperature:     cfg.LLMTemperature,
		MaxOutputTokens: int32(cfg.LLMMaxTokens),
	})
	if err != nil {
		c.logger.Error("failed to init Gemini client", zap.Error(err))
		return err
	}

	var embedder rag.Embedder = geminiClient
	if cfg.RedisURL != "" {
		redisClient, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			c.logger.Error("failed to connect to Redis", zap.Error(err))
			return err
		}
		defer redisClient.Close()

		embCache := cache.NewRedisEmbeddingCache(redisClient, cfg.EmbeddingModel, cfg.EmbeddingCacheTTL)
		embedder = rag.NewCachedEmbedder(geminiClient, embCache, c.logger)
		c.logger.Info("embedding cache enabled", zap.Duration("ttl", cfg.EmbeddingCacheTTL))
	}

	tmpl, err := rag.LoadPromptTemplate(cfg.PromptTemplateFile)
	if err != nil {
		c.logger.Error("failed to load prompt template", zap.Error(err))
		return err
	}

	ragService := rag.NewService(index, embedder, geminiClient, rag.ServiceConfig{
		TopK:         cfg.RetrievalTopK,
		MemoryWindow: cfg.MemoryWindow,
		LLMTimeout:   cfg.LLMTimeout,
		Template:     tmpl,
	}, c.logger)

	h := apphttp.NewHandler(ragService, cfg.RequestTimeout, c.logger)
	router := apphttp.NewRouter(h, cfg.CORSOrigins, c.logger)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return c.serve(server)
}

func (c *serveCommander) applyFlags(cfg *config.Config) {
	if c.port != "" {
		cfg.Port = c.port
	}
	if c.indexDriver != "" {
		cfg.IndexDriver = c.indexDriver
	}
	if c.indexPath != "" {
		cfg.IndexPath = c.indexPath
	}
	if c.debug {
		cfg.Debug = true
	}
}

func (c *serveCommander) openIndex(ctx context.Context) (rag.Index, func(), error) {
	switch c.cfg.IndexDriver {
	case config.IndexDriverSQLite:
		idx, err := rag.OpenSQLiteIndex(ctx, c.cfg.IndexPath, c.cfg.EmbeddingDim, c.logger)
		if err != nil {
			return nil, nil, err
		}
		return idx, func() { idx.Close() }, nil

	default:
		pool, err := db.NewPool(ctx, c.cfg.DatabaseURL, c.logger)
		if err != nil {
			return nil, nil, err
		}
		idx, err := rag.OpenPgIndex(ctx, pool, c.cfg.EmbeddingDim, c.logger)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		return idx, pool.Close, nil
	}
}

func (c *serveCommander) serve(server *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		c.logger.Info("API listening",
			zap.String("addr", server.Addr),
			zap.String("index_driver", c.cfg.IndexDriver),
			zap.String("model", c.cfg.LLMModel),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err, ok := <-errCh:
		if ok {
			c.logger.Error("server error", zap.Error(err))
			return err
		}
		return nil
	case <-sigChan:
	}

	c.logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}
