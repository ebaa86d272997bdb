package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/support-expert/internal/domain/auth"
	"github.com/yanqian/support-expert/internal/domain/catalog"
	"github.com/yanqian/support-expert/internal/domain/feedsync"
	"github.com/yanqian/support-expert/internal/domain/qacache"
	"github.com/yanqian/support-expert/internal/domain/rules"
	"github.com/yanqian/support-expert/internal/domain/stopword"
	"github.com/yanqian/support-expert/internal/domain/support"
	"github.com/yanqian/support-expert/internal/infra/config"
	"github.com/yanqian/support-expert/internal/infra/llm"
	"github.com/yanqian/support-expert/internal/infra/llm/chatgpt"
	"github.com/yanqian/support-expert/internal/infra/nlp"
	"github.com/yanqian/support-expert/internal/infra/productindex"
	"github.com/yanqian/support-expert/internal/infra/qarepo"
	"github.com/yanqian/support-expert/internal/infra/qastore"
	"github.com/yanqian/support-expert/internal/infra/sheets"
	"github.com/yanqian/support-expert/internal/infra/syncqueue"
	"github.com/yanqian/support-expert/pkg/workerpool"
)

func provideSupportConfig(cfg *config.Config) support.Config {
	return support.Config{
		Model:             cfg.LLM.Model,
		Temperature:       cfg.LLM.Temperature,
		MaxTokens:         cfg.LLM.MaxTokens,
		GenerationTimeout: cfg.LLM.GenerationTimeout,
		MaxQuestionRunes:  cfg.Support.MaxQuestionRunes,
		ProductLimit:      cfg.Support.ProductLimit,
		EscalationText:    cfg.Support.EscalationText,
		Prompt: support.PromptLimits{
			Question:       cfg.Support.QuestionPromptRunes,
			ProductContext: cfg.Support.ProductContextRunes,
			StoreContext:   cfg.Support.StoreContextRunes,
		},
	}
}

func provideAuthConfig(cfg *config.Config) auth.Config {
	return auth.Config{
		Secret:   cfg.Auth.Secret,
		TokenTTL: cfg.Auth.TokenTTL,
		Issuer:   cfg.Auth.Issuer,
		Admins:   cfg.Auth.Admins,
	}
}

// provideChatGPTClient returns nil when no API key is configured.
func provideChatGPTClient(cfg *config.Config, logger *slog.Logger) (*chatgpt.Client, error) {
	if strings.TrimSpace(cfg.LLM.APIKey) == "" {
		logger.Warn("llm api key not set, using offline embedder and completer")
		return nil, nil
	}
	return chatgpt.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL)
}

func provideEmbedder(cfg *config.Config, client *chatgpt.Client, logger *slog.Logger) qacache.Embedder {
	if client == nil {
		return llm.NewDeterministicEmbedder(cfg.QACache.EmbeddingDim)
	}
	return llm.NewChatGPTEmbedder(client, cfg.LLM.EmbeddingModel, logger)
}

func provideCompleter(client *chatgpt.Client) support.Completer {
	if client == nil {
		return llm.EchoCompleter{}
	}
	return llm.NewChatGPTCompleter(client)
}

// providePostgresPool returns a nil pool when postgres is not configured or
// unreachable.
func providePostgresPool(cfg *config.Config, logger *slog.Logger) (*pgxpool.Pool, func()) {
	dsn := strings.TrimSpace(cfg.QACache.Postgres.DSN)
	if dsn == "" {
		logger.Info("qa postgres dsn not set, using memory repository")
		return nil, func() {}
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory repository", "error", err)
		return nil, func() {}
	}
	if cfg.QACache.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.QACache.Postgres.MaxConns
	}
	if cfg.QACache.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.QACache.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory repository", "error", err)
		return nil, func() {}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory repository", "error", err)
		pool.Close()
		return nil, func() {}
	}
	return pool, pool.Close
}

func provideQARepository(pool *pgxpool.Pool, logger *slog.Logger) qacache.Repository {
	if pool == nil {
		return qarepo.NewMemoryRepository()
	}
	repo := qarepo.NewPostgresRepository(pool)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := repo.EnsureSchema(ctx); err != nil {
		logger.Error("qa schema setup failed, using memory repository", "error", err)
		return qarepo.NewMemoryRepository()
	}
	logger.Info("qa postgres repository enabled")
	return repo
}

// provideValkeyClient returns nil when valkey is disabled or unreachable.
func provideValkeyClient(cfg *config.Config, logger *slog.Logger) (valkey.Client, func()) {
	if !cfg.QACache.Redis.Enabled {
		return nil, func() {}
	}
	opt, err := buildValkeyOptions(cfg)
	if err != nil {
		logger.Error("invalid valkey configuration, falling back to memory store", "error", err)
		return nil, func() {}
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, falling back to memory store", "error", err)
		return nil, func() {}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, falling back to memory store", "error", err)
		client.Close()
		return nil, func() {}
	}
	logger.Info("valkey enabled", "addr", cfg.QACache.Redis.Addr)
	return client, client.Close
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	if strings.Contains(cfg.QACache.Redis.Addr, "://") {
		return valkey.ParseURL(cfg.QACache.Redis.Addr)
	}
	return valkey.ClientOption{InitAddress: []string{cfg.QACache.Redis.Addr}}, nil
}

func provideAnswerStore(cfg *config.Config, client valkey.Client) qacache.AnswerStore {
	if client == nil {
		return qastore.NewMemoryStore()
	}
	return qastore.NewValkeyStore(client, cfg.QACache.KeyPrefix)
}

func provideProductIndex(cfg *config.Config, logger *slog.Logger) (catalog.Index, func(), error) {
	path := strings.TrimSpace(cfg.Catalog.IndexPath)
	if path == "" {
		logger.Info("catalog index path not set, using memory index")
		return productindex.NewMemoryIndex(), func() {}, nil
	}
	index, err := productindex.OpenSQLite(context.Background(), path)
	if err != nil {
		return nil, nil, fmt.Errorf("open product index: %w", err)
	}
	cleanup := func() {
		if err := index.Close(); err != nil {
			logger.Warn("close product index", "error", err)
		}
	}
	return index, cleanup, nil
}

// provideNLPClient returns nil when no model server is configured.
func provideNLPClient(cfg *config.Config, logger *slog.Logger) (*nlp.Client, error) {
	if strings.TrimSpace(cfg.NLP.BaseURL) == "" {
		logger.Warn("nlp base url not set, using gazetteer and token lemmatizer")
		return nil, nil
	}
	return nlp.NewClient(cfg.NLP.BaseURL, cfg.NLP.Timeout)
}

func provideEntityExtractor(cfg *config.Config, client *nlp.Client) catalog.EntityExtractor {
	if client == nil {
		return nlp.NewGazetteer(cfg.NLP.Gazetteer)
	}
	return client
}

func provideLemmatizer(client *nlp.Client) rules.Lemmatizer {
	if client == nil {
		return nlp.TokenLemmatizer{}
	}
	return client
}

func provideFeedSource(cfg *config.Config, logger *slog.Logger) (feedsync.Source, error) {
	switch cfg.Feeds.Source {
	case config.FeedSourceSheets:
		creds, err := os.ReadFile(cfg.Feeds.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read google credentials: %w", err)
		}
		service, err := sheets.NewService(context.Background(), creds)
		if err != nil {
			return nil, err
		}
		return sheets.NewSpreadsheet(service, cfg.Feeds.SpreadsheetID, logger)
	case config.FeedSourceCSV:
		return sheets.NewCSVSource(cfg.Feeds.CSVDir), nil
	case config.FeedSourceBucket:
		return sheets.NewBucketSource(sheets.BucketConfig{
			Endpoint:  cfg.Feeds.Bucket.Endpoint,
			AccessKey: cfg.Feeds.Bucket.AccessKey,
			SecretKey: cfg.Feeds.Bucket.SecretKey,
			Bucket:    cfg.Feeds.Bucket.Name,
			Region:    cfg.Feeds.Bucket.Region,
			Prefix:    cfg.Feeds.Bucket.Prefix,
		}, logger)
	default:
		return sheets.NoSource{}, nil
	}
}

// provideLedger appends taught pairs to the spreadsheet when feeds come
// from one.
func provideLedger(source feedsync.Source) support.Ledger {
	if sheet, ok := source.(*sheets.Spreadsheet); ok {
		return sheet
	}
	return sheets.NewMemoryLedger()
}

func provideSupportDependencies(
	filter *stopword.Filter,
	cache *qacache.Cache,
	products *catalog.Service,
	table *rules.Table,
	completer support.Completer,
	ledger support.Ledger,
) support.Dependencies {
	return support.Dependencies{
		Stopwords: filter,
		Cache:     cache,
		Products:  products,
		Rules:     table,
		Completer: completer,
		Ledger:    ledger,
	}
}

func provideSyncTargets(products *catalog.Service, table *rules.Table, filter *stopword.Filter, cache *qacache.Cache) feedsync.Targets {
	return feedsync.Targets{
		Products:  products,
		Rules:     table,
		Stopwords: filter,
		QA:        cache,
	}
}

func provideWorkerPool(cfg *config.Config, logger *slog.Logger) (*workerpool.Pool, func(), error) {
	poolCfg := workerpool.DefaultConfig()
	if cfg.Sync.Workers > 0 {
		poolCfg.Capacity = cfg.Sync.Workers
	}
	pool, err := workerpool.New("feedsync", poolCfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return pool, pool.Release, nil
}

// provideSyncQueue delivers queued triggers to the syncer.
func provideSyncQueue(cfg *config.Config, client valkey.Client, syncer *feedsync.Syncer, logger *slog.Logger) (syncqueue.HandlerQueue, func()) {
	var queue syncqueue.HandlerQueue
	if cfg.Sync.Queue == "valkey" && client != nil {
		queue = syncqueue.NewValkeyQueue(client, cfg.Sync.QueueKey, logger)
	} else {
		queue = syncqueue.NewImmediateQueue(nil)
	}
	queue.SetHandler(func(ctx context.Context, feed feedsync.Feed) {
		if _, err := syncer.Sync(ctx, feed); err != nil {
			logger.Warn("queued sync failed", "feed", feed, "error", err)
		}
	})
	return queue, queue.Close
}

func provideTriggerQueue(queue syncqueue.HandlerQueue) feedsync.TriggerQueue {
	return queue
}
