//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/support-expert/internal/bootstrap"
	"github.com/yanqian/support-expert/internal/domain/auth"
	"github.com/yanqian/support-expert/internal/domain/catalog"
	"github.com/yanqian/support-expert/internal/domain/feedsync"
	"github.com/yanqian/support-expert/internal/domain/qacache"
	"github.com/yanqian/support-expert/internal/domain/rules"
	"github.com/yanqian/support-expert/internal/domain/stopword"
	"github.com/yanqian/support-expert/internal/domain/support"
	"github.com/yanqian/support-expert/internal/infra/config"
	httpiface "github.com/yanqian/support-expert/internal/interface/http"
	"github.com/yanqian/support-expert/pkg/logger"
)

func initializeApp() (*bootstrap.App, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		provideSupportConfig,
		provideAuthConfig,
		provideChatGPTClient,
		provideEmbedder,
		provideCompleter,
		providePostgresPool,
		provideQARepository,
		provideValkeyClient,
		provideAnswerStore,
		provideProductIndex,
		provideNLPClient,
		provideEntityExtractor,
		provideLemmatizer,
		provideFeedSource,
		provideLedger,
		provideSupportDependencies,
		provideSyncTargets,
		provideWorkerPool,
		provideSyncQueue,
		provideTriggerQueue,
		stopword.NewFilter,
		rules.NewTable,
		qacache.NewCache,
		catalog.NewService,
		support.NewService,
		feedsync.NewSyncer,
		auth.NewService,
		wire.Bind(new(httpiface.Syncer), new(*feedsync.Syncer)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}
