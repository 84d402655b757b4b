// Package app wires repositories, services and the router from a Config.
package app

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/wadjakorntonsri/go-linkbio/pkg/adapters/handler"
	"github.com/wadjakorntonsri/go-linkbio/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/go-linkbio/pkg/config"
	"github.com/wadjakorntonsri/go-linkbio/pkg/core/services"
)

type App struct {
	Repo     *sqlite.SQLiteRepository
	Ordering *services.OrderingService
	Links    *services.LinkService
	Profiles *services.ProfileService
	Handler  http.Handler
}

func OpenRepository(cfg *config.Config) (*sqlite.SQLiteRepository, error) {
	return sqlite.NewSQLiteRepository(cfg.DatabaseURL,
		sqlite.WithUniqueOrderIndex(cfg.UniqueOrderIndex),
		sqlite.WithTxRetries(cfg.TxMaxRetries, cfg.TxRetryBackoff),
	)
}

func NewOrdering(cfg *config.Config, repo *sqlite.SQLiteRepository, logger *zap.Logger) *services.OrderingService {
	return services.NewOrderingService(repo, repo, logger.Named("ordering"),
		services.WithDiagnosticsPolicy(services.DiagnosticsPolicy{OversizeFactor: cfg.OversizeFactor}))
}

func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	repo, err := OpenRepository(cfg)
	if err != nil {
		return nil, err
	}

	ordering := NewOrdering(cfg, repo, logger)
	links := services.NewLinkService(repo, ordering, repo)
	profiles := services.NewProfileService(repo, repo)

	return &App{
		Repo:     repo,
		Ordering: ordering,
		Links:    links,
		Profiles: profiles,
		Handler: handler.NewRouter(cfg, handler.Services{
			Links:    links,
			Ordering: ordering,
			Profiles: profiles,
		}, logger.Named("http")),
	}, nil
}
