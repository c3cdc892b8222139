// Package initializer wires configuration into the concrete dependency
// graph: logger, providers, cache, database, and services.
package initializer

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/kreso2/costwise/infra"
	infracache "github.com/kreso2/costwise/infra/cache"
	infraprovider "github.com/kreso2/costwise/infra/provider"
	infrarepository "github.com/kreso2/costwise/infra/repository"
	"github.com/kreso2/costwise/pkg/config"
	"github.com/kreso2/costwise/pkg/provider"
	"github.com/kreso2/costwise/pkg/service/advisor"
	"github.com/kreso2/costwise/pkg/service/catalog"
	"github.com/kreso2/costwise/pkg/service/estimation"
	"github.com/kreso2/costwise/pkg/service/exchange"
)

// Deps holds the wired application dependencies.
type Deps struct {
	Logger     *slog.Logger
	DB         *gorm.DB
	Exchange   *exchange.Service
	Estimation *estimation.Service
	Advisor    *advisor.Service
	Catalog    *catalog.Catalog
}

// InitializeDependencies initializes all the application dependencies.
func InitializeDependencies(cfg *config.App) (*Deps, error) {
	deps := &Deps{}
	logger := setupLogger(cfg.Log)
	deps.Logger = logger

	// Rate providers in fallback order: the paid API first, the free
	// Frankfurter API as backup.
	providers := []provider.ExchangeRate{
		infraprovider.NewExchangeRateAPIProvider(*cfg.ExchangeRateAPI, logger),
		infraprovider.NewFrankfurterProvider(*cfg.FallbackRateAPI, logger),
	}
	deps.Exchange = exchange.New(
		providers,
		infracache.NewMemoryCache(),
		cfg.ExchangeRate.CacheTTL,
		logger,
	)

	db, err := infra.NewDBConnection(*cfg.DB, cfg.Env)
	if err != nil {
		logger.Error("Failed to initialize database", "error", err)
		return nil, err
	}
	deps.DB = db

	if err := infrarepository.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	deps.Catalog = catalog.New()
	deps.Estimation = estimation.NewService(
		infrarepository.NewProjectRepository(db),
		deps.Exchange,
		deps.Catalog,
		logger,
		cfg.ExchangeRate.FetchTimeout,
	)
	deps.Advisor = advisor.New(logger)

	return deps, nil
}
