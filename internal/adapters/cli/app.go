package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/riceops/production-planning/internal/adapters/metrics"
	"github.com/riceops/production-planning/internal/adapters/persistence"
	"github.com/riceops/production-planning/internal/application/common"
	"github.com/riceops/production-planning/internal/application/planning"
	"github.com/riceops/production-planning/internal/application/planning/commands"
	"github.com/riceops/production-planning/internal/application/planning/events"
	"github.com/riceops/production-planning/internal/application/planning/queries"
	"github.com/riceops/production-planning/internal/domain/activation"
	"github.com/riceops/production-planning/internal/domain/distribution"
	"github.com/riceops/production-planning/internal/domain/shared"
	"github.com/riceops/production-planning/internal/infrastructure/config"
	"github.com/riceops/production-planning/internal/infrastructure/database"
	"github.com/riceops/production-planning/internal/infrastructure/logging"
)

// app holds everything one CLI invocation needs
type app struct {
	cfg        *config.Config
	db         *gorm.DB
	mediator   common.Mediator
	dispatcher *events.ActivationDispatcher
	settings   *persistence.GormSettingsStore
	cache      *persistence.CachedSettingsStore
	distros    *persistence.GormDistributionRepository
	clock      shared.Clock

	closers []io.Closer
}

// openApp loads configuration, connects to the database and wires the mediator.
// The returned context carries the configured logger.
func openApp(cmd *cobra.Command) (*app, context.Context, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}

	logger, logCloser, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, nil, err
	}

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		_ = logCloser.Close()
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	a, err := newApp(cfg, db, shared.NewRealClock())
	if err != nil {
		_ = database.Close(db)
		_ = logCloser.Close()
		return nil, nil, err
	}
	a.closers = append(a.closers, logCloser)

	ctx := common.WithLogger(cmd.Context(), logger)
	return a, ctx, nil
}

// newApp registers every handler on a fresh mediator backed by db
func newApp(cfg *config.Config, db *gorm.DB, clock shared.Clock) (*app, error) {
	plans := persistence.NewGormPlanRepository(db)
	cultivations := persistence.NewGormCultivationRepository(db)
	tasks := persistence.NewGormCultivationTaskRepository(db)
	materials := persistence.NewGormMaterialRepository(db)
	distributions := persistence.NewGormDistributionRepository(db)
	failures := persistence.NewGormFailedActivationRepository(db)
	settingsStore := persistence.NewGormSettingsStore(db, clock)
	cache := persistence.NewCachedSettingsStore(settingsStore, clock, cfg.Planning.SettingsCacheTTL)

	mediator := common.NewMediator()
	mediator.Use(common.LoggingMiddleware)

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()

		activationCollector := metrics.NewActivationMetricsCollector()
		if err := activationCollector.Register(); err != nil {
			return nil, fmt.Errorf("failed to register activation metrics: %w", err)
		}
		metrics.SetGlobalActivationCollector(activationCollector)

		commandCollector := metrics.NewCommandMetricsCollector()
		if err := commandCollector.Register(); err != nil {
			return nil, fmt.Errorf("failed to register command metrics: %w", err)
		}
		mediator.Use(metrics.PrometheusMiddleware(commandCollector))
	}

	loader := planning.NewActivationLoader(plans, cultivations)
	policy := backoffPolicy(cfg.Planning.Retry)

	var limiter *rate.Limiter
	if cfg.Planning.Retry.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Planning.Retry.RatePerSecond), 1)
	}

	handlers := []struct {
		register func(common.Mediator, common.RequestHandler) error
		handler  common.RequestHandler
	}{
		{
			common.RegisterHandler[*commands.ExpandPlanCommand],
			commands.NewExpandPlanHandler(loader, tasks, materials, clock, commands.PriceAsOf(cfg.Planning.PriceAsOf)),
		},
		{
			common.RegisterHandler[*commands.ScheduleDistributionsCommand],
			commands.NewScheduleDistributionsHandler(loader, distributions, materials, cache, scheduleDefaults(cfg.Planning.Distribution), clock),
		},
		{
			common.RegisterHandler[*commands.UpdateDistributionStatusCommand],
			commands.NewUpdateDistributionStatusHandler(distributions, clock),
		},
		{
			common.RegisterHandler[*commands.RetryFailedActivationsCommand],
			commands.NewRetryFailedActivationsHandler(failures, mediator, limiter, policy, clock),
		},
		{
			common.RegisterHandler[*queries.GetPlanCostAnalysisQuery],
			queries.NewGetPlanCostAnalysisHandler(tasks),
		},
		{
			common.RegisterHandler[*queries.GetMaterialPriceQuery],
			queries.NewGetMaterialPriceHandler(materials, clock),
		},
	}
	for _, h := range handlers {
		if err := h.register(mediator, h.handler); err != nil {
			return nil, fmt.Errorf("failed to register handler: %w", err)
		}
	}

	return &app{
		cfg:        cfg,
		db:         db,
		mediator:   mediator,
		dispatcher: events.NewActivationDispatcher(mediator, failures, policy, clock),
		settings:   settingsStore,
		cache:      cache,
		distros:    distributions,
		clock:      clock,
	}, nil
}

// Close flushes metrics and releases the database and log file
func (a *app) Close() error {
	var firstErr error
	if a.cfg.Metrics.Enabled {
		if err := metrics.WriteTextfile(a.cfg.Metrics.TextfilePath); err != nil {
			firstErr = err
		}
	}
	if err := database.Close(a.db); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("failed to close database: %w", err)
	}
	for _, c := range a.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func backoffPolicy(cfg config.RetryConfig) activation.BackoffPolicy {
	return activation.BackoffPolicy{
		InitialDelay: cfg.InitialDelay,
		MaxDelay:     cfg.MaxDelay,
		MaxAttempts:  cfg.MaxAttempts,
	}
}

func scheduleDefaults(cfg config.DistributionConfig) distribution.ScheduleSettings {
	return distribution.ScheduleSettings{
		DaysBeforeTask:               cfg.DaysBeforeTask,
		SupervisorConfirmationWindow: cfg.SupervisorConfirmationWindow,
		FarmerConfirmationWindow:     cfg.FarmerConfirmationWindow,
		GracePeriod:                  cfg.GracePeriod,
	}
}
