// Package container provides dependency injection and lifecycle management
// for the claim desk following Clean Architecture principles.
package container

import (
	"context"
	"fmt"

	"github.com/garyjia/claimdesk/internal/application/desk"
	"github.com/garyjia/claimdesk/internal/application/dispatcher"
	"github.com/garyjia/claimdesk/internal/application/port"
	"github.com/garyjia/claimdesk/internal/application/service"
	"github.com/garyjia/claimdesk/internal/domain/event"
	"github.com/garyjia/claimdesk/internal/domain/workflow"
	"github.com/garyjia/claimdesk/internal/infrastructure/export"
	"github.com/garyjia/claimdesk/internal/infrastructure/metrics"
	"github.com/garyjia/claimdesk/internal/infrastructure/persistence/memory"
	"github.com/garyjia/claimdesk/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/claimdesk/internal/infrastructure/storage"
	"github.com/garyjia/claimdesk/pkg/utils"
	"go.uber.org/zap"
)

// StoreBundle holds the claim store and its transaction manager.
type StoreBundle struct {
	Claims    port.ClaimRepository
	TxManager port.TransactionManager
	Backend   string

	// sqlDB is set for the sqlite backend only
	sqlDB *sqlite.DB
}

// Ping checks the store; the memory backend is always reachable.
func (b *StoreBundle) Ping(ctx context.Context) error {
	if b.sqlDB == nil {
		return nil
	}
	return b.sqlDB.Ping(ctx)
}

// Close discards the store contents.
func (b *StoreBundle) Close() error {
	if b.sqlDB == nil {
		return nil
	}
	return b.sqlDB.Close()
}

// StorageBundle holds filesystem components.
type StorageBundle struct {
	Inspector port.DocumentInspector
	Exports   port.ExportStorage
}

// ProvideStore creates the session claim store for the configured backend.
// The sqlite backend is migrated before it is returned.
func ProvideStore(ctx context.Context, cfg *StoreConfig, logger *zap.Logger) (*StoreBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("store config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	switch cfg.Backend {
	case BackendMemory, "":
		store := memory.NewClaimStore(logger)
		return &StoreBundle{
			Claims:    store,
			TxManager: store,
			Backend:   BackendMemory,
		}, nil

	case BackendSQLite:
		db, err := sqlite.Open(ctx, "claims", logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open claim database: %w", err)
		}
		return &StoreBundle{
			Claims:    sqlite.NewClaimRepository(db, logger),
			TxManager: db,
			Backend:   BackendSQLite,
			sqlDB:     db,
		}, nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// ProvideStorage creates the document inspector and export storage.
func ProvideStorage(cfg *ExportConfig, logger *zap.Logger) (*StorageBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("export config is required")
	}
	if cfg.Dir == "" {
		return nil, fmt.Errorf("export directory is required")
	}

	return &StorageBundle{
		Inspector: storage.NewLocalDocumentInspector(logger),
		Exports:   storage.NewLocalExportStorage(cfg.Dir, logger),
	}, nil
}

// ProvideDispatcher creates the event dispatcher.
func ProvideDispatcher(logger *zap.Logger) (dispatcher.Dispatcher, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	dispLogger := &dispatcherLoggerAdapter{logger: logger}
	disp := dispatcher.NewDispatcher(dispatcher.WithLogger(dispLogger))

	logger.Info("Event dispatcher created")
	return disp, nil
}

// ProvideMetrics creates the metrics collector and subscribes it to every event.
func ProvideMetrics(disp dispatcher.Dispatcher) *metrics.Collector {
	collector := metrics.NewCollector()
	collector.Attach(disp)
	return collector
}

// RegisterEventLog writes every dispatched event to the debug log.
func RegisterEventLog(disp dispatcher.Dispatcher, logger *zap.Logger) {
	disp.SubscribeNamed(dispatcher.AnyType, "event-log", func(ctx context.Context, evt *event.Event) error {
		logger.Debug("Event dispatched",
			zap.String("event_id", evt.ID),
			zap.String("type", evt.Type.String()),
			zap.String("claim_id", evt.ClaimID),
			zap.Any("payload", evt.Payload))
		return nil
	})
}

// ServiceDeps contains dependencies for creating services.
type ServiceDeps struct {
	Store      *StoreBundle
	Storage    *StorageBundle
	Dispatcher dispatcher.Dispatcher
	Documents  *DocumentsConfig
	Policy     workflow.Policy
	Logger     *zap.Logger
}

// ServiceBundle groups all application services.
type ServiceBundle struct {
	Claims    service.ClaimService
	Documents service.DocumentService
	Exports   service.ExportService
}

// ProvideServices creates all application services.
func ProvideServices(deps *ServiceDeps) (*ServiceBundle, error) {
	if deps == nil {
		return nil, fmt.Errorf("service dependencies are required")
	}
	if deps.Store == nil || deps.Storage == nil {
		return nil, fmt.Errorf("store and storage are required")
	}
	if deps.Dispatcher == nil {
		return nil, fmt.Errorf("dispatcher is required")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	svcLogger := &zapLoggerAdapter{logger: deps.Logger}

	policy := service.DocumentPolicy{}
	if deps.Documents != nil {
		policy.MaxSize = deps.Documents.MaxSize
		policy.AllowedExtensions = deps.Documents.AllowedExtensions
	}

	claims := service.NewClaimService(
		deps.Store.Claims,
		deps.Store.TxManager,
		workflow.NewTransitioner(deps.Policy),
		deps.Dispatcher,
		svcLogger,
	)

	documents := service.NewDocumentService(
		deps.Storage.Inspector,
		policy,
		deps.Dispatcher,
		svcLogger,
	)

	exports := service.NewExportService(
		deps.Store.Claims,
		export.NewClaimWorkbook(deps.Logger),
		deps.Storage.Exports,
		svcLogger,
	)

	deps.Logger.Info("Application services created",
		zap.String("transition_policy", string(deps.Policy)))

	return &ServiceBundle{
		Claims:    claims,
		Documents: documents,
		Exports:   exports,
	}, nil
}

// ProvideMoneyFormatter creates the display formatter for claim totals.
func ProvideMoneyFormatter(cfg *CurrencyConfig) (*utils.MoneyFormatter, error) {
	if cfg == nil {
		return nil, fmt.Errorf("currency config is required")
	}
	return utils.NewMoneyFormatter(cfg.Code, cfg.Locale)
}

// ProvideDesk creates the desk and loads the current claim list.
func ProvideDesk(
	ctx context.Context,
	services *ServiceBundle,
	disp dispatcher.Dispatcher,
	money port.MoneyFormatter,
	logger *zap.Logger,
) (*desk.Desk, error) {
	if services == nil {
		return nil, fmt.Errorf("services are required")
	}

	d := desk.New(
		services.Claims,
		services.Documents,
		services.Exports,
		disp,
		money,
		&zapLoggerAdapter{logger: logger},
	)

	if err := d.Refresh(ctx); err != nil {
		return nil, fmt.Errorf("failed to load claims: %w", err)
	}

	return d, nil
}
