package container

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/garyjia/claimdesk/internal/application/desk"
	"github.com/garyjia/claimdesk/internal/application/dispatcher"
	"github.com/garyjia/claimdesk/internal/infrastructure/metrics"
	"github.com/garyjia/claimdesk/pkg/utils"
	"go.uber.org/zap"
)

// Container manages all application dependencies and lifecycle.
// It follows Clean Architecture principles with ordered initialization
// and reverse-order teardown.
type Container struct {
	config *Config
	logger *zap.Logger

	// Infrastructure
	store   *StoreBundle
	storage *StorageBundle
	metrics *metrics.Collector
	money   *utils.MoneyFormatter

	// Application
	dispatcher dispatcher.Dispatcher
	services   *ServiceBundle
	desk       *desk.Desk

	// Lifecycle
	mu     sync.RWMutex
	ready  atomic.Bool
	closed atomic.Bool
}

// HealthStatus represents the health of all components.
type HealthStatus struct {
	Overall    bool                       `json:"overall"`
	Components map[string]ComponentHealth `json:"components"`
}

// ComponentHealth represents health of a single component.
type ComponentHealth struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// NewContainer creates a new container from configuration.
// It does not initialize components - call Start() to initialize.
func NewContainer(cfg *Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Container{
		config: cfg,
		logger: logger,
	}, nil
}

// Start initializes all components.
// Components are initialized in dependency order:
// 1. Claim store
// 2. Storage
// 3. Event dispatcher and its subscribers
// 4. Application services
// 5. Desk
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container has been closed")
	}

	if c.ready.Load() {
		return fmt.Errorf("container already started")
	}

	c.logger.Info("Starting container initialization")

	// Step 1: Initialize claim store
	store, err := ProvideStore(ctx, &c.config.Store, c.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	c.store = store
	c.logger.Info("Claim store initialized", zap.String("backend", store.Backend))

	// Step 2: Initialize storage
	storageBundle, err := ProvideStorage(&c.config.Export, c.logger)
	if err != nil {
		c.rollback()
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	c.storage = storageBundle
	c.logger.Info("Storage initialized")

	// Step 3: Initialize dispatcher and subscribers
	disp, err := ProvideDispatcher(c.logger)
	if err != nil {
		c.rollback()
		return fmt.Errorf("failed to initialize dispatcher: %w", err)
	}
	c.dispatcher = disp
	c.metrics = ProvideMetrics(disp)
	RegisterEventLog(disp, c.logger)
	c.logger.Info("Dispatcher initialized")

	// Step 4: Initialize application services
	services, err := ProvideServices(&ServiceDeps{
		Store:      c.store,
		Storage:    c.storage,
		Dispatcher: c.dispatcher,
		Documents:  &c.config.Documents,
		Policy:     c.config.Claims.Policy,
		Logger:     c.logger,
	})
	if err != nil {
		c.rollback()
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	c.services = services
	c.logger.Info("Application services initialized")

	// Step 5: Initialize desk
	money, err := ProvideMoneyFormatter(&c.config.Currency)
	if err != nil {
		c.rollback()
		return fmt.Errorf("failed to initialize currency: %w", err)
	}
	c.money = money

	d, err := ProvideDesk(ctx, c.services, c.dispatcher, c.money, c.logger)
	if err != nil {
		c.rollback()
		return fmt.Errorf("failed to initialize desk: %w", err)
	}
	c.desk = d

	c.ready.Store(true)
	c.logger.Info("Container started successfully")

	return nil
}

// rollback releases what a failed Start already opened.
func (c *Container) rollback() {
	if c.dispatcher != nil {
		_ = c.dispatcher.Close()
		c.dispatcher = nil
	}
	if c.store != nil {
		_ = c.store.Close()
		c.store = nil
	}
}

// Close gracefully shuts down all components in reverse order.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container already closed")
	}

	c.logger.Info("Closing container")

	var errs []error

	// Step 1: Release the desk binding (reverse of step 5)
	if c.desk != nil {
		c.desk.Close()
		c.logger.Info("Desk closed")
	}

	// Step 2: Services don't need explicit cleanup (reverse of step 4)

	// Step 3: Close dispatcher (reverse of step 3)
	if c.dispatcher != nil {
		if err := c.dispatcher.Close(); err != nil {
			c.logger.Error("Failed to close dispatcher", zap.Error(err))
			errs = append(errs, fmt.Errorf("close dispatcher: %w", err))
		} else {
			c.logger.Info("Dispatcher closed")
		}
	}

	// Step 4: Storage doesn't need explicit cleanup (reverse of step 2)

	// Step 5: Discard the claim store (reverse of step 1)
	if c.store != nil {
		if err := c.store.Close(); err != nil {
			c.logger.Error("Failed to close claim store", zap.Error(err))
			errs = append(errs, fmt.Errorf("close store: %w", err))
		} else {
			c.logger.Info("Claim store closed")
		}
	}

	c.closed.Store(true)
	c.ready.Store(false)

	if len(errs) > 0 {
		c.logger.Error("Container closed with errors", zap.Int("error_count", len(errs)))
		return fmt.Errorf("container closed with %d errors", len(errs))
	}

	c.logger.Info("Container closed successfully")
	return nil
}

// Ready returns true when all components are initialized.
func (c *Container) Ready() bool {
	return c.ready.Load()
}

// Health returns health status of all components.
func (c *Container) Health(ctx context.Context) *HealthStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()

	status := &HealthStatus{
		Overall:    true,
		Components: make(map[string]ComponentHealth),
	}

	notInitialized := func(name string) {
		status.Components[name] = ComponentHealth{
			Healthy: false,
			Message: "not initialized",
		}
		status.Overall = false
	}

	// Check claim store
	if c.store != nil {
		if err := c.store.Ping(ctx); err != nil {
			status.Components["store"] = ComponentHealth{
				Healthy: false,
				Message: fmt.Sprintf("ping failed: %v", err),
			}
			status.Overall = false
		} else {
			status.Components["store"] = ComponentHealth{Healthy: true, Message: c.store.Backend}
		}
	} else {
		notInitialized("store")
	}

	// Check dispatcher
	if c.dispatcher != nil {
		status.Components["dispatcher"] = ComponentHealth{Healthy: true}
	} else {
		notInitialized("dispatcher")
	}

	// Check desk
	if c.desk != nil {
		status.Components["desk"] = ComponentHealth{Healthy: true}
	} else {
		notInitialized("desk")
	}

	return status
}

// Getters for accessing container components

// Store returns the claim store bundle.
func (c *Container) Store() *StoreBundle {
	return c.store
}

// Storage returns the filesystem components.
func (c *Container) Storage() *StorageBundle {
	return c.storage
}

// Dispatcher returns the event dispatcher.
func (c *Container) Dispatcher() dispatcher.Dispatcher {
	return c.dispatcher
}

// Metrics returns the metrics collector.
func (c *Container) Metrics() *metrics.Collector {
	return c.metrics
}

// Services returns all application services.
func (c *Container) Services() *ServiceBundle {
	return c.services
}

// Desk returns the shared desk.
func (c *Container) Desk() *desk.Desk {
	return c.desk
}

// Logger returns the container's logger.
func (c *Container) Logger() *zap.Logger {
	return c.logger
}

// Config returns the container's configuration.
func (c *Container) Config() *Config {
	return c.config
}

// zapLoggerAdapter adapts zap.Logger to the service.Logger interface.
type zapLoggerAdapter struct {
	logger *zap.Logger
}

func (a *zapLoggerAdapter) Info(msg string, keysAndValues ...interface{}) {
	fields := convertToZapFields(keysAndValues...)
	a.logger.Info(msg, fields...)
}

func (a *zapLoggerAdapter) Error(msg string, keysAndValues ...interface{}) {
	fields := convertToZapFields(keysAndValues...)
	a.logger.Error(msg, fields...)
}

// dispatcherLoggerAdapter adapts zap.Logger to the dispatcher.Logger interface.
type dispatcherLoggerAdapter struct {
	logger *zap.Logger
}

func (a *dispatcherLoggerAdapter) Info(msg string, keysAndValues ...interface{}) {
	fields := convertToZapFields(keysAndValues...)
	a.logger.Debug(msg, fields...)
}

func (a *dispatcherLoggerAdapter) Error(msg string, keysAndValues ...interface{}) {
	fields := convertToZapFields(keysAndValues...)
	a.logger.Error(msg, fields...)
}

// convertToZapFields converts key-value pairs to zap fields.
func convertToZapFields(keysAndValues ...interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		if err, ok := keysAndValues[i+1].(error); ok {
			fields = append(fields, zap.NamedError(key, err))
			continue
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}
