package di

import (
	"fmt"

	"StockPulse/internal/domain/repository"
	"StockPulse/internal/ledger"
	"StockPulse/internal/querycache"
	internalrepo "StockPulse/internal/repository"
	"StockPulse/internal/service/insight"
	"StockPulse/internal/usecase"
	"StockPulse/pkg/cache"
	"StockPulse/pkg/config"
	pkgkafka "StockPulse/pkg/kafka"
	"StockPulse/pkg/logger"
	"StockPulse/pkg/metrics"
	"StockPulse/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	l, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideQueryCache creates the request cache.
func ProvideQueryCache(cfg *config.Config) *querycache.Store {
	if cfg.Cache.MaxEntries > 0 {
		return querycache.NewStore(querycache.WithMaxEntries(cfg.Cache.MaxEntries))
	}
	return querycache.NewStore()
}

// ProvideLedgerStore creates the key-value store backing the
// recent-symbol ledger: Redis when configured, in-process otherwise.
func ProvideLedgerStore(cfg *config.Config) (cache.Service, error) {
	if !cfg.Ledger.Redis {
		return cache.NewMemoryCache(), nil
	}

	store, err := cache.NewRedisCache(
		cache.WithRedisAddr(cfg.Ledger.RedisAddr),
		cache.WithRedisPassword(cfg.Ledger.RedisPass),
		cache.WithRedisDB(cfg.Ledger.RedisDB),
		cache.WithRedisPool(cfg.Ledger.PoolSize, cfg.Ledger.PoolSize/2, cfg.Ledger.PoolWait),
	)
	if err != nil {
		return nil, fmt.Errorf("ledger store: %w", err)
	}
	return store, nil
}

// ProvideLedger creates the recent-symbol ledger.
func ProvideLedger(store cache.Service, log *logger.Logger, cfg *config.Config) *ledger.Ledger {
	if cfg.Ledger.StorageKey != "" {
		return ledger.New(store, log, ledger.WithStorageKey(cfg.Ledger.StorageKey))
	}
	return ledger.New(store, log)
}

// ProvideInsightFetcher creates the HTTP client for the analytical
// backends.
func ProvideInsightFetcher(cfg *config.Config) repository.InsightFetcher {
	return insight.NewClient(cfg)
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideEventSink creates the activity sink: a Kafka producer when
// events are enabled, a discard sink otherwise.
func ProvideEventSink(cfg *config.Config) (repository.EventSink, error) {
	if !cfg.Events.Enabled {
		return internalrepo.NopEventSink{}, nil
	}

	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Events.Brokers),
		pkgkafka.WithCompression(cfg.Events.Compression),
		pkgkafka.WithRequiredAcks(cfg.Events.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Events.MaxAttempts),
		pkgkafka.WithBatchTimeout(cfg.Events.Linger),
		pkgkafka.WithTimeouts(cfg.Events.WriteTimeout, cfg.Events.ReadTimeout),
		pkgkafka.WithAsync(cfg.Events.Async),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaEventSink(producer, cfg.Events.Topic), nil
}

// ProvideDashboard creates the dashboard controller.
func ProvideDashboard(
	store *querycache.Store,
	led *ledger.Ledger,
	fetcher repository.InsightFetcher,
	m repository.Metrics,
	sink repository.EventSink,
	log *logger.Logger,
) *usecase.Dashboard {
	return usecase.NewDashboard(store, led, fetcher, m, log, usecase.WithEventSink(sink))
}

// ProvideActivityRelay creates the cache-to-sink event pump. Nil when
// events are disabled so nothing subscribes for nothing.
func ProvideActivityRelay(
	store *querycache.Store,
	sink repository.EventSink,
	log *logger.Logger,
	cfg *config.Config,
) *usecase.ActivityRelay {
	if !cfg.Events.Enabled {
		return nil
	}
	return usecase.NewActivityRelay(store, sink, log)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *logger.Logger,
	store *querycache.Store,
	ledgerStore cache.Service,
	sink repository.EventSink,
	dash *usecase.Dashboard,
	relay *usecase.ActivityRelay,
) *server.App {
	return server.New(cfg, log, store, ledgerStore, sink, dash, relay)
}
