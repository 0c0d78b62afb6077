package usecase

import (
	"context"

	"StockPulse/internal/domain/repository"
	"StockPulse/internal/querycache"
	"StockPulse/pkg/logger"
)

// ActivityRelay forwards cache status transitions to the event sink so
// downstream consumers can follow fetch lifecycles without polling. It
// is best-effort: publish failures are logged and the relay keeps going.
type ActivityRelay struct {
	store  *querycache.Store
	sink   repository.EventSink
	logger *logger.Logger

	subID int64
	done  chan struct{}
}

// NewActivityRelay creates a relay between the query cache and sink.
func NewActivityRelay(store *querycache.Store, sink repository.EventSink, log *logger.Logger) *ActivityRelay {
	if log == nil {
		log = logger.Nop()
	}
	return &ActivityRelay{
		store:  store,
		sink:   sink,
		logger: log,
		done:   make(chan struct{}),
	}
}

// Start subscribes to the cache and pumps events until Stop is called or
// the cache closes.
func (r *ActivityRelay) Start(ctx context.Context) {
	id, events := r.store.Subscribe()
	r.subID = id

	go func() {
		defer close(r.done)
		for evt := range events {
			err := r.sink.PublishStatus(ctx, string(evt.Key.Kind), evt.Key.Symbol, string(evt.Status))
			if err != nil {
				r.logger.Warn("status event publish failed",
					logger.String("key", evt.Key.String()),
					logger.Error(err),
				)
			}
		}
	}()
}

// Stop unsubscribes and waits for the pump goroutine to drain.
func (r *ActivityRelay) Stop() {
	r.store.Unsubscribe(r.subID)
	<-r.done
}
