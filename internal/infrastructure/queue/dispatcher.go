package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/bloodcare/donation-system/internal/api/metrics"
	"github.com/bloodcare/donation-system/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher routes funding webhook events to a fixed set of workers using
// consistent hashing on the transaction id, so replays of the same
// transaction are always processed by the same worker in order.
type Dispatcher struct {
	workers []chan ports.FundingEventInput
	service ports.FundingService
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.FundingService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.FundingEventInput, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.FundingEventInput, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue sends an event to the worker responsible for its transaction id.
// The call is non-blocking up to channelBuffer capacity.
func (d *Dispatcher) Enqueue(event ports.FundingEventInput) {
	i := d.shardIndex(event.TransactionID)
	d.workers[i] <- event
	metrics.FundingQueueDepth.WithLabelValues(strconv.Itoa(i)).Set(float64(len(d.workers[i])))
}

// shardIndex maps a transaction id deterministically to a worker index.
func (d *Dispatcher) shardIndex(transactionID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(transactionID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.FundingEventInput) {
	worker := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			metrics.FundingQueueDepth.WithLabelValues(worker).Set(float64(len(ch)))
			if err := d.service.Record(ctx, event); err != nil {
				metrics.FundingEventsTotal.WithLabelValues("error").Inc()
				d.log.Error().Err(err).
					Str("transaction_id", event.TransactionID).
					Int("worker_id", id).
					Msg("funding event processing failed")
				continue
			}
			metrics.FundingEventsTotal.WithLabelValues("ok").Inc()
		}
	}
}
