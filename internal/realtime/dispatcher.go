package realtime

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nanopro-wms/backend/pkg/config"
	"github.com/nanopro-wms/backend/pkg/db/models"
	"github.com/nanopro-wms/backend/pkg/logger"
)

type outboxSource interface {
	FetchPending(limit int) ([]models.OutboxEvent, error)
	MarkPublished(id uuid.UUID) error
	MarkFailed(id uuid.UUID, cause error) error
}

// Dispatcher drains the change-event outbox and pushes each payload to the
// hub. Events stay pending until broadcast, so a restart replays anything
// committed but not yet delivered.
type Dispatcher struct {
	repo     outboxSource
	hub      *Hub
	interval time.Duration
	batch    int
	logg     *logger.Logger
}

// NewDispatcher wires an outbox poller to the hub.
func NewDispatcher(repo outboxSource, hub *Hub, cfg config.RealtimeConfig, logg *logger.Logger) *Dispatcher {
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = time.Second
	}
	batch := cfg.DispatchBatch
	if batch <= 0 {
		batch = 100
	}
	return &Dispatcher{repo: repo, hub: hub, interval: interval, batch: batch, logg: logg}
}

// Run polls until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			d.drain(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (d *Dispatcher) drain(ctx context.Context) {
	events, err := d.repo.FetchPending(d.batch)
	if err != nil {
		if d.logg != nil {
			d.logg.Error(ctx, "fetch pending change events", err)
		}
		return
	}

	for _, event := range events {
		// Payload already holds the serialized ChangeEvent envelope.
		d.hub.Broadcast(event.Payload)
		if err := d.repo.MarkPublished(event.ID); err != nil {
			if d.logg != nil {
				d.logg.Error(d.logg.WithField(ctx, "event_id", event.ID.String()), "mark change event published", err)
			}
			if markErr := d.repo.MarkFailed(event.ID, err); markErr != nil && d.logg != nil {
				d.logg.Error(ctx, "mark change event failed", markErr)
			}
		}
	}
}
