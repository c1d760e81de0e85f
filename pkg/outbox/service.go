package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nanopro-wms/backend/pkg/db/models"
	"github.com/nanopro-wms/backend/pkg/enums"
	"github.com/nanopro-wms/backend/pkg/logger"
)

// Service queues table-change events inside the caller's transaction so that
// the row mutation and its notification commit or roll back together.
type Service struct {
	repo *Repository
	logg *logger.Logger
}

func NewService(repo *Repository, logg *logger.Logger) *Service {
	return &Service{repo: repo, logg: logg}
}

// Emit records a change event for dispatch. newRow/oldRow may be nil for
// inserts and deletes respectively.
func (s *Service) Emit(ctx context.Context, tx *gorm.DB, table enums.StoreTable, eventType enums.ChangeEventType, newRow, oldRow any) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	event := ChangeEvent{
		EventID:    uuid.NewString(),
		Table:      table,
		EventType:  eventType,
		OccurredAt: time.Now(),
	}
	var err error
	if newRow != nil {
		if event.NewRow, err = json.Marshal(newRow); err != nil {
			return err
		}
	}
	if oldRow != nil {
		if event.OldRow, err = json.Marshal(oldRow); err != nil {
			return err
		}
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	row := models.OutboxEvent{
		Table:     table,
		EventType: eventType,
		Payload:   payload,
		Status:    enums.OutboxStatusPending,
	}
	if err := s.repo.Insert(tx, row); err != nil {
		return err
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"event_id":   event.EventID,
			"table":      table,
			"event_type": eventType,
		})
		s.logg.Debug(logCtx, "change event queued")
	}
	return nil
}
