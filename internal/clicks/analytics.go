package clicks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/koocao/reduzed-backend/pkg/logger"
	"github.com/koocao/reduzed-backend/pkg/outbox"
	"github.com/koocao/reduzed-backend/pkg/outbox/payloads"
	"github.com/koocao/reduzed-backend/pkg/outbox/registry"
)

// AnalyticsConsumerName namespaces the dedupe keys for this consumer so a
// second consumer of the clicks stream keeps its own processed set.
const AnalyticsConsumerName = "analytics-worker"

// ClickRow is the BigQuery row shape for a single click.
type ClickRow struct {
	EventID   string    `bigquery:"event_id"`
	DealID    string    `bigquery:"deal_id"`
	CompanyID string    `bigquery:"company_id"`
	DealKind  string    `bigquery:"deal_kind"`
	Referrer  string    `bigquery:"referrer"`
	UserAgent string    `bigquery:"user_agent"`
	ClientIP  string    `bigquery:"client_ip"`
	ClickedAt time.Time `bigquery:"clicked_at"`
}

type deduper interface {
	CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error)
	Delete(ctx context.Context, consumer string, eventID uuid.UUID) error
}

type rowInserter interface {
	InsertRows(ctx context.Context, table string, rows []any) error
}

// AnalyticsConsumer turns click event messages into BigQuery rows, exactly
// once per event id.
type AnalyticsConsumer struct {
	dedupe deduper
	sink   rowInserter
	table  string
	logg   *logger.Logger
}

// NewAnalyticsConsumer constructs the click analytics consumer.
func NewAnalyticsConsumer(dedupe deduper, sink rowInserter, table string, logg *logger.Logger) (*AnalyticsConsumer, error) {
	if dedupe == nil {
		return nil, fmt.Errorf("dedupe manager required")
	}
	if sink == nil {
		return nil, fmt.Errorf("row sink required")
	}
	if table == "" {
		return nil, fmt.Errorf("table name required")
	}
	return &AnalyticsConsumer{dedupe: dedupe, sink: sink, table: table, logg: logg}, nil
}

// Handle processes one message payload. Malformed payloads return a
// non-retryable error so the subscription can ack and move on; transient
// dedupe or insert failures bubble up for redelivery.
func (c *AnalyticsConsumer) Handle(ctx context.Context, payload []byte) error {
	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return registry.NewNonRetryableError(fmt.Errorf("decode envelope: %w", err))
	}
	if envelope.EventID == "" {
		return registry.NewNonRetryableError(fmt.Errorf("envelope has no event id"))
	}
	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		return registry.NewNonRetryableError(fmt.Errorf("parse event id: %w", err))
	}

	var click payloads.DealClickEvent
	if err := json.Unmarshal(envelope.Data, &click); err != nil {
		return registry.NewNonRetryableError(fmt.Errorf("decode click payload: %w", err))
	}
	if click.DealID == uuid.Nil {
		return registry.NewNonRetryableError(fmt.Errorf("click payload has no deal id"))
	}

	seen, err := c.dedupe.CheckAndMarkProcessed(ctx, AnalyticsConsumerName, eventID)
	if err != nil {
		return fmt.Errorf("dedupe check: %w", err)
	}
	if seen {
		if c.logg != nil {
			c.logg.Debug(c.logg.WithField(ctx, "event_id", eventID.String()),
				"click event already processed")
		}
		return nil
	}

	row := ClickRow{
		EventID:   eventID.String(),
		DealID:    click.DealID.String(),
		DealKind:  click.DealKind,
		Referrer:  click.Referrer,
		UserAgent: click.UserAgent,
		ClientIP:  click.ClientIP,
		ClickedAt: click.ClickedAt,
	}
	if click.CompanyID != nil {
		row.CompanyID = click.CompanyID.String()
	}

	if err := c.sink.InsertRows(ctx, c.table, []any{row}); err != nil {
		// Unmark so the redelivery is not mistaken for a duplicate.
		_ = c.dedupe.Delete(ctx, AnalyticsConsumerName, eventID)
		return fmt.Errorf("insert click row: %w", err)
	}

	if c.logg != nil {
		logCtx := c.logg.WithFields(ctx, map[string]any{
			"event_id":  eventID.String(),
			"deal_id":   click.DealID.String(),
			"deal_kind": click.DealKind,
		})
		c.logg.Info(logCtx, "click event recorded")
	}
	return nil
}
