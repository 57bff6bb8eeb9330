package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"flowbuilder/domain/events"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"go.uber.org/zap"
)

const eventSource = "flowbuilder.graph"

// EventBridgePublisher publishes domain events to an EventBridge bus so
// downstream consumers (audit, analytics) can react to graph changes
type EventBridgePublisher struct {
	client  *eventbridge.Client
	busName string
	logger  *zap.Logger
}

// NewEventBridgePublisher creates an EventBridge-backed publisher
func NewEventBridgePublisher(client *eventbridge.Client, busName string, logger *zap.Logger) *EventBridgePublisher {
	return &EventBridgePublisher{
		client:  client,
		busName: busName,
		logger:  logger,
	}
}

// Publish sends a single event
func (p *EventBridgePublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	return p.PublishBatch(ctx, []events.DomainEvent{event})
}

// PublishBatch sends multiple events in one PutEvents call. EventBridge caps
// a request at 10 entries, so larger batches are chunked.
func (p *EventBridgePublisher) PublishBatch(ctx context.Context, evts []events.DomainEvent) error {
	const maxBatch = 10

	for start := 0; start < len(evts); start += maxBatch {
		end := start + maxBatch
		if end > len(evts) {
			end = len(evts)
		}

		entries := make([]types.PutEventsRequestEntry, 0, end-start)
		for _, event := range evts[start:end] {
			detail, err := json.Marshal(event)
			if err != nil {
				p.logger.Warn("Skipping unserializable event",
					zap.String("event_type", event.GetEventType()),
					zap.Error(err),
				)
				continue
			}
			entries = append(entries, types.PutEventsRequestEntry{
				EventBusName: aws.String(p.busName),
				Source:       aws.String(eventSource),
				DetailType:   aws.String(event.GetEventType()),
				Detail:       aws.String(string(detail)),
			})
		}
		if len(entries) == 0 {
			continue
		}

		out, err := p.client.PutEvents(ctx, &eventbridge.PutEventsInput{Entries: entries})
		if err != nil {
			return fmt.Errorf("failed to publish events: %w", err)
		}
		if out.FailedEntryCount > 0 {
			p.logger.Warn("Some events failed to publish",
				zap.Int32("failed", out.FailedEntryCount),
				zap.Int("total", len(entries)),
			)
		}
	}

	return nil
}

// NoopPublisher drops events, for development without AWS
type NoopPublisher struct{}

// Publish implements the publisher interface
func (NoopPublisher) Publish(ctx context.Context, event events.DomainEvent) error { return nil }

// PublishBatch implements the publisher interface
func (NoopPublisher) PublishBatch(ctx context.Context, evts []events.DomainEvent) error { return nil }
