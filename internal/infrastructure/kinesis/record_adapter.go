package kinesis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/example/tastesphere/internal/infrastructure/store"
)

const insertEvent = "INSERT"

var ErrMissingFields = errors.New("stream image is missing required event fields")

// EventHandler receives one store event encoded the way the Kafka producer
// encodes it: key is the aggregate id, value is the JSON event.
type EventHandler func(ctx context.Context, key, value []byte) error

// ConvertFromKinesisRecord converts a Kinesis record carrying a DynamoDB
// stream record into a store event. Records other than inserts yield nil.
func ConvertFromKinesisRecord(record events.KinesisEventRecord) (*store.Event, error) {
	var dynamoDBRecord events.DynamoDBEventRecord
	if err := json.Unmarshal(record.Kinesis.Data, &dynamoDBRecord); err != nil {
		return nil, fmt.Errorf("unmarshal stream record: %w", err)
	}
	return ConvertFromDynamoDBStreamRecord(dynamoDBRecord)
}

// ConvertFromDynamoDBStreamRecord converts a DynamoDB stream record read
// directly from the stream.
func ConvertFromDynamoDBStreamRecord(record events.DynamoDBEventRecord) (*store.Event, error) {
	if record.EventName != insertEvent {
		return nil, nil
	}
	return convertDynamoDBImage(record.Change.NewImage)
}

// convertDynamoDBImage maps the attributes written by DynamoEventStore.
func convertDynamoDBImage(image map[string]events.DynamoDBAttributeValue) (*store.Event, error) {
	if image == nil {
		return nil, errors.New("stream image is nil")
	}

	str := func(name string) string {
		if v, ok := image[name]; ok && v.DataType() == events.DataTypeString {
			return v.String()
		}
		return ""
	}

	event := &store.Event{
		ID:            str("id"),
		AggregateID:   str("aggregate_id"),
		AggregateType: str("aggregate_type"),
		EventType:     str("event_type"),
	}
	if data := str("data"); data != "" {
		event.Data = json.RawMessage(data)
	}
	if created := str("created_at"); created != "" {
		t, err := time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		event.Timestamp = t
	}
	if v, ok := image["version"]; ok {
		version, err := v.Integer()
		if err != nil {
			return nil, fmt.Errorf("parse version: %w", err)
		}
		event.Version = int(version)
	}

	if event.ID == "" || event.AggregateID == "" || event.EventType == "" {
		return nil, fmt.Errorf("%w: id=%q aggregate_id=%q event_type=%q",
			ErrMissingFields, event.ID, event.AggregateID, event.EventType)
	}
	return event, nil
}

// BatchConvertFromKinesisEvent converts all records of a batch, collecting
// per-record errors.
func BatchConvertFromKinesisEvent(kinesisEvent events.KinesisEvent) ([]*store.Event, []error) {
	var converted []*store.Event
	var errs []error

	for _, record := range kinesisEvent.Records {
		event, err := ConvertFromKinesisRecord(record)
		if err != nil {
			errs = append(errs, fmt.Errorf("record %s: %w", record.EventID, err))
			continue
		}
		if event != nil {
			converted = append(converted, event)
		}
	}
	return converted, errs
}

// Process hands every insert in the batch to handler and reports failed
// records as batch item failures, so Lambda retries only those. Records
// that cannot be decoded are logged and dropped since retrying them cannot
// help.
func Process(ctx context.Context, kinesisEvent events.KinesisEvent, handler EventHandler) events.KinesisEventResponse {
	logger := slog.Default().With("component", "kinesis")
	var resp events.KinesisEventResponse

	for _, record := range kinesisEvent.Records {
		event, err := ConvertFromKinesisRecord(record)
		if err != nil {
			logger.Error("dropping undecodable record", "event_id", record.EventID, "error", err)
			continue
		}
		if event == nil {
			continue
		}

		value, err := json.Marshal(event)
		if err != nil {
			logger.Error("dropping unencodable event", "event_id", event.ID, "error", err)
			continue
		}
		if err := handler(ctx, []byte(event.AggregateID), value); err != nil {
			logger.Warn("handler failed", "event_id", event.ID, "event_type", event.EventType, "error", err)
			resp.BatchItemFailures = append(resp.BatchItemFailures, events.KinesisBatchItemFailure{
				ItemIdentifier: record.Kinesis.SequenceNumber,
			})
		}
	}
	return resp
}
