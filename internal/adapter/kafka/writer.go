package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/couchcryptid/river-gauge-etl/internal/config"
	"github.com/couchcryptid/river-gauge-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer publishes daily records to a Kafka topic, one message per record.
// It implements pipeline.Loader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadDaily publishes every record of the batch in a single WriteMessages
// call. Messages are keyed by station, parameter, and date so that a rerun
// overwrites the same keys on a compacted topic.
func (w *Writer) LoadDaily(ctx context.Context, batch domain.DailyBatch) error {
	if len(batch.Records) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(batch.Records))
	for i := range batch.Records {
		msg, err := serializeToMessage(batch.Records[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish %s records: %w", batch.Parameter, err)
	}
	w.logger.Info("published daily records", "topic", w.writer.Topic, "parameter", batch.Parameter, "count", len(msgs))
	return nil
}

// Close flushes pending messages and closes the producer.
func (w *Writer) Close() error {
	return w.writer.Close()
}

// messageKey renders "{station_id}|{parameter}|{date}"; the station part is
// empty when the export carried no station number.
func messageKey(r domain.DailyRecord) string {
	return stationLabel(r.StationID) + "|" + string(r.Parameter) + "|" + r.Date
}

func stationLabel(id *int32) string {
	if id == nil {
		return ""
	}
	return strconv.FormatInt(int64(*id), 10)
}

// serializeToMessage marshals a DailyRecord into a Kafka message.
func serializeToMessage(r domain.DailyRecord) (kafkago.Message, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize daily record: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(messageKey(r)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "parameter", Value: []byte(r.Parameter)},
			{Key: "station_id", Value: []byte(stationLabel(r.StationID))},
		},
	}, nil
}
