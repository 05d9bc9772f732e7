// Package eventsvc publishes domain events.
package eventsvc

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"

	"github.com/trezcool/courseware/core"
)

type KafkaPublisher struct {
	writer *kafka.Writer
}

var _ core.EventPublisher = (*KafkaPublisher)(nil)

func NewKafkaPublisher(conf core.KafkaConfig) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(conf.Brokers...),
			Topic:        conf.Topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
	}
}

// Publish writes events keyed by their resource id so that events of one resource stay ordered.
func (p *KafkaPublisher) Publish(ctx context.Context, events ...core.Event) error {
	msgs, err := encodeEvents(events)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		return nil
	}
	return errors.Wrap(p.writer.WriteMessages(ctx, msgs...), "writing events")
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func encodeEvents(events []core.Event) ([]kafka.Message, error) {
	msgs := make([]kafka.Message, 0, len(events))
	for _, evt := range events {
		data, err := json.Marshal(evt)
		if err != nil {
			return nil, errors.Wrapf(err, "encoding %s event", evt.Type)
		}
		msgs = append(msgs, kafka.Message{
			Key:     []byte(evt.Key),
			Value:   data,
			Time:    evt.OccurredAt,
			Headers: []kafka.Header{{Key: "type", Value: []byte(evt.Type)}},
		})
	}
	return msgs, nil
}
