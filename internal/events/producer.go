// Package events publishes order lifecycle events to Kafka. Publishing is
// best-effort: a failed publish is logged and the order flow carries on
// (eventual consistency; downstream consumers reconcile).
package events

import (
	"encoding/json"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const topic = "order-events"

const (
	TypeOrderCreated  = "order.created"
	TypeOrderCanceled = "order.canceled"
)

type OrderEvent struct {
	EventID   string    `json:"event_id"`
	Type      string    `json:"type"`
	OrderID   string    `json:"order_id"`
	Total     float64   `json:"total"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type Producer struct {
	producer *kafka.Producer
	logger   *zap.Logger
}

// NewProducer returns a disabled producer when no brokers are configured.
func NewProducer(brokers string, logger *zap.Logger) (*Producer, error) {
	if brokers == "" {
		return &Producer{logger: logger}, nil
	}

	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": brokers,
		"acks":              "all",
		"retries":           10,
	})
	if err != nil {
		return nil, err
	}

	producer := &Producer{producer: p, logger: logger}

	go func() {
		for e := range p.Events() {
			if msg, ok := e.(*kafka.Message); ok && msg.TopicPartition.Error != nil {
				logger.Error("event delivery failed",
					zap.String("key", string(msg.Key)),
					zap.Error(msg.TopicPartition.Error))
			}
		}
	}()

	return producer, nil
}

func (p *Producer) PublishOrderCreated(orderID string, total float64, status string) {
	p.publish(OrderEvent{
		EventID:   uuid.NewString(),
		Type:      TypeOrderCreated,
		OrderID:   orderID,
		Total:     total,
		Status:    status,
		Timestamp: time.Now(),
	})
}

func (p *Producer) PublishOrderCanceled(orderID string) {
	p.publish(OrderEvent{
		EventID:   uuid.NewString(),
		Type:      TypeOrderCanceled,
		OrderID:   orderID,
		Status:    "canceled",
		Timestamp: time.Now(),
	})
}

func (p *Producer) publish(event OrderEvent) {
	if p == nil || p.producer == nil {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("event marshal failed",
			zap.String("type", event.Type),
			zap.String("order_id", event.OrderID),
			zap.Error(err))
		return
	}

	topicName := topic
	err = p.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{
			Topic:     &topicName,
			Partition: kafka.PartitionAny,
		},
		Key:   []byte(event.OrderID),
		Value: data,
	}, nil)
	if err != nil {
		p.logger.Error("event publish failed",
			zap.String("type", event.Type),
			zap.String("order_id", event.OrderID),
			zap.Error(err))
	}
}

func (p *Producer) Close() {
	if p == nil || p.producer == nil {
		return
	}
	p.producer.Flush(5000)
	p.producer.Close()
}
