package mykafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

const writeTimeout = 5 * time.Second

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Observer is told about every publish attempt.
type Observer interface {
	ObservePublish(topic string, err error)
}

type Producer struct {
	writer   messageWriter
	observer Observer
}

func NewProducer(brokers []string, observer Observer) *Producer {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		WriteTimeout:           writeTimeout,
		AllowAutoTopicCreation: true,
	}
	return &Producer{writer: w, observer: observer}
}

// PublishEvent encodes event as JSON and writes it under key, so events of
// one entity keep their order within a partition.
func (p *Producer) PublishEvent(ctx context.Context, topic, key string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("kafka: json.Marshal failed: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now().UTC(),
	})
	if p.observer != nil {
		p.observer.ObservePublish(topic, err)
	}
	if err != nil {
		return fmt.Errorf("kafka: write to %s failed: %w", topic, err)
	}
	return nil
}

func (p *Producer) Publish(ctx context.Context, topic, key string, event any) error {
	return p.PublishEvent(ctx, topic, key, event)
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
