package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/IBM/sarama"
)

// Producer publishes notifications onto the broker for async delivery.
type Producer interface {
	Publish(ctx context.Context, notification *Notification) error
	PublishBatch(ctx context.Context, notifications []*Notification) error
	Close() error
}

type ProducerConfig struct {
	Brokers         []string
	Topic           string
	RetryMax        int
	Timeout         time.Duration
	MaxMessageBytes int
}

func DefaultProducerConfig(brokers []string, topic string) *ProducerConfig {
	return &ProducerConfig{
		Brokers:         brokers,
		Topic:           topic,
		RetryMax:        3,
		Timeout:         10 * time.Second,
		MaxMessageBytes: 1000000,
	}
}

type kafkaProducer struct {
	producer sarama.SyncProducer
	config   *ProducerConfig
}

func NewKafkaProducer(config *ProducerConfig) (Producer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Compression = sarama.CompressionSnappy
	saramaConfig.Producer.Retry.Max = config.RetryMax
	saramaConfig.Producer.Timeout = config.Timeout
	saramaConfig.Producer.Idempotent = true
	saramaConfig.Producer.MaxMessageBytes = config.MaxMessageBytes
	saramaConfig.Net.MaxOpenRequests = 1

	// Hash partitioner keeps each user's notifications ordered.
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(config.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return &kafkaProducer{producer: producer, config: config}, nil
}

func (kp *kafkaProducer) Publish(ctx context.Context, notification *Notification) error {
	messageBytes, err := notification.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic:     kp.config.Topic,
		Key:       sarama.StringEncoder(notification.PartitionKey()),
		Value:     sarama.ByteEncoder(messageBytes),
		Timestamp: notification.CreatedAt,
	}

	if _, _, err := kp.producer.SendMessage(message); err != nil {
		return fmt.Errorf("failed to send notification to kafka: %w", err)
	}
	return nil
}

func (kp *kafkaProducer) PublishBatch(ctx context.Context, notifications []*Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	messages := make([]*sarama.ProducerMessage, 0, len(notifications))
	for _, notification := range notifications {
		messageBytes, err := notification.ToJSON()
		if err != nil {
			return fmt.Errorf("failed to marshal notification: %w", err)
		}
		messages = append(messages, &sarama.ProducerMessage{
			Topic:     kp.config.Topic,
			Key:       sarama.StringEncoder(notification.PartitionKey()),
			Value:     sarama.ByteEncoder(messageBytes),
			Timestamp: notification.CreatedAt,
		})
	}

	if err := kp.producer.SendMessages(messages); err != nil {
		return fmt.Errorf("failed to send batch notifications to kafka: %w", err)
	}
	return nil
}

func (kp *kafkaProducer) Close() error {
	return kp.producer.Close()
}
