package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"cinebook/internal/realtime"
	"cinebook/pkg/logger"
)

// Consumer drains the notification topic and forwards each message to
// the realtime publisher so connected clients receive it immediately.
type Consumer interface {
	Start(ctx context.Context) error
	Stop() error
}

type ConsumerConfig struct {
	Brokers        []string
	GroupID        string
	Topic          string
	SessionTimeout time.Duration
	Heartbeat      time.Duration
	OffsetOldest   bool
}

func DefaultConsumerConfig(brokers []string, groupID, topic string) *ConsumerConfig {
	return &ConsumerConfig{
		Brokers:        brokers,
		GroupID:        groupID,
		Topic:          topic,
		SessionTimeout: 30 * time.Second,
		Heartbeat:      3 * time.Second,
		OffsetOldest:   false,
	}
}

type kafkaConsumer struct {
	group     sarama.ConsumerGroup
	config    *ConsumerConfig
	publisher realtime.Publisher
	log       *logger.Logger
	cancel    context.CancelFunc
}

func NewKafkaConsumer(config *ConsumerConfig, publisher realtime.Publisher, log *logger.Logger) (Consumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Consumer.Group.Session.Timeout = config.SessionTimeout
	saramaConfig.Consumer.Group.Heartbeat.Interval = config.Heartbeat
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Consumer.Offsets.AutoCommit.Enable = true
	saramaConfig.Consumer.Offsets.AutoCommit.Interval = time.Second
	if config.OffsetOldest {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	}

	group, err := sarama.NewConsumerGroup(config.Brokers, config.GroupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return &kafkaConsumer{
		group:     group,
		config:    config,
		publisher: publisher,
		log:       log,
	}, nil
}

func (kc *kafkaConsumer) Start(ctx context.Context) error {
	ctx, kc.cancel = context.WithCancel(ctx)

	go func() {
		for err := range kc.group.Errors() {
			kc.log.ErrorWithContext(ctx, "notification consumer error", err, nil)
		}
	}()

	go func() {
		handler := &consumerGroupHandler{publisher: kc.publisher, log: kc.log}
		for {
			if err := kc.group.Consume(ctx, []string{kc.config.Topic}, handler); err != nil {
				kc.log.ErrorWithContext(ctx, "notification consume loop failed", err, nil)
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()

	return nil
}

func (kc *kafkaConsumer) Stop() error {
	if kc.cancel != nil {
		kc.cancel()
	}
	return kc.group.Close()
}

type consumerGroupHandler struct {
	publisher realtime.Publisher
	log       *logger.Logger
}

func (h *consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *consumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		notification, err := FromJSON(message.Value)
		if err != nil {
			h.log.ErrorWithContext(session.Context(), "failed to decode notification message", err, map[string]interface{}{
				"topic":     message.Topic,
				"partition": message.Partition,
				"offset":    message.Offset,
			})
			session.MarkMessage(message, "")
			continue
		}

		// Delivery is best effort. A failed push is logged and the
		// offset still advances so one bad message cannot wedge the
		// partition.
		if err := h.publisher.PublishNotification(session.Context(), notification.UserID, notification); err != nil {
			h.log.ErrorWithContext(session.Context(), "failed to deliver notification", err, map[string]interface{}{
				"notification_id": notification.ID.String(),
				"user_id":         notification.UserID.String(),
			})
		}

		session.MarkMessage(message, "")
	}
	return nil
}
