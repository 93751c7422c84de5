package notifications

import (
	"context"
	"fmt"
	"time"

	"stagepass/internal/shared/config"
	"stagepass/pkg/logger"

	"github.com/IBM/sarama"
)

// Producer publishes booking receipts for asynchronous email delivery.
type Producer interface {
	PublishBookingEmail(ctx context.Context, email *BookingEmail) error
	Close() error
}

// ProducerConfig contains tuning for the Kafka receipt producer.
type ProducerConfig struct {
	Brokers         []string
	Topic           string
	RetryMax        int
	Timeout         time.Duration
	MaxMessageBytes int
}

// NewProducerConfig derives producer settings from the application config.
func NewProducerConfig(cfg *config.KafkaConfig) *ProducerConfig {
	return &ProducerConfig{
		Brokers:         cfg.Brokers,
		Topic:           cfg.BookingTopic,
		RetryMax:        3,
		Timeout:         10 * time.Second,
		MaxMessageBytes: 1000000,
	}
}

type kafkaProducer struct {
	producer sarama.SyncProducer
	config   *ProducerConfig
	log      *logger.Logger
}

// NewKafkaProducer creates a synchronous, idempotent Kafka producer for
// booking receipts.
func NewKafkaProducer(cfg *ProducerConfig) (Producer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Compression = sarama.CompressionSnappy
	saramaConfig.Producer.Retry.Max = cfg.RetryMax
	saramaConfig.Producer.Timeout = cfg.Timeout
	saramaConfig.Producer.Idempotent = true
	saramaConfig.Producer.MaxMessageBytes = cfg.MaxMessageBytes
	saramaConfig.Net.MaxOpenRequests = 1

	// Hash partitioner keeps one recipient's receipts on one partition.
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return &kafkaProducer{
		producer: producer,
		config:   cfg,
		log:      logger.GetDefault(),
	}, nil
}

func (p *kafkaProducer) PublishBookingEmail(ctx context.Context, email *BookingEmail) error {
	email.Status = DeliveryStatusQueued
	email.UpdatedAt = time.Now()

	payload, err := email.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal booking email: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.config.Topic,
		Key:   sarama.StringEncoder(email.PartitionKey()),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("notification_id"), Value: []byte(email.ID.String())},
			{Key: []byte("booking_id"), Value: []byte(email.BookingID.String())},
			{Key: []byte("recipient_email"), Value: []byte(email.RecipientEmail)},
			{Key: []byte("created_at"), Value: []byte(email.CreatedAt.Format(time.RFC3339))},
		},
		Timestamp: email.CreatedAt,
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		email.MarkFailed(err)
		return fmt.Errorf("failed to publish booking email: %w", err)
	}

	p.log.Info("booking receipt queued",
		"topic", p.config.Topic,
		"partition", partition,
		"offset", offset,
		"booking_id", email.BookingID.String(),
	)
	return nil
}

func (p *kafkaProducer) Close() error {
	if p.producer != nil {
		if err := p.producer.Close(); err != nil {
			return fmt.Errorf("failed to close kafka producer: %w", err)
		}
	}
	return nil
}
