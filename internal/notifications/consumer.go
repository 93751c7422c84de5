package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"stagepass/internal/shared/config"
	"stagepass/pkg/logger"

	"github.com/IBM/sarama"
)

// Consumer drains the booking receipt topic and hands each message to the
// email service.
type Consumer interface {
	Start(ctx context.Context, numWorkers int) error
	Stop() error
}

type ConsumerConfig struct {
	Brokers        []string
	GroupID        string
	Topics         []string
	SessionTimeout time.Duration
	Heartbeat      time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
}

// NewConsumerConfig derives consumer settings from the application config.
func NewConsumerConfig(cfg *config.KafkaConfig) *ConsumerConfig {
	return &ConsumerConfig{
		Brokers:        cfg.Brokers,
		GroupID:        cfg.ConsumerGroup,
		Topics:         []string{cfg.BookingTopic},
		SessionTimeout: 30 * time.Second,
		Heartbeat:      3 * time.Second,
		MaxRetries:     3,
		RetryBackoff:   time.Second,
	}
}

type kafkaConsumer struct {
	consumerGroup sarama.ConsumerGroup
	config        *ConsumerConfig
	email         EmailService
	log           *logger.Logger
	cancel        context.CancelFunc
	wg            sync.WaitGroup
}

func NewKafkaConsumer(cfg *ConsumerConfig, email EmailService) (Consumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Consumer.Group.Session.Timeout = cfg.SessionTimeout
	saramaConfig.Consumer.Group.Heartbeat.Interval = cfg.Heartbeat
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	saramaConfig.Consumer.Offsets.AutoCommit.Enable = true
	saramaConfig.Consumer.Offsets.AutoCommit.Interval = time.Second

	consumerGroup, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.GroupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return &kafkaConsumer{
		consumerGroup: consumerGroup,
		config:        cfg,
		email:         email,
		log:           logger.GetDefault(),
	}, nil
}

func (c *kafkaConsumer) Start(ctx context.Context, numWorkers int) error {
	ctx, c.cancel = context.WithCancel(ctx)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for err := range c.consumerGroup.Errors() {
			c.log.Error("consumer group error", "error", err)
		}
	}()

	for i := 0; i < numWorkers; i++ {
		c.wg.Add(1)
		go func(workerID int) {
			defer c.wg.Done()
			c.runWorker(ctx, workerID)
		}(i)
	}

	c.log.Info("email consumer workers started",
		"workers", numWorkers,
		"topics", c.config.Topics,
	)
	return nil
}

func (c *kafkaConsumer) runWorker(ctx context.Context, workerID int) {
	handler := &receiptHandler{consumer: c, workerID: workerID}
	for {
		select {
		case <-ctx.Done():
			return
		default:
			if err := c.consumerGroup.Consume(ctx, c.config.Topics, handler); err != nil {
				c.log.Error("consume error", "worker", workerID, "error", err)
				time.Sleep(time.Second)
			}
		}
	}
}

func (c *kafkaConsumer) Stop() error {
	if c.cancel != nil {
		c.cancel()
	}
	err := c.consumerGroup.Close()
	c.wg.Wait()
	if err != nil {
		return fmt.Errorf("failed to close consumer group: %w", err)
	}
	return nil
}

// receiptHandler implements sarama.ConsumerGroupHandler for one worker.
type receiptHandler struct {
	consumer *kafkaConsumer
	workerID int
}

func (h *receiptHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *receiptHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *receiptHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message := <-claim.Messages():
			if message == nil {
				return nil
			}
			if err := h.processMessage(session.Context(), message); err != nil {
				h.consumer.log.Error("failed to process receipt",
					"worker", h.workerID,
					"offset", message.Offset,
					"error", err,
				)
			}
			// Mark regardless: a receipt that exhausted its retries is not
			// worth wedging the partition over.
			session.MarkMessage(message, "")

		case <-session.Context().Done():
			return nil
		}
	}
}

func (h *receiptHandler) processMessage(ctx context.Context, message *sarama.ConsumerMessage) error {
	var email BookingEmail
	if err := json.Unmarshal(message.Value, &email); err != nil {
		return fmt.Errorf("failed to unmarshal booking email: %w", err)
	}

	email.Status = DeliveryStatusSending
	if err := h.sendWithRetry(ctx, &email); err != nil {
		email.MarkFailed(err)
		return err
	}

	email.MarkSent()
	h.consumer.log.Info("booking receipt sent",
		"worker", h.workerID,
		"booking_id", email.BookingID.String(),
		"recipient", email.RecipientEmail,
	)
	return nil
}

func (h *receiptHandler) sendWithRetry(ctx context.Context, email *BookingEmail) error {
	maxRetries := h.consumer.config.MaxRetries
	backoff := h.consumer.config.RetryBackoff

	for attempt := 0; ; attempt++ {
		err := h.consumer.email.SendBookingReceipt(ctx, email)
		if err == nil {
			return nil
		}
		if attempt == maxRetries {
			return err
		}

		delay := backoff * time.Duration(1<<attempt)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
