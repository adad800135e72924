package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/njeri/storefront-api/models"
	"github.com/njeri/storefront-api/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/segmentio/kafka-go"
	"gorm.io/gorm"
)

const (
	defaultPollInterval = time.Second
	defaultBatchSize    = 100
)

var outboxDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "storefront_outbox_deliveries_total",
	Help: "Total number of outbox delivery attempts grouped by result.",
}, []string{"event_type", "result"})

// BroadcastPublisher pushes a payload to subscribers of a topic.
type BroadcastPublisher interface {
	Publish(ctx context.Context, key string, payload []byte) error
}

// Mailer sends the order confirmation email.
type Mailer interface {
	OrderReceived(orderID uint, email, name string) error
}

// WebhookSender forwards an order event to an external endpoint.
type WebhookSender interface {
	Send(payload []byte) error
}

// OutboxPoller drains pending outbox events on a ticker and delivers them.
// An event is marked processed only after successful delivery, so delivery is
// at least once; failed events are retried on the next tick.
type OutboxPoller struct {
	db        *gorm.DB
	tick      time.Duration
	batchSize int
	broadcast BroadcastPublisher
	mailer    Mailer
	webhook   WebhookSender
}

func NewOutboxPoller(db *gorm.DB, broadcast BroadcastPublisher, mailer Mailer, webhook WebhookSender) *OutboxPoller {
	return &OutboxPoller{
		db:        db,
		tick:      defaultPollInterval,
		batchSize: defaultBatchSize,
		broadcast: broadcast,
		mailer:    mailer,
		webhook:   webhook,
	}
}

func (p *OutboxPoller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.tick)
	defer ticker.Stop()

	p.ProcessOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.ProcessOnce(ctx)
		}
	}
}

// ProcessOnce runs a single polling cycle.
func (p *OutboxPoller) ProcessOnce(ctx context.Context) {
	var events []models.OutboxEvent
	err := p.db.Where("processed = ?", false).Order("id").Limit(p.batchSize).Find(&events).Error
	if err != nil {
		log.Printf("failed to fetch outbox events: %v", err)
		return
	}

	for _, event := range events {
		if ctx.Err() != nil {
			return
		}

		if err := p.dispatch(ctx, event); err != nil {
			log.Printf("failed to deliver event id = %v type = %s: %v", event.ID, event.EventType, err)
			outboxDeliveries.WithLabelValues(event.EventType, "failed").Inc()
			continue
		}
		outboxDeliveries.WithLabelValues(event.EventType, "sent").Inc()

		now := time.Now()
		err := p.db.Model(&models.OutboxEvent{}).
			Where("id = ?", event.ID).
			Updates(map[string]any{"processed": true, "processed_at": &now}).Error
		if err != nil {
			log.Printf("failed to mark event id = %v as processed: %v", event.ID, err)
		}
	}
}

func (p *OutboxPoller) dispatch(ctx context.Context, event models.OutboxEvent) error {
	switch event.EventType {
	case models.EventProductsUpdated:
		return p.broadcast.Publish(ctx, "products", event.Payload)

	case models.EventOrderReceived:
		var payload struct {
			OrderId uint   `json:"orderId"`
			Email   string `json:"email"`
			Name    string `json:"name"`
		}
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return fmt.Errorf("failed to unmarshal order payload: %w", err)
		}
		if err := p.mailer.OrderReceived(payload.OrderId, payload.Email, payload.Name); err != nil {
			return err
		}
		if p.webhook != nil {
			if err := p.webhook.Send(event.Payload); err != nil {
				return err
			}
		}
		return nil

	default:
		// Unknown events are dropped rather than retried forever.
		log.Printf("skipping outbox event id = %v with unknown type %q", event.ID, event.EventType)
		return nil
	}
}

// KafkaBroadcast publishes fragments to a Kafka topic.
type KafkaBroadcast struct {
	writer *kafka.Writer
}

func NewKafkaBroadcast(brokers []string, topic string) *KafkaBroadcast {
	return &KafkaBroadcast{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.LeastBytes{},
			AllowAutoTopicCreation: true,
		},
	}
}

func (k *KafkaBroadcast) Publish(ctx context.Context, key string, payload []byte) error {
	return k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: payload,
	})
}

// SMTPMailer delivers the confirmation email through the shared mail helper.
type SMTPMailer struct {
	templatePath string
}

func NewSMTPMailer(templatePath string) *SMTPMailer {
	return &SMTPMailer{templatePath: templatePath}
}

func (m *SMTPMailer) OrderReceived(orderID uint, email, name string) error {
	data := utils.EmailData{
		Name:    name,
		OrderID: orderID,
		Message: fmt.Sprintf("Your order #%d has been received.", orderID),
	}
	return utils.SendEmail(email, "Thank you for your order", data, m.templatePath)
}

// RestyWebhook posts order events to a configured endpoint.
type RestyWebhook struct {
	url    string
	client *resty.Client
}

func NewRestyWebhook(url string) *RestyWebhook {
	return &RestyWebhook{
		url:    url,
		client: resty.New().SetTimeout(10 * time.Second),
	}
}

func (w *RestyWebhook) Send(payload []byte) error {
	resp, err := w.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(w.url)
	if err != nil {
		return err
	}
	if resp.StatusCode() >= http.StatusMultipleChoices {
		return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}
	return nil
}
