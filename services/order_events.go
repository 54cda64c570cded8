package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yeremiapane/tastehub/models"
	"github.com/yeremiapane/tastehub/utils"
)

const (
	EventOrderCreated = "OrderCreated"
	EventOrderUpdated = "OrderUpdated"

	DefaultOrderTopic = "tastehub.orders"
	eventProducer     = "tastehub-api"
)

type OrderEvent struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id"`
	Payload       json.RawMessage `json:"payload"`
}

type OrderEventPayload struct {
	OrderID       string               `json:"order_id"`
	TableNumber   string               `json:"table_number"`
	TotalAmount   decimal.Decimal      `json:"total_amount"`
	PaymentMethod models.PaymentMethod `json:"payment_method"`
	PaymentStatus models.PaymentStatus `json:"payment_status"`
	OrderStatus   models.OrderStatus   `json:"order_status"`
	ItemCount     int                  `json:"item_count"`
}

// MessageWriter is the part of kafka.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// OrderEventPublisher forwards repository changes to Kafka from a background
// loop, keyed by order id so events of one order keep their order.
// A full buffer drops the event instead of blocking the request.
type OrderEventPublisher struct {
	w     MessageWriter
	inbox chan kafka.Message
	stop  chan struct{}
	done  chan struct{}

	mu      sync.RWMutex
	started bool
	closed  bool
}

func NewKafkaOrderPublisher(brokers []string, topic string, buf int) *OrderEventPublisher {
	if topic == "" {
		topic = DefaultOrderTopic
	}
	return NewOrderEventPublisher(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
	}, buf)
}

func NewOrderEventPublisher(w MessageWriter, buf int) *OrderEventPublisher {
	if buf <= 0 {
		buf = 256
	}
	return &OrderEventPublisher{
		w:     w,
		inbox: make(chan kafka.Message, buf),
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
}

func (p *OrderEventPublisher) Start(ctx context.Context) {
	p.mu.Lock()
	p.started = true
	p.mu.Unlock()

	go func() {
		defer close(p.done)
		for {
			select {
			case <-ctx.Done():
				p.drain()
				return
			case <-p.stop:
				p.drain()
				return
			case m := <-p.inbox:
				p.write(m)
			}
		}
	}()
}

func (p *OrderEventPublisher) write(m kafka.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := p.w.WriteMessages(ctx, m); err != nil {
		utils.ErrorLogger.WithField("key", string(m.Key)).Errorf("Kafka publish failed: %v", err)
	}
}

func (p *OrderEventPublisher) drain() {
	for {
		select {
		case m := <-p.inbox:
			p.write(m)
		default:
			if err := p.w.Close(); err != nil {
				utils.ErrorLogger.Errorf("Kafka writer close: %v", err)
			}
			return
		}
	}
}

func (p *OrderEventPublisher) OrderChanged(_ context.Context, order models.Order, change models.ChangeType) {
	eventType := EventOrderUpdated
	if change == models.ChangeCreated {
		eventType = EventOrderCreated
	}

	payload, err := json.Marshal(OrderEventPayload{
		OrderID:       order.ID,
		TableNumber:   order.TableNumber,
		TotalAmount:   order.TotalAmount,
		PaymentMethod: order.PaymentMethod,
		PaymentStatus: order.PaymentStatus,
		OrderStatus:   order.OrderStatus,
		ItemCount:     len(order.Items),
	})
	if err != nil {
		utils.ErrorLogger.Errorf("Encode order event: %v", err)
		return
	}
	value, err := json.Marshal(OrderEvent{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    order.UpdatedAt,
		Producer:      eventProducer,
		CorrelationID: order.ID,
		Payload:       payload,
	})
	if err != nil {
		utils.ErrorLogger.Errorf("Encode order event: %v", err)
		return
	}

	msg := kafka.Message{
		Key:     []byte(order.ID),
		Value:   value,
		Time:    time.Now(),
		Headers: []kafka.Header{{Key: "event_type", Value: []byte(eventType)}},
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return
	}
	select {
	case p.inbox <- msg:
	default:
		utils.ErrorLogger.WithFields(logrus.Fields{
			"order_id":   order.ID,
			"event_type": eventType,
		}).Warn("Order event buffer full, event dropped")
	}
}

// Close stops accepting events, flushes the buffer and waits for the loop.
func (p *OrderEventPublisher) Close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.stop)
	}
	started := p.started
	p.mu.Unlock()

	if started {
		<-p.done
	}
}
