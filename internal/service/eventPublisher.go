package service

import (
	"context"
	"fmt"
	"time"

	"github.com/AirTechNEO/coworkconnect/internal/entity"
	"github.com/AirTechNEO/coworkconnect/pkg/kafka"
	"github.com/AirTechNEO/coworkconnect/pkg/rabbitmq"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

type kafkaEventPublisher struct {
	producer kafka.Producer
}

func NewKafkaEventPublisher(producer kafka.Producer) EventPublisher {
	return &kafkaEventPublisher{producer: producer}
}

// Publish keys messages by booking so that the events of one booking stay ordered
func (p *kafkaEventPublisher) Publish(ctx context.Context, event *entity.BookingEvent) error {
	return p.producer.SendMessage(ctx, event.BookingID.String(), event)
}

type rabbitEventPublisher struct {
	publisher rabbitmq.Publisher
}

func NewRabbitEventPublisher(publisher rabbitmq.Publisher) EventPublisher {
	return &rabbitEventPublisher{publisher: publisher}
}

func (p *rabbitEventPublisher) Publish(ctx context.Context, event *entity.BookingEvent) error {
	return p.publisher.Publish(ctx, event)
}

type noopEventPublisher struct{}

func NewNoopEventPublisher() EventPublisher {
	return noopEventPublisher{}
}

func (noopEventPublisher) Publish(ctx context.Context, event *entity.BookingEvent) error {
	logrus.WithFields(logrus.Fields{
		"type":       event.Type,
		"booking_id": event.BookingID,
	}).Debug("Booking event dropped, no broker configured")
	return nil
}

type breakerEventPublisher struct {
	next EventPublisher
	cb   *gobreaker.CircuitBreaker
}

// WithCircuitBreaker stops calling the broker after failures consecutive errors
// and probes it again after a cool down.
func WithCircuitBreaker(next EventPublisher, name string, failures uint32) EventPublisher {
	if failures == 0 {
		failures = 5
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logrus.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker changed state")
		},
	})
	return &breakerEventPublisher{next: next, cb: cb}
}

func (p *breakerEventPublisher) Publish(ctx context.Context, event *entity.BookingEvent) error {
	_, err := p.cb.Execute(func() (interface{}, error) {
		return nil, p.next.Publish(ctx, event)
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}
	return nil
}

// changeNotifier runs the side effects of a committed ledger change.
// Failures are logged; the change itself already happened.
type changeNotifier struct {
	cache  SearchCache
	events EventPublisher
	clock  *BookingClock
}

func newChangeNotifier(cache SearchCache, events EventPublisher, clock *BookingClock) *changeNotifier {
	if events == nil {
		events = NewNoopEventPublisher()
	}
	return &changeNotifier{cache: cache, events: events, clock: clock}
}

func (n *changeNotifier) bookingChanged(ctx context.Context, t entity.BookingEventType, b *entity.Booking, capacityChanged bool) {
	log := logrus.WithFields(logrus.Fields{
		"user_id":    b.UserID,
		"room_id":    b.RoomID,
		"booking_id": b.ID,
	})

	if capacityChanged && n.cache != nil {
		if err := n.cache.InvalidateAll(ctx); err != nil {
			log.WithError(err).Error("Failed to invalidate search cache")
		}
	}

	if err := n.events.Publish(ctx, entity.NewBookingEvent(t, b, n.clock.Now())); err != nil {
		log.WithError(err).Error("Failed to publish booking event")
	}
}
