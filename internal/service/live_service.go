package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/lynx-api/internal/dto"
	"github.com/noah-isme/lynx-api/internal/observability"
)

const (
	liveBufferSize    = 16
	livePingInterval  = 30 * time.Second
	liveMessageBoard  = "board"
	liveMessageFailed = "board.failed"
)

// EventPublisher announces changes behind a student's board.
type EventPublisher interface {
	PublishEvent(ctx context.Context, event dto.LiveEvent)
}

// EventListener reacts to every event, local or received from another node.
type EventListener func(ctx context.Context, event dto.LiveEvent)

// LiveConnectionOptions wraps metadata extracted during the HTTP upgrade.
type LiveConnectionOptions struct {
	StudentID     string
	CorrelationID string
	Context       context.Context
}

// LiveService fans submission events out to board streams on every node.
type LiveService interface {
	EventPublisher
	Subscribe(studentID string) (<-chan dto.LiveEvent, func())
	AddListener(listener EventListener)
	ServeBoard(conn *websocket.Conn, opts LiveConnectionOptions)
	Start(ctx context.Context)
}

type liveService struct {
	board       AssignmentBoardService
	redis       *redis.Client
	redisStream string
	nats        *nats.Conn
	natsSubject string
	logger      zerolog.Logger
	tracer      trace.Tracer
	broker      *liveBroker
	nodeID      string

	listenersMu sync.RWMutex
	listeners   []EventListener
}

type liveEnvelope struct {
	Source string        `json:"source"`
	Event  dto.LiveEvent `json:"event"`
	SentAt time.Time     `json:"sent_at"`
}

type liveBroker struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan dto.LiveEvent]struct{}
}

// NewLiveService constructs the live update service. Redis and NATS are optional;
// without them events stay on this node.
func NewLiveService(board AssignmentBoardService, redisClient *redis.Client, channelBase string, natsConn *nats.Conn, logger zerolog.Logger) LiveService {
	stream := ""
	subject := ""
	if channelBase != "" {
		stream = channelBase + ":submissions"
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".submissions"
	}

	return &liveService{
		board:       board,
		redis:       redisClient,
		redisStream: stream,
		nats:        natsConn,
		natsSubject: subject,
		logger:      logger.With().Str("component", "live_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/lynx-api/internal/service/live"),
		broker: &liveBroker{
			subscribers: make(map[string]map[chan dto.LiveEvent]struct{}),
		},
		nodeID: uuid.NewString(),
	}
}

func (s *liveService) Start(ctx context.Context) {
	if s.redis != nil && s.redisStream != "" {
		go s.consumeRedis(ctx)
	}
	if s.nats != nil && s.natsSubject != "" {
		go s.consumeNATS(ctx)
	}
}

func (s *liveService) AddListener(listener EventListener) {
	if listener == nil {
		return
	}
	s.listenersMu.Lock()
	s.listeners = append(s.listeners, listener)
	s.listenersMu.Unlock()
}

// PublishEvent delivers locally first; broker failures are logged, never returned.
func (s *liveService) PublishEvent(ctx context.Context, event dto.LiveEvent) {
	if strings.TrimSpace(event.StudentID) == "" {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	spanCtx, span := s.tracer.Start(ctx, "live.publish", trace.WithAttributes(
		attribute.String("live.type", event.Type),
		attribute.String("live.student_id", event.StudentID),
	))
	defer span.End()

	observability.LiveEvents().WithLabelValues("local").Inc()
	s.dispatch(spanCtx, event)

	if err := s.publish(spanCtx, event); err != nil {
		span.RecordError(err)
		s.logger.Warn().Err(err).Str("type", event.Type).Msg("failed to publish live event to broker")
	}
}

func (s *liveService) Subscribe(studentID string) (<-chan dto.LiveEvent, func()) {
	channel := make(chan dto.LiveEvent, liveBufferSize)

	s.broker.subscribe(studentID, channel)
	observability.LiveSubscribers().Inc()

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			s.broker.unsubscribe(studentID, channel)
			observability.LiveSubscribers().Dec()
		})
	}

	return channel, cleanup
}

func (s *liveService) dispatch(ctx context.Context, event dto.LiveEvent) {
	s.listenersMu.RLock()
	listeners := append([]EventListener(nil), s.listeners...)
	s.listenersMu.RUnlock()

	for _, listener := range listeners {
		listener(ctx, event)
	}

	s.broker.broadcast(event.StudentID, event)
}

func (s *liveService) publish(ctx context.Context, event dto.LiveEvent) error {
	payload, err := json.Marshal(liveEnvelope{
		Source: s.nodeID,
		Event:  event,
		SentAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	if s.redis != nil && s.redisStream != "" {
		if err := s.redis.Publish(ctx, s.redisStream, payload).Err(); err != nil {
			return err
		}
	}

	if s.nats != nil && s.natsSubject != "" {
		if err := s.nats.Publish(s.natsSubject, payload); err != nil {
			return err
		}
	}

	return nil
}

func (s *liveService) consumeRedis(ctx context.Context) {
	pubsub := s.redis.Subscribe(ctx, s.redisStream)
	defer func() { _ = pubsub.Close() }()

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return
			}
			s.logger.Error().Err(err).Msg("live redis subscription closed")
			return
		}
		s.handleEnvelope(ctx, []byte(msg.Payload), "redis")
	}
}

// consumeNATS subscribes without a queue group: every node must see every event
// because board streams are attached to a single node.
func (s *liveService) consumeNATS(ctx context.Context) {
	sub, err := s.nats.Subscribe(s.natsSubject, func(msg *nats.Msg) {
		s.handleEnvelope(ctx, msg.Data, "nats")
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to subscribe to nats live subject")
		return
	}

	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to drain live nats subscription")
		}
	}()
}

func (s *liveService) handleEnvelope(ctx context.Context, payload []byte, origin string) {
	var envelope liveEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		s.logger.Warn().Err(err).Str("origin", origin).Msg("invalid live event payload")
		return
	}

	if envelope.Source == s.nodeID {
		return
	}

	observability.LiveEvents().WithLabelValues(origin).Inc()
	s.dispatch(ctx, envelope.Event)
}

func (b *liveBroker) subscribe(studentID string, ch chan dto.LiveEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.subscribers[studentID]; !exists {
		b.subscribers[studentID] = make(map[chan dto.LiveEvent]struct{})
	}
	b.subscribers[studentID][ch] = struct{}{}
}

func (b *liveBroker) unsubscribe(studentID string, ch chan dto.LiveEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if subscribers, ok := b.subscribers[studentID]; ok {
		if _, present := subscribers[ch]; !present {
			return
		}
		delete(subscribers, ch)
		close(ch)
		if len(subscribers) == 0 {
			delete(b.subscribers, studentID)
		}
	}
}

func (b *liveBroker) broadcast(studentID string, event dto.LiveEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.subscribers[studentID] {
		select {
		case ch <- event:
		default:
		}
	}
}
