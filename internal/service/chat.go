package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"riderapp/internal/config"
	"riderapp/internal/domain"
	"riderapp/internal/platform"
)

// ChatServiceInterface defines the per-ride chat operations.
type ChatServiceInterface interface {
	Open(rideID string) *ChatChannel
	Messages(rideID string) []domain.ChatMessage
	Send(ctx context.Context, rideID, text string) (*domain.ChatMessage, error)
	SetActive(rideID string, active bool)
	Close(rideID string)
}

// ChatService manages one chat channel per tracked ride.
type ChatService struct {
	mu       sync.Mutex
	channels map[string]*ChatChannel

	baseCtx context.Context
	api     platform.ChatAPI
	cfg     config.ChatConfig
	log     *zap.Logger
}

var _ ChatServiceInterface = (*ChatService)(nil)

// NewChatService creates a new ChatService. Channel poll loops inherit
// baseCtx and stop on shutdown.
func NewChatService(baseCtx context.Context, api platform.ChatAPI, cfg config.ChatConfig, log *zap.Logger) *ChatService {
	return &ChatService{
		channels: make(map[string]*ChatChannel),
		baseCtx:  baseCtx,
		api:      api,
		cfg:      cfg,
		log:      log,
	}
}

// Open returns the channel for a ride, starting its poll loop on first use.
func (s *ChatService) Open(rideID string) *ChatChannel {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ch, ok := s.channels[rideID]; ok {
		return ch
	}

	ch := newChatChannel(rideID, s.api, s.cfg, s.log)
	s.channels[rideID] = ch
	go ch.loop(s.baseCtx)
	return ch
}

// Messages returns the buffered thread for a ride.
func (s *ChatService) Messages(rideID string) []domain.ChatMessage {
	return s.Open(rideID).Thread()
}

// Send posts a rider message to a ride's thread.
func (s *ChatService) Send(ctx context.Context, rideID, text string) (*domain.ChatMessage, error) {
	return s.Open(rideID).Send(ctx, text)
}

// SetActive switches a ride's chat between the foreground and background
// cadences.
func (s *ChatService) SetActive(rideID string, active bool) {
	s.Open(rideID).SetActive(active)
}

// Close stops the channel for a ride.
func (s *ChatService) Close(rideID string) {
	s.mu.Lock()
	ch, ok := s.channels[rideID]
	if ok {
		delete(s.channels, rideID)
	}
	s.mu.Unlock()

	if ok {
		ch.stop()
	}
}

// CloseAll stops every channel. Called on shutdown.
func (s *ChatService) CloseAll() {
	s.mu.Lock()
	channels := s.channels
	s.channels = make(map[string]*ChatChannel)
	s.mu.Unlock()

	for _, ch := range channels {
		ch.stop()
	}
}

// ChatChannel polls one ride's chat thread. The cadence adapts: a thread
// the rider is looking at polls fast, a backgrounded one polls slow.
// Toggling takes effect immediately, not at the next tick.
type ChatChannel struct {
	rideID string

	mu       sync.Mutex
	messages []domain.ChatMessage
	active   bool

	wake     chan struct{}
	stopCh   chan struct{}
	stopOnce sync.Once

	api platform.ChatAPI
	cfg config.ChatConfig
	log *zap.Logger
}

func newChatChannel(rideID string, api platform.ChatAPI, cfg config.ChatConfig, log *zap.Logger) *ChatChannel {
	return &ChatChannel{
		rideID: rideID,
		wake:   make(chan struct{}, 1),
		stopCh: make(chan struct{}),
		api:    api,
		cfg:    cfg,
		log:    log,
	}
}

// Thread returns a copy of the buffered messages.
func (c *ChatChannel) Thread() []domain.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]domain.ChatMessage, len(c.messages))
	copy(out, c.messages)
	return out
}

// Send posts a rider message. Blank messages are rejected before any
// network call. The acknowledged message lands in the local thread right
// away rather than waiting for the next poll.
func (c *ChatChannel) Send(ctx context.Context, text string) (*domain.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	msg, err := c.api.SendMessage(ctx, c.rideID, domain.ChatSenderUser, text)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.messages = append(c.messages, *msg)
	c.mu.Unlock()

	c.nudge()
	return msg, nil
}

// SetActive switches between foreground and background polling.
func (c *ChatChannel) SetActive(active bool) {
	c.mu.Lock()
	changed := c.active != active
	c.active = active
	c.mu.Unlock()

	if changed {
		c.nudge()
	}
}

func (c *ChatChannel) nudge() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

func (c *ChatChannel) stop() {
	c.stopOnce.Do(func() { close(c.stopCh) })
}

func (c *ChatChannel) interval() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active {
		return c.cfg.ActiveInterval
	}
	return c.cfg.IdleInterval
}

func (c *ChatChannel) loop(ctx context.Context) {
	for {
		c.poll(ctx)

		timer := time.NewTimer(c.interval())
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-c.stopCh:
			timer.Stop()
			return
		case <-c.wake:
			timer.Stop()
		case <-timer.C:
		}
	}
}

// poll replaces the local thread with the server's. Failures keep the
// previous thread; the next tick retries.
func (c *ChatChannel) poll(ctx context.Context) {
	messages, err := c.api.Messages(ctx, c.rideID)
	if err != nil {
		c.log.Debug("chat poll failed", zap.String("ride_id", c.rideID), zap.Error(err))
		return
	}

	c.mu.Lock()
	if len(messages) >= len(c.messages) {
		c.messages = messages
	}
	c.mu.Unlock()
}
