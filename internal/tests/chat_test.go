package tests

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"riderapp/internal/config"
	"riderapp/internal/domain"
	"riderapp/internal/service"
)

var testChatConfig = config.ChatConfig{
	ActiveInterval: 10 * time.Millisecond,
	IdleInterval:   500 * time.Millisecond,
}

func newChatService(ctx context.Context, api *MockChatAPI) *service.ChatService {
	return service.NewChatService(ctx, api, testChatConfig, zap.NewNop())
}

func TestChat_SendRejectsBlankMessages(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	api := NewMockChatAPI()
	svc := newChatService(ctx, api)
	defer svc.CloseAll()

	testCases := []string{"", "   ", "\t\n"}
	for _, text := range testCases {
		if _, err := svc.Send(ctx, "ride-1", text); !errors.Is(err, service.ErrEmptyMessage) {
			t.Errorf("Send(%q): expected ErrEmptyMessage, got %v", text, err)
		}
	}
	if api.SendCallCount != 0 {
		t.Errorf("expected no network calls for blank messages, got %d", api.SendCallCount)
	}
}

func TestChat_SendAppearsImmediately(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	api := NewMockChatAPI()
	svc := newChatService(ctx, api)
	defer svc.CloseAll()

	msg, err := svc.Send(ctx, "ride-1", "  on my way  ")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if msg.Message != "on my way" {
		t.Errorf("expected trimmed message, got %q", msg.Message)
	}
	if msg.FromType != domain.ChatSenderUser {
		t.Errorf("expected sender user, got %s", msg.FromType)
	}

	thread := svc.Messages("ride-1")
	if len(thread) == 0 || thread[len(thread)-1].Message != "on my way" {
		t.Error("expected the sent message in the local thread without waiting for a poll")
	}
}

func TestChat_PollPicksUpDriverMessages(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	api := NewMockChatAPI()
	svc := newChatService(ctx, api)
	defer svc.CloseAll()

	svc.SetActive("ride-1", true)
	api.SetThread([]domain.ChatMessage{
		{FromType: domain.ChatSenderDriver, Message: "arriving in 2 mins"},
	})

	if !waitFor(time.Second, func() bool {
		thread := svc.Messages("ride-1")
		return len(thread) == 1 && thread[0].FromType == domain.ChatSenderDriver
	}) {
		t.Fatal("expected the driver message to arrive via polling")
	}
}

func TestChat_ForegroundPollsFaster(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	api := NewMockChatAPI()
	svc := newChatService(ctx, api)
	defer svc.CloseAll()

	// Backgrounded: the long idle interval allows at most the initial poll.
	svc.Open("ride-1")
	time.Sleep(100 * time.Millisecond)
	idlePolls := atomic.LoadInt32(&api.PollCallCount)
	if idlePolls > 2 {
		t.Errorf("expected at most 2 idle polls, got %d", idlePolls)
	}

	// Foregrounded: the active cadence is an order of magnitude faster.
	svc.SetActive("ride-1", true)
	time.Sleep(100 * time.Millisecond)
	activePolls := atomic.LoadInt32(&api.PollCallCount) - idlePolls
	if activePolls < 4 {
		t.Errorf("expected frequent polls in the foreground, got %d", activePolls)
	}
}
