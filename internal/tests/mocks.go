package tests

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"riderapp/internal/domain"
	"riderapp/internal/platform"
	"riderapp/internal/redis"
	"riderapp/internal/service"
)

// ──────────────────────────────────────────────
// MOCK QUOTE API
// ──────────────────────────────────────────────

// MockQuoteAPI is a mock implementation of platform.QuoteAPI.
type MockQuoteAPI struct {
	mu sync.Mutex

	QuoteResult  *platform.QuoteResult
	RecalcResult *domain.RentalQuote
	Balance      int64

	// Counters for verification
	QuoteCallCount  int32
	RecalcCallCount int32

	// Error injection
	QuoteError   error
	RecalcError  error
	BalanceError error
}

// NewMockQuoteAPI creates a new mock quote API.
func NewMockQuoteAPI() *MockQuoteAPI {
	return &MockQuoteAPI{}
}

func (m *MockQuoteAPI) QuoteOptions(ctx context.Context, req platform.QuoteRequest) (*platform.QuoteResult, error) {
	atomic.AddInt32(&m.QuoteCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.QuoteError != nil {
		return nil, m.QuoteError
	}
	return m.QuoteResult, nil
}

func (m *MockQuoteAPI) RecalculateRental(ctx context.Context, req platform.RecalculateRentalRequest) (*domain.RentalQuote, error) {
	atomic.AddInt32(&m.RecalcCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RecalcError != nil {
		return nil, m.RecalcError
	}
	return m.RecalcResult, nil
}

func (m *MockQuoteAPI) WalletBalance(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.BalanceError != nil {
		return 0, m.BalanceError
	}
	return m.Balance, nil
}

// ──────────────────────────────────────────────
// MOCK RIDE API
// ──────────────────────────────────────────────

// MockRideAPI is a mock implementation of platform.RideAPI. Status polls
// walk StatusScript in order, repeating the last entry once exhausted.
type MockRideAPI struct {
	mu sync.Mutex

	SubmitResult *platform.SubmitRideResult
	SubmitGate   chan struct{} // when set, SubmitRide blocks until the channel closes
	StatusScript []*platform.RideStatusResult
	statusIndex  int
	DetailResult *domain.Ride
	ReasonsList  []domain.CancelReason

	// Counters for verification
	SubmitCallCount       int32
	StatusCallCount       int32
	DetailCallCount       int32
	CancelSearchCallCount int32
	CancelRideCallCount   int32

	// Error injection
	SubmitError       error
	StatusError       error
	DetailError       error
	DetailFailures    int32 // fail this many detail calls before succeeding
	CancelSearchError error
	CancelRideError   error

	LastCancelRequest platform.CancelRideRequest
}

// NewMockRideAPI creates a new mock ride API.
func NewMockRideAPI() *MockRideAPI {
	return &MockRideAPI{}
}

func (m *MockRideAPI) SubmitRide(ctx context.Context, req platform.SubmitRideRequest) (*platform.SubmitRideResult, error) {
	atomic.AddInt32(&m.SubmitCallCount, 1)
	m.mu.Lock()
	gate := m.SubmitGate
	m.mu.Unlock()
	if gate != nil {
		<-gate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SubmitError != nil {
		return nil, m.SubmitError
	}
	return m.SubmitResult, nil
}

func (m *MockRideAPI) RideStatus(ctx context.Context, rideID string) (*platform.RideStatusResult, error) {
	atomic.AddInt32(&m.StatusCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.StatusError != nil {
		return nil, m.StatusError
	}
	if len(m.StatusScript) == 0 {
		return &platform.RideStatusResult{RideID: rideID}, nil
	}
	result := m.StatusScript[m.statusIndex]
	if m.statusIndex < len(m.StatusScript)-1 {
		m.statusIndex++
	}
	return result, nil
}

func (m *MockRideAPI) RideDetail(ctx context.Context, rideID string) (*domain.Ride, error) {
	atomic.AddInt32(&m.DetailCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DetailFailures > 0 {
		m.DetailFailures--
		return nil, platform.ErrUnavailable
	}
	if m.DetailError != nil {
		return nil, m.DetailError
	}
	return m.DetailResult, nil
}

func (m *MockRideAPI) CancelSearch(ctx context.Context, rideID string) error {
	atomic.AddInt32(&m.CancelSearchCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CancelSearchError
}

func (m *MockRideAPI) CancelRide(ctx context.Context, req platform.CancelRideRequest) error {
	atomic.AddInt32(&m.CancelRideCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastCancelRequest = req
	return m.CancelRideError
}

func (m *MockRideAPI) CancelReasons(ctx context.Context, reasonType string) ([]domain.CancelReason, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ReasonsList, nil
}

// ──────────────────────────────────────────────
// MOCK CHAT API
// ──────────────────────────────────────────────

// MockChatAPI is a mock implementation of platform.ChatAPI.
type MockChatAPI struct {
	mu sync.Mutex

	Thread []domain.ChatMessage

	// Counters for verification
	PollCallCount int32
	SendCallCount int32

	// Error injection
	PollError error
	SendError error
}

// NewMockChatAPI creates a new mock chat API.
func NewMockChatAPI() *MockChatAPI {
	return &MockChatAPI{}
}

func (m *MockChatAPI) Messages(ctx context.Context, rideID string) ([]domain.ChatMessage, error) {
	atomic.AddInt32(&m.PollCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PollError != nil {
		return nil, m.PollError
	}
	out := make([]domain.ChatMessage, len(m.Thread))
	copy(out, m.Thread)
	return out, nil
}

func (m *MockChatAPI) SendMessage(ctx context.Context, rideID string, from domain.ChatSender, text string) (*domain.ChatMessage, error) {
	atomic.AddInt32(&m.SendCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SendError != nil {
		return nil, m.SendError
	}
	msg := domain.ChatMessage{FromType: from, Message: text, CreatedAt: time.Now()}
	m.Thread = append(m.Thread, msg)
	return &msg, nil
}

// SetThread replaces the server-side thread.
func (m *MockChatAPI) SetThread(messages []domain.ChatMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Thread = messages
}

// ──────────────────────────────────────────────
// MOCK REDIS STORES
// ──────────────────────────────────────────────

// MockSnapshotStore is an in-memory implementation of
// redis.SnapshotStoreInterface.
type MockSnapshotStore struct {
	mu        sync.Mutex
	snapshots map[string]*redis.CachedSnapshot

	SetError error
	GetError error
}

// NewMockSnapshotStore creates a new mock snapshot store.
func NewMockSnapshotStore() *MockSnapshotStore {
	return &MockSnapshotStore{snapshots: make(map[string]*redis.CachedSnapshot)}
}

func (m *MockSnapshotStore) Get(ctx context.Context, rideID string) (*redis.CachedSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetError != nil {
		return nil, m.GetError
	}
	snap, ok := m.snapshots[rideID]
	if !ok {
		return nil, nil
	}
	copied := *snap
	return &copied, nil
}

func (m *MockSnapshotStore) Set(ctx context.Context, snap *redis.CachedSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetError != nil {
		return m.SetError
	}
	copied := *snap
	m.snapshots[snap.RideID] = &copied
	return nil
}

func (m *MockSnapshotStore) Invalidate(ctx context.Context, rideID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snapshots, rideID)
	return nil
}

// MockLockStore is an in-memory implementation of redis.LockStoreInterface.
type MockLockStore struct {
	mu   sync.Mutex
	held map[string]bool

	// Deny makes every acquisition fail.
	Deny bool

	AcquireCallCount int32
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{held: make(map[string]bool)}
}

func (m *MockLockStore) AcquirePollLock(ctx context.Context, rideID string, ttl time.Duration) (bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Deny || m.held[rideID] {
		return false, nil
	}
	m.held[rideID] = true
	return true, nil
}

func (m *MockLockStore) ReleasePollLock(ctx context.Context, rideID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.held, rideID)
	return nil
}

// ──────────────────────────────────────────────
// MOCK TRACKING SERVICE
// ──────────────────────────────────────────────

// MockTracking is a mock implementation of service.TrackingServiceInterface
// for flows that only need to observe Start/Stop.
type MockTracking struct {
	mu sync.Mutex

	StartCallCount int32
	StopCallCount  int32
	LastStarted    string
	LastStopped    string

	Snap       *service.Snapshot
	SnapError  error
	Detail     *domain.Ride
	RefreshErr error
}

// NewMockTracking creates a new mock tracking service.
func NewMockTracking() *MockTracking {
	return &MockTracking{}
}

func (m *MockTracking) Start(rideID string, controller service.SearchController) *service.RideSession {
	atomic.AddInt32(&m.StartCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastStarted = rideID
	return nil
}

func (m *MockTracking) Stop(rideID string) {
	atomic.AddInt32(&m.StopCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastStopped = rideID
}

func (m *MockTracking) Snapshot(ctx context.Context, rideID string) (*service.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SnapError != nil {
		return nil, m.SnapError
	}
	if m.Snap == nil {
		return nil, service.ErrNoActiveRide
	}
	copied := *m.Snap
	return &copied, nil
}

func (m *MockTracking) Refresh(ctx context.Context, rideID string) (*domain.Ride, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RefreshErr != nil {
		return nil, m.RefreshErr
	}
	return m.Detail, nil
}

func (m *MockTracking) ActiveRideID() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.LastStarted, m.LastStarted != ""
}

// ──────────────────────────────────────────────
// RECORDING SEARCH CONTROLLER
// ──────────────────────────────────────────────

// RecordingController counts SearchController callbacks.
type RecordingController struct {
	AssignedCallCount  int32
	CancelledCallCount int32
}

func (c *RecordingController) OnDriverAssigned(string) {
	atomic.AddInt32(&c.AssignedCallCount, 1)
}

func (c *RecordingController) OnRideCancelled(string) {
	atomic.AddInt32(&c.CancelledCallCount, 1)
}

// ──────────────────────────────────────────────
// EVENT HELPERS
// ──────────────────────────────────────────────

// countEvents returns how many drained events have the given type.
func countEvents(events []service.Event, eventType service.EventType) int {
	n := 0
	for _, e := range events {
		if e.Type == eventType {
			n++
		}
	}
	return n
}

// waitFor polls cond until it returns true or the deadline passes.
func waitFor(timeout time.Duration, cond func() bool) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}
