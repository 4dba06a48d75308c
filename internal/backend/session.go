package backend

import (
	"context"
	"sync"
	"time"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"
)

// EventsReadyMsg wakes the UI after events were pushed to the inbox.
type EventsReadyMsg struct{}

// Sender can receive messages (matches *tea.Program).
type Sender interface {
	Send(msg tea.Msg)
}

// DialFunc establishes a mixnet session.
type DialFunc func(ctx context.Context) (Session, error)

// Manager owns the mixnet connection lifecycle. It makes exactly one
// connection attempt, relays session events into its inbox and exposes the
// outbound request slot once the session is ready.
type Manager struct {
	dial           DialFunc
	connectTimeout time.Duration
	log            *zap.Logger

	inbox *Queue[SessionEvent]
	slot  RequestSlot

	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
	wg     sync.WaitGroup

	mu     sync.Mutex
	status ConnectionStatus
	sender Sender
}

// NewManager creates a manager that will connect with dial. A zero
// connectTimeout leaves the handshake unbounded.
func NewManager(dial DialFunc, connectTimeout time.Duration, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		dial:           dial,
		connectTimeout: connectTimeout,
		log:            log,
		inbox:          NewQueue[SessionEvent](),
		ctx:            ctx,
		cancel:         cancel,
	}
}

// SetSender registers where wake-ups go (usually the running program).
func (m *Manager) SetSender(s Sender) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sender = s
}

// Inbox is the queue of events for the browser state.
func (m *Manager) Inbox() *Queue[SessionEvent] { return m.inbox }

// Requests is the outbound slot; it rejects requests until connected.
func (m *Manager) Requests() *RequestSlot { return &m.slot }

// Status returns the current connection status.
func (m *Manager) Status() ConnectionStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Init starts the single connection attempt. Later calls do nothing.
// It never blocks and is meant to be called from the UI goroutine, so the
// first event is queued without a wake-up; the caller drains it itself.
func (m *Manager) Init() {
	m.once.Do(func() {
		connecting := ConnectionStatus{State: Connecting}
		m.setStatus(connecting)
		_ = m.inbox.Push(StatusChanged{Status: connecting})

		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			m.run()
		}()
	})
}

// Close stops the session and waits for its goroutines.
func (m *Manager) Close() {
	m.cancel()
	m.wg.Wait()
}

func (m *Manager) run() {
	ctx := m.ctx
	if m.connectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.connectTimeout)
		defer cancel()
	}

	m.log.Info("connecting to mixnet")
	session, err := m.dial(ctx)
	if err != nil {
		// No retry: the status stays Failed until restart.
		m.log.Error("mixnet connection failed", zap.Error(err))
		failed := ConnectionStatus{State: Failed, Reason: err.Error()}
		m.setStatus(failed)
		m.emit(StatusChanged{Status: failed})
		return
	}
	defer session.Close()

	addr := session.LocalAddress()
	requests := NewQueue[NavigationRequest]()
	m.slot.Set(requests)

	connected := ConnectionStatus{State: Connected}
	m.setStatus(connected)
	m.emit(StatusChanged{Status: connected, LocalAddress: addr})
	m.log.Info("connected to mixnet", zap.String("address", addr))

	bridge := NewBridge(session, requests, m.emit, m.log.Named("bridge"))
	_ = bridge.Run(m.ctx)
	requests.Close()
}

func (m *Manager) setStatus(s ConnectionStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = s
}

func (m *Manager) emit(ev SessionEvent) {
	if err := m.inbox.Push(ev); err != nil {
		m.log.Warn("dropping session event", zap.Error(err))
		return
	}
	m.mu.Lock()
	sender := m.sender
	m.mu.Unlock()
	if sender != nil {
		sender.Send(EventsReadyMsg{})
	}
}
