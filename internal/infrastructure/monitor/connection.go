package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Prober performs one connectivity check.
type Prober interface {
	Probe(ctx context.Context) (Status, error)
}

type subscriber struct {
	id uint64
	fn func(Event)
}

// Monitor polls a Prober and emits an Event on every change of Status.Connected.
// It starts in the offline state, so the first successful probe emits BecameReachable.
type Monitor struct {
	prober Prober

	status Status
	mu     sync.RWMutex

	// applyMu serializes transitions so subscribers observe events in order.
	applyMu sync.Mutex

	subsMu  sync.Mutex
	subs    []subscriber
	nextSub uint64

	interval time.Duration
	timeout  time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

// New builds a monitor that probes every interval. Each probe is bounded by timeout.
func New(prober Prober, interval, timeout time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		prober:   prober,
		interval: interval,
		timeout:  timeout,
		stopCh:   make(chan struct{}),
		logger:   logger,
	}
}

func (m *Monitor) Start() {
	go m.loop()
}

func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

// IsConnected reports the derived connectivity flag of the latest snapshot.
func (m *Monitor) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Connected()
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// Subscribe registers fn for transition events and returns a function that removes it.
// Callbacks run synchronously on the goroutine that applied the transition and must not call Report.
func (m *Monitor) Subscribe(fn func(Event)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	m.subsMu.Lock()
	m.nextSub++
	id := m.nextSub
	m.subs = append(m.subs, subscriber{id: id, fn: fn})
	m.subsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.subsMu.Lock()
			defer m.subsMu.Unlock()
			for i, s := range m.subs {
				if s.id == id {
					m.subs = append(m.subs[:i:i], m.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Refresh probes once and applies the result. A failed probe counts as offline.
func (m *Monitor) Refresh(ctx context.Context) Status {
	if ctx == nil {
		ctx = context.Background()
	}
	probeCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	var status Status
	if m.prober != nil {
		var err error
		status, err = m.prober.Probe(probeCtx)
		if err != nil {
			m.logger.Debug("connectivity probe failed", zap.Error(err))
			status = Status{LastError: err.Error()}
		}
	}
	if status.LastCheck.IsZero() {
		status.LastCheck = time.Now()
	}
	m.Report(status)
	return status
}

// Report applies a snapshot pushed by an external source.
func (m *Monitor) Report(status Status) {
	m.applyMu.Lock()
	defer m.applyMu.Unlock()

	m.mu.Lock()
	was := m.status.Connected()
	m.status = status
	m.mu.Unlock()

	now := status.Connected()
	if was == now {
		return
	}

	event := BecameUnreachable
	if now {
		event = BecameReachable
	}
	m.logger.Info("connectivity changed", zap.Stringer("event", event))
	m.notify(event)
}

func (m *Monitor) notify(event Event) {
	m.subsMu.Lock()
	subs := make([]subscriber, len(m.subs))
	copy(subs, m.subs)
	m.subsMu.Unlock()

	for _, s := range subs {
		s.fn(event)
	}
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Refresh(context.Background())
	for {
		select {
		case <-ticker.C:
			m.Refresh(context.Background())
		case <-m.stopCh:
			return
		}
	}
}
