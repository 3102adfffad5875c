package core

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/JonMunkholm/tcm/internal/importer"
	"github.com/JonMunkholm/tcm/internal/metrics"
	"github.com/JonMunkholm/tcm/internal/store"
)

// DefaultResultRetention is how long a finished job stays queryable.
const DefaultResultRetention = 5 * time.Minute

// Options tunes a Service. Zero values select the defaults.
type Options struct {
	MaxConcurrentImports int
	ImportWaitTime       time.Duration
	ImportTimeout        time.Duration // 0 lets a job run until all rows are done
	ResultRetention      time.Duration

	Metrics *metrics.Metrics // nil disables metrics
	Logger  *slog.Logger
}

// Service provides the core business logic of the test-case manager.
type Service struct {
	store   store.Store
	opts    Options
	logger  *slog.Logger
	limiter *ImportLimiter

	mu      sync.RWMutex
	imports map[string]*activeImport
}

var _ importer.Gateway = (*Service)(nil)

type activeImport struct {
	ID       string
	FileName string
	Cancel   context.CancelFunc
	Done     chan struct{}

	// mu guards Progress, Result and Listeners.
	mu        sync.Mutex
	Progress  ImportProgress
	Result    *ImportResult
	Listeners []chan ImportProgress
}

// NewService creates a Service over st.
func NewService(st store.Store, opts Options) *Service {
	if opts.ResultRetention <= 0 {
		opts.ResultRetention = DefaultResultRetention
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Service{
		store:   st,
		opts:    opts,
		logger:  opts.Logger,
		limiter: NewImportLimiter(opts.MaxConcurrentImports, opts.ImportWaitTime),
		imports: make(map[string]*activeImport),
	}
}

// Ping checks that the store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// LimiterStatus reports the import limiter state.
func (s *Service) LimiterStatus() ImportLimiterStatus {
	return s.limiter.Status()
}

// WaitForImports blocks until running imports finish or ctx is done.
func (s *Service) WaitForImports(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// update applies fn to the job's progress and sends the new state to all
// listeners. Slow listeners miss intermediate updates.
func (imp *activeImport) update(fn func(*ImportProgress)) {
	imp.mu.Lock()
	defer imp.mu.Unlock()

	fn(&imp.Progress)
	for _, ch := range imp.Listeners {
		select {
		case ch <- imp.Progress:
		default:
		}
	}
}

// finish records the result, closes every listener and releases waiters.
func (imp *activeImport) finish(res *ImportResult) {
	imp.mu.Lock()
	imp.Result = res
	for _, ch := range imp.Listeners {
		close(ch)
	}
	imp.Listeners = nil
	imp.mu.Unlock()

	close(imp.Done)
}

func (imp *activeImport) snapshot() ImportProgress {
	imp.mu.Lock()
	defer imp.mu.Unlock()
	return imp.Progress
}

// cleanup removes the import from tracking after a delay.
func (s *Service) cleanup(importID string, delay time.Duration) {
	time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.imports, importID)
		s.mu.Unlock()
	})
}

func (s *Service) lookup(importID string) (*activeImport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	imp, ok := s.imports[importID]
	return imp, ok
}
