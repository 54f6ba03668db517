package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"ServiceSaathi/bot/chat"
	"ServiceSaathi/entity"
	"ServiceSaathi/internal/lib/sl"
)

// StatusClient reports the current status of a service request.
type StatusClient interface {
	Status(ctx context.Context, requestID string) (entity.RequestStatus, error)
}

// ApplicationStore gives the registry access to persisted applications: the
// non-terminal ones to re-register at startup, and a place to record
// terminal outcomes so rehydration converges.
type ApplicationStore interface {
	ListPendingApplications(ctx context.Context) ([]chat.PendingApplication, error)
	SetApplicationStatus(ctx context.Context, userID, requestID string, status entity.RequestStatus) error
}

type task struct {
	cancel context.CancelFunc
}

// Registry owns one background polling task per outstanding request id.
// Only Start, Stop, IsActive and Rehydrate are public; the map and its lock
// never leak.
type Registry struct {
	interval    time.Duration
	maxAttempts int
	statuses    StatusClient
	sender      chat.Sender
	store       ApplicationStore
	log         *slog.Logger

	mu    sync.Mutex
	tasks map[string]*task
}

func NewRegistry(interval time.Duration, maxAttempts int, statuses StatusClient, sender chat.Sender, store ApplicationStore, log *slog.Logger) *Registry {
	return &Registry{
		interval:    interval,
		maxAttempts: maxAttempts,
		statuses:    statuses,
		sender:      sender,
		store:       store,
		log:         log.With(sl.Module("status poller")),
		tasks:       make(map[string]*task),
	}
}

// Start registers a recurring status check for the request. A no-op if a
// task for the id already exists; Start after Stop begins a fresh cycle
// with a reset attempt counter.
func (r *Registry) Start(requestID, userID string, lang chat.Language) {
	r.mu.Lock()
	if _, exists := r.tasks[requestID]; exists {
		r.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	t := &task{cancel: cancel}
	r.tasks[requestID] = t
	r.mu.Unlock()

	r.log.With(
		slog.String("request_id", requestID),
		slog.String("user_id", userID),
	).Info("poller started")

	go r.run(ctx, t, requestID, userID, lang)
}

// Stop cancels the task for the request id, if any. Idempotent.
func (r *Registry) Stop(requestID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tasks[requestID]; ok {
		t.cancel()
		delete(r.tasks, requestID)
	}
}

// IsActive reports whether a task for the request id is registered.
func (r *Registry) IsActive(requestID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.tasks[requestID]
	return ok
}

// Rehydrate re-registers a poller for every persisted non-terminal
// application. Must run before inbound traffic is accepted.
func (r *Registry) Rehydrate(ctx context.Context) error {
	pending, err := r.store.ListPendingApplications(ctx)
	if err != nil {
		return err
	}
	for _, p := range pending {
		r.Start(p.RequestID, p.UserID, p.Language)
	}
	r.log.With(slog.Int("count", len(pending))).Info("pollers rehydrated")
	return nil
}

func (r *Registry) run(ctx context.Context, t *task, requestID, userID string, lang chat.Language) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		status, err := r.statuses.Status(ctx, requestID)
		if err != nil {
			// Transient upstream errors are swallowed within the attempt
			// budget; the user is not notified.
			r.log.With(
				slog.String("request_id", requestID),
				slog.Int("attempt", attempt),
				sl.Err(err),
			).Warn("status check failed")
			continue
		}

		if status.IsTerminal() {
			if !r.claim(requestID, t) {
				return
			}
			r.persistStatus(userID, requestID, status)
			if err := r.sender.Send(userID, chat.TextPollerFinal(lang, requestID, status)); err != nil {
				r.log.With(slog.String("request_id", requestID), sl.Err(err)).Error("sending final status")
			}
			r.log.With(
				slog.String("request_id", requestID),
				slog.String("status", string(status)),
			).Info("poller finished")
			return
		}
	}

	// Budget exhausted without a terminal status.
	if !r.claim(requestID, t) {
		return
	}
	if err := r.sender.Send(userID, chat.TextPollerTimeout(lang, requestID)); err != nil {
		r.log.With(slog.String("request_id", requestID), sl.Err(err)).Error("sending timeout notice")
	}
	r.log.With(slog.String("request_id", requestID)).Warn("poller gave up")
}

// claim atomically removes the entry, but only if it still belongs to this
// task. A tick racing Stop (or a fresh Start after Stop) loses the claim and
// must not send.
func (r *Registry) claim(requestID string, t *task) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.tasks[requestID]
	if !ok || current != t {
		return false
	}
	delete(r.tasks, requestID)
	return true
}

func (r *Registry) persistStatus(userID, requestID string, status entity.RequestStatus) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := r.store.SetApplicationStatus(ctx, userID, requestID, status); err != nil {
		r.log.With(slog.String("request_id", requestID), sl.Err(err)).Error("persisting terminal status")
	}
}
