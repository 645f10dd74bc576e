package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"echoreport/internal/cache"
	"echoreport/internal/form"
	"echoreport/internal/metrics"
	"echoreport/internal/model"
	"echoreport/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	// ErrPersistence wraps any store error raised while saving a submitted
	// report. The draft is kept so the submission can be retried.
	ErrPersistence = errors.New("report could not be persisted")
)

// Option configures the services in this package.
type Option func(*options)

type options struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics enables Prometheus counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func buildOptions(opts []Option) options {
	o := options{
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// SessionService drives in-progress report forms. Each session's form state
// lives in the draft cache between requests; requests for the same session
// are serialized within this process.
type SessionService struct {
	catalogue   *form.Catalogue
	drafts      cache.DraftCache
	reports     repository.ReportRepo
	broadcaster Broadcaster
	locks       *sessionLocks
	options
}

// NewSessionService creates a new session service
func NewSessionService(catalogue *form.Catalogue, drafts cache.DraftCache, reports repository.ReportRepo, opts ...Option) *SessionService {
	return &SessionService{
		catalogue:   catalogue,
		drafts:      drafts,
		reports:     reports,
		broadcaster: noopBroadcaster{},
		locks:       newSessionLocks(),
		options:     buildOptions(opts),
	}
}

// SetBroadcaster sets the WebSocket broadcaster
func (s *SessionService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Start opens a new session with a fresh form.
func (s *SessionService) Start(ctx context.Context, clinicianID string) (*model.SessionView, error) {
	state := s.newState()
	now := s.now().UTC()
	draft := &model.Draft{
		ID:          uuid.New().String(),
		ClinicianID: clinicianID,
		Values:      userValues(state),
		StartedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.drafts.Save(ctx, draft); err != nil {
		return nil, fmt.Errorf("save draft: %w", err)
	}

	s.logger.InfoContext(ctx, "session started", "session_id", draft.ID, "clinician_id", clinicianID)
	if s.metrics != nil {
		s.metrics.IncrementSessionsStarted()
	}
	return view(draft, state), nil
}

// View returns the current values, active fields and validity of a session.
func (s *SessionService) View(ctx context.Context, id string) (*model.SessionView, error) {
	draft, state, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return view(draft, state), nil
}

// SetField writes one user value. Core errors (*form.UnknownFieldError,
// *form.ReadOnlyFieldError) are returned unwrapped.
func (s *SessionService) SetField(ctx context.Context, id, name, value string) (*model.FieldUpdate, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	draft, state, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	update := &model.FieldUpdate{SessionID: id, Changes: []model.FieldChange{}}
	cancel := state.Subscribe(func(c form.Change) {
		update.Changes = append(update.Changes, model.FieldChange(c))
	})
	err = state.Set(name, value)
	cancel()
	if err != nil {
		return nil, err
	}
	update.Active = state.ActiveFields()
	if len(update.Changes) == 0 {
		return update, nil
	}

	draft.Values = userValues(state)
	draft.UpdatedAt = s.now().UTC()
	if err := s.drafts.Save(ctx, draft); err != nil {
		return nil, fmt.Errorf("save draft: %w", err)
	}

	if s.metrics != nil {
		s.metrics.IncrementFieldEdits()
	}
	s.broadcaster.BroadcastToSession(id, MsgFieldChanged, update)
	return update, nil
}

// Submit validates the session, persists its report and closes the session.
// A validation failure is returned as *form.ValidationFailure; a store error
// wraps ErrPersistence and leaves the draft in place.
func (s *SessionService) Submit(ctx context.Context, id string) (*model.SubmitResult, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	draft, state, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if res := form.Validate(state); !res.Valid {
		s.logger.InfoContext(ctx, "submission rejected", "session_id", id, "field", res.Field)
		if s.metrics != nil {
			kind := metrics.FailureConditional
			if len(res.Missing) > 0 {
				kind = metrics.FailureRequired
			}
			s.metrics.IncrementValidationFailures(kind)
		}
		return nil, res.Err()
	}

	rec, err := s.catalogue.Mapper.Map(state)
	if err != nil {
		return nil, err
	}
	report := model.NewReport(uuid.New().String(), rec)
	report.CreatedBy = draft.ClinicianID

	if err := s.reports.Create(ctx, report); err != nil {
		s.logger.ErrorContext(ctx, "persist report failed", "session_id", id, "error", err)
		if s.metrics != nil {
			s.metrics.IncrementPersistenceFailures()
		}
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if s.metrics != nil {
		s.metrics.IncrementReportsPersisted()
	}

	if err := s.drafts.Delete(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "delete submitted draft failed", "session_id", id, "error", err)
	}

	result := &model.SubmitResult{ReportID: report.ID, SubmittedAt: report.CreatedAt}
	s.logger.InfoContext(ctx, "report submitted", "session_id", id, "report_id", report.ID)
	s.broadcaster.BroadcastToSession(id, MsgSessionSubmitted, result)
	s.broadcaster.CloseSession(id)
	return result, nil
}

// Discard drops a session without submitting it.
func (s *SessionService) Discard(ctx context.Context, id string) error {
	unlock := s.locks.lock(id)
	defer unlock()

	if _, err := s.getDraft(ctx, id); err != nil {
		return err
	}
	if err := s.drafts.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}

	s.logger.InfoContext(ctx, "session discarded", "session_id", id)
	s.broadcaster.BroadcastToSession(id, MsgSessionDiscarded, map[string]string{"sessionId": id})
	s.broadcaster.CloseSession(id)
	return nil
}

// Exists reports whether a session is open.
func (s *SessionService) Exists(ctx context.Context, id string) (bool, error) {
	_, err := s.getDraft(ctx, id)
	if errors.Is(err, ErrSessionNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s *SessionService) newState() *form.State {
	return s.catalogue.NewState(form.WithClock(s.now))
}

func (s *SessionService) getDraft(ctx context.Context, id string) (*model.Draft, error) {
	draft, err := s.drafts.Get(ctx, id)
	if errors.Is(err, cache.ErrDraftNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load draft: %w", err)
	}
	return draft, nil
}

// load rebuilds the form state of a session by replaying its draft.
func (s *SessionService) load(ctx context.Context, id string) (*model.Draft, *form.State, error) {
	draft, err := s.getDraft(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	state := s.newState()
	if err := state.Restore(draft.Values); err != nil {
		return nil, nil, fmt.Errorf("restore draft %s: %w", id, err)
	}
	return draft, state, nil
}

// userValues returns the non-computed values of a state.
func userValues(state *form.State) map[string]string {
	values := state.Snapshot()
	for _, d := range state.Schema().Derivations() {
		delete(values, d.Target())
	}
	return values
}

func view(draft *model.Draft, state *form.State) *model.SessionView {
	res := form.Validate(state)
	return &model.SessionView{
		ID:     draft.ID,
		Values: state.Snapshot(),
		Active: state.ActiveFields(),
		Validity: model.ValidityView{
			Valid:   res.Valid,
			Reason:  res.Reason,
			Field:   res.Field,
			Missing: res.Missing,
		},
		StartedAt: draft.StartedAt,
		UpdatedAt: draft.UpdatedAt,
	}
}

// sessionLocks hands out one mutex per session id and forgets it once no
// request holds it.
type sessionLocks struct {
	mu sync.Mutex
	m  map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{m: make(map[string]*sessionLock)}
}

func (l *sessionLocks) lock(id string) (unlock func()) {
	l.mu.Lock()
	sl, ok := l.m[id]
	if !ok {
		sl = &sessionLock{}
		l.m[id] = sl
	}
	sl.refs++
	l.mu.Unlock()

	sl.mu.Lock()
	return func() {
		sl.mu.Unlock()
		l.mu.Lock()
		sl.refs--
		if sl.refs == 0 {
			delete(l.m, id)
		}
		l.mu.Unlock()
	}
}
