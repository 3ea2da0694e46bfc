package wizard

import (
	"context"
	"errors"
	"sync"
	"time"

	draftRepo "regwizard/database/repository/draft"
	"regwizard/metrics"
	"regwizard/models"
	"regwizard/services/location"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WizardService hands out session controllers and brokers submissions.
type WizardService interface {
	// Open returns the session controller and runs country detection when the draft has no country.
	Open(ctx context.Context, sessionID string, hint location.Hint) *Controller
	// Session returns the session controller, loading it from the store when needed.
	Session(ctx context.Context, sessionID string) *Controller
	// Submit submits the session's draft and stores the resulting summary under a new reference.
	Submit(ctx context.Context, sessionID string) (string, models.Summary, error)
	// Summary looks up a submitted snapshot.
	Summary(ref string) (models.Summary, bool)
}

// ServiceConfig configures DefaultWizardService.
type ServiceConfig struct {
	Repo           draftRepo.DraftRepository
	Detector       location.Detector
	Submitter      Submitter
	Logger         *zap.Logger
	Metrics        *metrics.Metrics
	PersistTimeout time.Duration
	SummaryTTL     time.Duration
	Now            func() time.Time
}

type sessionEntry struct {
	ctrl       *Controller
	lastAccess time.Time
}

// DefaultWizardService keeps open controllers in memory, backed by a DraftRepository.
type DefaultWizardService struct {
	cfg       ServiceConfig
	summaries *SummaryStore

	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

func NewDefaultWizardService(cfg ServiceConfig) *DefaultWizardService {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Detector == nil {
		cfg.Detector = location.NoopDetector{}
	}
	if cfg.Submitter == nil {
		cfg.Submitter = DelaySubmitter{Delay: 1500 * time.Millisecond}
	}
	if cfg.SummaryTTL <= 0 {
		cfg.SummaryTTL = 30 * time.Minute
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &DefaultWizardService{
		cfg:       cfg,
		summaries: NewSummaryStore(cfg.SummaryTTL, cfg.Now),
		sessions:  make(map[string]*sessionEntry),
	}
}

func (s *DefaultWizardService) Open(ctx context.Context, sessionID string, hint location.Hint) *Controller {
	ctrl := s.Session(ctx, sessionID)
	ctrl.DetectCountry(ctx, s.cfg.Detector, hint)
	return ctrl
}

func (s *DefaultWizardService) Session(ctx context.Context, sessionID string) *Controller {
	if ctrl, ok := s.lookup(sessionID); ok {
		return ctrl
	}

	// Load without holding mu.
	saved, err := s.cfg.Repo.Load(ctx, sessionID)
	if err != nil {
		level := zap.WarnLevel
		if errors.Is(err, draftRepo.ErrCorruptDraft) {
			level = zap.InfoLevel
			s.discardCorrupt(ctx, sessionID)
		}
		s.cfg.Logger.Check(level, "Starting from an empty draft; stored draft unreadable").
			Write(zap.String("sessionID", sessionID), zap.Error(err))
		saved = nil
	}
	ctrl := NewController(sessionID, saved, Options{
		Repo:           s.cfg.Repo,
		Logger:         s.cfg.Logger,
		Metrics:        s.cfg.Metrics,
		PersistTimeout: s.cfg.PersistTimeout,
		Now:            s.cfg.Now,
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.cfg.Now()
	// A concurrent caller may have registered the session while we were loading.
	if e, ok := s.sessions[sessionID]; ok {
		e.lastAccess = now
		return e.ctrl
	}
	s.sessions[sessionID] = &sessionEntry{ctrl: ctrl, lastAccess: now}
	s.reportSessionsLocked()
	return ctrl
}

// discardCorrupt removes an undecodable draft so later loads start clean.
func (s *DefaultWizardService) discardCorrupt(ctx context.Context, sessionID string) {
	if err := s.cfg.Repo.Delete(ctx, sessionID); err != nil {
		s.cfg.Logger.Warn("Failed to delete corrupt draft", zap.String("sessionID", sessionID), zap.Error(err))
	}
}

func (s *DefaultWizardService) lookup(sessionID string) (*Controller, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[sessionID]
	if !ok {
		return nil, false
	}
	e.lastAccess = s.cfg.Now()
	return e.ctrl, true
}

func (s *DefaultWizardService) Submit(ctx context.Context, sessionID string) (string, models.Summary, error) {
	ctrl := s.Session(ctx, sessionID)
	summary, err := ctrl.Submit(ctx, s.cfg.Submitter)
	if err != nil {
		s.recordSubmission(outcomeOf(err))
		return "", models.Summary{}, err
	}

	ref := uuid.NewString()
	s.summaries.Put(ref, summary)
	s.recordSubmission("submitted")
	s.cfg.Logger.Info("Registration submitted", zap.String("sessionID", sessionID), zap.String("summaryRef", ref))
	return ref, summary, nil
}

func (s *DefaultWizardService) Summary(ref string) (models.Summary, bool) {
	return s.summaries.Get(ref)
}

// PruneIdle forgets controllers untouched for maxIdle, keeping any with a
// pending submission, and sweeps expired summaries.
func (s *DefaultWizardService) PruneIdle(maxIdle time.Duration) int {
	cutoff := s.cfg.Now().Add(-maxIdle)

	s.mu.Lock()
	removed := 0
	for id, e := range s.sessions {
		if e.lastAccess.Before(cutoff) && !e.ctrl.Submitting() {
			delete(s.sessions, id)
			removed++
		}
	}
	s.reportSessionsLocked()
	s.mu.Unlock()

	s.summaries.Sweep()
	return removed
}

// ActiveSessions returns the number of controllers held in memory.
func (s *DefaultWizardService) ActiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *DefaultWizardService) reportSessionsLocked() {
	if s.cfg.Metrics != nil {
		s.cfg.Metrics.SetActiveSessions(len(s.sessions))
	}
}

func (s *DefaultWizardService) recordSubmission(outcome string) {
	if s.cfg.Metrics != nil {
		s.cfg.Metrics.RecordSubmission(outcome)
	}
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, ErrFormInvalid):
		return "invalid"
	case errors.Is(err, ErrSubmissionPending):
		return "pending"
	case errors.Is(err, ErrSubmissionCanceled):
		return "cancelled"
	}
	return "failed"
}
