package services

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/vladicamp/campvote/internal/catalog"
	"github.com/vladicamp/campvote/internal/logger"
	"github.com/vladicamp/campvote/internal/models"
	"github.com/vladicamp/campvote/internal/repository"
	"github.com/vladicamp/campvote/pkg/supastore"
)

// SessionState is one state of the per-device voting workflow
type SessionState string

const (
	StateEntry      SessionState = "entry"
	StateVoting     SessionState = "voting"
	StateSubmitting SessionState = "submitting"
	StateResults    SessionState = "results"
)

const (
	// VotesTable is the remote table holding submissions and the config row
	VotesTable = "votes"

	// DefaultRespondent labels submissions; there is no login, so every
	// ballot carries the same label
	DefaultRespondent = "Anonymous"

	// DefaultResultsTTL is how long the results view stays up before the
	// session auto-resets to entry
	DefaultResultsTTL = 60 * time.Second
)

// SessionRepository defines the repository methods needed by SessionService
type SessionRepository interface {
	repository.DeviceRepository
	repository.DraftRepository
}

// Broadcaster defines the interface for pushing events to admin panels
type Broadcaster interface {
	BroadcastSubmission(respondent string)
}

// session is the in-memory workflow state for one device
type session struct {
	state      SessionState
	respondent string
	answers    models.AnswerSet
	narrative  string
	storeError string
	candidates []string // shuffled once per session
	timer      *time.Timer
}

// SessionService orchestrates the voting workflow: question display order,
// answer collection, completion gating, submission, and the timed reset
// back to the entry view. State is held in memory per device id; the
// device lock and the draft live in the repository.
type SessionService struct {
	log         logger.Logger
	repo        SessionRepository
	catalog     *catalog.Catalog
	store       supastore.Client
	narrative   NarrativeServicer
	broadcaster Broadcaster
	resultsTTL  time.Duration

	mu       sync.Mutex
	sessions map[string]*session
}

// NewSessionService creates a new SessionService
func NewSessionService(log logger.Logger, repo SessionRepository, cat *catalog.Catalog, store supastore.Client, narrative NarrativeServicer) *SessionService {
	return &SessionService{
		log:        log,
		repo:       repo,
		catalog:    cat,
		store:      store,
		narrative:  narrative,
		resultsTTL: DefaultResultsTTL,
		sessions:   make(map[string]*session),
	}
}

// SetBroadcaster sets the broadcaster for submission events
func (s *SessionService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// SetResultsTTL overrides the results auto-reset delay (tests)
func (s *SessionService) SetResultsTTL(d time.Duration) {
	s.resultsTTL = d
}

// SessionView is a snapshot of the workflow for rendering
type SessionView struct {
	State      SessionState      `json:"state"`
	Respondent string            `json:"respondent,omitempty"`
	Answers    models.AnswerSet  `json:"answers"`
	Candidates []string          `json:"candidates,omitempty"`
	Questions  []models.Question `json:"questions"`
	Completed  int               `json:"completed"`
	Total      int               `json:"total"`
	Complete   bool              `json:"complete"`
	Narrative  string            `json:"narrative,omitempty"`
	StoreError string            `json:"store_error,omitempty"`
	Locked     bool              `json:"locked"`
}

// countValid counts answers that are non-empty after trimming whitespace.
// This is the completion gate: partial or whitespace-only answers never count.
func countValid(answers models.AnswerSet) int {
	count := 0
	for _, v := range answers {
		if strings.TrimSpace(v) != "" {
			count++
		}
	}
	return count
}

// view builds a snapshot for a device. Caller holds the mutex.
func (s *SessionService) view(sess *session, locked bool) *SessionView {
	v := &SessionView{
		State:     StateEntry,
		Answers:   models.AnswerSet{},
		Questions: s.catalog.Questions,
		Total:     len(s.catalog.Questions),
		Locked:    locked,
	}
	if sess == nil {
		return v
	}

	v.State = sess.state
	v.Respondent = sess.respondent
	v.Narrative = sess.narrative
	v.StoreError = sess.storeError
	v.Candidates = sess.candidates
	v.Answers = make(models.AnswerSet, len(sess.answers))
	for k, val := range sess.answers {
		v.Answers[k] = val
	}
	v.Completed = countValid(sess.answers)
	v.Complete = v.Completed == v.Total
	return v
}

// View returns the current snapshot for a device without changing state
func (s *SessionService) View(ctx context.Context, deviceID string) (*SessionView, error) {
	locked, err := s.repo.IsLocked(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view(s.sessions[deviceID], locked), nil
}

// Start moves a device from entry to voting. Refused while the device
// lock is set: the state is unchanged and ErrDeviceLocked carries the
// user-visible notice. A saved draft rehydrates the answer set only when
// the lock is unset.
func (s *SessionService) Start(ctx context.Context, deviceID string) (*SessionView, error) {
	locked, err := s.repo.IsLocked(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if locked {
		return nil, ErrDeviceLocked
	}

	answers := models.AnswerSet{}
	if draft, err := s.repo.GetDraft(ctx, deviceID); err == nil {
		answers = draft
		s.log.Info("Draft restored", "device", deviceID, "answers", len(draft))
	} else if err != repository.ErrNotFound {
		s.log.Warn("Failed to read draft", "device", deviceID, "error", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess := &session{
		state:      StateVoting,
		respondent: DefaultRespondent,
		answers:    answers,
		candidates: s.catalog.Shuffled(),
	}
	s.sessions[deviceID] = sess

	return s.view(sess, false), nil
}

// Answer records one answer (create-or-overwrite) and persists the draft
// synchronously. Drafts are never written once the device lock is set.
func (s *SessionService) Answer(ctx context.Context, deviceID string, questionID int, value string) (*SessionView, error) {
	if _, ok := s.catalog.Question(questionID); !ok {
		return nil, ErrUnknownQuestion
	}

	s.mu.Lock()
	sess := s.sessions[deviceID]
	if sess == nil {
		s.mu.Unlock()
		return nil, ErrNoSession
	}
	if sess.state != StateVoting {
		s.mu.Unlock()
		return nil, ErrNotVoting
	}
	sess.answers[questionID] = value
	snapshot := make(models.AnswerSet, len(sess.answers))
	for k, v := range sess.answers {
		snapshot[k] = v
	}
	view := s.view(sess, false)
	s.mu.Unlock()

	locked, err := s.repo.IsLocked(ctx, deviceID)
	if err == nil && !locked {
		if err := s.repo.SaveDraft(ctx, deviceID, snapshot); err != nil {
			s.log.Warn("Failed to persist draft", "device", deviceID, "error", err)
		}
	}

	return view, nil
}

// Submit finalizes the ballot. With an incomplete answer set it is a
// no-op: the session stays in voting and no side effect happens. With a
// complete set it persists the submission remotely (non-fatal on error),
// unconditionally sets the device lock and clears the draft — a failed
// network write still consumes the device's one allowed vote — generates
// the narrative (with fallback), and enters results with a one-shot
// auto-reset timer.
func (s *SessionService) Submit(ctx context.Context, deviceID string) (*SessionView, error) {
	s.mu.Lock()
	sess := s.sessions[deviceID]
	if sess == nil {
		s.mu.Unlock()
		return nil, ErrNoSession
	}
	if sess.state == StateSubmitting {
		s.mu.Unlock()
		return nil, ErrSubmitInProgress
	}
	if sess.state != StateVoting {
		s.mu.Unlock()
		return nil, ErrNotVoting
	}
	if countValid(sess.answers) != len(s.catalog.Questions) {
		// Completion gate: inert, no error path
		view := s.view(sess, false)
		s.mu.Unlock()
		return view, nil
	}

	sess.state = StateSubmitting
	respondent := sess.respondent
	answers := make(models.AnswerSet, len(sess.answers))
	for k, v := range sess.answers {
		answers[k] = v
	}
	s.mu.Unlock()

	// 1. Persist remotely. Failure is logged and surfaced, never blocking.
	var storeError string
	row := supastore.Row{Email: respondent, Votes: answersToWire(answers)}
	if err := s.store.InsertRow(ctx, VotesTable, row); err != nil {
		storeError = err.Error()
		s.log.Warn("Failed to persist submission remotely", "device", deviceID, "error", err)
	} else {
		s.log.Info("Submission persisted", "device", deviceID, "answers", len(answers))
	}

	// 2. Lock the device and clear the draft regardless of step 1's outcome
	if err := s.repo.SetLocked(ctx, deviceID); err != nil {
		s.log.Error("Failed to set device lock", "device", deviceID, "error", err)
	}
	if err := s.repo.ClearDraft(ctx, deviceID); err != nil {
		s.log.Warn("Failed to clear draft", "device", deviceID, "error", err)
	}

	// 3. Narrative, with fallback built in; never an error
	narrative := s.narrative.Describe(ctx, answers)

	s.mu.Lock()
	sess.state = StateResults
	sess.narrative = narrative
	sess.storeError = storeError
	sess.timer = time.AfterFunc(s.resultsTTL, func() {
		s.expire(deviceID)
	})
	view := s.view(sess, true)
	s.mu.Unlock()

	if s.broadcaster != nil {
		s.broadcaster.BroadcastSubmission(respondent)
	}

	return view, nil
}

// expire fires the results auto-reset: exactly once, back to entry,
// clearing respondent, answers, and narrative
func (s *SessionService) expire(deviceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.sessions[deviceID]
	if sess == nil || sess.state != StateResults {
		return
	}
	delete(s.sessions, deviceID)
	s.log.Debug("Results view expired", "device", deviceID)
}

// Reset clears the session and the draft and returns to entry. The
// device lock is deliberately untouched: resetting does not grant a
// second vote.
func (s *SessionService) Reset(ctx context.Context, deviceID string) (*SessionView, error) {
	s.mu.Lock()
	if sess := s.sessions[deviceID]; sess != nil && sess.timer != nil {
		sess.timer.Stop()
	}
	delete(s.sessions, deviceID)
	s.mu.Unlock()

	if err := s.repo.ClearDraft(ctx, deviceID); err != nil {
		s.log.Warn("Failed to clear draft on reset", "device", deviceID, "error", err)
	}

	locked, err := s.repo.IsLocked(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	return s.view(nil, locked), nil
}

// ResetDevice clears only the device lock (admin testing action).
// Historical submissions are untouched.
func (s *SessionService) ResetDevice(ctx context.Context, deviceID string) error {
	if err := s.repo.ClearLock(ctx, deviceID); err != nil {
		return err
	}
	s.log.Info("Device lock cleared", "device", deviceID)
	return nil
}

// answersToWire converts the answer set to the remote votes column format:
// a JSON object mapping question-id-string to answer
func answersToWire(answers models.AnswerSet) map[string]interface{} {
	wire := make(map[string]interface{}, len(answers))
	for id, v := range answers {
		wire[strconv.Itoa(id)] = v
	}
	return wire
}
