package services_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/vladicamp/campvote/internal/catalog"
	"github.com/vladicamp/campvote/internal/logger"
	"github.com/vladicamp/campvote/internal/repository"
	"github.com/vladicamp/campvote/internal/repository/mock"
	"github.com/vladicamp/campvote/internal/services"
	"github.com/vladicamp/campvote/internal/testutil"
	"github.com/vladicamp/campvote/pkg/genai"
	"github.com/vladicamp/campvote/pkg/supastore"
)

// setupSessionService creates a SessionService with all dependencies for testing
func setupSessionService(t *testing.T, storeOpts ...supastore.MockOption) (*services.SessionService, *supastore.MockClient, *repository.Repository) {
	t.Helper()
	repo := testutil.NewTestRepository(t)
	log := logger.New()
	cat := catalog.Default()
	store := supastore.NewMockClient(storeOpts...)
	narrative := services.NewNarrativeService(log, genai.NewMockClient(), cat)
	svc := services.NewSessionService(log, repo, cat, store, narrative)
	return svc, store, repo
}

// fillBallot answers every question on an active session
func fillBallot(t *testing.T, svc *services.SessionService, deviceID string) {
	t.Helper()
	ctx := context.Background()
	cat := catalog.Default()
	for _, q := range cat.Questions {
		value := cat.Candidates[0]
		if q.IsText() {
			value = "that one recording"
		}
		if _, err := svc.Answer(ctx, deviceID, q.ID, value); err != nil {
			t.Fatalf("Answer(%d) failed: %v", q.ID, err)
		}
	}
}

// ==================== Start ====================

func TestStart_EntersVoting(t *testing.T) {
	svc, _, _ := setupSessionService(t)
	ctx := context.Background()

	view, err := svc.Start(ctx, "device-1")
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if view.State != services.StateVoting {
		t.Errorf("expected voting state, got %q", view.State)
	}
	if view.Total != 16 {
		t.Errorf("expected 16 questions, got %d", view.Total)
	}
	if len(view.Candidates) != 22 {
		t.Errorf("expected shuffled roster of 22, got %d", len(view.Candidates))
	}
}

func TestStart_RefusedWhenLocked(t *testing.T) {
	svc, _, repo := setupSessionService(t)
	ctx := context.Background()

	if err := repo.SetLocked(ctx, "device-1"); err != nil {
		t.Fatalf("SetLocked failed: %v", err)
	}

	_, err := svc.Start(ctx, "device-1")
	if err != services.ErrDeviceLocked {
		t.Errorf("expected ErrDeviceLocked, got %v", err)
	}

	// State unchanged: still entry
	view, err := svc.View(ctx, "device-1")
	if err != nil {
		t.Fatalf("View failed: %v", err)
	}
	if view.State != services.StateEntry {
		t.Errorf("expected entry state, got %q", view.State)
	}
	if !view.Locked {
		t.Error("expected locked view")
	}
}

func TestStart_RestoresDraft(t *testing.T) {
	svc, _, repo := setupSessionService(t)
	ctx := context.Background()

	if err := repo.SaveDraft(ctx, "device-1", map[int]string{1: "Tincho", 2: "Pola"}); err != nil {
		t.Fatalf("SaveDraft failed: %v", err)
	}

	view, err := svc.Start(ctx, "device-1")
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if view.Answers[1] != "Tincho" || view.Answers[2] != "Pola" {
		t.Errorf("expected draft restored, got %v", view.Answers)
	}
	if view.Completed != 2 {
		t.Errorf("expected 2 completed, got %d", view.Completed)
	}
}

// ==================== Answer ====================

func TestAnswer_UnknownQuestion(t *testing.T) {
	svc, _, _ := setupSessionService(t)
	ctx := context.Background()

	if _, err := svc.Start(ctx, "device-1"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	_, err := svc.Answer(ctx, "device-1", 99, "Ana")
	if err != services.ErrUnknownQuestion {
		t.Errorf("expected ErrUnknownQuestion, got %v", err)
	}
}

func TestAnswer_WithoutSession(t *testing.T) {
	svc, _, _ := setupSessionService(t)

	_, err := svc.Answer(context.Background(), "device-1", 1, "Ana")
	if err != services.ErrNoSession {
		t.Errorf("expected ErrNoSession, got %v", err)
	}
}

func TestAnswer_OverwritesAndPersistsDraft(t *testing.T) {
	svc, _, repo := setupSessionService(t)
	ctx := context.Background()

	if _, err := svc.Start(ctx, "device-1"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if _, err := svc.Answer(ctx, "device-1", 1, "Tincho"); err != nil {
		t.Fatalf("first Answer failed: %v", err)
	}
	view, err := svc.Answer(ctx, "device-1", 1, "Pola")
	if err != nil {
		t.Fatalf("second Answer failed: %v", err)
	}

	if view.Answers[1] != "Pola" {
		t.Errorf("expected overwrite to Pola, got %q", view.Answers[1])
	}
	if view.Completed != 1 {
		t.Errorf("expected 1 completed after overwrite, got %d", view.Completed)
	}

	draft, err := repo.GetDraft(ctx, "device-1")
	if err != nil {
		t.Fatalf("GetDraft failed: %v", err)
	}
	if draft[1] != "Pola" {
		t.Errorf("expected draft to hold Pola, got %q", draft[1])
	}
}

func TestAnswer_WhitespaceDoesNotCount(t *testing.T) {
	svc, _, _ := setupSessionService(t)
	ctx := context.Background()

	if _, err := svc.Start(ctx, "device-1"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	view, err := svc.Answer(ctx, "device-1", 16, "   ")
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	if view.Completed != 0 {
		t.Errorf("whitespace-only answer should not count, got %d completed", view.Completed)
	}
	if view.Complete {
		t.Error("ballot should not be complete")
	}
}

// ==================== Submit ====================

func TestSubmit_IncompleteIsInert(t *testing.T) {
	svc, store, repo := setupSessionService(t)
	ctx := context.Background()

	if _, err := svc.Start(ctx, "device-1"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if _, err := svc.Answer(ctx, "device-1", 1, "Tincho"); err != nil {
		t.Fatalf("Answer failed: %v", err)
	}

	view, err := svc.Submit(ctx, "device-1")
	if err != nil {
		t.Fatalf("Submit on incomplete ballot should not error: %v", err)
	}
	if view.State != services.StateVoting {
		t.Errorf("expected session to stay in voting, got %q", view.State)
	}
	if store.RowCount(services.VotesTable) != 0 {
		t.Error("incomplete submit must not write to the store")
	}
	locked, _ := repo.IsLocked(ctx, "device-1")
	if locked {
		t.Error("incomplete submit must not lock the device")
	}
}

func TestSubmit_Complete(t *testing.T) {
	svc, store, repo := setupSessionService(t)
	ctx := context.Background()

	if _, err := svc.Start(ctx, "device-1"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	fillBallot(t, svc, "device-1")

	view, err := svc.Submit(ctx, "device-1")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if view.State != services.StateResults {
		t.Errorf("expected results state, got %q", view.State)
	}
	if view.Narrative == "" {
		t.Error("expected a narrative on the results view")
	}
	if view.StoreError != "" {
		t.Errorf("unexpected store error: %q", view.StoreError)
	}

	if store.RowCount(services.VotesTable) != 1 {
		t.Errorf("expected 1 stored row, got %d", store.RowCount(services.VotesTable))
	}

	locked, err := repo.IsLocked(ctx, "device-1")
	if err != nil {
		t.Fatalf("IsLocked failed: %v", err)
	}
	if !locked {
		t.Error("expected device locked after submit")
	}
	if _, err := repo.GetDraft(ctx, "device-1"); err != repository.ErrNotFound {
		t.Errorf("expected draft cleared after submit, got %v", err)
	}
}

func TestSubmit_StoreFailureStillLocks(t *testing.T) {
	svc, _, repo := setupSessionService(t, supastore.WithInsertError(errors.New("store down")))
	ctx := context.Background()

	if _, err := svc.Start(ctx, "device-1"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	fillBallot(t, svc, "device-1")

	view, err := svc.Submit(ctx, "device-1")
	if err != nil {
		t.Fatalf("Submit must not fail on a store error: %v", err)
	}
	if view.State != services.StateResults {
		t.Errorf("expected results state despite store failure, got %q", view.State)
	}
	if view.StoreError == "" {
		t.Error("expected the store error to be surfaced on the view")
	}

	// A failed network write still consumes the device's one vote
	locked, _ := repo.IsLocked(ctx, "device-1")
	if !locked {
		t.Error("expected device locked even though the store write failed")
	}
	if _, err := repo.GetDraft(ctx, "device-1"); err != repository.ErrNotFound {
		t.Errorf("expected draft cleared even on store failure, got %v", err)
	}
}

func TestSubmit_WithoutSession(t *testing.T) {
	svc, _, _ := setupSessionService(t)

	_, err := svc.Submit(context.Background(), "device-1")
	if err != services.ErrNoSession {
		t.Errorf("expected ErrNoSession, got %v", err)
	}
}

func TestSubmit_ConcurrentSecondRejected(t *testing.T) {
	svc, _, _ := setupSessionService(t)
	ctx := context.Background()

	if _, err := svc.Start(ctx, "device-1"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	fillBallot(t, svc, "device-1")

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.Submit(ctx, "device-1")
		}(i)
	}
	wg.Wait()

	// Exactly one goroutine wins; the loser sees an in-progress or
	// not-voting rejection depending on timing
	var okCount int
	for _, err := range results {
		if err == nil {
			okCount++
		} else if err != services.ErrSubmitInProgress && err != services.ErrNotVoting {
			t.Errorf("unexpected error from concurrent submit: %v", err)
		}
	}
	if okCount != 1 {
		t.Errorf("expected exactly 1 successful submit, got %d", okCount)
	}
}

// ==================== Auto-reset ====================

func TestResults_AutoResetAfterTTL(t *testing.T) {
	svc, _, _ := setupSessionService(t)
	svc.SetResultsTTL(30 * time.Millisecond)
	ctx := context.Background()

	if _, err := svc.Start(ctx, "device-1"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	fillBallot(t, svc, "device-1")
	if _, err := svc.Submit(ctx, "device-1"); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		view, err := svc.View(ctx, "device-1")
		if err != nil {
			t.Fatalf("View failed: %v", err)
		}
		if view.State == services.StateEntry {
			if !view.Locked {
				t.Error("expected the lock to survive the auto-reset")
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("session never auto-reset, still %q", view.State)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// ==================== Reset / ResetDevice ====================

func TestReset_KeepsLock(t *testing.T) {
	svc, _, repo := setupSessionService(t)
	ctx := context.Background()

	if _, err := svc.Start(ctx, "device-1"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	fillBallot(t, svc, "device-1")
	if _, err := svc.Submit(ctx, "device-1"); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	view, err := svc.Reset(ctx, "device-1")
	if err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if view.State != services.StateEntry {
		t.Errorf("expected entry after reset, got %q", view.State)
	}
	if !view.Locked {
		t.Error("reset must not grant a second vote")
	}

	locked, _ := repo.IsLocked(ctx, "device-1")
	if !locked {
		t.Error("expected device still locked after reset")
	}
}

func TestReset_ClearsDraft(t *testing.T) {
	svc, _, repo := setupSessionService(t)
	ctx := context.Background()

	if _, err := svc.Start(ctx, "device-1"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if _, err := svc.Answer(ctx, "device-1", 1, "Tincho"); err != nil {
		t.Fatalf("Answer failed: %v", err)
	}

	if _, err := svc.Reset(ctx, "device-1"); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if _, err := repo.GetDraft(ctx, "device-1"); err != repository.ErrNotFound {
		t.Errorf("expected draft cleared on reset, got %v", err)
	}
}

func TestResetDevice_AllowsRevote(t *testing.T) {
	svc, store, _ := setupSessionService(t)
	ctx := context.Background()

	if _, err := svc.Start(ctx, "device-1"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	fillBallot(t, svc, "device-1")
	if _, err := svc.Submit(ctx, "device-1"); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if _, err := svc.Reset(ctx, "device-1"); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	if err := svc.ResetDevice(ctx, "device-1"); err != nil {
		t.Fatalf("ResetDevice failed: %v", err)
	}

	// Second full pass goes through; the first submission is untouched
	if _, err := svc.Start(ctx, "device-1"); err != nil {
		t.Fatalf("Start after unlock failed: %v", err)
	}
	fillBallot(t, svc, "device-1")
	if _, err := svc.Submit(ctx, "device-1"); err != nil {
		t.Fatalf("second Submit failed: %v", err)
	}
	if store.RowCount(services.VotesTable) != 2 {
		t.Errorf("expected 2 stored rows after revote, got %d", store.RowCount(services.VotesTable))
	}
}

// ==================== Error injection ====================

func TestStart_RepositoryError(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	mockRepo := mock.NewRepository(repo)
	mockRepo.IsLockedError = fmt.Errorf("database locked")

	log := logger.New()
	cat := catalog.Default()
	narrative := services.NewNarrativeService(log, genai.NewMockClient(), cat)
	svc := services.NewSessionService(log, mockRepo, cat, supastore.NewMockClient(), narrative)

	_, err := svc.Start(context.Background(), "device-1")
	if err == nil {
		t.Error("expected Start to surface the repository error")
	}
}

func TestSubmit_BroadcastsSubmission(t *testing.T) {
	svc, _, _ := setupSessionService(t)
	ctx := context.Background()

	b := &recordingBroadcaster{}
	svc.SetBroadcaster(b)

	if _, err := svc.Start(ctx, "device-1"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	fillBallot(t, svc, "device-1")
	if _, err := svc.Submit(ctx, "device-1"); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if len(b.respondents) != 1 {
		t.Fatalf("expected 1 broadcast, got %d", len(b.respondents))
	}
	if b.respondents[0] != services.DefaultRespondent {
		t.Errorf("expected respondent %q, got %q", services.DefaultRespondent, b.respondents[0])
	}
}

type recordingBroadcaster struct {
	mu          sync.Mutex
	respondents []string
}

func (b *recordingBroadcaster) BroadcastSubmission(respondent string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.respondents = append(b.respondents, respondent)
}
