package services_test

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"
	"time"

	"github.com/vladicamp/campvote/internal/catalog"
	"github.com/vladicamp/campvote/internal/errors"
	"github.com/vladicamp/campvote/internal/logger"
	"github.com/vladicamp/campvote/internal/services"
	"github.com/vladicamp/campvote/internal/testutil"
	"github.com/vladicamp/campvote/pkg/supastore"
)

// setupBallotService creates a BallotService with all dependencies for testing
func setupBallotService(t *testing.T, storeOpts ...supastore.MockOption) (*services.BallotService, *supastore.MockClient, *services.SettingsService) {
	t.Helper()
	repo := testutil.NewTestRepository(t)
	log := logger.New()
	store := supastore.NewMockClient(storeOpts...)
	settings := services.NewSettingsService(log, repo, store)
	svc := services.NewBallotService(log, store, catalog.Default(), repo, settings)
	return svc, store, settings
}

func ballotRow(email string, createdAt time.Time, votes map[string]interface{}) supastore.Row {
	return supastore.Row{Email: email, Votes: votes, CreatedAt: createdAt}
}

func TestListSubmissions_ExcludesConfigRow(t *testing.T) {
	now := time.Now()
	svc, _, _ := setupBallotService(t, supastore.WithRows(services.VotesTable, []supastore.Row{
		ballotRow("Anonymous", now.Add(-time.Minute), map[string]interface{}{"1": "Tincho"}),
		ballotRow("admin_config", now, map[string]interface{}{"logo_url": "https://x/logo.png"}),
		ballotRow("Anonymous", now, map[string]interface{}{"1": "Pola"}),
	}))

	subs, err := svc.ListSubmissions(context.Background())
	if err != nil {
		t.Fatalf("ListSubmissions failed: %v", err)
	}
	if len(subs) != 2 {
		t.Fatalf("expected 2 submissions (config row excluded), got %d", len(subs))
	}
	for _, sub := range subs {
		if sub.IsConfig() {
			t.Error("config row leaked into the listing")
		}
	}
	// Newest first
	if !subs[0].CreatedAt.After(subs[1].CreatedAt) {
		t.Error("expected newest-first ordering")
	}
}

func TestCountSubmissions(t *testing.T) {
	svc, _, _ := setupBallotService(t, supastore.WithRows(services.VotesTable, []supastore.Row{
		ballotRow("Anonymous", time.Now(), map[string]interface{}{"1": "Tincho"}),
		ballotRow("admin_config", time.Now(), map[string]interface{}{"logo_url": "x"}),
	}))

	count, err := svc.CountSubmissions(context.Background())
	if err != nil {
		t.Fatalf("CountSubmissions failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 submission, got %d", count)
	}
}

func TestExportCSV_Shape(t *testing.T) {
	now := time.Date(2025, 9, 1, 20, 0, 0, 0, time.UTC)
	svc, _, _ := setupBallotService(t, supastore.WithRows(services.VotesTable, []supastore.Row{
		ballotRow("Anonymous", now, map[string]interface{}{"1": "Tincho", "16": `say "cheese"`}),
	}))

	data, err := svc.ExportCSV(context.Background())
	if err != nil {
		t.Fatalf("ExportCSV failed: %v", err)
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 row, got %d lines", len(lines))
	}

	if !strings.HasPrefix(lines[0], `"Email","Fecha",`) {
		t.Errorf("unexpected header start: %q", lines[0])
	}
	// One column per question plus the two fixed ones
	wantCols := len(catalog.Default().Questions) + 2
	if got := strings.Count(lines[0], `","`) + 1; got != wantCols {
		t.Errorf("expected %d header columns, got %d", wantCols, got)
	}

	if !strings.Contains(lines[1], `"Anonymous"`) {
		t.Errorf("row missing respondent: %q", lines[1])
	}
	if !strings.Contains(lines[1], `"2025-09-01T20:00:00Z"`) {
		t.Errorf("row missing RFC3339 date: %q", lines[1])
	}
	// Inner quotes doubled
	if !strings.Contains(lines[1], `"say ""cheese"""`) {
		t.Errorf("expected quoted free-text answer, got %q", lines[1])
	}
}

func TestExportCSV_EmptyStore(t *testing.T) {
	svc, _, _ := setupBallotService(t)

	data, err := svc.ExportCSV(context.Background())
	if err != nil {
		t.Fatalf("ExportCSV failed: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 1 {
		t.Errorf("expected only the header, got %d lines", len(lines))
	}
}

func TestClearSubmissions_KeepsConfigRow(t *testing.T) {
	svc, store, _ := setupBallotService(t, supastore.WithRows(services.VotesTable, []supastore.Row{
		ballotRow("Anonymous", time.Now(), map[string]interface{}{"1": "Tincho"}),
		ballotRow("admin_config", time.Now(), map[string]interface{}{"logo_url": "https://x/logo.png"}),
		ballotRow("Anonymous", time.Now(), map[string]interface{}{"1": "Pola"}),
	}))

	if err := svc.ClearSubmissions(context.Background()); err != nil {
		t.Fatalf("ClearSubmissions failed: %v", err)
	}

	if store.RowCount(services.VotesTable) != 1 {
		t.Errorf("expected only the config row to survive, got %d rows", store.RowCount(services.VotesTable))
	}

	url, err := svc.GetLogoURL(context.Background())
	if err != nil {
		t.Fatalf("GetLogoURL failed: %v", err)
	}
	if url != "https://x/logo.png" {
		t.Errorf("config row lost its logo: %q", url)
	}
}

func TestGetLogoURL_RemoteWinsAndCaches(t *testing.T) {
	svc, _, settings := setupBallotService(t, supastore.WithRows(services.VotesTable, []supastore.Row{
		ballotRow("admin_config", time.Now(), map[string]interface{}{"logo_url": "https://remote/logo.png"}),
	}))
	ctx := context.Background()

	if err := settings.SetCachedLogoURL(ctx, "https://stale/logo.png"); err != nil {
		t.Fatalf("SetCachedLogoURL failed: %v", err)
	}

	url, err := svc.GetLogoURL(ctx)
	if err != nil {
		t.Fatalf("GetLogoURL failed: %v", err)
	}
	if url != "https://remote/logo.png" {
		t.Errorf("expected remote logo to win, got %q", url)
	}

	cached, err := settings.CachedLogoURL(ctx)
	if err != nil {
		t.Fatalf("CachedLogoURL failed: %v", err)
	}
	if cached != "https://remote/logo.png" {
		t.Errorf("expected cache refreshed, got %q", cached)
	}
}

func TestGetLogoURL_FallsBackToCacheOnStoreError(t *testing.T) {
	svc, _, settings := setupBallotService(t, supastore.WithSelectError(stderrors.New("store down")))
	ctx := context.Background()

	if err := settings.SetCachedLogoURL(ctx, "https://cached/logo.png"); err != nil {
		t.Fatalf("SetCachedLogoURL failed: %v", err)
	}

	url, err := svc.GetLogoURL(ctx)
	if err != nil {
		t.Fatalf("GetLogoURL should fall back, not fail: %v", err)
	}
	if url != "https://cached/logo.png" {
		t.Errorf("expected cached logo, got %q", url)
	}
}

func TestSetLogoURL_BlankRejected(t *testing.T) {
	svc, _, _ := setupBallotService(t)

	err := svc.SetLogoURL(context.Background(), "   ")
	if err != services.ErrBlankLogoURL {
		t.Errorf("expected ErrBlankLogoURL, got %v", err)
	}
}

func TestSetLogoURL_ReplacesSentinel(t *testing.T) {
	svc, store, _ := setupBallotService(t, supastore.WithRows(services.VotesTable, []supastore.Row{
		ballotRow("admin_config", time.Now(), map[string]interface{}{"logo_url": "https://old/logo.png"}),
	}))
	ctx := context.Background()

	if err := svc.SetLogoURL(ctx, "https://new/logo.png"); err != nil {
		t.Fatalf("SetLogoURL failed: %v", err)
	}

	// Still exactly one sentinel row
	if store.RowCount(services.VotesTable) != 1 {
		t.Errorf("expected delete-then-insert to keep 1 row, got %d", store.RowCount(services.VotesTable))
	}

	url, err := svc.GetLogoURL(ctx)
	if err != nil {
		t.Fatalf("GetLogoURL failed: %v", err)
	}
	if url != "https://new/logo.png" {
		t.Errorf("expected new logo, got %q", url)
	}
}

func TestClearLogoURL_LocalOnly(t *testing.T) {
	svc, store, settings := setupBallotService(t, supastore.WithRows(services.VotesTable, []supastore.Row{
		ballotRow("admin_config", time.Now(), map[string]interface{}{"logo_url": "https://x/logo.png"}),
	}))
	ctx := context.Background()

	if err := settings.SetCachedLogoURL(ctx, "https://x/logo.png"); err != nil {
		t.Fatalf("SetCachedLogoURL failed: %v", err)
	}
	if err := svc.ClearLogoURL(ctx); err != nil {
		t.Fatalf("ClearLogoURL failed: %v", err)
	}

	// Remote sentinel untouched
	if store.RowCount(services.VotesTable) != 1 {
		t.Error("ClearLogoURL must not touch the remote store")
	}
}

func TestStats(t *testing.T) {
	svc, _, _ := setupBallotService(t, supastore.WithRows(services.VotesTable, []supastore.Row{
		ballotRow("Anonymous", time.Now(), map[string]interface{}{"1": "Tincho"}),
	}))

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats["submissions"] != 1 {
		t.Errorf("expected 1 submission, got %v", stats["submissions"])
	}
	if stats["questions"] != 16 || stats["candidates"] != 22 {
		t.Errorf("unexpected catalog stats: %v", stats)
	}
	if stats["store_configured"] != true {
		t.Errorf("expected store_configured=true, got %v", stats["store_configured"])
	}
}

func TestListSubmissions_StoreErrorIsUnavailable(t *testing.T) {
	svc, _, _ := setupBallotService(t, supastore.WithSelectError(stderrors.New("store down")))

	_, err := svc.ListSubmissions(context.Background())
	if err == nil {
		t.Fatal("expected an error when the store is down")
	}
	var appErr *errors.Error
	if !stderrors.As(err, &appErr) || appErr.Kind != errors.ErrUnavailable {
		t.Errorf("expected an ErrUnavailable error, got %v", err)
	}
}

func TestClearSubmissions_StoreErrorIsUnavailable(t *testing.T) {
	svc, _, _ := setupBallotService(t, supastore.WithDeleteError(stderrors.New("store down")))

	err := svc.ClearSubmissions(context.Background())
	var appErr *errors.Error
	if !stderrors.As(err, &appErr) || appErr.Kind != errors.ErrUnavailable {
		t.Errorf("expected an ErrUnavailable error, got %v", err)
	}
}

func TestSetLogoURL_StoreErrorIsUnavailable(t *testing.T) {
	svc, _, _ := setupBallotService(t, supastore.WithInsertError(stderrors.New("store down")))

	err := svc.SetLogoURL(context.Background(), "https://x/logo.png")
	var appErr *errors.Error
	if !stderrors.As(err, &appErr) || appErr.Kind != errors.ErrUnavailable {
		t.Errorf("expected an ErrUnavailable error, got %v", err)
	}
}

func TestStats_StoreErrorDegrades(t *testing.T) {
	svc, _, _ := setupBallotService(t, supastore.WithSelectError(stderrors.New("store down")))

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats should degrade, not fail: %v", err)
	}
	if stats["submissions"] != -1 {
		t.Errorf("expected submissions=-1 on store error, got %v", stats["submissions"])
	}
}
