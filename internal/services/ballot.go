package services

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/vladicamp/campvote/internal/catalog"
	"github.com/vladicamp/campvote/internal/errors"
	"github.com/vladicamp/campvote/internal/logger"
	"github.com/vladicamp/campvote/internal/models"
	"github.com/vladicamp/campvote/internal/repository"
	"github.com/vladicamp/campvote/pkg/supastore"
)

// logoURLKey is the key of the logo URL inside the sentinel row's votes column
const logoURLKey = "logo_url"

// BallotService handles administrative access to collected submissions:
// listing, CSV export, bulk clear, stats, and the shared logo stored in
// the sentinel config row.
type BallotService struct {
	log      logger.Logger
	store    supastore.Client
	catalog  *catalog.Catalog
	devices  repository.DeviceRepository
	settings SettingsServicer
}

// NewBallotService creates a new BallotService
func NewBallotService(log logger.Logger, store supastore.Client, cat *catalog.Catalog, devices repository.DeviceRepository, settings SettingsServicer) *BallotService {
	return &BallotService{
		log:      log,
		store:    store,
		catalog:  cat,
		devices:  devices,
		settings: settings,
	}
}

// ListSubmissions returns all real submissions, newest first. The
// sentinel config row is filtered out.
func (s *BallotService) ListSubmissions(ctx context.Context) ([]models.Submission, error) {
	rows, err := s.store.SelectRows(ctx, VotesTable, supastore.Order{Column: "created_at", Descending: true})
	if err != nil {
		return nil, errors.Unavailable("submission store unavailable", err)
	}

	subs := make([]models.Submission, 0, len(rows))
	for _, row := range rows {
		sub := rowToSubmission(row)
		if sub.IsConfig() {
			continue
		}
		subs = append(subs, sub)
	}
	return subs, nil
}

// CountSubmissions returns the number of real submissions
func (s *BallotService) CountSubmissions(ctx context.Context) (int, error) {
	subs, err := s.ListSubmissions(ctx)
	if err != nil {
		return 0, err
	}
	return len(subs), nil
}

// ExportCSV renders all submissions as CSV: header Email, Fecha, then one
// column per question; one row per submission, every field quoted.
func (s *BallotService) ExportCSV(ctx context.Context) ([]byte, error) {
	subs, err := s.ListSubmissions(ctx)
	if err != nil {
		return nil, err
	}

	var b strings.Builder

	header := make([]string, 0, len(s.catalog.Questions)+2)
	header = append(header, "Email", "Fecha")
	for _, q := range s.catalog.Questions {
		header = append(header, q.Text)
	}
	writeCSVRow(&b, header)

	for _, sub := range subs {
		row := make([]string, 0, len(header))
		row = append(row, sub.Email, sub.CreatedAt.Format(time.RFC3339))
		for _, q := range s.catalog.Questions {
			row = append(row, sub.Votes[q.ID])
		}
		writeCSVRow(&b, row)
	}

	return []byte(b.String()), nil
}

// writeCSVRow appends one comma-joined row with every field double-quoted
// (inner quotes doubled), matching the export format consumers expect
func writeCSVRow(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(f, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteByte('\n')
}

// ClearSubmissions deletes every submission while preserving the sentinel
// config row. There is no ordering guarantee against an in-flight insert;
// acceptable at this scale.
func (s *BallotService) ClearSubmissions(ctx context.Context) error {
	if err := s.store.DeleteRowsNeq(ctx, VotesTable, "email", models.ConfigLabel); err != nil {
		return errors.Unavailable("submission store unavailable", err)
	}
	s.log.Info("All submissions cleared")
	return nil
}

// GetLogoURL resolves the shared logo URL: the remote sentinel row wins
// and refreshes the local cache; when the store is unreachable the cached
// value is used.
func (s *BallotService) GetLogoURL(ctx context.Context) (string, error) {
	rows, err := s.store.SelectRows(ctx, VotesTable, supastore.Order{})
	if err != nil {
		cached, cacheErr := s.settings.CachedLogoURL(ctx)
		if cacheErr != nil {
			return "", err
		}
		return cached, nil
	}

	for _, row := range rows {
		if row.Email != models.ConfigLabel {
			continue
		}
		if url, ok := row.Votes[logoURLKey].(string); ok && url != "" {
			if err := s.settings.SetCachedLogoURL(ctx, url); err != nil {
				s.log.Warn("Failed to cache logo URL", "error", err)
			}
			return url, nil
		}
	}

	cached, err := s.settings.CachedLogoURL(ctx)
	if err != nil {
		return "", nil // no logo configured anywhere
	}
	return cached, nil
}

// SetLogoURL updates the shared logo URL: delete-then-insert of the
// sentinel config row, plus the local cache
func (s *BallotService) SetLogoURL(ctx context.Context, url string) error {
	if strings.TrimSpace(url) == "" {
		return ErrBlankLogoURL
	}

	if err := s.store.DeleteRowsEq(ctx, VotesTable, "email", models.ConfigLabel); err != nil {
		return errors.Unavailable("submission store unavailable", err)
	}
	row := supastore.Row{
		Email: models.ConfigLabel,
		Votes: map[string]interface{}{logoURLKey: url},
	}
	if err := s.store.InsertRow(ctx, VotesTable, row); err != nil {
		return errors.Unavailable("submission store unavailable", err)
	}

	if err := s.settings.SetCachedLogoURL(ctx, url); err != nil {
		s.log.Warn("Failed to cache logo URL", "error", err)
	}
	s.log.Info("Logo URL updated")
	return nil
}

// ClearLogoURL removes the local logo cache; the remote sentinel row is
// left alone so other devices keep their logo
func (s *BallotService) ClearLogoURL(ctx context.Context) error {
	return s.settings.ClearCachedLogoURL(ctx)
}

// Stats returns voting statistics for the admin dashboard. The remote
// submission count degrades to -1 when the store is unreachable.
func (s *BallotService) Stats(ctx context.Context) (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	count, err := s.CountSubmissions(ctx)
	if err != nil {
		s.log.Warn("Failed to count submissions", "error", err)
		count = -1
	}
	stats["submissions"] = count

	locked, err := s.devices.CountLockedDevices(ctx)
	if err != nil {
		return nil, err
	}
	stats["locked_devices"] = locked
	stats["questions"] = len(s.catalog.Questions)
	stats["candidates"] = len(s.catalog.Candidates)
	stats["store_configured"] = s.store.Configured()

	return stats, nil
}

// rowToSubmission converts a store row to a Submission, parsing the wire
// votes object (question-id-string keys) into an AnswerSet
func rowToSubmission(row supastore.Row) models.Submission {
	answers := make(models.AnswerSet, len(row.Votes))
	for key, val := range row.Votes {
		id, err := strconv.Atoi(key)
		if err != nil {
			continue // non-numeric keys belong to config rows
		}
		if text, ok := val.(string); ok {
			answers[id] = text
		}
	}
	return models.Submission{
		ID:        row.ID,
		Email:     row.Email,
		Votes:     answers,
		CreatedAt: row.CreatedAt,
	}
}
