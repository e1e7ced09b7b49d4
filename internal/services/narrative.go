package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/vladicamp/campvote/internal/catalog"
	"github.com/vladicamp/campvote/internal/logger"
	"github.com/vladicamp/campvote/internal/models"
	"github.com/vladicamp/campvote/pkg/genai"
)

// Fallback texts. The narrative call is never allowed to fail past this
// service: any problem degrades to one of these constants.
const (
	FallbackNotConfigured = "The AI jury is not configured. Tell the admin to set the generation API key."
	FallbackUnavailable   = "The AI jury could not be reached. Your votes were counted anyway — try again next year."
	FallbackEmpty         = "The AI jury was speechless. Your votes were counted anyway."

	// AnswerPlaceholder fills in for an unanswered question in the prompt.
	// Unreachable in practice: submission requires a complete ballot.
	AnswerPlaceholder = "Nobody"
)

// NarrativeService turns a completed ballot into humorous commentary by
// templating the answers into a fixed prompt and delegating to the
// text-generation client.
type NarrativeService struct {
	log     logger.Logger
	client  genai.Client
	catalog *catalog.Catalog
}

// NewNarrativeService creates a new NarrativeService
func NewNarrativeService(log logger.Logger, client genai.Client, cat *catalog.Catalog) *NarrativeService {
	return &NarrativeService{log: log, client: client, catalog: cat}
}

// BuildPrompt renders the fixed prompt template for an answer set
func (s *NarrativeService) BuildPrompt(answers models.AnswerSet) string {
	var summary strings.Builder
	for _, q := range s.catalog.Questions {
		selected := answers[q.ID]
		if strings.TrimSpace(selected) == "" {
			selected = AnswerPlaceholder
		}
		fmt.Fprintf(&summary, "- %s: %s\n", q.Text, selected)
	}

	return fmt.Sprintf(`Act as a gossipy, sharp-tongued friend reviewing the answers of the %q awards survey. Speak directly to the person who voted.

These are their picks:
%s
Write a funny, spicy comment (200 words maximum) about how they voted.
- Mention specific names and what each pick says about the voter's relationship with that person.
- If they picked the same person over and over, call it out.
- Poke fun at contradictory picks.
- The tone is playful complicity: roasting friends, not strangers.
- Return the text in Markdown format.`, s.catalog.EventName, summary.String())
}

// Describe generates commentary for a ballot. It always returns text:
// missing credentials or call failures yield a fixed fallback string.
func (s *NarrativeService) Describe(ctx context.Context, answers models.AnswerSet) string {
	if !s.client.Configured() {
		s.log.Warn("Narrative generation skipped: no API key configured")
		return FallbackNotConfigured
	}

	text, err := s.client.Generate(ctx, s.BuildPrompt(answers))
	if err != nil {
		s.log.Warn("Narrative generation failed", "error", err)
		return FallbackUnavailable
	}
	if strings.TrimSpace(text) == "" {
		return FallbackEmpty
	}
	return text
}
