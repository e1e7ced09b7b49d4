package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/vladicamp/campvote/internal/catalog"
	"github.com/vladicamp/campvote/internal/logger"
	"github.com/vladicamp/campvote/internal/models"
	"github.com/vladicamp/campvote/internal/services"
	"github.com/vladicamp/campvote/pkg/genai"
)

func newNarrativeService(opts ...genai.MockOption) (*services.NarrativeService, *genai.MockClient) {
	client := genai.NewMockClient(opts...)
	svc := services.NewNarrativeService(logger.New(), client, catalog.Default())
	return svc, client
}

func TestDescribe_ReturnsGeneratedText(t *testing.T) {
	svc, _ := newNarrativeService(genai.WithText("what a ballot"))

	got := svc.Describe(context.Background(), models.AnswerSet{1: "Tincho"})
	if got != "what a ballot" {
		t.Errorf("expected generated text, got %q", got)
	}
}

func TestDescribe_FallbackWhenNotConfigured(t *testing.T) {
	svc, _ := newNarrativeService(genai.WithUnconfigured())

	got := svc.Describe(context.Background(), models.AnswerSet{})
	if got != services.FallbackNotConfigured {
		t.Errorf("expected not-configured fallback, got %q", got)
	}
}

func TestDescribe_FallbackOnError(t *testing.T) {
	svc, _ := newNarrativeService(genai.WithGenerateError(errors.New("rate limited")))

	got := svc.Describe(context.Background(), models.AnswerSet{})
	if got != services.FallbackUnavailable {
		t.Errorf("expected unavailable fallback, got %q", got)
	}
}

func TestDescribe_FallbackOnBlankResponse(t *testing.T) {
	svc, _ := newNarrativeService(genai.WithText("   \n"))

	got := svc.Describe(context.Background(), models.AnswerSet{})
	if got != services.FallbackEmpty {
		t.Errorf("expected empty fallback, got %q", got)
	}
}

func TestBuildPrompt_IncludesEveryQuestionAndPick(t *testing.T) {
	svc, _ := newNarrativeService()
	cat := catalog.Default()

	answers := models.AnswerSet{}
	for _, q := range cat.Questions {
		answers[q.ID] = "Jerry"
	}
	answers[16] = "the 3am voice note"

	prompt := svc.BuildPrompt(answers)

	for _, q := range cat.Questions {
		if !strings.Contains(prompt, q.Text) {
			t.Errorf("prompt missing question %q", q.Text)
		}
	}
	if !strings.Contains(prompt, "Jerry") {
		t.Error("prompt missing picked candidate")
	}
	if !strings.Contains(prompt, "the 3am voice note") {
		t.Error("prompt missing free-text answer")
	}
	if !strings.Contains(prompt, cat.EventName) {
		t.Error("prompt missing event name")
	}
}

func TestBuildPrompt_PlaceholderForMissingAnswer(t *testing.T) {
	svc, _ := newNarrativeService()

	prompt := svc.BuildPrompt(models.AnswerSet{1: "Tincho"})
	if !strings.Contains(prompt, services.AnswerPlaceholder) {
		t.Error("expected placeholder for unanswered questions")
	}
}

func TestDescribe_SendsPromptToClient(t *testing.T) {
	svc, client := newNarrativeService()

	svc.Describe(context.Background(), models.AnswerSet{1: "Boris"})

	prompts := client.Prompts()
	if len(prompts) != 1 {
		t.Fatalf("expected 1 prompt, got %d", len(prompts))
	}
	if !strings.Contains(prompts[0], "Boris") {
		t.Error("prompt did not carry the answers")
	}
}
