package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"

	"sqlmentor/config"
	"sqlmentor/internal/model"
)

// CoachService produces explanatory feedback for a failed submission. The
// feedback is advisory text stored after grading; it never influences the
// verdict or the points.
type CoachService interface {
	Enabled() bool
	ReviewSubmission(ctx context.Context, question *model.Question, submitted string) (string, error)
}

type coachService struct {
	client *genai.GenerativeModel
}

func NewCoachService(cfg *config.Config) (CoachService, error) {
	if cfg.GeminiApiKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set. CoachService will be non-functional.")
		return &coachService{client: nil}, nil
	}
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiApiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	return &coachService{client: client.GenerativeModel("gemini-1.5-flash")}, nil
}

func (s *coachService) Enabled() bool {
	return s.client != nil
}

func (s *coachService) ReviewSubmission(ctx context.Context, question *model.Question, submitted string) (string, error) {
	if s.client == nil {
		return "", fmt.Errorf("gemini client not initialized")
	}

	var prompt strings.Builder
	prompt.WriteString("You are an experienced SQL interview mentor.\n")
	prompt.WriteString("A student ran out of attempts on the following practice question.\n\n")
	prompt.WriteString("Question:\n")
	prompt.WriteString(question.Prompt)
	prompt.WriteString("\n\n")
	if question.Dataset != nil && *question.Dataset != "" {
		prompt.WriteString("Dataset:\n")
		prompt.WriteString(*question.Dataset)
		prompt.WriteString("\n\n")
	}
	prompt.WriteString("Expected answer:\n")
	prompt.WriteString(question.Answer)
	prompt.WriteString("\n\nStudent's final attempt:\n")
	prompt.WriteString(submitted)
	prompt.WriteString("\n\nExplain in a short paragraph where the student's query diverges from the expected one, ")
	prompt.WriteString("what concept they should review, and one concrete tip. Do not restate the full expected answer.")

	resp, err := s.client.GenerateContent(ctx, genai.Text(prompt.String()))
	if err != nil {
		log.Error().Err(err).Uint("questionID", question.ID).Msg("Gemini API error during review")
		return "", err
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no content")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			text.WriteString(string(txt))
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("gemini returned no text content")
	}
	return strings.TrimSpace(text.String()), nil
}
