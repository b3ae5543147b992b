package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/autosniper/autosniper/internal/ai"
	"github.com/autosniper/autosniper/internal/logger"
	"github.com/autosniper/autosniper/internal/matching"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Model() string
}

//go:embed prompt.md
var promptTemplate string

const defaultMaxLogLength = 200

// Commentator turns a match into a short buyer-facing verdict via Gemini.
type Commentator struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

// NewCommentator wires a generator into the ai.Commentator contract.
func NewCommentator(generator contentGenerator, maxLogLength int, log *zap.Logger) *Commentator {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Commentator{generator: generator, logger: log, maxLogLen: maxLogLength}
}

// Comment asks the model for a verdict on the match. Any failure is returned
// to the caller, who treats commentary as best-effort.
func (c *Commentator) Comment(ctx context.Context, match *matching.Match) (*ai.Commentary, error) {
	if match == nil || match.Result == nil {
		return nil, fmt.Errorf("a scored match is required")
	}

	payload := map[string]any{
		"listing":       match.Listing,
		"overall_score": match.Result.Overall,
		"price_score":   match.Result.PriceScore,
		"mileage_score": match.Result.MileageScore,
		"grade":         match.Result.Grade.String(),
		"match_details": match.Details,
	}

	matchJSON, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal match payload: %w", err)
	}

	prompt := buildPrompt(string(matchJSON))

	c.logger.Debug("gemini commentary request",
		zap.String("listing_id", match.Listing.ID()),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, c.maxLogLen)),
	)

	raw, err := c.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("gemini commentary response",
		zap.String("listing_id", match.Listing.ID()),
		zap.String("response_preview", logger.TruncateForLog(raw, c.maxLogLen)),
	)

	commentary, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}

	commentary.Raw = raw
	return commentary, nil
}

func buildPrompt(matchJSON string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Match:\n{{MATCH_JSON}}\n\nJSON Response:"
	}
	return strings.ReplaceAll(template, "{{MATCH_JSON}}", matchJSON)
}

func parseResponse(raw string) (*ai.Commentary, error) {
	cleaned := extractJSON(raw)

	var data struct {
		Verdict    string   `json:"verdict"`
		Highlights []string `json:"highlights"`
	}
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	verdict := strings.TrimSpace(data.Verdict)
	if verdict == "" {
		return nil, fmt.Errorf("gemini response has no verdict")
	}

	return &ai.Commentary{Verdict: verdict, Highlights: data.Highlights}, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}
