package extract

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/suh004757/AI-Invoice-Generator/internal/invoice"
	"github.com/suh004757/AI-Invoice-Generator/internal/llm"
)

// Verdict is the structured result of asking the backend to judge a prior
// extraction against the original document.
type Verdict struct {
	IsValid     bool     `json:"is_valid"`
	Confidence  float64  `json:"confidence_score"`
	Errors      []string `json:"errors"`
	Warnings    []string `json:"warnings"`
	Suggestions []string `json:"suggestions"`
}

// Validate sends the self-check prompt and normalizes the response into a
// Verdict. It never fails: a backend error or unparsable response produces
// an invalid verdict carrying a single diagnostic error.
func (e *Extractor) Validate(ctx context.Context, rec *invoice.ExtractedRecord, poText string) Verdict {
	rid := uuid.New().String()
	start := time.Now()

	system, user := llm.BuildValidationPrompt(rec, poText)

	response, err := e.client.Chat(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: system},
		{Role: llm.RoleUser, Content: user},
	})
	if err != nil {
		e.logger.Error("validate.backend_error", "req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return failedVerdict("Validation error: " + err.Error())
	}

	tree, ok := llm.ParseJSONResponse(response)
	if !ok {
		e.logger.Error("validate.parse_failure", "req_id", rid,
			"elapsed_ms", time.Since(start).Milliseconds())
		return failedVerdict("Failed to parse validation response")
	}

	verdict := decodeVerdict(tree)
	e.logger.Info("validate.ok", "req_id", rid,
		"is_valid", verdict.IsValid,
		"confidence", verdict.Confidence,
		"errors", len(verdict.Errors),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return verdict
}

func failedVerdict(diagnostic string) Verdict {
	return Verdict{
		IsValid:     false,
		Confidence:  0.0,
		Errors:      []string{diagnostic},
		Warnings:    []string{},
		Suggestions: []string{},
	}
}

func decodeVerdict(tree any) Verdict {
	m, ok := tree.(map[string]any)
	if !ok {
		return failedVerdict("Failed to parse validation response")
	}

	v := Verdict{
		Warnings:    []string{},
		Suggestions: []string{},
		Errors:      []string{},
	}
	if b, ok := m["is_valid"].(bool); ok {
		v.IsValid = b
	}
	if f, ok := m["confidence_score"].(float64); ok {
		v.Confidence = f
	}
	v.Errors = append(v.Errors, stringsAt(m, "errors")...)
	v.Warnings = append(v.Warnings, stringsAt(m, "warnings")...)
	v.Suggestions = append(v.Suggestions, stringsAt(m, "suggestions")...)
	return v
}

func stringsAt(m map[string]any, key string) []string {
	raw, ok := m[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
