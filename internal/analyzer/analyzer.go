// Package analyzer asks a hosted model to assess a pipeline run and turns the
// reply into a structured analysis.
package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/kamilpajak/ciscope/internal/llm"
	"github.com/kamilpajak/ciscope/pkg/models"
	"github.com/rs/zerolog"
)

// Source tells whether an analysis came from the model reply or the fallback.
type Source string

const (
	SourceParsed   Source = "parsed"
	SourceFallback Source = "fallback"
)

// SummaryChars bounds the fallback summary taken from the raw reply.
const SummaryChars = 500

// Input is the collected state of a pipeline run.
type Input struct {
	Git     models.GitContext
	Results *models.TestResults
	Output  string
}

// Outcome is the tagged result of one analysis.
type Outcome struct {
	Source       Source                `json:"source"`
	Result       models.AnalysisResult `json:"result"`
	Raw          string                `json:"raw"`
	Cause        string                `json:"cause,omitempty"` // model request error, if any
	Model        string                `json:"model,omitempty"`
	InputTokens  int                   `json:"input_tokens,omitempty"`
	OutputTokens int                   `json:"output_tokens,omitempty"`
	ElapsedMs    int64                 `json:"elapsed_ms,omitempty"`
}

// Parsed reports whether the model reply was decoded successfully.
func (o *Outcome) Parsed() bool {
	return o.Source == SourceParsed
}

// Analyzer sends one prompt per run to a model client.
type Analyzer struct {
	client  llm.Client
	emitter llm.ProgressEmitter
	logger  zerolog.Logger
}

// New creates an Analyzer. emitter may be nil.
func New(client llm.Client, emitter llm.ProgressEmitter, logger zerolog.Logger) *Analyzer {
	return &Analyzer{client: client, emitter: emitter, logger: logger}
}

func (a *Analyzer) emit(ev llm.ProgressEvent) {
	if a.emitter != nil {
		a.emitter.Emit(ev)
	}
}

// Analyze returns exactly one outcome. A failed model request degrades to the
// fallback analysis with Cause set.
func (a *Analyzer) Analyze(ctx context.Context, in Input) *Outcome {
	prompt := BuildPrompt(in)
	a.logger.Debug().Int("prompt_chars", len(prompt)).Str("model", a.client.Model()).Msg("Sending analysis request")

	a.emit(llm.ProgressEvent{
		Type:    "wait",
		Message: fmt.Sprintf("Analyzing with %s (%s)...", a.client.Provider(), a.client.Model()),
	})

	start := time.Now()
	resp, err := a.client.Complete(ctx, []llm.Message{{Role: "user", Content: prompt}})
	elapsed := time.Since(start)
	if err != nil {
		a.logger.Warn().Err(err).Msg("Model request failed, using fallback analysis")
		a.emit(llm.ProgressEvent{Type: "info", Message: "Model request failed, using fallback analysis"})
		out := Fallback("Model request failed: " + err.Error())
		out.Cause = err.Error()
		out.Model = a.client.Model()
		out.ElapsedMs = elapsed.Milliseconds()
		return out
	}

	out := ParseResponse(resp.Content)
	out.Model = resp.Model
	if out.Model == "" {
		out.Model = a.client.Model()
	}
	out.InputTokens = resp.InputTokens
	out.OutputTokens = resp.OutputTokens
	out.ElapsedMs = elapsed.Milliseconds()

	if !out.Parsed() {
		a.logger.Warn().Int("reply_chars", len(resp.Content)).Msg("Model reply is not valid JSON, using fallback analysis")
	}
	a.emit(llm.ProgressEvent{
		Type:    "done",
		Message: "Analysis complete",
		ModelMs: int(out.ElapsedMs),
		Tokens:  out.InputTokens + out.OutputTokens,
	})
	return out
}

// ParseResponse decodes a model reply into an analysis. A reply wrapped in a
// code fence is unwrapped first. Replies that cannot be decoded yield Fallback.
func ParseResponse(raw string) *Outcome {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		if parts := strings.Split(text, "```"); len(parts) > 1 {
			text = strings.TrimPrefix(parts[1], "json")
		}
	}

	result, err := decodeResult(text)
	if err != nil {
		if candidate := extractJSON(raw); candidate != "" {
			result, err = decodeResult(candidate)
		}
	}
	if err != nil {
		return Fallback(raw)
	}

	if result.RiskLevel == "" {
		result.RiskLevel = models.RiskMedium
	}
	return &Outcome{Source: SourceParsed, Result: *result, Raw: raw}
}

func decodeResult(text string) (*models.AnalysisResult, error) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "{") {
		return nil, fmt.Errorf("reply is not a JSON object")
	}
	var result models.AnalysisResult
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, fmt.Errorf("failed to parse analysis: %w", err)
	}
	return &result, nil
}

// Fallback builds the placeholder analysis used when the reply cannot be decoded.
func Fallback(raw string) *Outcome {
	return &Outcome{
		Source: SourceFallback,
		Raw:    raw,
		Result: models.AnalysisResult{
			Summary:             Head(raw, SummaryChars),
			RiskLevel:           models.RiskMedium,
			RiskReasons:         []string{"Unable to parse detailed analysis"},
			FailedTestsAnalysis: "See raw output",
			RegressionCheck:     "Manual review required",
			Recommendations:     []string{"Review test output manually"},
			QuickFixes:          []string{},
		},
	}
}

// extractJSON finds the first JSON object in text, inside a code fence or not.
func extractJSON(text string) string {
	if i := strings.Index(text, "```"); i >= 0 {
		rest := text[i+3:]
		if nl := strings.Index(rest, "\n"); nl >= 0 {
			rest = rest[nl+1:]
		}
		if end := strings.Index(rest, "```"); end >= 0 {
			if block := strings.TrimSpace(rest[:end]); strings.HasPrefix(block, "{") {
				return block
			}
		}
	}

	start := strings.Index(text, "{")
	if start < 0 {
		return ""
	}

	depth := 0
	inString, escaped := false, false
	for i := start; i < len(text); i++ {
		ch := text[i]
		switch {
		case escaped:
			escaped = false
		case ch == '\\' && inString:
			escaped = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == '{':
			depth++
		case ch == '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}
