// Package detector calls an external vision model to judge whether an image
// is AI-generated or manipulated, with deterministic fallback across model
// variants and lenient normalization of the model's output.
package detector

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrAllModelsFailed is returned when every candidate model has been tried
// without producing a response. It wraps the last underlying provider error.
var ErrAllModelsFailed = errors.New("all detection models failed")

// Default candidate models: a configurable primary followed by fixed-priority
// fallbacks, tried strictly in order.
const DefaultPrimaryModel = "gemini-2.0-flash-exp"

var fallbackModels = []string{"gemini-1.5-pro", "gemini-1.5-flash"}

// forensicPrompt is the fixed instruction sent alongside every image.
// Temperature 0 plus an explicit JSON response type keep the output as
// deterministic as the provider allows.
const forensicPrompt = `You are a world-class digital forensics expert. Analyze this image for signs of AI generation or deepfake manipulation.

Look for:
- Inconsistent lighting or shadows
- Unnatural skin textures or hair rendering
- Asymmetries in eyes, ears, or accessories
- Background anomalies or warping
- Metadata inconsistencies (if visible)

Return a JSON object with:
- isDeepfake: boolean (true if likely AI-generated/manipulated)
- confidence: number (0-100, representing your certainty)
- explanation: string (concise explanation of your findings)

Return ONLY valid JSON.`

// ErrorKind classifies provider failures for the fallback policy.
type ErrorKind int

const (
	KindOther ErrorKind = iota
	KindNotFound
	KindRateLimited
)

// ProviderError carries the classification of an upstream failure alongside
// the underlying error.
type ProviderError struct {
	Kind ErrorKind
	Err  error
}

func (e *ProviderError) Error() string { return e.Err.Error() }
func (e *ProviderError) Unwrap() error { return e.Err }

// KindOf extracts the classification from an error chain.
// Errors that are not ProviderErrors classify as KindOther.
func KindOf(err error) ErrorKind {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindOther
}

// Provider is the minimal surface of a vision-language model provider:
// one generate call per (model, prompt, image) returning free-form text.
type Provider interface {
	Generate(ctx context.Context, model, prompt string, imageData []byte, mimeType string) (string, error)
}

// shouldTryNext is the fallback policy as a pure predicate over the error
// classification. Retired models (not found) and rate limits obviously move
// on to the next candidate; every other failure does too, favoring robustness
// over fast failure. The distinction still matters for logging and for the
// final error reported after exhaustion.
func shouldTryNext(kind ErrorKind) bool {
	switch kind {
	case KindNotFound, KindRateLimited:
		return true
	default:
		return true
	}
}

// Invoker runs the sequential fallback loop across an ordered candidate list.
// At most one upstream call is in flight at a time; latency is additive
// across failed attempts by design.
type Invoker struct {
	provider Provider
	models   []string
	logger   *zap.Logger
}

// NewInvoker creates an Invoker. primaryModel overrides the default first
// candidate; the fallback chain after it is fixed.
func NewInvoker(provider Provider, primaryModel string, logger *zap.Logger) *Invoker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if primaryModel == "" {
		primaryModel = DefaultPrimaryModel
	}
	candidates := append([]string{primaryModel}, fallbackModels...)
	return &Invoker{provider: provider, models: candidates, logger: logger}
}

// Candidates returns the ordered model list, primarily for logging.
func (inv *Invoker) Candidates() []string {
	out := make([]string, len(inv.models))
	copy(out, inv.models)
	return out
}

// Invoke tries each candidate model in order and normalizes the first
// non-empty response into a Verdict. If every candidate fails, the last
// recorded error is propagated wrapped in ErrAllModelsFailed; there is no
// silent fallback to a default verdict at this layer.
func (inv *Invoker) Invoke(ctx context.Context, imageData []byte, mimeType string) (*Verdict, error) {
	var lastErr error

	for _, model := range inv.models {
		inv.logger.Info("trying detection model", zap.String("model", model))

		text, err := inv.provider.Generate(ctx, model, forensicPrompt, imageData, mimeType)
		if err != nil {
			lastErr = err
			kind := KindOf(err)
			inv.logger.Warn("detection model failed",
				zap.String("model", model),
				zap.Int("errorKind", int(kind)),
				zap.Error(err),
			)
			if shouldTryNext(kind) {
				continue
			}
			break
		}
		if text == "" {
			lastErr = fmt.Errorf("model %q returned an empty response", model)
			inv.logger.Warn("detection model returned empty response", zap.String("model", model))
			continue
		}

		// First non-empty response wins; remaining candidates are not tried.
		return ParseVerdict(text), nil
	}

	if lastErr == nil {
		lastErr = errors.New("no model candidates configured")
	}
	return nil, fmt.Errorf("%w: %w", ErrAllModelsFailed, lastErr)
}
