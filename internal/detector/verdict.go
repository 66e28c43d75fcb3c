package detector

import (
	"encoding/json"
	"strings"
)

// parseFailedExplanation is the explanation used when the provider's text
// cannot be parsed at all. A malformed model response must never fail the
// request; it degrades to an explicit "could not determine" verdict.
const parseFailedExplanation = "Failed to parse analysis result."

// Verdict is the normalized outcome of one model invocation.
type Verdict struct {
	IsDeepfake  bool    `json:"isDeepfake"`
	Confidence  float64 `json:"confidence"` // 0..100
	Explanation string  `json:"explanation"`

	// Raw is the unmodified provider response text, kept as an opaque audit
	// blob on persisted scan records. Not part of the JSON shape.
	Raw string `json:"-"`
}

// verdictFields mirrors the JSON object the prompt asks for, with pointers so
// each missing field can be defaulted independently rather than treating the
// whole payload as unparseable.
type verdictFields struct {
	IsDeepfake  *bool    `json:"isDeepfake"`
	Confidence  *float64 `json:"confidence"`
	Explanation *string  `json:"explanation"`
}

// ParseVerdict normalizes free-form provider text into a Verdict.
// Total parse failure yields the safe default verdict instead of an error;
// individually missing fields fall back to their zero values.
func ParseVerdict(text string) *Verdict {
	v := &Verdict{Raw: text}

	var fields verdictFields
	if err := json.Unmarshal([]byte(text), &fields); err != nil {
		// The provider sometimes wraps the JSON in prose or code fences even
		// when asked not to; retry on the first brace-delimited object.
		extracted, ok := extractJSONObject(text)
		if !ok || json.Unmarshal([]byte(extracted), &fields) != nil {
			v.Explanation = parseFailedExplanation
			return v
		}
	}

	if fields.IsDeepfake != nil {
		v.IsDeepfake = *fields.IsDeepfake
	}
	if fields.Confidence != nil {
		v.Confidence = *fields.Confidence
	}
	if fields.Explanation != nil {
		v.Explanation = *fields.Explanation
	}
	return v
}

// extractJSONObject finds the first complete JSON object in a string.
func extractJSONObject(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}
