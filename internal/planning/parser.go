package planning

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// decisionSchema mirrors Decision but keeps automatable as a pointer so
// that a missing field is distinguishable from an explicit false.
type decisionSchema struct {
	Automatable *bool           `json:"automatable"`
	Workflow    json.RawMessage `json:"workflow"`
	Reason      *string         `json:"reason"`
}

// ParseDecision turns a raw LLM response into a trusted Decision.
//
// Markdown code fences are stripped first, then the body is decoded
// strictly against the decision contract; there is no best-effort
// extraction of JSON substrings. The validation rules are all mandatory:
// a boolean automatable field must be present; when it is true a workflow
// field must be present; when it is false a reason field must be present.
// Every parse or validation failure is reported as ErrInvalidResponse.
//
// Parsing is deterministic: the same raw text always yields the same
// decision or the same failure classification.
func ParseDecision(raw string) (*Decision, error) {
	body := stripCodeFences(raw)
	if body == "" {
		return nil, fmt.Errorf("%w: empty response body", ErrInvalidResponse)
	}

	decoder := json.NewDecoder(bytes.NewReader([]byte(body)))
	var schema decisionSchema
	if err := decoder.Decode(&schema); err != nil {
		return nil, fmt.Errorf("%w: failed to decode decision: %v", ErrInvalidResponse, err)
	}

	// Anything after the object, JSON or not, means the response was
	// not a single JSON document. Only a clean io.EOF is acceptable.
	var trailing json.RawMessage
	if err := decoder.Decode(&trailing); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing content after JSON object", ErrInvalidResponse)
	}

	if schema.Automatable == nil {
		return nil, fmt.Errorf("%w: missing boolean automatable field", ErrInvalidResponse)
	}

	decision := &Decision{Automatable: *schema.Automatable}

	if decision.Automatable {
		if len(schema.Workflow) == 0 || string(schema.Workflow) == "null" {
			return nil, fmt.Errorf("%w: automatable decision missing workflow", ErrInvalidResponse)
		}
		decision.Workflow = schema.Workflow
	} else {
		if schema.Reason == nil || *schema.Reason == "" {
			return nil, fmt.Errorf(
				"%w: non-automatable decision missing reason",
				ErrInvalidResponse,
			)
		}
		decision.Reason = *schema.Reason
	}

	return decision, nil
}

// stripCodeFences removes Markdown code-fence markers (``` or ```json)
// that models commonly wrap JSON responses in, and trims surrounding
// whitespace.
func stripCodeFences(raw string) string {
	text := strings.TrimSpace(raw)

	if strings.HasPrefix(text, "```") {
		// Drop the opening fence line, including any language tag.
		if idx := strings.IndexByte(text, '\n'); idx >= 0 {
			text = text[idx+1:]
		} else {
			text = strings.TrimPrefix(text, "```")
		}
	}

	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, "```")

	return strings.TrimSpace(text)
}
