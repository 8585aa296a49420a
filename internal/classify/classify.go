// Package classify implements the model-selection heuristic that maps a
// task description to one of a small fixed set of model identifiers.
package classify

import "strings"

// Tier describes the estimated difficulty of a task description.
type Tier string

// Possible tiers, from cheapest to most capable model.
const (
	TierEasy         Tier = "easy"
	TierIntermediate Tier = "intermediate"
	TierComplex      Tier = "complex"
)

// Model identifiers per tier.
const (
	ModelEasy         = "gemini-2.5-flash-lite"
	ModelIntermediate = "gemini-2.5-flash"
	ModelComplex      = "gemini-2.5-pro"
)

// Provider identifies the LLM backend the model identifiers belong to.
const Provider = "gemini"

// complexKeywords suggest multi-step or data-heavy automations that
// benefit from the most capable model.
var complexKeywords = []string{
	"analyze",
	"compare",
	"aggregate",
	"transform",
	"integrate",
	"synchronize",
	"orchestrate",
	"multiple",
	"conditional",
	"workflow",
}

// easyKeywords suggest single-step automations a small model handles well.
var easyKeywords = []string{
	"send email",
	"reminder",
	"notify",
	"notification",
	"forward",
	"copy",
	"schedule a",
}

// Selection is the outcome of the heuristic: the tier and the model to use.
type Selection struct {
	Tier  Tier
	Model string
}

// Select scores the description against the fixed keyword sets and picks a
// tier. Matching is substring containment on the lower-cased text, not
// tokenized. The rule, in order: two or more complex matches selects the
// complex tier; at least one easy match with zero complex matches selects
// the easy tier; everything else (including ties and no matches at all)
// resolves to intermediate. This is a heuristic, not a guarantee; it always
// returns a value.
func Select(description string) Selection {
	text := strings.ToLower(description)

	complexCount := countMatches(text, complexKeywords)
	easyCount := countMatches(text, easyKeywords)

	switch {
	case complexCount >= 2:
		return Selection{Tier: TierComplex, Model: ModelComplex}
	case easyCount >= 1 && complexCount == 0:
		return Selection{Tier: TierEasy, Model: ModelEasy}
	default:
		return Selection{Tier: TierIntermediate, Model: ModelIntermediate}
	}
}

func countMatches(text string, keywords []string) int {
	count := 0
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			count++
		}
	}
	return count
}
