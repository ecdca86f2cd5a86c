package onboarding

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"go-onboard/internal/llm"
)

// Extractor pulls structured goal values out of free-form answers. Extraction
// is best effort: a missed fact on one turn is recoverable, because later
// turns and fallback questions can still target it.
type Extractor struct {
	completer llm.Completer
	registry  *Registry
}

// NewExtractor creates an extractor bound to one session's registry
func NewExtractor(completer llm.Completer, registry *Registry) *Extractor {
	return &Extractor{completer: completer, registry: registry}
}

// Process asks the oracle which goal values the answer contains and records
// them in the registry. It returns the extracted fields for profile routing.
// Every failure path returns an empty map; nothing is ever raised.
func (e *Extractor) Process(ctx context.Context, answer string) map[string]GoalValue {
	prompt := e.buildPrompt(answer)

	raw, err := e.completer.Complete(ctx, prompt)
	if err != nil {
		log.Printf("[Extractor] Oracle call failed, nothing extracted this turn: %v", err)
		return map[string]GoalValue{}
	}

	// Decode keys individually: one odd-shaped value (an object, say) must
	// not void the valid siblings in the same response.
	rawFields := map[string]json.RawMessage{}
	if err := decodeOracleJSON(raw, &rawFields); err != nil {
		log.Printf("[Extractor] Unusable oracle output, nothing extracted this turn: %v", err)
		return map[string]GoalValue{}
	}

	recorded := map[string]GoalValue{}
	for key, rawValue := range rawFields {
		var value GoalValue
		if err := json.Unmarshal(rawValue, &value); err != nil {
			log.Printf("[Extractor] Skipping %s, unusable value shape: %v", key, err)
			continue
		}
		if value.IsZero() {
			continue
		}
		if _, known := goalDescriptions[key]; !known {
			if profileOnlyKeys[key] {
				recorded[key] = value
			}
			// Hallucinated keys are dropped, not errors
			continue
		}
		e.registry.SetValue(key, value)
		recorded[key] = value
		log.Printf("[Extractor] Collected %s: %s", key, value.String())
	}
	return recorded
}

// Facts worth keeping in the profile even though no goal tracks them
var profileOnlyKeys = map[string]bool{
	"industry":   true,
	"experience": true,
}

func (e *Extractor) buildPrompt(answer string) string {
	var lines []string
	for _, key := range goalKeys {
		lines = append(lines, fmt.Sprintf("- %s: %s", key, goalDescriptions[key]))
	}

	return fmt.Sprintf(`Extract structured information from this user response: "%s"

Based on the conversation context, identify any of these pieces of information:
%s

Return ONLY a JSON object with the information found. If nothing is found, return {}.

Example: {"name": "Marcus", "role": "startup founder"}

JSON:`, answer, strings.Join(lines, "\n"))
}
