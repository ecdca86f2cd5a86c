package onboarding

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// decodeOracleJSON parses a JSON object out of raw oracle text. Models wrap
// output in code fences, prepend chatter, or emit slightly broken JSON, so
// the decode is layered: strip fences, isolate the outermost object, plain
// unmarshal, then a repair pass before giving up.
func decodeOracleJSON(raw string, v interface{}) error {
	content := strings.TrimSpace(raw)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	if start := strings.Index(content, "{"); start >= 0 {
		if end := strings.LastIndex(content, "}"); end > start {
			content = content[start : end+1]
		}
	}
	if content == "" {
		return fmt.Errorf("oracle output contained no JSON")
	}

	if err := json.Unmarshal([]byte(content), v); err == nil {
		return nil
	}

	repaired, err := jsonrepair.JSONRepair(content)
	if err != nil {
		return fmt.Errorf("oracle output is not repairable JSON: %w", err)
	}
	if err := json.Unmarshal([]byte(repaired), v); err != nil {
		return fmt.Errorf("failed to parse repaired oracle output: %w", err)
	}
	return nil
}
