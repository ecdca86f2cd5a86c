package onboarding

import "math"

// CompletionEvaluator decides when enough essential information has been
// gathered to stop. The threshold leaves deliberate slack: with 4 essential
// goals and 0.75, the dialogue ends at 3 collected, trading completeness for
// a shorter conversation.
type CompletionEvaluator struct {
	threshold float64
}

// NewCompletionEvaluator creates an evaluator; threshold outside (0,1] falls
// back to 0.75.
func NewCompletionEvaluator(threshold float64) *CompletionEvaluator {
	if threshold <= 0 || threshold > 1 {
		threshold = 0.75
	}
	return &CompletionEvaluator{threshold: threshold}
}

// IsComplete reports whether the essential-goal quota is met. No side effects.
func (e *CompletionEvaluator) IsComplete(r *Registry) bool {
	essential := r.EssentialKeys()
	if len(essential) == 0 {
		return true
	}
	collected := 0
	for _, key := range essential {
		if r.IsCollected(key) {
			collected++
		}
	}
	needed := int(math.Ceil(float64(len(essential)) * e.threshold))
	return collected >= needed
}
