package onboarding

// The fixed set of facts the dialogue tries to learn, in the order fallback
// questions walk through them. Keys never change mid-session.
const (
	GoalName                 = "name"
	GoalRole                 = "role"
	GoalCompany              = "company"
	GoalEmailChallenges      = "email_challenges"
	GoalEmailVolume          = "email_volume"
	GoalWorkGoals            = "work_goals"
	GoalCommunicationStyle   = "communication_style"
	GoalAutomationPreference = "automation_preference"
)

var goalKeys = []string{
	GoalName,
	GoalRole,
	GoalCompany,
	GoalEmailChallenges,
	GoalEmailVolume,
	GoalWorkGoals,
	GoalCommunicationStyle,
	GoalAutomationPreference,
}

// The subset that counts toward the completion threshold
var essentialGoalKeys = []string{
	GoalName,
	GoalRole,
	GoalEmailChallenges,
	GoalAutomationPreference,
}

// Natural-language descriptions embedded in the extraction prompt
var goalDescriptions = map[string]string{
	GoalName:                 "What should we call them?",
	GoalRole:                 "Their job title or role",
	GoalCompany:              "Company name or type of business",
	GoalEmailChallenges:      "Email problems they mentioned",
	GoalEmailVolume:          "How many emails they handle",
	GoalWorkGoals:            "Professional goals or what they want to achieve",
	GoalCommunicationStyle:   "How they prefer to communicate",
	GoalAutomationPreference: "How much AI help they want",
}

// goalCategories routes a goal key to the question category it belongs to
var goalCategories = map[string]Category{
	GoalName:                 CategoryPersonal,
	GoalRole:                 CategoryPersonal,
	GoalCompany:              CategoryPersonal,
	GoalEmailChallenges:      CategoryWork,
	GoalEmailVolume:          CategoryWork,
	GoalWorkGoals:            CategoryGoals,
	GoalCommunicationStyle:   CategoryPreferences,
	GoalAutomationPreference: CategoryPreferences,
}

func categoryForGoal(key string) Category {
	if c, ok := goalCategories[key]; ok {
		return c
	}
	return CategoryPersonal
}

type goalEntry struct {
	collected bool
	value     GoalValue
}

// Registry tracks which information goals have been collected. Owned by one
// engine instance; mutated only through SetValue.
type Registry struct {
	order   []string
	entries map[string]*goalEntry
}

// NewRegistry creates a registry with every goal outstanding
func NewRegistry() *Registry {
	r := &Registry{
		order:   goalKeys,
		entries: make(map[string]*goalEntry, len(goalKeys)),
	}
	for _, k := range goalKeys {
		r.entries[k] = &goalEntry{}
	}
	return r
}

// IsCollected reports whether a goal has a value. Unknown keys are never
// collected.
func (r *Registry) IsCollected(key string) bool {
	e, ok := r.entries[key]
	return ok && e.collected
}

// SetValue records a goal value. Unknown keys and empty values are silently
// ignored: unrecognized oracle output must never derail the dialogue.
// Setting an already-collected goal overwrites it (last write wins).
func (r *Registry) SetValue(key string, value GoalValue) {
	e, ok := r.entries[key]
	if !ok || value.IsZero() {
		return
	}
	e.collected = true
	e.value = value
}

// Value returns the collected value for a goal, or a zero value
func (r *Registry) Value(key string) GoalValue {
	if e, ok := r.entries[key]; ok {
		return e.value
	}
	return GoalValue{}
}

// OutstandingKeys lists uncollected goals in declaration order, so question
// generation is deterministic for a given oracle behavior.
func (r *Registry) OutstandingKeys() []string {
	var out []string
	for _, k := range r.order {
		if !r.entries[k].collected {
			out = append(out, k)
		}
	}
	return out
}

// CollectedKeys lists collected goals in declaration order
func (r *Registry) CollectedKeys() []string {
	var out []string
	for _, k := range r.order {
		if r.entries[k].collected {
			out = append(out, k)
		}
	}
	return out
}

// EssentialKeys returns the goals counted toward completion
func (r *Registry) EssentialKeys() []string {
	out := make([]string, len(essentialGoalKeys))
	copy(out, essentialGoalKeys)
	return out
}
