package onboarding

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// QuestionType categorizes how the surface should render a question
type QuestionType string

const (
	QuestionOpen     QuestionType = "open"
	QuestionChoice   QuestionType = "choice"
	QuestionFollowUp QuestionType = "follow_up"
)

// Category groups questions by the profile section they feed
type Category string

const (
	CategoryPersonal    Category = "personal"
	CategoryWork        Category = "work"
	CategoryPreferences Category = "preferences"
	CategoryGoals       Category = "goals"
	CategoryContact     Category = "contact"
)

// Question is the ephemeral prompt shown to the user. It is held only until
// the matching answer is recorded.
type Question struct {
	ID         string       `json:"id"`
	Type       QuestionType `json:"type"`
	Text       string       `json:"question"`
	Choices    []string     `json:"choices,omitempty"`
	Category   Category     `json:"category"`
	Weight     int          `json:"weight"` // importance 1-5, informational only
	TargetGoal string       `json:"target_goal,omitempty"`
}

// Turn is one recorded user utterance plus the question it answered.
// The turn log is append-only.
type Turn struct {
	QuestionID string    `json:"question_id"`
	Answer     string    `json:"answer"`
	Timestamp  time.Time `json:"timestamp"`
	Category   Category  `json:"category"`
}

// ClosingResult is handed to the surface once the dialogue completes
type ClosingResult struct {
	Message string      `json:"message"`
	Profile UserProfile `json:"profile"`
}

// TurnResult is the outcome of one submitted answer: either the next question
// or the closing hand-off, never both.
type TurnResult struct {
	Question *Question      `json:"question,omitempty"`
	Closing  *ClosingResult `json:"closing,omitempty"`
}

// GoalValue holds an extracted fact. The oracle is inconsistent about shape:
// the same goal may come back as a string, an array, a bare number, or a
// boolean, so unmarshalling accepts all of them.
type GoalValue struct {
	items []string
}

// NewGoalValue builds a value from one or more strings
func NewGoalValue(items ...string) GoalValue {
	return GoalValue{items: items}
}

// UnmarshalJSON handles string, array-of-string, and numeric formats
func (v *GoalValue) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		if str == "" {
			v.items = nil
		} else {
			v.items = []string{str}
		}
		return nil
	}

	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		cleaned := make([]string, 0, len(arr))
		for _, s := range arr {
			if s != "" {
				cleaned = append(cleaned, s)
			}
		}
		v.items = cleaned
		return nil
	}

	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		v.items = []string{strconv.FormatFloat(num, 'f', -1, 64)}
		return nil
	}

	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		v.items = []string{strconv.FormatBool(b)}
		return nil
	}

	return fmt.Errorf("goal value must be string, array of strings, number, or boolean")
}

// MarshalJSON emits a single string when the value holds one item
func (v GoalValue) MarshalJSON() ([]byte, error) {
	if len(v.items) == 1 {
		return json.Marshal(v.items[0])
	}
	return json.Marshal(v.items)
}

// IsZero reports whether no usable value was extracted
func (v GoalValue) IsZero() bool {
	return len(v.items) == 0
}

// String flattens the value for single-string profile leaves
func (v GoalValue) String() string {
	return strings.Join(v.items, ", ")
}

// List returns the value as a slice, for list-shaped profile leaves
func (v GoalValue) List() []string {
	out := make([]string, len(v.items))
	copy(out, v.items)
	return out
}
