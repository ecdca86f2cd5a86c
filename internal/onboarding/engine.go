package onboarding

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"go-onboard/internal/llm"
)

// State is the engine's position in the session lifecycle
type State string

const (
	StateInit           State = "INIT"
	StateAwaitingAnswer State = "AWAITING_ANSWER"
	StateEvaluating     State = "EVALUATING"
	StateComplete       State = "COMPLETE"
)

var (
	// ErrNotStarted is returned when an answer arrives before Start
	ErrNotStarted = errors.New("onboarding session not started")
	// ErrComplete is returned when the caller keeps talking to a finished
	// session; a caller contract violation, not a runtime failure.
	ErrComplete = errors.New("onboarding session already complete")
)

// EngineConfig carries the per-session policy knobs
type EngineConfig struct {
	CompletionThreshold float64
	HistoryWindow       int
	// ShouldFollowUp decides whether to ask a bonus follow-up after a turn.
	// Injectable so tests can force both branches; nil installs the default
	// random policy.
	ShouldFollowUp func(Turn) bool
	FollowUpRate   float64
}

// Engine owns one onboarding session: the goal registry, the turn log, and
// the in-progress profile. It is not shared across sessions. Calls are
// serialized with a mutex to stay safe against surface double-submission.
type Engine struct {
	mu sync.Mutex

	registry  *Registry
	generator *QuestionGenerator
	extractor *Extractor
	evaluator *CompletionEvaluator

	profile         UserProfile
	turns           []Turn
	conversation    []string // speaker-prefixed lines for oracle context
	currentQuestion *Question
	state           State
	shouldFollowUp  func(Turn) bool
}

// NewEngine wires a session around an injected completer. No package-level
// oracle client exists; tests pass a deterministic stub.
func NewEngine(completer llm.Completer, cfg EngineConfig) *Engine {
	registry := NewRegistry()

	followUp := cfg.ShouldFollowUp
	if followUp == nil {
		rate := cfg.FollowUpRate
		if rate <= 0 || rate > 1 {
			rate = 0.3
		}
		followUp = func(t Turn) bool {
			return rand.Float64() < rate
		}
	}

	return &Engine{
		registry:       registry,
		generator:      NewQuestionGenerator(completer, registry, cfg.HistoryWindow),
		extractor:      NewExtractor(completer, registry),
		evaluator:      NewCompletionEvaluator(cfg.CompletionThreshold),
		state:          StateInit,
		shouldFollowUp: followUp,
	}
}

// Start returns the fixed opening question. Idempotent only from INIT.
func (e *Engine) Start() (Question, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateInit {
		if e.state == StateComplete {
			return Question{}, ErrComplete
		}
		return *e.currentQuestion, nil
	}

	q := OpeningQuestion()
	e.currentQuestion = &q
	e.conversation = append(e.conversation, "Anna: "+q.Text)
	e.state = StateAwaitingAnswer
	return q, nil
}

// Resume rebuilds a dialogue whose in-memory engine was lost, from its
// persisted transcript and the partially saved profile. Collected values are
// re-registered so the session does not re-ask, and the next question is
// generated against the restored conversation. Only valid before Start;
// returns ErrComplete when the seed already satisfies the essential gate.
func (e *Engine) Resume(ctx context.Context, history []string, seed UserProfile) (Question, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateInit {
		if e.state == StateComplete {
			return Question{}, ErrComplete
		}
		return *e.currentQuestion, nil
	}
	if len(history) == 0 {
		q := OpeningQuestion()
		e.currentQuestion = &q
		e.conversation = append(e.conversation, "Anna: "+q.Text)
		e.state = StateAwaitingAnswer
		return q, nil
	}

	e.profile = seed
	for key, value := range goalFieldsFromProfile(seed) {
		e.registry.SetValue(key, value)
	}
	e.conversation = append([]string(nil), history...)

	if e.evaluator.IsComplete(e.registry) {
		e.state = StateComplete
		return Question{}, ErrComplete
	}
	next := e.generator.NextQuestion(ctx, e.conversation)
	if next == nil {
		e.state = StateComplete
		return Question{}, ErrComplete
	}

	e.currentQuestion = next
	e.conversation = append(e.conversation, "Anna: "+next.Text)
	e.state = StateAwaitingAnswer
	log.Printf("[Engine] Resumed session with %d transcript lines (collected: %v)",
		len(history), e.registry.CollectedKeys())
	return *next, nil
}

// SubmitAnswer records the answer, runs extraction, evaluates completion,
// and returns either the next question or the closing result. Oracle
// failures never surface as errors; the dialogue always makes forward
// progress.
func (e *Engine) SubmitAnswer(ctx context.Context, questionID, answer string) (*TurnResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.state {
	case StateInit:
		return nil, ErrNotStarted
	case StateComplete:
		return nil, ErrComplete
	}
	e.state = StateEvaluating

	category := CategoryPersonal
	openQuestion := false
	if e.currentQuestion != nil {
		category = e.currentQuestion.Category
		openQuestion = e.currentQuestion.Type == QuestionOpen
	}

	// The turn log grows regardless of extraction outcome
	turn := Turn{
		QuestionID: questionID,
		Answer:     answer,
		Timestamp:  time.Now(),
		Category:   category,
	}
	e.turns = append(e.turns, turn)
	e.conversation = append(e.conversation, "User: "+answer)

	fields := e.extractor.Process(ctx, answer)
	e.profile = ApplyExtraction(e.profile, fields)
	e.captureDirectAnswer(answer, fields)
	e.logProgress()

	// Optional bonus follow-up keeps the conversation from feeling scripted
	if openQuestion && e.shouldFollowUp(turn) {
		if fu := e.generator.FollowUp(ctx, answer, e.conversation); fu != nil {
			e.currentQuestion = fu
			e.conversation = append(e.conversation, "Anna: "+fu.Text)
			e.state = StateAwaitingAnswer
			return &TurnResult{Question: fu}, nil
		}
	}

	if e.evaluator.IsComplete(e.registry) {
		return e.finish(), nil
	}

	next := e.generator.NextQuestion(ctx, e.conversation)
	if next == nil {
		// Every goal collected; the essential gate is necessarily met too
		return e.finish(), nil
	}

	e.currentQuestion = next
	e.conversation = append(e.conversation, "Anna: "+next.Text)
	e.state = StateAwaitingAnswer
	return &TurnResult{Question: next}, nil
}

// captureDirectAnswer records the raw answer against the current question's
// target goal when the question was oracle-independent (the opener or a
// fallback) and extraction produced nothing for that goal. This is what keeps
// the dialogue converging when the oracle is down for the whole session.
func (e *Engine) captureDirectAnswer(answer string, extracted map[string]GoalValue) {
	q := e.currentQuestion
	if q == nil || q.TargetGoal == "" {
		return
	}
	if q.ID != "intro" && !strings.HasPrefix(q.ID, "fallback_") {
		return
	}
	if _, ok := extracted[q.TargetGoal]; ok || e.registry.IsCollected(q.TargetGoal) {
		return
	}
	trimmed := strings.TrimSpace(answer)
	if trimmed == "" {
		return
	}
	value := NewGoalValue(trimmed)
	e.registry.SetValue(q.TargetGoal, value)
	e.profile = ApplyExtraction(e.profile, map[string]GoalValue{q.TargetGoal: value})
}

func (e *Engine) finish() *TurnResult {
	e.state = StateComplete
	e.currentQuestion = nil
	message := ClosingMessage(e.profile)
	e.conversation = append(e.conversation, "Anna: "+message)
	log.Printf("[Engine] Session complete after %d turns (collected: %v)",
		len(e.turns), e.registry.CollectedKeys())
	return &TurnResult{Closing: &ClosingResult{Message: message, Profile: e.profile}}
}

func (e *Engine) logProgress() {
	essential := e.registry.EssentialKeys()
	collected := 0
	for _, key := range essential {
		if e.registry.IsCollected(key) {
			collected++
		}
	}
	log.Printf("[Engine] Progress: %d/%d essential info collected (%v)",
		collected, len(essential), e.registry.CollectedKeys())
}

// State returns the engine's lifecycle state
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Profile returns a copy of the in-progress profile
func (e *Engine) Profile() UserProfile {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.profile
}

// CollectedKeys lists the goals collected so far
func (e *Engine) CollectedKeys() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.registry.CollectedKeys()
}

// OutstandingKeys lists the goals still missing
func (e *Engine) OutstandingKeys() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.registry.OutstandingKeys()
}

// Turns returns a copy of the append-only turn log
func (e *Engine) Turns() []Turn {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Turn, len(e.turns))
	copy(out, e.turns)
	return out
}

// CurrentQuestion returns the question awaiting an answer, nil otherwise
func (e *Engine) CurrentQuestion() *Question {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.currentQuestion == nil {
		return nil
	}
	q := *e.currentQuestion
	return &q
}
