package onboarding

import (
	"context"
	"strings"
	"testing"
)

func TestNextQuestion_EmptyHistoryReturnsFixedOpener(t *testing.T) {
	// The opener must be identical regardless of oracle behavior
	for _, completer := range []struct {
		name string
		c    interface {
			Complete(context.Context, string) (string, error)
		}
	}{
		{"healthy", &stubCompleter{responses: []string{`{"question":"ignored"}`}}},
		{"failing", failingCompleter{}},
		{"garbage", garbageCompleter{}},
	} {
		t.Run(completer.name, func(t *testing.T) {
			g := NewQuestionGenerator(completer.c, NewRegistry(), 3)
			q := g.NextQuestion(context.Background(), nil)
			if q == nil {
				t.Fatal("opener must never be nil")
			}
			if q.ID != "intro" || q.TargetGoal != GoalName {
				t.Errorf("unexpected opener: %+v", q)
			}
			if !strings.Contains(q.Text, "What should I call you?") {
				t.Errorf("opener text changed: %q", q.Text)
			}
		})
	}
}

func TestNextQuestion_AllCollectedReturnsNil(t *testing.T) {
	r := NewRegistry()
	for _, k := range goalKeys {
		r.SetValue(k, NewGoalValue("x"))
	}
	g := NewQuestionGenerator(&stubCompleter{}, r, 3)

	if q := g.NextQuestion(context.Background(), []string{"User: hi"}); q != nil {
		t.Errorf("expected nil when nothing is outstanding, got %+v", q)
	}
}

func TestNextQuestion_UsesOracleEnvelope(t *testing.T) {
	stub := &stubCompleter{responses: []string{
		`{"question":"What kind of work do you do?","type":"open","target_info":"role"}`,
	}}
	g := NewQuestionGenerator(stub, NewRegistry(), 3)

	q := g.NextQuestion(context.Background(), []string{"Anna: hi", "User: hello"})
	if q == nil {
		t.Fatal("expected a question")
	}
	if q.Text != "What kind of work do you do?" {
		t.Errorf("oracle question text lost: %q", q.Text)
	}
	if q.TargetGoal != GoalRole || q.Category != CategoryPersonal {
		t.Errorf("target routing wrong: %+v", q)
	}
	if q.Weight != 3 {
		t.Errorf("generated questions carry constant weight 3, got %d", q.Weight)
	}
}

func TestNextQuestion_ChoiceTypeKeepsChoices(t *testing.T) {
	stub := &stubCompleter{responses: []string{
		`{"question":"How many emails a day?","type":"choice","choices":["<50","50-200","Other"],"target_info":"email_volume"}`,
	}}
	g := NewQuestionGenerator(stub, NewRegistry(), 3)

	q := g.NextQuestion(context.Background(), []string{"User: hi"})
	if q.Type != QuestionChoice || len(q.Choices) != 3 {
		t.Errorf("choice envelope mishandled: %+v", q)
	}
	if q.Choices[len(q.Choices)-1] != "Other" {
		t.Errorf("expected Other escape option last, got %v", q.Choices)
	}
}

func TestNextQuestion_FallbackOnOracleFailure(t *testing.T) {
	g := NewQuestionGenerator(failingCompleter{}, NewRegistry(), 3)

	q := g.NextQuestion(context.Background(), []string{"User: hi"})
	if q == nil {
		t.Fatal("fallback must produce a question")
	}
	// First outstanding goal in declaration order is name
	if q.ID != "fallback_name" || q.TargetGoal != GoalName {
		t.Errorf("expected fallback for first outstanding goal, got %+v", q)
	}
}

func TestNextQuestion_FallbackOnGarbageOutput(t *testing.T) {
	r := NewRegistry()
	r.SetValue(GoalName, NewGoalValue("Marcus"))
	g := NewQuestionGenerator(garbageCompleter{}, r, 3)

	q := g.NextQuestion(context.Background(), []string{"User: hi"})
	if q == nil || q.ID != "fallback_role" {
		t.Errorf("expected fallback for role, got %+v", q)
	}
}

func TestNextQuestion_MissingQuestionFieldFallsBack(t *testing.T) {
	stub := &stubCompleter{responses: []string{`{"type":"open","target_info":"role"}`}}
	g := NewQuestionGenerator(stub, NewRegistry(), 3)

	q := g.NextQuestion(context.Background(), []string{"User: hi"})
	if q == nil || !strings.HasPrefix(q.ID, "fallback_") {
		t.Errorf("envelope without question text must fall back, got %+v", q)
	}
}

func TestNextQuestion_UnknownTargetInfoRedirected(t *testing.T) {
	stub := &stubCompleter{responses: []string{
		`{"question":"Tell me something","type":"open","target_info":"zodiac_sign"}`,
	}}
	g := NewQuestionGenerator(stub, NewRegistry(), 3)

	q := g.NextQuestion(context.Background(), []string{"User: hi"})
	if q.TargetGoal != GoalName {
		t.Errorf("unknown target_info should map to first outstanding goal, got %q", q.TargetGoal)
	}
}

func TestNextQuestion_PromptContextBounded(t *testing.T) {
	stub := &stubCompleter{responses: []string{`{"question":"ok","type":"open","target_info":"role"}`}}
	g := NewQuestionGenerator(stub, NewRegistry(), 3)

	history := []string{"User: one", "Anna: two", "User: three", "Anna: four", "User: five"}
	g.NextQuestion(context.Background(), history)

	if len(stub.calls) != 1 {
		t.Fatalf("expected one oracle call, got %d", len(stub.calls))
	}
	prompt := stub.calls[0]
	if strings.Contains(prompt, "User: one") || strings.Contains(prompt, "Anna: two") {
		t.Error("prompt must only embed the recent history window")
	}
	if !strings.Contains(prompt, "User: five") {
		t.Error("prompt must include the latest turn")
	}
}

func TestFollowUp_NilOnFailure(t *testing.T) {
	g := NewQuestionGenerator(failingCompleter{}, NewRegistry(), 3)
	if fu := g.FollowUp(context.Background(), "answer", []string{"User: hi"}); fu != nil {
		t.Errorf("follow-up must be skipped on oracle failure, got %+v", fu)
	}
}

func TestFollowUp_ReturnsFollowUpType(t *testing.T) {
	stub := &stubCompleter{responses: []string{`{"question":"Oh interesting, how long?","type":"follow_up"}`}}
	g := NewQuestionGenerator(stub, NewRegistry(), 3)

	fu := g.FollowUp(context.Background(), "I run a bakery", []string{"User: I run a bakery"})
	if fu == nil || fu.Type != QuestionFollowUp {
		t.Errorf("expected follow_up question, got %+v", fu)
	}
}
