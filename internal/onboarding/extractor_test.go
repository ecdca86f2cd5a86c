package onboarding

import (
	"context"
	"reflect"
	"strings"
	"testing"
)

func TestExtractor_SetsRegistryValues(t *testing.T) {
	r := NewRegistry()
	stub := &stubCompleter{responses: []string{`{"name":"Marcus","role":"startup founder"}`}}
	e := NewExtractor(stub, r)

	fields := e.Process(context.Background(), "I'm Marcus, I run a startup")

	if !r.IsCollected(GoalName) || !r.IsCollected(GoalRole) {
		t.Errorf("registry not updated: collected=%v", r.CollectedKeys())
	}
	if fields[GoalName].String() != "Marcus" {
		t.Errorf("extracted fields not returned: %v", fields)
	}
}

func TestExtractor_EmptyObjectLeavesRegistryUnchanged(t *testing.T) {
	r := NewRegistry()
	stub := &stubCompleter{responses: []string{`{}`}}
	e := NewExtractor(stub, r)

	fields := e.Process(context.Background(), "asdfghjkl")

	if len(fields) != 0 {
		t.Errorf("expected no fields for empty extraction, got %v", fields)
	}
	if len(r.CollectedKeys()) != 0 {
		t.Errorf("registry must be unchanged, got %v", r.CollectedKeys())
	}
}

func TestExtractor_OracleFailureIsSilent(t *testing.T) {
	r := NewRegistry()
	e := NewExtractor(failingCompleter{}, r)

	// Must not panic or return an error signal of any kind
	fields := e.Process(context.Background(), "I'm Marcus")
	if len(fields) != 0 || len(r.CollectedKeys()) != 0 {
		t.Errorf("failed extraction must yield nothing, got fields=%v collected=%v", fields, r.CollectedKeys())
	}
}

func TestExtractor_GarbageOutputIsSilent(t *testing.T) {
	r := NewRegistry()
	e := NewExtractor(garbageCompleter{}, r)

	if fields := e.Process(context.Background(), "hello"); len(fields) != 0 {
		t.Errorf("garbage output must yield nothing, got %v", fields)
	}
}

func TestExtractor_MixedShapesKeepValidSiblings(t *testing.T) {
	r := NewRegistry()
	stub := &stubCompleter{responses: []string{
		`{"name":"Ada","automation_preference":true,"role":{"title":"engineer"}}`,
	}}
	e := NewExtractor(stub, r)

	fields := e.Process(context.Background(), "I'm Ada and yes, automate everything")

	if fields[GoalName].String() != "Ada" {
		t.Errorf("valid sibling lost: %v", fields)
	}
	if fields[GoalAutomationPreference].String() != "true" {
		t.Errorf("boolean value mishandled: %v", fields)
	}
	if r.IsCollected(GoalRole) {
		t.Errorf("object-shaped value should be skipped, not recorded")
	}
	if !r.IsCollected(GoalName) || !r.IsCollected(GoalAutomationPreference) {
		t.Errorf("registry missing valid keys: %v", r.CollectedKeys())
	}
}

func TestExtractor_UnknownKeysIgnored(t *testing.T) {
	r := NewRegistry()
	stub := &stubCompleter{responses: []string{`{"name":"Ada","favorite_color":"green"}`}}
	e := NewExtractor(stub, r)

	fields := e.Process(context.Background(), "I'm Ada and I like green")

	if !r.IsCollected(GoalName) {
		t.Error("known key must still be recorded")
	}
	if _, ok := fields["favorite_color"]; ok {
		t.Error("hallucinated key must be dropped")
	}
}

func TestExtractor_ProfileOnlyKeysPassThrough(t *testing.T) {
	r := NewRegistry()
	stub := &stubCompleter{responses: []string{`{"role":"PM","industry":"fintech"}`}}
	e := NewExtractor(stub, r)

	fields := e.Process(context.Background(), "I'm a PM in fintech")

	if fields["industry"].String() != "fintech" {
		t.Errorf("industry should pass through for profile routing, got %v", fields)
	}
	if r.IsCollected("industry") {
		t.Error("profile-only keys must not enter the registry")
	}
}

func TestExtractor_Idempotent(t *testing.T) {
	r := NewRegistry()
	stub := &stubCompleter{responses: []string{
		`{"email_challenges":"too many newsletters"}`,
		`{"email_challenges":"too many newsletters"}`,
	}}
	e := NewExtractor(stub, r)

	e.Process(context.Background(), "too many newsletters")
	first := r.Value(GoalEmailChallenges).List()
	e.Process(context.Background(), "too many newsletters")
	second := r.Value(GoalEmailChallenges).List()

	if !reflect.DeepEqual(first, second) {
		t.Errorf("same answer twice must leave the same state: %v vs %v", first, second)
	}
}

func TestExtractor_PromptEnumeratesAllGoals(t *testing.T) {
	stub := &stubCompleter{responses: []string{`{}`}}
	e := NewExtractor(stub, NewRegistry())
	e.Process(context.Background(), "whatever")

	if len(stub.calls) != 1 {
		t.Fatalf("expected one oracle call, got %d", len(stub.calls))
	}
	for _, key := range goalKeys {
		if !strings.Contains(stub.calls[0], key) {
			t.Errorf("extraction prompt missing goal key %q", key)
		}
	}
}
