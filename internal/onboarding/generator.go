package onboarding

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"go-onboard/internal/llm"
)

// QuestionGenerator produces the next question to ask: the fixed opener for a
// fresh session, otherwise an oracle-generated natural question with an
// unconditional fallback to the canned bank.
type QuestionGenerator struct {
	completer     llm.Completer
	registry      *Registry
	historyWindow int
}

// NewQuestionGenerator creates a generator bound to one session's registry
func NewQuestionGenerator(completer llm.Completer, registry *Registry, historyWindow int) *QuestionGenerator {
	if historyWindow <= 0 {
		historyWindow = 3
	}
	return &QuestionGenerator{
		completer:     completer,
		registry:      registry,
		historyWindow: historyWindow,
	}
}

// questionEnvelope is the small JSON shape the oracle is asked to return
type questionEnvelope struct {
	Question   string   `json:"question"`
	Type       string   `json:"type"`
	Choices    []string `json:"choices"`
	TargetInfo string   `json:"target_info"`
}

// NextQuestion returns the next question given the conversation so far, or
// nil when every goal is already collected. It never returns an error: any
// oracle failure degrades to the fallback bank.
func (g *QuestionGenerator) NextQuestion(ctx context.Context, history []string) *Question {
	if len(history) == 0 {
		q := OpeningQuestion()
		return &q
	}

	outstanding := g.registry.OutstandingKeys()
	if len(outstanding) == 0 {
		return nil
	}

	prompt := g.buildPrompt(history, outstanding)

	raw, err := g.completer.Complete(ctx, prompt)
	if err != nil {
		log.Printf("[QuestionGenerator] Oracle call failed, using fallback: %v", err)
		q := FallbackQuestion(outstanding[0])
		return &q
	}

	var env questionEnvelope
	if err := decodeOracleJSON(raw, &env); err != nil || env.Question == "" {
		log.Printf("[QuestionGenerator] Unusable oracle output, using fallback: %v", err)
		q := FallbackQuestion(outstanding[0])
		return &q
	}

	qType := QuestionOpen
	if env.Type == string(QuestionChoice) && len(env.Choices) > 0 {
		qType = QuestionChoice
	}

	target := env.TargetInfo
	if _, known := goalDescriptions[target]; !known {
		target = outstanding[0]
	}

	return &Question{
		ID:         "ai_" + uuid.NewString(),
		Type:       qType,
		Text:       env.Question,
		Choices:    env.Choices,
		Category:   categoryForGoal(target),
		Weight:     3,
		TargetGoal: target,
	}
}

// FollowUp asks the oracle for a short bonus question reacting to the latest
// answer. Returns nil on any failure; a follow-up is always optional.
func (g *QuestionGenerator) FollowUp(ctx context.Context, answer string, history []string) *Question {
	recent := lastN(history, g.historyWindow)
	prompt := fmt.Sprintf(`You are Anna, a friendly AI assistant in an onboarding conversation.

CONVERSATION SO FAR:
%s

The user just said: "%s"

Ask ONE short, warm follow-up question that shows you were listening. Do not
introduce a new topic.

Return a JSON response:
{"question": "your follow-up here", "type": "follow_up"}`,
		strings.Join(recent, "\n"), answer)

	raw, err := g.completer.Complete(ctx, prompt)
	if err != nil {
		log.Printf("[QuestionGenerator] Follow-up oracle call failed, skipping: %v", err)
		return nil
	}

	var env questionEnvelope
	if err := decodeOracleJSON(raw, &env); err != nil || env.Question == "" {
		log.Printf("[QuestionGenerator] Unusable follow-up output, skipping: %v", err)
		return nil
	}

	return &Question{
		ID:       "followup_" + uuid.NewString(),
		Type:     QuestionFollowUp,
		Text:     env.Question,
		Category: CategoryPersonal,
		Weight:   2,
	}
}

func (g *QuestionGenerator) buildPrompt(history []string, outstanding []string) string {
	recent := lastN(history, g.historyWindow)
	return fmt.Sprintf(`You are Anna, a friendly AI assistant conducting a natural onboarding conversation.

CONVERSATION SO FAR:
%s

INFORMATION STILL NEEDED (collect organically, don't ask directly):
%s

INSTRUCTIONS:
1. Generate the next question/response that feels natural in this conversation
2. Don't ask multiple questions at once
3. Don't sound like a form or survey
4. Be warm, personable, and genuinely curious
5. If offering choices, ALWAYS include "Something else" or "Other" as the last option
6. Build on what they just said - show you're listening
7. Focus on ONE piece of information at a time

Return a JSON response:
{
  "question": "Your natural question/response here",
  "type": "open" or "choice",
  "choices": ["option1", "option2", "Other"] (only if type is "choice"),
  "target_info": "which information goal this helps collect"
}

Be conversational, not interrogative!`,
		strings.Join(recent, "\n"), strings.Join(outstanding, ", "))
}

// lastN returns the final n entries of lines, keeping prompt context bounded
func lastN(lines []string, n int) []string {
	if len(lines) <= n {
		return lines
	}
	return lines[len(lines)-n:]
}
