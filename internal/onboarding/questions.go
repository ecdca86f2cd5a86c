package onboarding

// OpeningQuestion returns the fixed first question of every session. It never
// touches the oracle, so the dialogue always starts identically.
func OpeningQuestion() Question {
	return Question{
		ID:         "intro",
		Type:       QuestionOpen,
		Text:       "Hi! I'm Anna, your personal AI assistant. I'm excited to get to know you! What should I call you?",
		Category:   CategoryPersonal,
		Weight:     5,
		TargetGoal: GoalName,
	}
}

// Canned one-liners per goal, used whenever the oracle is down or returns
// something unusable. These keep the dialogue moving under total oracle
// failure.
var fallbackQuestions = map[string]string{
	GoalName:                 "What should I call you?",
	GoalRole:                 "What do you do for work?",
	GoalCompany:              "Tell me about where you work!",
	GoalEmailChallenges:      "What's the biggest challenge you face with email?",
	GoalEmailVolume:          "How many emails do you typically get per day?",
	GoalWorkGoals:            "What are you hoping to achieve in your work?",
	GoalCommunicationStyle:   "How do you like to communicate with people?",
	GoalAutomationPreference: "How comfortable are you with AI helping you with tasks?",
}

// FallbackQuestion returns the canned question for a goal
func FallbackQuestion(targetGoal string) Question {
	text, ok := fallbackQuestions[targetGoal]
	if !ok {
		text = "Tell me more about yourself!"
	}
	return Question{
		ID:         "fallback_" + targetGoal,
		Type:       QuestionOpen,
		Text:       text,
		Category:   categoryForGoal(targetGoal),
		Weight:     3,
		TargetGoal: targetGoal,
	}
}
