package onboarding

import "fmt"

// ClosingMessage builds the deterministic sign-off. Purely local formatting,
// so the dialogue can always terminate coherently even under total oracle
// failure.
func ClosingMessage(profile UserProfile) string {
	name := profile.Personal.Name
	if name == "" {
		name = "there"
	}

	goal := "be more productive"
	if len(profile.Goals.PrimaryGoals) > 0 && profile.Goals.PrimaryGoals[0] != "" {
		goal = profile.Goals.PrimaryGoals[0]
	}

	challenge := "email challenges"
	if len(profile.WorkStyle.Challenges) > 0 && profile.WorkStyle.Challenges[0] != "" {
		challenge = profile.WorkStyle.Challenges[0]
	}

	return fmt.Sprintf(`Thanks for sharing all of that with me, %s! I feel like I'm getting to know you better already.

I'm excited to help you %s and tackle those %s you mentioned.

Let's get you set up so I can start making your work life easier!`, name, goal, challenge)
}
