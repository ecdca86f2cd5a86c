package profile

import (
	"math"

	"go-onboard/internal/onboarding"
)

// Completeness scores a profile as a rounded percentage of its core
// fields that hold a value. Sections are weighted by field count:
// personal and work style carry three fields each, preferences two,
// goals one.
func Completeness(p onboarding.UserProfile) int {
	checks := []bool{
		p.Personal.Name != "",
		p.Personal.Role != "",
		p.Personal.Company != "",
		p.WorkStyle.EmailVolume != "",
		len(p.WorkStyle.Challenges) > 0,
		len(p.WorkStyle.Priorities) > 0,
		p.Preferences.CommunicationStyle != "",
		p.Preferences.AutomationLevel != "",
		len(p.Goals.PrimaryGoals) > 0,
	}

	completed := 0
	for _, ok := range checks {
		if ok {
			completed++
		}
	}
	return int(math.Round(float64(completed) / float64(len(checks)) * 100))
}
