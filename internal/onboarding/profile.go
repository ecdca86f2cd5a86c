package onboarding

// UserProfile is the normalized output of a session, grouped by domain.
// Built incrementally: a collected value is retained even if a later
// extraction pass returns nothing new for it.
type UserProfile struct {
	Personal    PersonalInfo `json:"personal"`
	WorkStyle   WorkStyle    `json:"workStyle"`
	Preferences Preferences  `json:"preferences"`
	Goals       Goals        `json:"goals"`
	Contact     Contact      `json:"contact"`
}

type PersonalInfo struct {
	Name       string `json:"name,omitempty"`
	Role       string `json:"role,omitempty"`
	Company    string `json:"company,omitempty"`
	Industry   string `json:"industry,omitempty"`
	Experience string `json:"experience,omitempty"`
}

type WorkStyle struct {
	EmailVolume string   `json:"emailVolume,omitempty"`
	BusyHours   []string `json:"busyHours,omitempty"`
	Priorities  []string `json:"priorities,omitempty"`
	Challenges  []string `json:"challenges,omitempty"`
}

type Preferences struct {
	CommunicationStyle     string `json:"communicationStyle,omitempty"`
	NotificationPreference string `json:"notificationPreference,omitempty"`
	AutomationLevel        string `json:"automationLevel,omitempty"`
}

type Goals struct {
	PrimaryGoals     []string `json:"primaryGoals,omitempty"`
	TimeExpectations string   `json:"timeExpectations,omitempty"`
	SuccessMetrics   []string `json:"successMetrics,omitempty"`
}

type Contact struct {
	Email    string `json:"email,omitempty"`
	Timezone string `json:"timezone,omitempty"`
}

// goalFieldsFromProfile inverts ApplyExtraction for session resume: values a
// previous session already collected are re-registered so a rebuilt dialogue
// picks up where it left off instead of re-asking.
func goalFieldsFromProfile(p UserProfile) map[string]GoalValue {
	fields := map[string]GoalValue{}
	set := func(key, s string) {
		if s != "" {
			fields[key] = NewGoalValue(s)
		}
	}
	set(GoalName, p.Personal.Name)
	set(GoalRole, p.Personal.Role)
	set(GoalCompany, p.Personal.Company)
	set(GoalEmailVolume, p.WorkStyle.EmailVolume)
	set(GoalCommunicationStyle, p.Preferences.CommunicationStyle)
	set(GoalAutomationPreference, p.Preferences.AutomationLevel)
	if len(p.WorkStyle.Challenges) > 0 {
		fields[GoalEmailChallenges] = NewGoalValue(p.WorkStyle.Challenges...)
	}
	if len(p.Goals.PrimaryGoals) > 0 {
		fields[GoalWorkGoals] = NewGoalValue(p.Goals.PrimaryGoals...)
	}
	return fields
}

// ApplyExtraction routes extracted goal values into profile sections. It is a
// pure reducer over a value copy: sibling fields in a section survive, every
// write replaces exactly one leaf, and re-applying the same fields is a no-op.
func ApplyExtraction(profile UserProfile, fields map[string]GoalValue) UserProfile {
	for key, value := range fields {
		if value.IsZero() {
			continue
		}
		switch key {
		case GoalName:
			profile.Personal.Name = value.String()
		case GoalRole:
			profile.Personal.Role = value.String()
		case GoalCompany:
			profile.Personal.Company = value.String()
		case "industry":
			profile.Personal.Industry = value.String()
		case "experience":
			profile.Personal.Experience = value.String()
		case GoalEmailChallenges:
			profile.WorkStyle.Challenges = value.List()
		case GoalEmailVolume:
			profile.WorkStyle.EmailVolume = value.String()
		case GoalWorkGoals:
			profile.Goals.PrimaryGoals = value.List()
		case GoalCommunicationStyle:
			profile.Preferences.CommunicationStyle = value.String()
		case GoalAutomationPreference:
			profile.Preferences.AutomationLevel = value.String()
		}
	}
	return profile
}
