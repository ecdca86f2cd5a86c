package profile

import (
	"time"

	"gorm.io/datatypes"
)

// StoredProfile is the persisted form of a finished (or in-progress)
// onboarding profile, one row per user.
type StoredProfile struct {
	ID                    uint           `gorm:"primaryKey" json:"id"`
	UserID                uint           `gorm:"uniqueIndex;not null" json:"userId"`
	PersonalData          datatypes.JSON `gorm:"type:jsonb;not null;default:'{}'" json:"personalData"`
	WorkStyle             datatypes.JSON `gorm:"type:jsonb;not null;default:'{}'" json:"workStyle"`
	Preferences           datatypes.JSON `gorm:"type:jsonb;not null;default:'{}'" json:"preferences"`
	Goals                 datatypes.JSON `gorm:"type:jsonb;not null;default:'{}'" json:"goals"`
	Contact               datatypes.JSON `gorm:"type:jsonb;not null;default:'{}'" json:"contact"`
	ConversationHistory   datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'" json:"conversationHistory"`
	ProfileCompleteness   int            `gorm:"not null;default:0" json:"profileCompleteness"`
	OnboardingCompletedAt *time.Time     `json:"onboardingCompletedAt,omitempty"`
	CreatedAt             time.Time      `json:"createdAt"`
	UpdatedAt             time.Time      `json:"updatedAt"`
}

func (StoredProfile) TableName() string {
	return "user_onboarding_profiles"
}
