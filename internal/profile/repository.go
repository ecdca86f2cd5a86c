package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"go-onboard/internal/onboarding"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Repository persists onboarding profiles, one upserted row per user.
type Repository struct {
	db                *gorm.DB
	completeThreshold int
}

func NewRepository(db *gorm.DB, completeThreshold int) *Repository {
	if completeThreshold <= 0 || completeThreshold > 100 {
		completeThreshold = 80
	}
	return &Repository{db: db, completeThreshold: completeThreshold}
}

// Save upserts the profile for a user. The completed-at timestamp is only
// stamped once the profile crosses the completeness threshold, and is never
// cleared by a later save.
func (r *Repository) Save(ctx context.Context, userID uint, p onboarding.UserProfile, transcript []onboarding.Turn) (*StoredProfile, error) {
	completeness := Completeness(p)

	personal, _ := json.Marshal(p.Personal)
	workStyle, _ := json.Marshal(p.WorkStyle)
	preferences, _ := json.Marshal(p.Preferences)
	goals, _ := json.Marshal(p.Goals)
	contact, _ := json.Marshal(p.Contact)
	history, err := json.Marshal(transcript)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal conversation history: %w", err)
	}
	if transcript == nil {
		history = []byte("[]")
	}

	var stored StoredProfile
	err = r.db.WithContext(ctx).Where("user_id = ?", userID).First(&stored).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load profile for user %d: %w", userID, err)
	}

	stored.UserID = userID
	stored.PersonalData = datatypes.JSON(personal)
	stored.WorkStyle = datatypes.JSON(workStyle)
	stored.Preferences = datatypes.JSON(preferences)
	stored.Goals = datatypes.JSON(goals)
	stored.Contact = datatypes.JSON(contact)
	stored.ConversationHistory = datatypes.JSON(history)
	stored.ProfileCompleteness = completeness
	if completeness >= r.completeThreshold && stored.OnboardingCompletedAt == nil {
		now := time.Now().UTC()
		stored.OnboardingCompletedAt = &now
	}

	if err := r.db.WithContext(ctx).Save(&stored).Error; err != nil {
		return nil, fmt.Errorf("failed to save profile for user %d: %w", userID, err)
	}

	log.Printf("[ProfileRepo] Saved profile for user %d (completeness %d%%)", userID, completeness)
	return &stored, nil
}

// Load returns the stored profile for a user, or nil if none exists.
func (r *Repository) Load(ctx context.Context, userID uint) (*StoredProfile, error) {
	var stored StoredProfile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&stored).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile for user %d: %w", userID, err)
	}
	return &stored, nil
}

// Decode unmarshals the stored JSON sections back into a UserProfile.
func (s *StoredProfile) Decode() (onboarding.UserProfile, error) {
	var p onboarding.UserProfile
	sections := map[string]datatypes.JSON{
		"personal":    s.PersonalData,
		"workStyle":   s.WorkStyle,
		"preferences": s.Preferences,
		"goals":       s.Goals,
		"contact":     s.Contact,
	}
	targets := map[string]interface{}{
		"personal":    &p.Personal,
		"workStyle":   &p.WorkStyle,
		"preferences": &p.Preferences,
		"goals":       &p.Goals,
		"contact":     &p.Contact,
	}
	for name, raw := range sections {
		if len(raw) == 0 {
			continue
		}
		if err := json.Unmarshal(raw, targets[name]); err != nil {
			return p, fmt.Errorf("failed to decode %s section: %w", name, err)
		}
	}
	return p, nil
}

// IsComplete reports whether a user has a profile at or above the
// completeness threshold.
func (r *Repository) IsComplete(ctx context.Context, userID uint) (bool, error) {
	stored, err := r.Load(ctx, userID)
	if err != nil {
		return false, err
	}
	if stored == nil {
		return false, nil
	}
	return stored.ProfileCompleteness >= r.completeThreshold, nil
}

// Delete removes a user's stored profile. Missing rows are not an error.
func (r *Repository) Delete(ctx context.Context, userID uint) error {
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&StoredProfile{}).Error; err != nil {
		return fmt.Errorf("failed to delete profile for user %d: %w", userID, err)
	}
	return nil
}
