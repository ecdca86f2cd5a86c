package chat

import (
	"time"

	"gorm.io/gorm"
)

// Speaker identifies who produced a transcript line
type Speaker string

const (
	SpeakerAssistant Speaker = "anna"
	SpeakerUser      Speaker = "user"
)

// Conversation is one onboarding dialogue's durable transcript
type Conversation struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	SessionID string         `json:"session_id" gorm:"uniqueIndex;size:64;not null"`
	UserID    uint           `json:"user_id"`
	Completed bool           `json:"completed" gorm:"default:false"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
	Messages  []Message      `json:"-" gorm:"foreignKey:ConversationID"`
}

// Message is a single transcript line
type Message struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	ConversationID uint           `json:"conversation_id"`
	Speaker        Speaker        `json:"speaker" gorm:"type:varchar(10);not null"`
	Content        string         `json:"content" gorm:"type:text"`
	QuestionID     string         `json:"question_id" gorm:"size:64"`
	CreatedAt      time.Time      `json:"createdAt"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
}

// Line renders a message the way oracle prompts expect transcript context
func (m *Message) Line() string {
	if m.Speaker == SpeakerAssistant {
		return "Anna: " + m.Content
	}
	return "User: " + m.Content
}

// BuildTurnWindow returns the most recent maxTurns messages, oldest first.
// Keeps oracle prompt context bounded however long the dialogue runs.
func BuildTurnWindow(messages []Message, maxTurns int) []Message {
	if maxTurns <= 0 || len(messages) <= maxTurns {
		return messages
	}
	return messages[len(messages)-maxTurns:]
}
