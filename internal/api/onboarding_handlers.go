package api

import (
	"errors"
	"log"
	"net/http"

	"go-onboard/internal/chat"
	"go-onboard/internal/config"
	"go-onboard/internal/db"
	"go-onboard/internal/llm"
	"go-onboard/internal/onboarding"
	"go-onboard/internal/profile"
	"go-onboard/internal/user"

	"github.com/gin-gonic/gin"
)

type AnswerRequest struct {
	QuestionID string `json:"question_id"`
	Answer     string `json:"answer"`
}

// ownedSession resolves a session id and enforces that it belongs to the
// authenticated user. Foreign sessions 404 rather than 403 so ids cannot be
// enumerated.
func ownedSession(c *gin.Context, sessions *onboarding.SessionManager) (*onboarding.Session, bool) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "Not authenticated"}})
		return nil, false
	}
	sess, err := sessions.Get(c.Param("id"))
	if err != nil || sess.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "Session not found"}})
		return nil, false
	}
	return sess, true
}

func appendTranscript(conversationID uint, speaker chat.Speaker, content, questionID string) {
	msg := chat.Message{
		ConversationID: conversationID,
		Speaker:        speaker,
		Content:        content,
		QuestionID:     questionID,
	}
	if err := db.DB.Create(&msg).Error; err != nil {
		log.Printf("[Onboarding] Failed to append transcript line: %v", err)
	}
}

// resumeWindowTurns bounds how much persisted transcript is replayed into a
// rebuilt engine's oracle context.
const resumeWindowTurns = 12

// resumeSession rebuilds a dialogue whose in-memory engine was lost
// (typically a server restart) from the persisted transcript and the
// partially saved profile, and re-registers it under its original id.
func resumeSession(c *gin.Context, cfg *config.Config, sessions *onboarding.SessionManager, profiles *profile.Repository, completer llm.Completer, sessionID string, userID uint) (*onboarding.Session, *chat.Conversation, error) {
	var conv chat.Conversation
	if err := db.DB.Where("session_id = ? AND user_id = ? AND completed = ?", sessionID, userID, false).First(&conv).Error; err != nil {
		return nil, nil, err
	}
	var messages []chat.Message
	if err := db.DB.Where("conversation_id = ?", conv.ID).Order("id asc").Find(&messages).Error; err != nil {
		return nil, nil, err
	}
	window := chat.BuildTurnWindow(messages, resumeWindowTurns)
	history := make([]string, 0, len(window))
	for i := range window {
		history = append(history, window[i].Line())
	}

	var seed onboarding.UserProfile
	if stored, err := profiles.Load(c.Request.Context(), userID); err == nil && stored != nil {
		if decoded, derr := stored.Decode(); derr == nil {
			seed = decoded
		}
	}

	engine := onboarding.NewEngine(completer, onboarding.EngineConfig{
		CompletionThreshold: cfg.Onboarding.CompletionThreshold,
		HistoryWindow:       cfg.Onboarding.HistoryWindow,
		FollowUpRate:        cfg.Onboarding.FollowUpRate,
	})
	if _, err := engine.Resume(c.Request.Context(), history, seed); err != nil {
		return nil, nil, err
	}

	log.Printf("[Onboarding] Rebuilt session %s for user %d from %d transcript lines", sessionID, userID, len(history))
	return sessions.Restore(sessionID, userID, engine), &conv, nil
}

// POST /onboarding/start
func StartOnboardingHandler(cfg *config.Config, sessions *onboarding.SessionManager, profiles *profile.Repository, completer llm.Completer) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := getUserIDFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "Not authenticated"}})
			return
		}

		// A finished profile short-circuits onboarding; restart=true redoes it
		if c.Query("restart") != "true" {
			if complete, err := profiles.IsComplete(c.Request.Context(), userID); err == nil && complete {
				c.JSON(http.StatusConflict, gin.H{"error": gin.H{"message": "Onboarding already completed"}})
				return
			}
		}

		engine := onboarding.NewEngine(completer, onboarding.EngineConfig{
			CompletionThreshold: cfg.Onboarding.CompletionThreshold,
			HistoryWindow:       cfg.Onboarding.HistoryWindow,
			FollowUpRate:        cfg.Onboarding.FollowUpRate,
		})
		question, err := engine.Start()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Failed to start session"}})
			return
		}
		sess := sessions.Create(userID, engine)

		conv := chat.Conversation{SessionID: sess.ID, UserID: userID}
		if err := db.DB.Create(&conv).Error; err != nil {
			sessions.Remove(sess.ID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "DB error"}})
			return
		}
		appendTranscript(conv.ID, chat.SpeakerAssistant, question.Text, question.ID)

		log.Printf("[Onboarding] Started session %s for user %d", sess.ID, userID)
		c.JSON(http.StatusCreated, gin.H{
			"session_id": sess.ID,
			"question":   question,
		})
	}
}

// POST /onboarding/:id/answer
func AnswerHandler(sessions *onboarding.SessionManager, profiles *profile.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := ownedSession(c, sessions)
		if !ok {
			return
		}
		var req AnswerRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Answer == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Answer required"}})
			return
		}
		questionID := req.QuestionID
		if questionID == "" {
			if q := sess.Engine.CurrentQuestion(); q != nil {
				questionID = q.ID
			}
		}

		var conv chat.Conversation
		if err := db.DB.Where("session_id = ?", sess.ID).First(&conv).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "DB error"}})
			return
		}
		result, err := sess.Engine.SubmitAnswer(c.Request.Context(), questionID, req.Answer)
		if err != nil {
			switch {
			case errors.Is(err, onboarding.ErrComplete):
				c.JSON(http.StatusConflict, gin.H{"error": gin.H{"message": "Session already complete"}})
			case errors.Is(err, onboarding.ErrNotStarted):
				c.JSON(http.StatusConflict, gin.H{"error": gin.H{"message": "Session not started"}})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Failed to process answer"}})
			}
			return
		}

		// Only accepted turns reach the transcript
		appendTranscript(conv.ID, chat.SpeakerUser, req.Answer, questionID)

		if result.Closing != nil {
			appendTranscript(conv.ID, chat.SpeakerAssistant, result.Closing.Message, "closing")
			finishSession(c, sess, profiles, &conv, result.Closing)
			sessions.Remove(sess.ID)
			c.JSON(http.StatusOK, gin.H{"closing": result.Closing})
			return
		}

		appendTranscript(conv.ID, chat.SpeakerAssistant, result.Question.Text, result.Question.ID)
		c.JSON(http.StatusOK, gin.H{"question": result.Question})
	}
}

// finishSession persists the finished profile and transcript state. Storage
// failures are logged, not surfaced; the user still gets their closing
// message.
func finishSession(c *gin.Context, sess *onboarding.Session, profiles *profile.Repository, conv *chat.Conversation, closing *onboarding.ClosingResult) {
	ctx := c.Request.Context()

	if _, err := profiles.Save(ctx, sess.UserID, closing.Profile, sess.Engine.Turns()); err != nil {
		log.Printf("[Onboarding] Failed to persist profile for user %d: %v", sess.UserID, err)
	}
	if err := db.DB.Model(conv).Update("completed", true).Error; err != nil {
		log.Printf("[Onboarding] Failed to mark conversation complete: %v", err)
	}
	if err := db.DB.Model(&user.User{}).Where("id = ?", sess.UserID).Update("onboarded", true).Error; err != nil {
		log.Printf("[Onboarding] Failed to mark user %d onboarded: %v", sess.UserID, err)
	}
	log.Printf("[Onboarding] Session %s finished for user %d", sess.ID, sess.UserID)
}

// GET /onboarding/:id
func ProgressHandler(sessions *onboarding.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := ownedSession(c, sessions)
		if !ok {
			return
		}
		engine := sess.Engine
		c.JSON(http.StatusOK, gin.H{
			"session_id":       sess.ID,
			"state":            engine.State(),
			"collected":        engine.CollectedKeys(),
			"outstanding":      engine.OutstandingKeys(),
			"turns":            len(engine.Turns()),
			"completeness":     profile.Completeness(engine.Profile()),
			"current_question": engine.CurrentQuestion(),
			"profile":          engine.Profile(),
		})
	}
}

// DELETE /onboarding/:id
// Abandoning saves whatever was collected so a later session can resume
// from a partial profile.
func AbandonHandler(sessions *onboarding.SessionManager, profiles *profile.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := ownedSession(c, sessions)
		if !ok {
			return
		}
		if _, err := profiles.Save(c.Request.Context(), sess.UserID, sess.Engine.Profile(), sess.Engine.Turns()); err != nil {
			log.Printf("[Onboarding] Failed to persist partial profile for user %d: %v", sess.UserID, err)
		}
		sessions.Remove(sess.ID)
		log.Printf("[Onboarding] Session %s abandoned by user %d", sess.ID, sess.UserID)
		c.JSON(http.StatusOK, gin.H{"message": "Session abandoned"})
	}
}

// GET /onboarding/profile
func StoredProfileHandler(profiles *profile.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := getUserIDFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "Not authenticated"}})
			return
		}
		stored, err := profiles.Load(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "DB error"}})
			return
		}
		if stored == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "No onboarding profile"}})
			return
		}
		c.JSON(http.StatusOK, stored)
	}
}
