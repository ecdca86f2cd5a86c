package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"

	"go-onboard/internal/auth"
	"go-onboard/internal/chat"
	"go-onboard/internal/config"
	"go-onboard/internal/db"
	"go-onboard/internal/llm"
	"go-onboard/internal/onboarding"
	"go-onboard/internal/profile"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// WSOnboardingOpen is the first client frame: resume an existing session or
// start fresh when SessionID is empty.
type WSOnboardingOpen struct {
	SessionID string `json:"session_id"`
}

type WSOnboardingAnswer struct {
	Answer string `json:"answer"`
}

type WSOnboardingFrame struct {
	Type      string                    `json:"type"` // "question" | "closing" | "error"
	SessionID string                    `json:"session_id,omitempty"`
	Question  *onboarding.Question      `json:"question,omitempty"`
	Closing   *onboarding.ClosingResult `json:"closing,omitempty"`
	Error     string                    `json:"error,omitempty"`
}

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WebSocket connection wrapper with mutex for thread-safe writes
type safeWSConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *safeWSConn) WriteJSON(v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(v)
}

func (s *safeWSConn) ReadMessage() (int, []byte, error) {
	return s.conn.ReadMessage()
}

func (s *safeWSConn) Close() error {
	return s.conn.Close()
}

func WSOnboardingHandler(cfg *config.Config, sessions *onboarding.SessionManager, profiles *profile.Repository, completer llm.Completer) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if token == "" {
			token = c.Query("token")
		}
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing JWT"})
			return
		}
		token = strings.TrimPrefix(token, "Bearer ")
		claims, err := auth.ParseJWT(cfg.Server.JWTSecret, token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid JWT"})
			return
		}
		userID := claims.UserID

		rawConn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Println("WebSocket upgrade failed:", err)
			return
		}
		conn := &safeWSConn{conn: rawConn}
		defer conn.Close()

		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var open WSOnboardingOpen
		if err := json.Unmarshal(msg, &open); err != nil {
			conn.WriteJSON(WSOnboardingFrame{Type: "error", Error: "invalid JSON"})
			return
		}

		var sess *onboarding.Session
		var conv chat.Conversation
		if open.SessionID != "" {
			existing, err := sessions.Get(open.SessionID)
			if err == nil {
				if existing.UserID != userID {
					conn.WriteJSON(WSOnboardingFrame{Type: "error", Error: "session not found"})
					return
				}
				sess = existing
				if err := db.DB.Where("session_id = ?", sess.ID).First(&conv).Error; err != nil {
					conn.WriteJSON(WSOnboardingFrame{Type: "error", Error: "transcript not found"})
					return
				}
			} else {
				// In-memory session gone (restart, eviction): rebuild the
				// engine from the persisted transcript and partial profile.
				restored, restoredConv, rerr := resumeSession(c, cfg, sessions, profiles, completer, open.SessionID, userID)
				if rerr != nil {
					conn.WriteJSON(WSOnboardingFrame{Type: "error", Error: "session not found"})
					return
				}
				sess = restored
				conv = *restoredConv
				if q := sess.Engine.CurrentQuestion(); q != nil {
					appendTranscript(conv.ID, chat.SpeakerAssistant, q.Text, q.ID)
				}
			}
		} else {
			engine := onboarding.NewEngine(completer, onboarding.EngineConfig{
				CompletionThreshold: cfg.Onboarding.CompletionThreshold,
				HistoryWindow:       cfg.Onboarding.HistoryWindow,
				FollowUpRate:        cfg.Onboarding.FollowUpRate,
			})
			if _, err := engine.Start(); err != nil {
				conn.WriteJSON(WSOnboardingFrame{Type: "error", Error: "failed to start session"})
				return
			}
			sess = sessions.Create(userID, engine)
			conv = chat.Conversation{SessionID: sess.ID, UserID: userID}
			if err := db.DB.Create(&conv).Error; err != nil {
				sessions.Remove(sess.ID)
				conn.WriteJSON(WSOnboardingFrame{Type: "error", Error: "db error"})
				return
			}
			if q := sess.Engine.CurrentQuestion(); q != nil {
				appendTranscript(conv.ID, chat.SpeakerAssistant, q.Text, q.ID)
			}
		}

		question := sess.Engine.CurrentQuestion()
		if question == nil {
			conn.WriteJSON(WSOnboardingFrame{Type: "error", SessionID: sess.ID, Error: "session already complete"})
			return
		}
		if err := conn.WriteJSON(WSOnboardingFrame{Type: "question", SessionID: sess.ID, Question: question}); err != nil {
			return
		}

		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var ans WSOnboardingAnswer
			if err := json.Unmarshal(msg, &ans); err != nil || ans.Answer == "" {
				conn.WriteJSON(WSOnboardingFrame{Type: "error", SessionID: sess.ID, Error: "answer required"})
				continue
			}

			questionID := ""
			if q := sess.Engine.CurrentQuestion(); q != nil {
				questionID = q.ID
			}

			result, err := sess.Engine.SubmitAnswer(c.Request.Context(), questionID, ans.Answer)
			if err != nil {
				conn.WriteJSON(WSOnboardingFrame{Type: "error", SessionID: sess.ID, Error: "failed to process answer"})
				return
			}
			// Only accepted turns reach the transcript
			appendTranscript(conv.ID, chat.SpeakerUser, ans.Answer, questionID)

			if result.Closing != nil {
				appendTranscript(conv.ID, chat.SpeakerAssistant, result.Closing.Message, "closing")
				finishSession(c, sess, profiles, &conv, result.Closing)
				sessions.Remove(sess.ID)
				conn.WriteJSON(WSOnboardingFrame{Type: "closing", SessionID: sess.ID, Closing: result.Closing})
				return
			}

			appendTranscript(conv.ID, chat.SpeakerAssistant, result.Question.Text, result.Question.ID)
			if err := conn.WriteJSON(WSOnboardingFrame{Type: "question", SessionID: sess.ID, Question: result.Question}); err != nil {
				return
			}
		}
	}
}
