package v1

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v5"

	"github.com/policydesk/policydesk/store"
)

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"` // optional; issued by the server when absent
}

type chatResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"sessionId"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleChat answers one user message. The request is handled synchronously
// end to end: the agent loop, tool calls included, completes before the
// response is written.
func (s *APIV1Service) handleChat(c *echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "message required"})
	}

	ctx := c.Request().Context()

	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = s.Chat.NewSessionID()
	}

	slog.Info("[AGENT PROMPT]", "session", sessionID, "model", s.Profile.ChatModel, "input", req.Message)

	s.Chat.Append(sessionID, store.ChatTurn{Role: store.RoleUser, Content: req.Message})

	answer, err := s.Agent.Run(ctx, s.Chat.History(sessionID))
	if err != nil {
		slog.Error("agent run failed", "session", sessionID, "err", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "the assistant is unavailable right now"})
	}

	s.Chat.Append(sessionID, store.ChatTurn{Role: store.RoleAssistant, Content: answer})

	return c.JSON(http.StatusOK, chatResponse{Response: answer, SessionID: sessionID})
}
