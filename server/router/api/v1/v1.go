// Package v1 exposes the chat API and hosts the tool-calling agent.
package v1

import (
	"github.com/labstack/echo/v5"

	"github.com/policydesk/policydesk/server/profile"
	"github.com/policydesk/policydesk/store"
)

// APIV1Service wires the chat endpoint to the agent and its stores.
type APIV1Service struct {
	Profile *profile.Profile
	Store   *store.Store
	Chat    *store.ChatStore
	Agent   *Agent
}

// NewAPIV1Service creates the service.
func NewAPIV1Service(p *profile.Profile, claims *store.Store, chat *store.ChatStore, agent *Agent) *APIV1Service {
	return &APIV1Service{
		Profile: p,
		Store:   claims,
		Chat:    chat,
		Agent:   agent,
	}
}

// Register mounts the chat routes. The bare /chat path is kept for the
// bundled browser client.
func (s *APIV1Service) Register(e *echo.Echo) {
	g := e.Group("/api/v1")
	g.POST("/chat", s.handleChat)
	e.POST("/chat", s.handleChat)
}
