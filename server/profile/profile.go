// Package profile resolves runtime configuration from the environment.
package profile

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Profile is the runtime configuration. All fields are read from the
// environment with the POLICYDESK_ prefix.
type Profile struct {
	// Addr is the bind address, empty for all interfaces.
	Addr string
	// Port is the HTTP listen port.
	Port int
	// Data is the local data directory holding the vector store.
	Data string
	// Driver is the claims database driver: sqlite, postgres or mysql.
	Driver string
	// DSN is the claims database connection string.
	DSN string
	// LLMAPIKey authenticates against the OpenAI-compatible chat and
	// embeddings endpoints.
	LLMAPIKey string
	// LLMBaseURL is the OpenAI-compatible API base URL.
	LLMBaseURL string
	// ChatModel is the tool-calling chat model.
	ChatModel string
	// EmbeddingModel is the embeddings model used for ingestion and search.
	EmbeddingModel string
}

// ListenAddr returns the host:port the server binds to.
func (p *Profile) ListenAddr() string {
	return fmt.Sprintf("%s:%d", p.Addr, p.Port)
}

// Validate checks that all required secrets are present. A missing secret is
// fatal at startup, before the server accepts any request.
func (p *Profile) Validate() error {
	if p.LLMAPIKey == "" {
		return errors.New("POLICYDESK_LLM_API_KEY is required")
	}
	switch p.Driver {
	case "sqlite", "postgres", "mysql":
	default:
		return errors.Errorf("unknown database driver %q", p.Driver)
	}
	return nil
}

// FromEnv reads the profile from the environment, applying defaults.
func FromEnv() (*Profile, error) {
	v := viper.New()
	v.SetEnvPrefix("policydesk")
	v.AutomaticEnv()

	v.SetDefault("addr", "")
	v.SetDefault("port", 8080)
	v.SetDefault("data", "data")
	v.SetDefault("driver", "sqlite")
	v.SetDefault("dsn", "policydesk.db")
	v.SetDefault("llm_base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("chat_model", "openai/gpt-4o-mini")
	v.SetDefault("embedding_model", "openai/text-embedding-3-small")

	p := &Profile{
		Addr:           v.GetString("addr"),
		Port:           v.GetInt("port"),
		Data:           v.GetString("data"),
		Driver:         v.GetString("driver"),
		DSN:            v.GetString("dsn"),
		LLMAPIKey:      v.GetString("llm_api_key"),
		LLMBaseURL:     v.GetString("llm_base_url"),
		ChatModel:      v.GetString("chat_model"),
		EmbeddingModel: v.GetString("embedding_model"),
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
