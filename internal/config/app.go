package config

import (
	"context"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"

	"github.com/syllabot/syllabot/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"SYLLABOT_RUNTIME_PATH" envDefault:".syllabot"`

	// MaxToolRounds bounds how many tool-dispatch rounds one query may
	// trigger before the engine is forced to answer.
	MaxToolRounds int `env:"MAX_TOOL_ROUNDS" envDefault:"1"`

	// MaxHistory is the number of most-recent exchanges kept per session.
	MaxHistory int `env:"MAX_HISTORY" envDefault:"2"`

	// MaxSessions caps the number of tracked sessions; the least recently
	// active are evicted beyond it.
	MaxSessions int `env:"MAX_SESSIONS" envDefault:"1000"`

	// MaxContextTokens bounds the token budget spent on prior history when
	// assembling a prompt.
	MaxContextTokens int `env:"MAX_CONTEXT_TOKENS" envDefault:"4000"`

	// EngineRetries enables bounded retry of transient engine failures.
	// Zero disables retrying.
	EngineRetries int `env:"ENGINE_RETRIES" envDefault:"0"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse app config")
	}

	if !filepath.IsAbs(c.RuntimePath) {
		home, _ := os.UserHomeDir()
		c.RuntimePath = filepath.Join(home, c.RuntimePath)
	}
	return c
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "syllabot.db")
}

func (c AppConfig) GetIndexPath() string {
	return filepath.Join(c.RuntimePath, "index")
}

func IsDebug() bool {
	return os.Getenv("SYLLABOT_DEBUG") == "1"
}
