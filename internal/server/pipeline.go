package server

import (
	"github.com/michaelbrown/codechat/internal/agent"
	"github.com/michaelbrown/codechat/internal/auth"
	"github.com/michaelbrown/codechat/internal/config"
	"github.com/michaelbrown/codechat/internal/interpreter"
	"github.com/michaelbrown/codechat/internal/llm"
	"github.com/michaelbrown/codechat/internal/session"
	"github.com/michaelbrown/codechat/internal/tools"
)

// TurnBuilder assembles the per-request components for one chat turn.
type TurnBuilder interface {
	NewTurn() (*agent.Agent, session.Session, error)
}

// Pipeline is the production TurnBuilder. The chat client, session factory,
// and token cache are shared across requests; everything else is built fresh
// per turn.
type Pipeline struct {
	cfg      *config.Config
	chat     llm.Client
	sessions *session.Factory
	tokens   *auth.TokenCache
}

// NewPipeline wires the shared components into a TurnBuilder.
func NewPipeline(cfg *config.Config, chat llm.Client, sessions *session.Factory, tokens *auth.TokenCache) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		chat:     chat,
		sessions: sessions,
		tokens:   tokens,
	}
}

// NewTurn mints a fresh sandbox session, binds an interpreter client to it,
// registers the interpreter tools, and returns an agent ready to run one
// turn.
func (p *Pipeline) NewTurn() (*agent.Agent, session.Session, error) {
	sess := p.sessions.New()

	client := interpreter.New(sess, p.tokens, p.cfg.PoolAPIVersion)

	registry := tools.NewRegistry()
	tools.RegisterInterpreter(registry, client)

	a := agent.New(p.chat, registry, p.cfg.Agent.MaxIterations)
	a.SetSystemPrompt(p.cfg.Agent.SystemPrompt)

	return a, sess, nil
}
