// Package server wires all MCP components and creates the server instance.
//
// This is the composition root (DIP): it creates concrete implementations
// and injects them into the tools/prompts/resources that depend on
// abstractions. No business logic lives here — only wiring.
package server

import (
	"fmt"
	"log"
	"os"

	"github.com/eohjun/cultivator/internal/config"
	"github.com/eohjun/cultivator/internal/cultivate"
	"github.com/eohjun/cultivator/internal/history"
	"github.com/eohjun/cultivator/internal/judge"
	"github.com/eohjun/cultivator/internal/prompts"
	"github.com/eohjun/cultivator/internal/resources"
	"github.com/eohjun/cultivator/internal/tools"
	"github.com/eohjun/cultivator/internal/vault"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via ldflags.
var Version = "dev"

// BuildService resolves the configuration and assembles the cultivation
// service: vault, history store, and (when configured) the judge
// provider. Both the MCP server and the one-shot CLI path build on it.
//
// The returned cleanup function releases storage and provider resources
// and must be called on shutdown (typically via defer). It is always
// non-nil and safe to call.
func BuildService() (*cultivate.Service, func(), error) {
	cfg, root, err := config.Load()
	if err != nil {
		return nil, noop, fmt.Errorf("loading config: %w", err)
	}

	v, err := vault.New(config.ResolvePath(root, cfg.Vault.Path), cfg.Vault.Include, cfg.Vault.Exclude)
	if err != nil {
		return nil, noop, fmt.Errorf("opening vault: %w", err)
	}

	cleanup := noop
	historyPath := config.ResolvePath(root, cfg.History.Path)

	var backend history.Backend
	switch cfg.History.Backend {
	case "sqlite":
		sqlBackend, err := history.NewSQLiteBackend(historyPath)
		if err != nil {
			return nil, noop, fmt.Errorf("opening history database: %w", err)
		}
		backend = sqlBackend
		cleanup = func() {
			if err := sqlBackend.Close(); err != nil {
				log.Printf("WARNING: history database close: %v", err)
			}
		}
	default:
		backend = history.NewFileBackend(historyPath)
	}
	store := history.NewStore(backend, cfg.History.MaxPerNote)

	registry := judge.NewRegistry()
	if cfg.Judge.Provider != "" {
		opts := judge.Options{
			Model:       cfg.Judge.Model,
			BaseURL:     cfg.Judge.BaseURL,
			Temperature: cfg.Judge.Temperature,
			MaxTokens:   cfg.Judge.MaxTokens,
		}
		if cfg.Judge.APIKeyEnv != "" {
			opts.APIKey = os.Getenv(cfg.Judge.APIKeyEnv)
		}

		var provider judge.Provider
		switch cfg.Judge.Provider {
		case "anthropic":
			provider = judge.NewAnthropicProvider(opts)
		default:
			provider = judge.NewOpenAIProvider(opts)
		}
		if err := registry.Register(provider); err != nil {
			cleanup()
			return nil, noop, fmt.Errorf("registering judge provider: %w", err)
		}
	}

	storeCleanup := cleanup
	cleanup = func() {
		if err := registry.Close(); err != nil {
			log.Printf("WARNING: judge registry close: %v", err)
		}
		storeCleanup()
	}

	return cultivate.New(v, store, registry, cfg.Judge.Provider), cleanup, nil
}

// New creates and configures the MCP server with all tools, prompts,
// and resources registered. This is the single place where all
// dependencies are resolved.
func New() (*server.MCPServer, func(), error) {
	svc, cleanup, err := BuildService()
	if err != nil {
		return nil, cleanup, err
	}

	s := server.NewMCPServer(
		"cultivator",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Register note tools ---

	assessTool := tools.NewNoteAssessTool(svc)
	s.AddTool(assessTool.Definition(), assessTool.Handle)

	maturityTool := tools.NewNoteSetMaturityTool(svc)
	s.AddTool(maturityTool.Definition(), maturityTool.Handle)

	statusTool := tools.NewNoteStatusTool(svc)
	s.AddTool(statusTool.Definition(), statusTool.Handle)

	historyTool := tools.NewNoteHistoryTool(svc)
	s.AddTool(historyTool.Definition(), historyTool.Handle)

	// --- Register vault tools ---

	notesTool := tools.NewVaultNotesTool(svc)
	s.AddTool(notesTool.Definition(), notesTool.Handle)

	statsTool := tools.NewVaultStatsTool(svc)
	s.AddTool(statsTool.Definition(), statsTool.Handle)

	// --- Register prompts ---

	cultivatePrompt := prompts.NewCultivatePrompt()
	s.AddPrompt(cultivatePrompt.Definition(), cultivatePrompt.Handle)

	reviewPrompt := prompts.NewGardenReviewPrompt()
	s.AddPrompt(reviewPrompt.Definition(), reviewPrompt.Handle)

	// --- Register resources ---

	resourceHandler := resources.NewHandler(svc)
	s.AddResource(resourceHandler.OverviewResource(), resourceHandler.HandleOverview)

	return s, cleanup, nil
}

// noop is the default cleanup when nothing has been allocated yet.
func noop() {}

// serverInstructions returns the system instructions that tell the AI
// how to use Cultivator effectively.
func serverInstructions() string {
	return `You have access to Cultivator, a note-quality MCP server for a
markdown knowledge vault (digital garden).

## WHEN TO ACTIVATE Cultivator

Proactively suggest using Cultivator when the user:
- Asks whether a note is "good", "done", or "ready"
- Wants to improve, refactor, or split a note
- Asks what to work on next in their vault
- Mentions maturity stages (seedling, budding, maturing, evergreen)
- Asks for an overview of their garden's health

You do NOT need Cultivator for:
- Writing brand-new notes from scratch
- Questions unrelated to the vault

## How assessment works

Cultivator scores notes across five weighted dimensions:
- Atomicity (25%): one idea per note
- Connectivity (25%): woven into the vault via wikilinks
- Clarity (20%): readable in the author's own words
- Evidence (15%): claims supported by sources or examples
- Originality (15%): the author's own synthesis, not a clipping

The composite 0-100 score maps to a maturity recommendation:
seedling from 0, budding from 40, maturing from 65, evergreen from 85.

## CRITICAL: YOU are the judge

The note_assess tool is two-phase. Called without scores it returns the
rubric and the note content — YOU evaluate the note against the rubric
and produce the judgment JSON. Call note_assess again with your judgment
in the scores parameter; the tool computes the composite score, records
history, and embeds the assessment callout in the note.

Score honestly. A vault where everything is evergreen tells the author
nothing. Cite concrete lines from the note in your feedback.

## Maturity is earned

Maturity only moves forward, and only when the latest score supports the
target stage. Use note_set_maturity after an assessment, not instead of
one. The force flag exists for deliberate overrides — mention it only
when the user explicitly wants to bypass the policy.

## Typical session

1. vault_stats — see the garden's shape and the weakest notes
2. note_status / note_history — inspect a candidate note
3. note_assess (two calls) — judge it
4. Help the user apply the top improvements, then re-assess
5. note_set_maturity — advance the stage the score has earned`
}
