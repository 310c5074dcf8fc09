// Cultivator: note-quality MCP server for markdown knowledge vaults.
//
// Scores notes across five weighted quality dimensions, tracks assessment
// history, and gates maturity progression (seedling → budding → maturing
// → evergreen) on earned quality scores.
//
// Usage:
//
//	cultivator serve            # Start MCP server (stdio transport)
//	cultivator assess <note>    # One-shot assessment with the configured judge
//	cultivator update           # Update to the latest version
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	cserver "github.com/eohjun/cultivator/internal/server"
	"github.com/eohjun/cultivator/internal/updater"
	"github.com/mark3labs/mcp-go/server"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		if err := run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "assess":
		if len(os.Args) < 3 {
			fmt.Fprintf(os.Stderr, "Usage: cultivator assess <note>\n")
			os.Exit(1)
		}
		if err := runAssess(os.Args[2]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "update":
		runUpdate()
	case "--help", "-h", "help":
		printUsage()
		os.Exit(0)
	case "--version", "-v", "version":
		fmt.Printf("cultivator v%s\n", cserver.Version)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func run() error {
	s, cleanup, err := cserver.New()
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer cleanup()

	// Background version check — prints to stderr so it doesn't
	// interfere with MCP's stdio transport on stdout.
	go checkForUpdates()

	// Graceful shutdown on interrupt.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCh
		cancel()
	}()

	_ = ctx // stdio server manages its own lifecycle

	return server.ServeStdio(s)
}

// runAssess evaluates one note with the configured judge provider and
// writes the assessment back into it. Requires judge.provider to be set
// in cultivator.yaml.
func runAssess(notePath string) error {
	svc, cleanup, err := cserver.BuildService()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	fmt.Fprintf(os.Stderr, "Judging %s...\n", notePath)
	judgment, err := svc.Judge(ctx, notePath)
	if err != nil {
		return fmt.Errorf("judging note: %w", err)
	}

	out, err := svc.Assess(notePath, judgment)
	if err != nil {
		return err
	}

	a := out.Assessment
	fmt.Printf("%s: %d/100 · Grade %s\n", notePath, a.Quality.Total, a.Quality.Grade())
	if out.Delta != nil {
		fmt.Printf("Change since last assessment: %+d\n", out.Delta.TotalDelta)
	}
	if a.IsUpgradeRecommended() {
		fmt.Printf("Recommended stage: %s %s\n", a.RecommendedMaturity.Icon(), a.RecommendedMaturity.Display())
	}
	fmt.Println("Assessment callout written into the note.")
	return nil
}

// checkForUpdates runs a non-blocking version check and prints a notice
// to stderr if an update is available. This runs in a goroutine during
// "serve" and is best-effort — network failures are silently ignored.
func checkForUpdates() {
	result := updater.CheckVersion(cserver.Version)
	if result.UpdateAvailable {
		fmt.Fprintf(os.Stderr,
			"\n  📦 Update available: v%s → v%s\n"+
				"     Run: cultivator update\n"+
				"     Release: %s\n\n",
			result.CurrentVersion, result.LatestVersion, result.ReleaseURL,
		)
	}
}

// runUpdate performs a self-update to the latest version.
func runUpdate() {
	fmt.Fprintf(os.Stderr, "🔍 Checking for updates...\n")

	result := updater.CheckVersion(cserver.Version)
	if !result.UpdateAvailable {
		fmt.Fprintf(os.Stderr, "✅ Already at the latest version (v%s)\n", result.CurrentVersion)
		return
	}

	fmt.Fprintf(os.Stderr, "📦 New version available: v%s → v%s\n", result.CurrentVersion, result.LatestVersion)
	fmt.Fprintf(os.Stderr, "⬇️  Downloading...\n")

	if err := updater.SelfUpdate(cserver.Version); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Update failed: %v\n", err)
		fmt.Fprintf(os.Stderr, "\n   You can download manually from:\n   %s\n", result.ReleaseURL)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "✅ Updated to v%s!\n", result.LatestVersion)
	fmt.Fprintf(os.Stderr, "   Restart cultivator to use the new version.\n")
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Cultivator v%s — note-quality MCP server for markdown vaults

Usage:
  cultivator serve           Start the MCP server (stdio transport)
  cultivator assess <note>   Assess one note with the configured judge
  cultivator update          Update to the latest version

Configuration:
  Cultivator reads cultivator.yaml from the vault root (discovered by
  walking up from the working directory). Add to your AI tool's MCP
  config:

  {
    "mcpServers": {
      "cultivator": {
        "command": "cultivator",
        "args": ["serve"]
      }
    }
  }

Learn more: https://github.com/eohjun/cultivator
`, cserver.Version)
}
