package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/fragmede/parley/internal/api"
	"github.com/fragmede/parley/internal/auth"
	"github.com/fragmede/parley/internal/cache"
	"github.com/fragmede/parley/internal/config"
	"github.com/fragmede/parley/internal/ingest"
	"github.com/fragmede/parley/internal/logging"
	"github.com/fragmede/parley/internal/ui"
)

func main() {
	var (
		configPath = flag.String("config", "", "config file (default ~/.config/parley/config.toml)")
		serverURL  = flag.String("server", "", "backend base URL, overrides config")
		agent      = flag.String("agent", "", "agent to talk to, overrides config")
		ingestDir  = flag.String("ingest", "", "upload documents from this directory tree and exit")
		onlyAgents = flag.String("agents", "", "comma-separated agents to ingest, default all subdirectories")
	)
	flag.Parse()

	godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *serverURL != "" {
		cfg.ServerURL = *serverURL
	}
	if *agent != "" {
		cfg.Agent = *agent
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatalf("creating data dir: %v", err)
	}

	db, err := cache.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("opening cache: %v", err)
	}
	defer db.Close()

	client := api.NewClient(cfg.ServerURL, cfg.HTTPTimeout)
	store := auth.NewTokenStore(cfg.TokenPath)
	session := auth.NewSession(client, store)

	if *ingestDir != "" {
		code := runIngest(cfg, client, db, session, *ingestDir, *onlyAgents)
		db.Close()
		os.Exit(code)
	}

	// The terminal belongs to the TUI; logs go to a file.
	if err := logging.Init(cfg.LogPath, cfg.LogLevel); err != nil {
		log.Fatalf("opening log file: %v", err)
	}

	app := ui.NewApp(cfg, client, db, session)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())
	app.SetProgram(p)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runIngest(cfg config.Config, client *api.Client, db *cache.DB, session *auth.Session, root, only string) int {
	logging.InitConsole(cfg.LogLevel)

	ctx := context.Background()
	if !session.Restore(ctx) {
		fmt.Fprintln(os.Stderr, "Not logged in. Start the TUI and sign in first, or set PARLEY_TOKEN.")
		return 1
	}

	var agents []string
	if only != "" {
		for _, name := range strings.Split(only, ",") {
			if name = strings.TrimSpace(name); name != "" {
				agents = append(agents, name)
			}
		}
	}

	res, err := ingest.Run(ctx, client, db, ingest.Options{
		Root:    root,
		Agents:  agents,
		Workers: cfg.IngestWorkers,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ingest failed: %v\n", err)
		return 1
	}
	if res.Failed > 0 {
		return 1
	}
	return 0
}
