package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"applynerd-mcp-server/internal/autofill"
	"applynerd-mcp-server/internal/browser"
	"applynerd-mcp-server/internal/config"
	"applynerd-mcp-server/internal/facts"
	"applynerd-mcp-server/internal/llm"
	"applynerd-mcp-server/internal/logging"
	mcpserver "applynerd-mcp-server/internal/mcp"
	"applynerd-mcp-server/internal/profile"
	"applynerd-mcp-server/internal/trace"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to the ApplyNERD MCP config file")
	ssePort := flag.Int("sse-port", 0, "Optional SSE port override (falls back to config)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *ssePort != 0 {
		cfg.MCP.SSEPort = *ssePort
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	// Stdio mode must keep stderr clean; logs go to the rotating file only.
	log := logging.New(logging.Options{
		File:   cfg.Server.LogFile,
		Level:  cfg.Server.LogLevel,
		Stderr: cfg.MCP.SSEPort > 0,
	})

	engine, err := facts.NewEngine(cfg.Facts)
	if err != nil {
		log.Fatal().Err(err).Msg("fact engine init failed")
	}

	profiles, err := profile.NewFileStore(cfg.Server.ProfilePath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Server.ProfilePath).Msg("profile store init failed")
	}

	recorder, err := trace.NewRecorder(cfg.Trace)
	if err != nil {
		log.Fatal().Err(err).Msg("trace recorder init failed")
	}
	defer recorder.Close()

	registry := browser.NewRegistry(cfg.Browser, log, engine)
	defer registry.Shutdown(context.Background())

	service := &autofill.Service{
		Profiles: profiles,
		Aliases:  profiles,
		Policy:   autofill.NewConfigPolicy(cfg.Policy),
		Discover: &autofill.Discoverer{MaxFields: cfg.Planner.MaxFields, Log: log},
		Status:   registry,
		Facts:    engine,
		Log:      log,
	}

	// The generative tier is optional: without an API key the chain simply
	// never leaves the rule and default tiers.
	if cfg.Planner.AllowFallback {
		generator, err := llm.NewGeminiGenerator(ctx, cfg.Planner)
		if err != nil {
			log.Warn().Err(err).Msg("generative tier unavailable")
		} else {
			service.Fallback = &autofill.FallbackPlanner{
				Generator: generator,
				Policy:    service.Policy,
				MaxFields: cfg.Planner.MaxFallbackFields,
				Timeout:   cfg.Planner.FallbackTimeout(),
			}
		}
	}

	server, err := mcpserver.NewServer(cfg, mcpserver.Deps{
		Registry: registry,
		Service:  service,
		Engine:   engine,
		Profiles: profiles,
		Recorder: recorder,
		Log:      log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("MCP server init failed")
	}

	var startErr error
	if cfg.MCP.SSEPort > 0 {
		log.Info().Int("port", cfg.MCP.SSEPort).Msg("starting ApplyNERD MCP SSE server")
		startErr = server.StartSSE(ctx, cfg.MCP.SSEPort)
	} else {
		log.Info().Msg("starting ApplyNERD MCP stdio server")
		startErr = server.Start(ctx)
	}

	if startErr != nil && !errors.Is(startErr, context.Canceled) {
		log.Fatal().Err(startErr).Msg("server exited with error")
	}
}
