package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/basefolk/supabase-mcp/internal/common"
	"github.com/basefolk/supabase-mcp/internal/config"
	"github.com/basefolk/supabase-mcp/internal/mcp"
	"github.com/basefolk/supabase-mcp/internal/supabase"
)

func main() {
	transport := flag.String("transport", "", "Transport: stdio (default) or sse")
	port := flag.Int("port", 0, "Port for the sse transport")
	configFile := flag.String("config", "supabase-mcp.toml", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	if *transport != "" {
		cfg.Server.Transport = *transport
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := common.NewLoggerFromConfig(cfg.Logging)

	client := supabase.NewClient(cfg.Supabase.URL, cfg.Supabase.ServiceKey, logger)
	management := supabase.NewManagementClient(cfg.Management.BaseURL, cfg.Management.AccessToken, logger)

	backends := mcp.Backends{
		Data:       client,
		Objects:    client,
		Functions:  client,
		Users:      client,
		Management: management,
	}

	refresh := mcp.NewNotifier(logger)
	srv := mcp.NewServer(cfg.Server.Name, common.GetVersion(), refresh, logger)

	// The gate only exists on the SSE transport; stdio has no side channel
	// a human could resolve approvals through.
	var gate *mcp.Gate
	if cfg.Server.Transport == config.TransportSSE && cfg.Approvals.Enabled {
		gate = mcp.NewGate(srv, logger)
	}

	registry := mcp.NewRegistry(gate, logger)
	mcp.RegisterAll(registry, backends)
	srv.RegisterTools(registry)

	logger.Info().
		Str("version", common.GetFullVersion()).
		Str("transport", cfg.Server.Transport).
		Msg("starting supabase-mcp")

	switch cfg.Server.Transport {
	case config.TransportSSE:
		if err := srv.ServeSSE(strconv.Itoa(cfg.Server.Port), gate); err != nil {
			fmt.Fprintf(os.Stderr, "sse server error: %v\n", err)
			os.Exit(1)
		}
	default:
		if err := srv.ServeStdio(); err != nil {
			fmt.Fprintf(os.Stderr, "stdio server error: %v\n", err)
			os.Exit(1)
		}
	}
}
