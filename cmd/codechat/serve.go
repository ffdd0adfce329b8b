package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/spf13/cobra"

	"github.com/michaelbrown/codechat/internal/auth"
	"github.com/michaelbrown/codechat/internal/config"
	"github.com/michaelbrown/codechat/internal/llm"
	"github.com/michaelbrown/codechat/internal/server"
	"github.com/michaelbrown/codechat/internal/session"
	"github.com/michaelbrown/codechat/internal/storage"
	"github.com/michaelbrown/codechat/internal/storage/sqlite"
)

var portFlag int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the codechat HTTP gateway",
	Long: `Start the HTTP gateway.

GET /chat?message=... runs one chat turn; /docs points at the API document.

Examples:
  codechat serve
  codechat serve --port 9090`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&portFlag, "port", 0, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return fmt.Errorf("creating credential: %w", err)
	}

	sessions, err := session.NewFactory(cfg.PoolEndpoint)
	if err != nil {
		return fmt.Errorf("creating session factory: %w", err)
	}

	tokens := auth.NewTokenCache(cred, cfg.SandboxScope)
	chat := llm.NewAzureClient(cfg.OpenAIEndpoint, cfg.OpenAIAPIVersion, cfg.Deployment, cred)

	var store storage.Store
	if cfg.Storage.DBPath != "" {
		st, err := sqlite.Open(cfg.Storage.DBPath)
		if err != nil {
			return fmt.Errorf("opening audit store: %w", err)
		}
		defer st.Close()
		store = st
	} else {
		log.Println("Turn audit log disabled (storage.db_path is empty)")
	}

	pipeline := server.NewPipeline(cfg, chat, sessions, tokens)

	port := cfg.Server.Port
	if portFlag > 0 {
		port = portFlag
	}

	srv := server.New(cfg, store, pipeline)

	// Graceful shutdown on SIGINT/SIGTERM
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		srv.Shutdown(context.Background())
	}()

	return srv.Start(port)
}
