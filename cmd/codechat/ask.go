package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/michaelbrown/codechat/internal/agent"
	"github.com/michaelbrown/codechat/internal/auth"
	"github.com/michaelbrown/codechat/internal/config"
	"github.com/michaelbrown/codechat/internal/llm"
	"github.com/michaelbrown/codechat/internal/server"
	"github.com/michaelbrown/codechat/internal/session"
)

var askCmd = &cobra.Command{
	Use:   "ask [message]",
	Short: "Run chat turns from the console",
	Long: `Run chat turns against the configured model and session pool without the
HTTP server. With an argument, runs a single turn and exits; without one,
reads messages interactively. Every message is an independent turn with its
own sandbox session, exactly like GET /chat.

Examples:
  codechat ask "what is the 100th prime?"
  codechat ask`,
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
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
	pipeline := server.NewPipeline(cfg, chat, sessions, tokens)

	if len(args) > 0 {
		return runTurn(cmd.Context(), pipeline, strings.Join(args, " "))
	}

	fmt.Printf("codechat - model: %s | pool: %s\n", cfg.Deployment, cfg.PoolEndpoint)
	fmt.Printf("Each line runs one independent turn. Ctrl+D to exit.\n\n")

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[36myou>\033[0m ",
		HistoryFile:     "/tmp/codechat_history",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("readline: %w", err)
	}
	defer rl.Close()

	for {
		input, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt || err == io.EOF {
				fmt.Println("\nGoodbye!")
				return nil
			}
			return err
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if err := runTurn(cmd.Context(), pipeline, input); err != nil {
			fmt.Printf("\033[31merror: %s\033[0m\n\n", err)
		}
	}
}

func runTurn(ctx context.Context, pipeline *server.Pipeline, message string) error {
	a, sess, err := pipeline.NewTurn()
	if err != nil {
		return err
	}

	a.OnToolCall = func(name string, args map[string]any) {
		fmt.Printf("  \033[33m⚡ %s\033[0m\n", agent.FormatToolCall(name, args))
	}
	a.OnToolResult = func(name string, result string) {
		lines := strings.Split(strings.TrimSpace(result), "\n")
		preview := lines
		if len(preview) > 8 {
			preview = preview[:8]
		}
		for _, line := range preview {
			fmt.Printf("  \033[90m│ %s\033[0m\n", line)
		}
		if len(lines) > 8 {
			fmt.Printf("  \033[90m│ ... (%d more lines)\033[0m\n", len(lines)-8)
		}
	}

	output, err := a.Run(ctx, message)
	if err != nil {
		return err
	}

	if output == "" {
		fmt.Printf("\033[32mcodechat>\033[0m (no answer)  [session %s]\n\n", sess.ID)
		return nil
	}
	fmt.Printf("\033[32mcodechat>\033[0m %s\n\n", output)
	return nil
}
