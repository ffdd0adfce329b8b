package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "codechat",
	Short: "codechat - chat gateway with a sandboxed code interpreter",
	Long: `codechat relays chat messages to an Azure OpenAI deployment and lets the
model run Python in a remote session pool sandbox to work out its answer.

Each request is a single independent turn with its own sandbox session.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
