// Package main provides the gptcmd CLI entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/richinex/gptcmd/cli"
	"github.com/richinex/gptcmd/config"
	"github.com/richinex/gptcmd/llm"
	"github.com/richinex/gptcmd/logger"
)

var (
	cfgFile string
	v       *viper.Viper
)

func main() {
	// Load .env file if present (ignore "file not found" errors)
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "Warning: failed to load .env file: %v\n", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd().ExecuteContext(ctx)
	stop()
	os.Exit(exitCode(err))
}

func rootCmd() *cobra.Command {
	v = config.InitViper()

	cmd := &cobra.Command{
		Use:   "gptcmd",
		Short: "Chat with an LLM from the terminal",
		Long: `An interactive terminal chat client for OpenAI-compatible and other LLM providers.

Pick a provider at startup (or with --provider), then type a prompt and press
Enter. Responses are rendered as Markdown with the time they took.

Keywords (case-insensitive):
- exit, quit: leave the session
- clear: clear the screen

API keys are read from OPENAI_API_KEY, PERPLEXITY_API_KEY, DEEPSEEK_API_KEY,
ANTHROPIC_API_KEY and GEMINI_API_KEY (a .env file in the working directory is
loaded first).`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfgFile != "" {
				v.SetConfigFile(cfgFile)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, logs, err := loadSettings()
			if err != nil {
				return err
			}
			return cli.Chat(cmd.Context(), cli.Options{
				Settings: settings,
				Logs:     logs,
				Stdout:   cmd.OutOrStdout(),
				Stderr:   cmd.ErrOrStderr(),
			})
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml or ~/.config/gptcmd/config.yaml)")
	config.BindFlags(cmd, v)

	cmd.AddCommand(providersCmd())
	cmd.AddCommand(historyCmd())

	return cmd
}

func providersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List supported providers and whether their API keys are set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, _, err := loadSettings()
			if err != nil {
				return err
			}
			return cli.ListProviders(cmd.OutOrStdout(), settings)
		},
	}
}

func historyCmd() *cobra.Command {
	var q cli.HistoryQuery

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show stored input history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, _, err := loadSettings()
			if err != nil {
				return err
			}
			return cli.ShowHistory(cmd.Context(), cmd.OutOrStdout(), settings, q)
		},
	}

	cmd.Flags().BoolVar(&q.Clear, "clear", false, "Delete all stored history")
	cmd.Flags().StringVar(&q.Prefix, "prefix", "", "Only list distinct entries starting with this text")
	cmd.Flags().BoolVar(&q.Info, "info", false, "Show the history backend, location and entry counts")

	return cmd
}

func loadSettings() (*config.Settings, *logger.Factory, error) {
	settings, err := config.Load(v)
	if err != nil {
		return nil, nil, err
	}

	logs := logger.NewFactory(logger.Options{
		Writer: os.Stderr,
		Level:  settings.LogLevel(),
		Color:  !settings.NoColor && logger.ColorEnabled(),
	})
	if used := v.ConfigFileUsed(); used != "" {
		logs.For(logger.ComponentCLI).Debug("config loaded", "file", used)
	}
	return settings, logs, nil
}

// exitCode maps a command error onto the process status and reports it.
func exitCode(err error) int {
	if err == nil {
		return 0
	}

	switch llm.KindOf(err) {
	case llm.KindInputTermination:
		return llm.ExitCodeOf(err)
	case llm.KindConfiguration:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return llm.ExitCodeOf(err)
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return llm.ExitCodeGeneric
	}
}
