// Package cli wires the command tree. Commands build providers from
// config and hand control to the bot, console, or one-shot lookups.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/finbot-ai/finbot/config"
	"github.com/finbot-ai/finbot/internal/answer"
	"github.com/finbot-ai/finbot/internal/bot"
	"github.com/finbot-ai/finbot/internal/console"
	"github.com/finbot-ai/finbot/internal/dataflows"
	"github.com/finbot-ai/finbot/internal/market"
	"github.com/finbot-ai/finbot/internal/news"
	"github.com/finbot-ai/finbot/internal/session"
)

const version = "1.0.0"

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg := config.DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "finbot",
		Short: "Finbot - finance tracking and Q&A assistant",
		Long: `Finbot tracks stocks and crypto for you: pick an instrument, get a
market snapshot and recent news, then ask finance questions in a
time-boxed Q&A session. Runs as a Discord bot or a local console.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("failed to create directories: %w", err)
			}
			if cfg.Debug {
				slog.SetLogLoggerLevel(slog.LevelDebug)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot(cfg)
		},
	}

	rootCmd.AddCommand(newConsoleCmd(cfg))
	rootCmd.AddCommand(newQuoteCmd(cfg))
	rootCmd.AddCommand(newNewsCmd(cfg))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(cfg))

	return rootCmd
}

// newOrchestrator builds the session pipeline shared by the bot and
// console surfaces.
func newOrchestrator(ctx context.Context, cfg *config.Config) (*session.Orchestrator, error) {
	chatModel, err := answer.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	finnhub := dataflows.NewFinnhubClient(cfg)
	yahoo := dataflows.NewYahooFinanceClient()

	return session.NewOrchestrator(
		market.NewProvider(finnhub, yahoo),
		news.NewProvider(finnhub),
		answer.New(chatModel),
	), nil
}

// runBot starts the Discord surface and blocks until SIGINT/SIGTERM.
func runBot(cfg *config.Config) error {
	if err := cfg.Validate(true); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	orch, err := newOrchestrator(ctx, cfg)
	if err != nil {
		return err
	}

	b, err := bot.New(cfg, orch)
	if err != nil {
		return err
	}

	fmt.Println("Starting Finbot. Press Ctrl+C to stop.")
	return b.Run(ctx)
}

// newConsoleCmd creates the console command
func newConsoleCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "console",
		Short: "Run a tracking session in the local terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(false); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			orch, err := newOrchestrator(ctx, cfg)
			if err != nil {
				return err
			}
			return console.New(orch).Run(ctx)
		},
	}
}

// newQuoteCmd creates the quote command
func newQuoteCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "quote SYMBOL",
		Short: "Print a live quote for a symbol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			finnhub := dataflows.NewFinnhubClient(cfg)
			q, err := finnhub.GetQuote(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("quote lookup failed: %w", err)
			}
			fmt.Println(market.FormatQuote(q))
			return nil
		},
	}
}

// newNewsCmd creates the news command
func newNewsCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "news SYMBOL",
		Short: "Print recent company news for a symbol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			days, _ := cmd.Flags().GetFloat64("days")

			provider := news.NewProvider(dataflows.NewFinnhubClient(cfg))
			items := provider.CompanyNews(cmd.Context(), args[0], days)
			if len(items) == 0 {
				fmt.Printf("No news found for %s in the last %g days.\n", args[0], days)
				return nil
			}

			for _, item := range items {
				when := time.Unix(item.DateTime, 0).UTC().Format("2006-01-02 15:04")
				fmt.Printf("[%s] %s (%s)\n", when, item.Headline, item.Source)
				if item.URL != "" {
					fmt.Printf("    %s\n", item.URL)
				}
			}
			return nil
		},
	}

	cmd.Flags().Float64("days", 3, "Lookback window in days (0.25 = 6 hours)")
	return cmd
}

// newVersionCmd creates the version command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Finbot v%s\n", version)
			fmt.Println("Finance tracking and Q&A assistant")
		},
	}
}

// newConfigCmd creates the config command
func newConfigCmd(cfg *config.Config) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Run: func(cmd *cobra.Command, args []string) {
			showConfig(cfg)
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration and dependencies",
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateConfig(cfg)
		},
	})

	return configCmd
}

// showConfig displays the current configuration
func showConfig(cfg *config.Config) {
	fmt.Println("Current Finbot Configuration:")
	fmt.Println("═══════════════════════════════════════")
	fmt.Printf("Cache Directory:      %s\n", cfg.DataCacheDir)
	fmt.Printf("Cache Enabled:        %t\n", cfg.CacheEnabled)
	fmt.Printf("Debug Mode:           %t\n", cfg.Debug)
	fmt.Println()
	fmt.Printf("LLM Provider:         %s\n", cfg.LLMProvider)
	fmt.Printf("LLM Model:            %s\n", cfg.LLMModel)
	fmt.Println()

	fmt.Println("API Configuration:")
	fmt.Println("─────────────────────")
	fmt.Printf("Finnhub API:          %s\n", configured(cfg.FinnhubAPIKey))
	fmt.Printf("Discord Token:        %s\n", configured(cfg.DiscordToken))
	fmt.Printf("OpenAI API:           %s\n", configured(cfg.OpenAIAPIKey))
	fmt.Printf("DeepSeek API:         %s\n", configured(cfg.DeepSeekAPIKey))
}

func configured(key string) string {
	if key != "" {
		return "✅ Configured"
	}
	return "❌ Not configured"
}

// validateConfig validates the configuration and dependencies
func validateConfig(cfg *config.Config) error {
	fmt.Println("Validating Finbot Configuration...")
	fmt.Println("═══════════════════════════════════════")

	fmt.Print("Checking directories... ")
	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Println("❌")
		return fmt.Errorf("directory validation failed: %w", err)
	}
	fmt.Println("✅")

	fmt.Print("Checking API keys... ")
	var warnings []string
	if cfg.FinnhubAPIKey == "" {
		warnings = append(warnings, "Finnhub API key not configured; market data and news will fail")
	}
	if cfg.DiscordToken == "" {
		warnings = append(warnings, "Discord token not configured; only console mode will work")
	}
	if cfg.OpenAIAPIKey == "" && cfg.DeepSeekAPIKey == "" {
		warnings = append(warnings, "no LLM API key configured; Q&A answers will fail")
	}

	if len(warnings) > 0 {
		fmt.Println("⚠️")
		for _, warning := range warnings {
			fmt.Printf("  ⚠️  %s\n", warning)
		}
	} else {
		fmt.Println("✅")
	}

	fmt.Print("Checking LLM provider... ")
	if cfg.LLMProvider != "openai" && cfg.LLMProvider != "deepseek" {
		fmt.Println("❌")
		return fmt.Errorf("unsupported LLM provider %q, expected openai or deepseek", cfg.LLMProvider)
	}
	fmt.Println("✅")

	fmt.Println()
	if len(warnings) == 0 {
		fmt.Println("✅ Configuration validation completed successfully!")
	} else {
		fmt.Printf("⚠️  Configuration validation completed with %d warnings.\n", len(warnings))
	}
	return nil
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
