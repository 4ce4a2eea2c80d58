package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/0xcro3dile/intentbot-go/internal/bootstrap"
	"github.com/0xcro3dile/intentbot-go/internal/config"
	"github.com/0xcro3dile/intentbot-go/internal/logging"
)

var (
	// Global flags
	configPath string
	corpusPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "intentbot",
	Short: "intentbot - a small intent-classifying chatbot",
	Long: `intentbot trains a TF-IDF + logistic regression classifier on a corpus of
intents and answers with one of the canned responses of the predicted intent.

Run without arguments to start the interactive chat.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if corpusPath != "" {
			cfg.Corpus.Path = corpusPath
		}
		if verbose {
			cfg.Logging.Level = "debug"
		}
		logger, err = logging.New(cfg.Logging)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runChat,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "intentbot.yaml", "Config file (YAML)")
	rootCmd.PersistentFlags().StringVar(&corpusPath, "corpus", "", "Intent corpus file (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(classifyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// loadSystem trains the bot from the configured corpus.
func loadSystem(ctx context.Context) (*bootstrap.System, error) {
	sys, err := bootstrap.Initialize(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("initializing bot: %w", err)
	}
	return sys, nil
}
