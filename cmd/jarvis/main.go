// Package main is the entry point for the jarvis CLI. jarvis turns plain
// English test commands into structured, executable actions for the
// microservice test lab.
package main

import (
	"fmt"
	"io"
	"os"

	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kanishqbagri/microservice-testing-lab-sub000/internal/config"
	"github.com/kanishqbagri/microservice-testing-lab-sub000/internal/history"
	"github.com/kanishqbagri/microservice-testing-lab-sub000/internal/insight"
	"github.com/kanishqbagri/microservice-testing-lab-sub000/internal/llm"
	"github.com/kanishqbagri/microservice-testing-lab-sub000/internal/logging"
	"github.com/kanishqbagri/microservice-testing-lab-sub000/internal/pipeline"
)

var (
	version   = "0.1.0"
	cfgPath   string
	verbose   bool
	noHistory bool
	appCfg    *config.Config
	logCloser io.Closer
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "jarvis",
		Short: "jarvis - natural language test commands for the microservice lab",
		Long: `jarvis interprets plain English test commands and maps them to
structured, executable actions.

Interpret a command:   jarvis interpret run chaos test on orders
Show every stage:      jarvis explain run chaos test on orders
Recent commands:       jarvis history list
Configuration:         jarvis config show`,
		SilenceUsage:       true,
		PersistentPreRunE:  initLogging,
		PersistentPostRunE: closeLogging,
	}

	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file path (default ~/.jarvis/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVar(&noHistory, "no-history", false, "do not record interpretations")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "jarvis v%s\n", version)
		},
	})

	rootCmd.AddCommand(interpretCmd())
	rootCmd.AddCommand(explainCmd())
	rootCmd.AddCommand(batchCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func initLogging(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	appCfg = cfg

	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}
	closer, err := logging.Setup(logging.Config{Level: level, File: cfg.Logging.File})
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	logCloser = closer

	zlog.Debug().Str("config", getConfigPath()).Msg("jarvis session started")
	return nil
}

func closeLogging(cmd *cobra.Command, args []string) error {
	if logCloser == nil {
		return nil
	}
	return logCloser.Close()
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFromPath(getConfigPath())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", getConfigPath(), err)
	}
	return cfg, nil
}

func getConfigPath() string {
	if cfgPath != "" {
		return cfgPath
	}
	path, err := config.DefaultPath()
	if err != nil {
		return ".jarvis/config.yaml"
	}
	return path
}

// interpreterOptions controls the optional collaborators of one command.
type interpreterOptions struct {
	forceInsight bool
	record       bool
}

// buildInterpreter wires the configured interpreter. The returned cleanup
// closes the history store, if one was opened.
func buildInterpreter(cfg *config.Config, o interpreterOptions) (*pipeline.Interpreter, func(), error) {
	cleanup := func() {}
	opts := []pipeline.Option{
		pipeline.WithFuzzyThreshold(cfg.NLP.FuzzyThreshold),
		pipeline.WithConfidenceThreshold(cfg.NLP.ConfidenceThreshold),
		pipeline.WithMaxPatterns(cfg.NLP.MaxPatterns),
		pipeline.WithConcurrency(cfg.Batch.Concurrency),
	}

	if o.forceInsight || cfg.InsightActive() {
		mode, err := insight.ParseMode(cfg.Insight.Mode)
		if err != nil {
			return nil, cleanup, err
		}
		if o.forceInsight {
			mode = insight.ModeAlways
		}
		provider, err := llm.New(cfg.Insight.ToProviderConfig())
		if err != nil {
			return nil, cleanup, fmt.Errorf("create insight provider: %w", err)
		}
		if !provider.Available() {
			zlog.Warn().Str("provider", provider.Name()).Msg("Insight provider is not configured, insight will fail")
		}
		svc := insight.NewService(provider,
			insight.WithTimeout(cfg.Insight.Timeout),
			insight.WithModel(cfg.Insight.Model),
		)
		opts = append(opts, pipeline.WithInsight(svc, mode))
	}

	if o.record && cfg.History.Enabled && !noHistory {
		store, err := history.Open(cfg.History.DBPath, history.WithRetention(cfg.History.Retention))
		if err != nil {
			zlog.Warn().Err(err).Msg("History disabled")
		} else {
			opts = append(opts, pipeline.WithRecorder(store))
			cleanup = func() {
				if err := store.Close(); err != nil {
					zlog.Warn().Err(err).Msg("Failed to close history store")
				}
			}
		}
	}

	p, err := pipeline.New(opts...)
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}
	return p, cleanup, nil
}

func openHistory(cfg *config.Config) (*history.Store, error) {
	store, err := history.Open(cfg.History.DBPath, history.WithRetention(cfg.History.Retention))
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	return store, nil
}
