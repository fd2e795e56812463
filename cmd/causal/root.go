package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/causal"
	"github.com/aretw0/causal/internal/logging"
	"github.com/aretw0/causal/pkg/adapters/redis"
	"github.com/aretw0/causal/pkg/domain"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "causal",
	Short: "Causal compiles programs into morphisms of Markov category theories",
	Long: `Causal keeps a repository of theory presentations (objects, generators and
equations), compiles straight-line programs into string diagrams over them and
checks structure-preserving maps between theories.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("dir", ".", "Directory containing the theory repository")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("log-file", "", "Also write JSON logs to this file")
	rootCmd.PersistentFlags().String("redis", "", "Redis address for the shared working copy (e.g. localhost:6379)")
	rootCmd.PersistentFlags().Int("budget", 0, "Rewrite search budget per equation (0 keeps the default)")
}

// setupLogger builds the command logger. The returned closer releases the
// mirror file, if any.
func setupLogger(cmd *cobra.Command) (*slog.Logger, func(), error) {
	levelText, _ := cmd.Flags().GetString("log-level")
	logFile, _ := cmd.Flags().GetString("log-file")

	var level slog.Level
	if err := level.UnmarshalText([]byte(levelText)); err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", levelText, err)
	}

	if logFile == "" {
		return logging.New(level), func() {}, nil
	}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return logging.NewTee(level, f), func() { _ = f.Close() }, nil
}

// openWorkspace initializes the workspace rooted at --dir, backed by Redis
// when --redis is set.
func openWorkspace(cmd *cobra.Command, logger *slog.Logger, hooks domain.LifecycleHooks) (*causal.Workspace, func(), error) {
	dir, _ := cmd.Flags().GetString("dir")
	addr, _ := cmd.Flags().GetString("redis")
	budget, _ := cmd.Flags().GetInt("budget")

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, nil, err
	}

	opts := []causal.Option{
		causal.WithLogger(logger),
		causal.WithLifecycleHooks(hooks),
	}
	if budget > 0 {
		opts = append(opts, causal.WithRewriteBudget(budget))
	}

	cleanup := func() {}
	if addr != "" {
		client := goredis.NewClient(&goredis.Options{Addr: addr})
		store := redis.NewFromClient(client)
		opts = append(opts,
			causal.WithStore(store),
			causal.WithLocker(redis.NewLocker(client, "causal:")),
		)
		cleanup = func() { _ = store.Close() }
		logger.Info("using redis working copy", "addr", addr)
	}

	ws, err := causal.New(abs, opts...)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to open workspace: %w", err)
	}
	return ws, cleanup, nil
}

// readSource reads the program in args[i], or stdin when it is absent or "-".
func readSource(args []string, i int, stdin io.Reader) (string, error) {
	if len(args) <= i || args[i] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read program from stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[i])
	if err != nil {
		return "", fmt.Errorf("failed to read program: %w", err)
	}
	return string(data), nil
}
