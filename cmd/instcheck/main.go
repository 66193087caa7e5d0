package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"instcheck/internal/cli"
	"instcheck/internal/cli/commands"
	"instcheck/internal/config"
)

var version = "dev"

func main() {
	// Create initial config with defaults
	cfg := config.New()

	// Create flags struct (will be populated by command flags)
	var flags cli.Flags

	rootCmd := &cobra.Command{
		Use:   "instcheck",
		Short: "Installer test harness",
		Long: `Runs installer test cases described by INI configurations: every step starts an
installer script and verifies the installed files against manifests of expected
sizes and MD5 digests. Results are written as an XML document.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cfg, &flags)
		},
	}
	rootCmd.PersistentFlags().StringVar(&flags.ConfigFile, "config", "", "YAML configuration file")
	rootCmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Enable debug logging")

	// Create commands with dependencies
	cmds := commands.NewCommands(cfg)

	// Register all commands
	cmds.Register(rootCmd, &flags, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup configures logging and loads the configuration file and environment
// into cfg. Command flags are applied afterwards by each command.
func setup(cfg *config.Config, flags *cli.Flags) error {
	level := slog.LevelWarn
	if flags.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	loaded, err := config.LoadFile(flags.ConfigFile)
	if err != nil {
		return err
	}
	if err := loaded.LoadEnv(config.DefaultEnvFile); err != nil {
		return err
	}
	*cfg = *loaded

	slog.Debug("configuration loaded", "file", flags.ConfigFile, "platform", cfg.GetPlatform())
	return nil
}
