package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

func newRootCommand(args []string) *cobra.Command {
	root := &cobra.Command{
		Use:           "arbo",
		Short:         "Git worktree reconciliation and provisioning",
		Version:       currentVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runPicker()
		},
	}

	root.AddCommand(
		newListCommand(),
		newBranchesCommand(),
		newCreateCommand(),
		newCreateAllCommand(),
		newRemoveCommand(),
		newConfigCommand(),
	)

	if len(args) > 1 {
		root.SetArgs(args[1:])
	}
	return root
}

func usageError(cmd *cobra.Command, message string) error {
	return fmt.Errorf("%s\n\n%s", message, strings.TrimSpace(cmd.UsageString()))
}

func newEngineFromCwd() (*Engine, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return NewEngine(cwd, WithConfig(cfg))
}

// signalContext returns a context cancelled on SIGINT/SIGTERM, wired to the
// user-visible cancel action for bulk operations.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(signals)
	}()
	return ctx, cancel
}

func newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or initialize configuration",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration",
			Args:  cobra.NoArgs,
			RunE: func(_ *cobra.Command, _ []string) error {
				cfg, err := LoadConfig()
				if err != nil {
					return err
				}
				fmt.Printf("worktree_template:    %s\n", cfg.WorktreeTemplate)
				fmt.Printf("command_timeout_secs: %d\n", cfg.CommandTimeoutSecs)
				fmt.Printf("settle_delay_ms:      %d\n", cfg.SettleDelayMS)
				fmt.Printf("default_branch_type:  %s\n", cfg.DefaultBranchType)
				return nil
			},
		},
		newConfigInitCommand(),
	)
	return cmd
}

func newConfigInitCommand() *cobra.Command {
	var useDefaults bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the config file",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			exists, err := ConfigExists()
			if err != nil {
				return err
			}
			if exists {
				return fmt.Errorf("config already exists; edit it directly")
			}
			if useDefaults {
				if err := SaveConfig(DefaultConfig()); err != nil {
					return err
				}
			} else if err := runConfigInitUI(); err != nil {
				return err
			}
			// The prompt can be cancelled without writing anything.
			if wrote, err := ConfigExists(); err == nil && wrote {
				if path, err := configPath(); err == nil {
					fmt.Println("wrote", path)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&useDefaults, "defaults", false, "Write defaults without prompting")
	return cmd
}
