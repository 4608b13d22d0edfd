package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/levelshelf/internal/browse"
	"github.com/blackwell-systems/levelshelf/internal/config"
	"github.com/blackwell-systems/levelshelf/internal/tui"
	"github.com/blackwell-systems/levelshelf/internal/util"
)

var (
	cfg *config.Config

	flagNoColor       bool
	flagNoInteractive bool
	flagJSON          bool
	flagConfig        string
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "levelshelf",
		Short: "Browse, install and queue rhythm game levels",
		Long: `levelshelf browses levels from your local library, the online level
service, workshop subscriptions and your play queue.

Installed levels live in one directory each under library.levels_dir.
Queue and subscription state is kept under library.state_dir.

Run 'levelshelf' with no arguments to open the interactive browser.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if tui.ShouldUseTUI(cmd) {
				return runBrowser(cmd, browse.TabLocal)
			}
			return cmd.Help()
		},
	}

	root.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	root.PersistentFlags().BoolVar(&flagNoInteractive, "no-interactive", false, "Disable interactive TUI mode")
	root.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: ~/.config/levelshelf/config.yml)")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		util.InitColor(flagNoColor)

		if flagConfig != "" {
			if err := os.Setenv("LEVELSHELF_CONFIG", flagConfig); err != nil {
				return err
			}
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	}

	root.AddCommand(
		newBrowseCmd(),
		newSearchCmd(),
		newLocalCmd(),
		newInstallCmd(),
		newUninstallCmd(),
		newQueueCmd(),
		newSubsCmd(),
		newCacheCmd(),
		newMigrateCmd(),
		newVersionCmd(),
		newCompletionCmd(),
	)
	return root
}

// Execute is the entry point called from main.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		os.Exit(1)
	}
}
