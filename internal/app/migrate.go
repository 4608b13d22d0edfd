package app

import (
	"fmt"
	"path/filepath"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/levelshelf/internal/migrate"
)

func newMigrateCmd() *cobra.Command {
	var (
		dryRun  bool
		history bool
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Convert legacy info.json levels to level.yml",
		Long: `Write level.yml for every installed level that only has the legacy
info.json metadata. info.json is left in place. Each migration is recorded
in migrated.jsonl under library.state_dir.

Examples:
  levelshelf migrate --dry-run
  levelshelf migrate
  levelshelf migrate --history`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = e.Close() }()

			ledger, err := migrate.OpenLedger(filepath.Join(cfg.Library.StateDir, migrate.LedgerFile))
			if err != nil {
				return fmt.Errorf("opening ledger: %w", err)
			}
			out := cmd.OutOrStdout()

			if history {
				entries, err := ledger.Entries()
				if err != nil {
					return err
				}
				if len(entries) == 0 {
					fmt.Fprintln(out, "No migrations recorded.")
					return nil
				}
				tbl := uitable.New()
				tbl.AddRow("WHEN", "ID", "TITLE", "DIR")
				for _, en := range entries {
					tbl.AddRow(en.Timestamp.Local().Format("2006-01-02 15:04"), en.LevelID, en.Title, en.Dir)
				}
				fmt.Fprintln(out, tbl)
				return nil
			}

			cands, err := migrate.Scan(cfg.Library.LevelsDir, e.log)
			if err != nil {
				return err
			}
			if len(cands) == 0 {
				fmt.Fprintln(out, "Nothing to migrate.")
				return nil
			}

			done, err := migrate.Run(cands, ledger, dryRun, e.log)
			for _, en := range done {
				if dryRun {
					fmt.Fprintf(out, "would migrate %s (%s)\n", en.LevelID, en.Dir)
				} else {
					ok("Migrated %s (%s)", en.LevelID, en.Title)
				}
			}
			if err != nil {
				return err
			}
			if !dryRun {
				// pick up the rewritten metadata for anything that runs after us
				return e.catalog.Scan()
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List what would be migrated without writing")
	cmd.Flags().BoolVar(&history, "history", false, "Show previously migrated levels")
	return cmd
}
