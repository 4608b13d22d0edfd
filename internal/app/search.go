package app

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/levelshelf/internal/fetch"
	"github.com/blackwell-systems/levelshelf/internal/paging"
	"github.com/blackwell-systems/levelshelf/internal/remote"
	"github.com/blackwell-systems/levelshelf/internal/tui"
)

func newSearchCmd() *cobra.Command {
	var page int

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search the online level service",
		Long: `Search the level service by title, artist, creator or tag.
Results are paged by the service; use --page to move through them.

Examples:
  levelshelf search "neon"
  levelshelf search stream --page 2
  levelshelf search --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) > 0 {
				query = args[0]
			}
			if page < 0 {
				return fmt.Errorf("--page must not be negative")
			}

			e, err := openEnv(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = e.Close() }()

			// Load never reports to the sink.
			r := fetch.NewRemote(e.remote, e.icons, tui.NewSink(), fetch.Options{}, e.log)
			res, err := r.Load(cmd.Context(), fetch.Request{Query: query, Page: page})
			if err != nil {
				if errors.Is(err, remote.ErrUnauthorized) || errors.Is(err, remote.ErrForbidden) {
					return fmt.Errorf("%w (check $%s)", err, cfg.API.TokenEnv)
				}
				return err
			}

			out := cmd.OutOrStdout()
			if err := printLevels(out, res.Items, e); err != nil {
				return err
			}
			pageFooter(out, page, paging.PageCount(res.Count, cfg.Browse.PageSize), res.Count, "result(s)")
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 0, "Result page, starting at 0")
	return cmd
}
