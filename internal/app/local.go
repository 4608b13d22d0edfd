package app

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/levelshelf/internal/catalog"
	"github.com/blackwell-systems/levelshelf/internal/paging"
)

func newLocalCmd() *cobra.Command {
	var (
		tag        string
		difficulty string
		page       int
		all        bool
	)

	cmd := &cobra.Command{
		Use:   "local [query]",
		Short: "List installed levels",
		Long: `List installed levels, optionally filtered.

The query matches the level ID exactly, or any substring of the title,
artist, creator, tags or difficulty (case-insensitive).

Examples:
  levelshelf local
  levelshelf local neon --difficulty hard
  levelshelf local --tag stream --all --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := catalog.Filter{Tag: tag}
			if len(args) > 0 {
				f.Search = args[0]
			}
			if difficulty != "" {
				d := catalog.ParseDifficulty(difficulty)
				if d == catalog.DifficultyUnknown && !strings.EqualFold(difficulty, "unknown") {
					return fmt.Errorf("unknown difficulty %q", difficulty)
				}
				f.Difficulty = d.Label()
			}

			e, err := openEnv(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = e.Close() }()

			levels := f.Apply(e.catalog.All())
			out := cmd.OutOrStdout()
			if all {
				return printLevels(out, levels, e)
			}

			size := cfg.Browse.PageSize
			count := paging.PageCount(len(levels), size)
			page = paging.Clamp(page, count)
			if err := printLevels(out, paging.Slice(levels, page, size), e); err != nil {
				return err
			}
			pageFooter(out, page, count, len(levels), "level(s)")
			return nil
		},
	}

	cmd.Flags().StringVar(&tag, "tag", "", "Filter by tag")
	cmd.Flags().StringVar(&difficulty, "difficulty", "", "Filter by difficulty (easy, normal, hard, expert, master or 1-5)")
	cmd.Flags().IntVar(&page, "page", 0, "Page to show, starting at 0")
	cmd.Flags().BoolVar(&all, "all", false, "Show every match without paging")
	return cmd
}
