package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/levelshelf/internal/paging"
)

func newSubsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "subs",
		Aliases: []string{"workshop"},
		Short:   "Manage workshop subscriptions",
		Long: `Workshop content is synced into library.workshop_dir by the workshop
client. Subscriptions decide which of those levels show on the
Subscribed tab.`,
	}

	cmd.AddCommand(
		newSubsListCmd(),
		newSubsAddCmd(),
		newSubsRemoveCmd(),
		newSubsSearchCmd(),
	)
	return cmd
}

func newSubsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List subscribed levels",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = e.Close() }()

			levels, err := e.workshop.Subscribed(cmd.Context())
			if err != nil {
				return err
			}
			if missing := len(e.workshop.Subscriptions()) - len(levels); missing > 0 {
				warn("%d subscription(s) have not been synced yet", missing)
			}
			return printLevels(cmd.OutOrStdout(), levels, e)
		},
	}
}

func newSubsAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <id...>",
		Short: "Subscribe to workshop levels",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = e.Close() }()

			for _, id := range args {
				if err := e.workshop.Subscribe(cmd.Context(), id); err != nil {
					return err
				}
				ok("Subscribed to %s", id)
			}
			return nil
		},
	}
}

func newSubsRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <id...>",
		Aliases: []string{"rm"},
		Short:   "Unsubscribe from workshop levels",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = e.Close() }()

			for _, id := range args {
				if err := e.workshop.Unsubscribe(cmd.Context(), id); err != nil {
					return err
				}
				ok("Unsubscribed from %s", id)
			}
			return nil
		},
	}
}

func newSubsSearchCmd() *cobra.Command {
	var page int

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search published workshop levels",
		Args:  cobra.MaximumNArgs(1),
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

			res, err := e.workshop.Search(cmd.Context(), query, page)
			if err != nil {
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
