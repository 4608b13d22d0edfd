package app

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/levelshelf/internal/browse"
	"github.com/blackwell-systems/levelshelf/internal/tui"
)

func newBrowseCmd() *cobra.Command {
	var tab string

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Open the interactive level browser",
		Long: `Open the level browser on one of its tabs:

  local       installed levels
  online      the level service (server-side search and paging)
  subscribed  workshop subscriptions
  workshop    workshop search
  queue       the play queue

Examples:
  levelshelf browse
  levelshelf browse --tab online`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseTab(tab)
			if err != nil {
				return err
			}
			if !tui.ShouldUseTUI(cmd) {
				return fmt.Errorf("browse needs an interactive terminal; use 'levelshelf local' or 'levelshelf search' instead")
			}
			return runBrowser(cmd, start)
		},
	}

	cmd.Flags().StringVar(&tab, "tab", "local", "Tab to open (local, online, subscribed, workshop, queue)")
	return cmd
}

func parseTab(s string) (browse.Tab, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "":
		return browse.TabLocal, nil
	case "remote":
		return browse.TabRemote, nil
	}
	for _, t := range browse.Tabs {
		if strings.EqualFold(t.String(), s) {
			return t, nil
		}
	}
	return browse.TabLocal, fmt.Errorf("unknown tab %q", s)
}

func runBrowser(cmd *cobra.Command, start browse.Tab) error {
	e, err := openInteractiveEnv(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = e.Close() }()

	sink := tui.NewSink()
	deps := tui.Deps{
		Browser:    e.browser(),
		Refreshers: e.refreshers(sink),
		Catalog:    e.catalog,
		Icons:      e.icons,
		Queue:      e.queue,
		State:      e.state,
		Downloader: e.downloader,
		Workshop:   e.workshop,
		Log:        e.log,
	}
	deps.Browser.Switch(start)

	res, err := tui.RunBrowser(cmd.Context(), deps, sink)
	if err != nil {
		return err
	}
	if l := res.Selected; l != nil {
		ok("Selected %s", l.Title)
		fmt.Fprintf(cmd.OutOrStdout(), "  id:   %s\n  path: %s\n", l.ID, l.Path)
	}
	return nil
}
